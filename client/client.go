package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/legamerdc/cathy"
	"github.com/legamerdc/cathy/internal/netutil"
	"github.com/legamerdc/cathy/internal/timingwheel"
	"github.com/legamerdc/cathy/protocol"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "client")

// ErrHandshake 首包不是合法的 CONNECTED
var ErrHandshake = errors.New("client: handshake failed")

// Handler 的回调都在读 goroutine 中执行
type Handler interface {
	OnOpen(c *Client, reply *protocol.ConnectedReply)
	OnMessage(c *Client, msg *protocol.MsgToUser)
	OnClose(c *Client, err error)
}

type Client struct {
	cfg   cathy.Config
	conn  *cathy.Connection
	wheel *timingwheel.Wheel
	idle  *timingwheel.Timeout

	uid       uint64
	sessionID string
	seq       atomic.Uint64

	done      chan struct{}
	err       error
	closeOnce sync.Once
}

// Dial 建立连接并同步完成 CONNECTED 握手，随后启动读循环与写空闲心跳。
// ctx 只约束连接与握手阶段。
func Dial(ctx context.Context, cfg cathy.Config, h Handler) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", cfg.Address, err)
	}
	if err := netutil.TuneConn(nc, cfg.NoDelay); err != nil {
		log.WithError(err).Debug("client: tune connection failed")
	}
	conn := cathy.NewConnection(nc)

	reply, err := handshake(ctx, conn)
	if err != nil {
		conn.Shutdown()
		return nil, err
	}
	wheel, err := timingwheel.New(cfg.Timer.Tick, cfg.Timer.Slots)
	if err != nil {
		conn.Shutdown()
		return nil, err
	}

	c := &Client{
		cfg:       cfg,
		conn:      conn,
		wheel:     wheel,
		uid:       reply.Uid,
		sessionID: reply.SessionId,
		done:      make(chan struct{}),
	}
	wheel.Start()
	task := c.heartbeatTask()
	c.idle = wheel.Schedule(task, task.Period())
	log.WithFields(logrus.Fields{"uid": c.uid, "session": c.sessionID, "remote": conn.RemoteAddr()}).Info("client: connected")

	go c.readLoop(h, reply)
	return c, nil
}

func handshake(ctx context.Context, conn *cathy.Connection) (*protocol.ConnectedReply, error) {
	// ctx 取消时让阻塞的读立即返回
	stop := context.AfterFunc(ctx, func() { conn.NetConn().SetReadDeadline(time.Now()) })
	defer stop()

	p, err := conn.ReadPackage()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrHandshake, err)
	}
	if p.Action != protocol.ActionConnected {
		return nil, fmt.Errorf("%w: first package is %v", ErrHandshake, p.Action)
	}
	reply, err := protocol.ParseConnected(p.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHandshake, err)
	}
	if !stop() {
		// AfterFunc 已执行，deadline 已被设置
		return nil, ctx.Err()
	}
	return reply, nil
}

// heartbeatTask 写空闲满一个周期发送 PING；发送失败只记日志
func (c *Client) heartbeatTask() *cathy.IdleTask {
	return cathy.NewWriterIdleTask(c.conn, c.cfg.Idle.Writer, func(time.Time) bool {
		if err := c.conn.WritePackage(protocol.NewHeartbeat(protocol.Ping), c.cfg.WriteTimeout); err != nil {
			log.WithError(err).WithField("uid", c.uid).Warn("client: send heartbeat failed")
			return true
		}
		log.WithField("uid", c.uid).Debug("client: heartbeat")
		return true
	})
}

func (c *Client) readLoop(h Handler, reply *protocol.ConnectedReply) {
	h.OnOpen(c, reply)
	for {
		p, err := c.conn.ReadPackage()
		if err != nil {
			c.finish(h, err)
			return
		}
		switch p.Action {
		case protocol.ActionMsgToUser:
			msg, err := protocol.ParseMsgToUser(p.Content)
			if err != nil {
				c.finish(h, fmt.Errorf("client: parse msg_to_user: %w", err))
				return
			}
			h.OnMessage(c, msg)
		case protocol.ActionHeartbeat:
			log.WithField("body", string(p.Content)).Debug("client: heartbeat reply")
		default:
			log.WithField("action", p.Action).Debug("client: ignored package")
		}
	}
}

func (c *Client) finish(h Handler, err error) {
	c.closeOnce.Do(func() {
		c.conn.Shutdown()
		c.idle.Cancel()
		c.wheel.Stop()
		c.err = err
		close(c.done)
		log.WithError(err).WithField("uid", c.uid).Info("client: disconnected")
	})
	h.OnClose(c, err)
}

// SendToUser 向 uid 发送一条文本消息，seq 从 1 递增，timestamp 为 unix 毫秒
func (c *Client) SendToUser(uid uint64, content string) error {
	if uid == 0 {
		return fmt.Errorf("%w: receiver uid 0", cathy.ErrInvalidArgument)
	}
	p, err := protocol.NewMsgToUser(&protocol.MsgToUser{
		Seq:         c.seq.Add(1),
		SenderUid:   c.uid,
		ReceiverUid: uid,
		Content:     content,
		Timestamp:   uint64(time.Now().UnixMilli()),
	})
	if err != nil {
		return err
	}
	return c.conn.WritePackage(p, c.cfg.WriteTimeout)
}

// UID 为服务端分配的用户 id
func (c *Client) UID() uint64 { return c.uid }

func (c *Client) SessionID() string { return c.sessionID }

// Done 在连接结束后关闭
func (c *Client) Done() <-chan struct{} { return c.done }

// Err 返回导致连接结束的错误，Done 关闭前为 nil
func (c *Client) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Close 关闭连接，读循环随后以 ErrStreamClosed 结束并回调 OnClose
func (c *Client) Close() error {
	c.conn.Shutdown()
	return nil
}
