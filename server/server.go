package server

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/legamerdc/cathy"
	"github.com/legamerdc/cathy/internal/timingwheel"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "server")

// firstMessageID 为服务端分配的首个 message_id
const firstMessageID = 10000

type Server struct {
	cfg      cathy.Config
	ln       net.Listener
	wheel    *timingwheel.Wheel
	sessions *SessionManager

	msgID   atomic.Uint64 // 最近一次分配的 message_id
	dropped atomic.Uint64

	closing  atomic.Bool
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Start 校验配置、开始监听并启动时间轮与 accept 循环
func Start(cfg cathy.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	wheel, err := timingwheel.New(cfg.Timer.Tick, cfg.Timer.Slots)
	if err != nil {
		return nil, err
	}
	ln, err := listen(cfg.Address, cfg.ReusePort)
	if err != nil {
		return nil, err
	}
	s := &Server{cfg: cfg, ln: ln, wheel: wheel, sessions: NewSessionManager()}
	s.msgID.Store(firstMessageID - 1)

	wheel.Start()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.acceptLoop()
	}()
	log.WithFields(logrus.Fields{"address": ln.Addr().String(), "tick": wheel.Tick()}).Info("server: listening")
	return s, nil
}

// Addr 返回实际监听地址
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

func (s *Server) Sessions() *SessionManager { return s.sessions }

// Dropped 返回未能投递的消息数
func (s *Server) Dropped() uint64 { return s.dropped.Load() }

func (s *Server) nextMessageID() uint64 { return s.msgID.Add(1) }

// Stop 关闭监听与全部在线连接，等待连接 goroutine 退出后停止时间轮。
// ctx 到期时不再等待，返回 ctx.Err()。
func (s *Server) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		s.closing.Store(true)
		_ = s.ln.Close()
		for _, sess := range s.sessions.snapshot() {
			sess.Conn.Shutdown()
		}
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.wheel.Stop()
		log.Info("server: stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
