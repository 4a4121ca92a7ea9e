package cathy

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/legamerdc/cathy/protocol"
)

// linkState 为同一 socket 的所有 Connection 句柄共享的状态
type linkState struct {
	conn      net.Conn
	now       func() time.Time
	closed    atomic.Bool
	lastRead  atomic.Int64 // unix milli
	lastWrite atomic.Int64 // unix milli
	wmu       sync.Mutex   // 串行化写，保证头部与负载不被交织
	closeOnce sync.Once
}

// Connection 表示一条 TCP 链路的句柄。
// Clone 出的句柄共享 socket、关闭标志与读写时间戳，但各自持有空的接收 Buffer，
// 因此同一 socket 只应有一个 goroutine 调用 ReadPackage。
type Connection struct {
	*linkState
	buf *protocol.Buffer
}

type ConnOption func(*linkState)

// WithClock 替换连接使用的时钟
func WithClock(now func() time.Time) ConnOption {
	return func(s *linkState) { s.now = now }
}

// NewConnection 包装 c；读写时间戳初始化为当前时间
func NewConnection(c net.Conn, opts ...ConnOption) *Connection {
	s := &linkState{conn: c, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	now := s.now().UnixMilli()
	s.lastRead.Store(now)
	s.lastWrite.Store(now)
	return &Connection{linkState: s, buf: protocol.NewBuffer()}
}

// Clone 返回共享链路状态、拥有独立空 Buffer 的句柄
func (c *Connection) Clone() *Connection {
	return &Connection{linkState: c.linkState, buf: protocol.NewBuffer()}
}

// ReadPackage 阻塞直到解出一个完整包。
// 数据不足时从 socket 补充后重试；致命解码错误与传输错误直接返回。
func (c *Connection) ReadPackage() (protocol.Package, error) {
	for {
		p, err := protocol.Decode(c.buf)
		if err == nil {
			c.lastRead.Store(c.now().UnixMilli())
			return p, nil
		}
		if protocol.IsFatal(err) {
			return protocol.Package{}, err
		}
		if err := c.buf.Fill(c.conn); err != nil {
			return protocol.Package{}, transportError(err)
		}
	}
}

// WritePackage 编码并在 timeout 内写完整个包
func (c *Connection) WritePackage(p protocol.Package, timeout time.Duration) error {
	frame, err := protocol.Encode(p)
	if err != nil {
		return err
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.closed.Load() {
		return ErrStreamClosed
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return transportError(err)
	}
	// net.Conn.Write 保证写完或返回错误
	if _, err := c.conn.Write(frame); err != nil {
		return transportError(err)
	}
	c.lastWrite.Store(c.now().UnixMilli())
	return nil
}

// Shutdown 幂等关闭链路，可在任意 goroutine 调用
func (c *Connection) Shutdown() {
	c.closed.Store(true)
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
	})
}

func (c *Connection) IsClosed() bool { return c.closed.Load() }

func (c *Connection) LastReadTime() time.Time { return time.UnixMilli(c.lastRead.Load()) }

func (c *Connection) LastWriteTime() time.Time { return time.UnixMilli(c.lastWrite.Load()) }

func (c *Connection) RemoteAddr() string {
	if addr := c.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// NetConn 返回底层连接
func (c *Connection) NetConn() net.Conn { return c.conn }
