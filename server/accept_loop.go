package server

import (
	"errors"
	"net"
	"time"

	"github.com/legamerdc/cathy/internal/netutil"
)

const maxAcceptDelay = time.Second

// acceptLoop 每个连接一个 goroutine；临时错误指数退避后重试
func (s *Server) acceptLoop() {
	var delay time.Duration
	for {
		nc, err := s.ln.Accept()
		if err != nil {
			if s.closing.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			if delay == 0 {
				delay = 5 * time.Millisecond
			} else if delay *= 2; delay > maxAcceptDelay {
				delay = maxAcceptDelay
			}
			log.WithError(err).WithField("retry", delay).Warn("server: accept failed")
			time.Sleep(delay)
			continue
		}
		delay = 0
		if err := netutil.TuneConn(nc, s.cfg.NoDelay); err != nil {
			log.WithError(err).Debug("server: tune connection failed")
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serve(nc)
		}()
	}
}
