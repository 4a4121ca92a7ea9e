package server

import (
	"context"
	"net"

	"github.com/legamerdc/cathy/internal/netutil"
)

// listen 打开 TCP 监听，bind 前设置 SO_REUSEADDR，可选 SO_REUSEPORT
func listen(address string, reusePort bool) (net.Listener, error) {
	lc := net.ListenConfig{Control: netutil.ListenControl(reusePort)}
	return lc.Listen(context.Background(), "tcp", address)
}
