//go:build !linux && !darwin

package netutil

import (
	"net"
	"syscall"
)

// ListenControl 在非 unix 平台不做额外设置
func ListenControl(reusePort bool) func(network, address string, c syscall.RawConn) error {
	return nil
}

// TuneConn 退化为标准库接口
func TuneConn(c net.Conn, noDelay bool) error {
	if tc, ok := c.(*net.TCPConn); ok {
		return tc.SetNoDelay(noDelay)
	}
	return nil
}
