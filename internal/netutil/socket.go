//go:build linux || darwin

package netutil

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

func boolInt(enable bool) int {
	if enable {
		return 1
	}
	return 0
}

func SetReusePort(fd int, enable bool) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, boolInt(enable))
}

func SetReuseAddr(fd int, enable bool) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, boolInt(enable))
}

func SetNoDelay(fd int, enable bool) error {
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, boolInt(enable))
}

func GetNoDelay(fd int) (bool, error) {
	v, err := unix.GetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY)
	return v != 0, err
}

// ListenControl 返回 net.ListenConfig.Control：bind 前设置 SO_REUSEADDR 与可选 SO_REUSEPORT
func ListenControl(reusePort bool) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		var opErr error
		err := c.Control(func(fd uintptr) {
			if opErr = SetReuseAddr(int(fd), true); opErr != nil {
				return
			}
			if reusePort {
				opErr = SetReusePort(int(fd), true)
			}
		})
		if err != nil {
			return err
		}
		return opErr
	}
}

// TuneConn 对已建立的 TCP 连接设置 TCP_NODELAY；非 TCP 连接直接忽略
func TuneConn(c net.Conn, noDelay bool) error {
	sc, ok := c.(syscall.Conn)
	if !ok {
		return nil
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return err
	}
	var opErr error
	err = rc.Control(func(fd uintptr) {
		opErr = SetNoDelay(int(fd), noDelay)
	})
	if err != nil {
		return err
	}
	return opErr
}
