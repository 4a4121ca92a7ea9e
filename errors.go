package cathy

import (
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/legamerdc/cathy/protocol"
)

var (
	// ErrInvalidArgument 参数非法
	ErrInvalidArgument = errors.New("cathy: invalid argument")

	// ErrTimeout 读写超过截止时间
	ErrTimeout = errors.New("cathy: i/o timeout")

	// ErrIO 其他传输层错误
	ErrIO = errors.New("cathy: i/o error")

	// ErrStreamClosed 连接已关闭（对端 EOF 或本端 Shutdown）
	ErrStreamClosed = protocol.ErrStreamClosed
)

// transportError 将底层网络错误归类为 ErrTimeout / ErrStreamClosed / ErrIO，保留原始错误链
func transportError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStreamClosed):
		return err
	case errors.Is(err, net.ErrClosed):
		return ErrStreamClosed
	case errors.Is(err, os.ErrDeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}
