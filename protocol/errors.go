package protocol

import "errors"

var (
	// ErrInsufficientData 缓冲内数据不足，需继续读取后重试（非致命）
	ErrInsufficientData = errors.New("protocol: insufficient data")

	// ErrContentTooLarge 负载超过 MaxContentSize，流已失步或对端恶意
	ErrContentTooLarge = errors.New("protocol: content too large")

	// ErrUnknownAction 未知的 action 编码
	ErrUnknownAction = errors.New("protocol: unknown action")

	// ErrStreamClosed 对端关闭或本端已关闭
	ErrStreamClosed = errors.New("protocol: stream closed")

	// ErrBufferFull 压缩后仍无空闲空间
	ErrBufferFull = errors.New("protocol: buffer full")
)

// IsFatal 报告解码错误是否需要关闭连接
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrInsufficientData)
}
