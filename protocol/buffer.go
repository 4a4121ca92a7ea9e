package protocol

import (
	"errors"
	"io"
	"net"
)

// BufferSize 为每连接接收缓冲容量
const BufferSize = 4096

// Buffer 是定长的接收暂存区，有效数据为 data[start:end]。
// 仅由单个读 goroutine 使用，不做并发保护。
type Buffer struct {
	data  [BufferSize]byte
	start int
	end   int
}

func NewBuffer() *Buffer { return &Buffer{} }

func (b *Buffer) Cap() int { return len(b.data) }

// Len 返回可读字节数
func (b *Buffer) Len() int { return b.end - b.start }

// compact 将有效字节前移至 0 偏移
func (b *Buffer) compact() {
	if b.start == 0 {
		return
	}
	n := copy(b.data[:], b.data[b.start:b.end])
	b.start = 0
	b.end = n
}

// Fill 压缩后从 r 做一次（可能阻塞的）读取，追加到有效区尾部。
// 读到 0 字节或 EOF 时返回 ErrStreamClosed；其他错误原样返回。
func (b *Buffer) Fill(r io.Reader) error {
	b.compact()
	if b.end == b.Cap() {
		return ErrBufferFull
	}
	n, err := r.Read(b.data[b.end:])
	if n > 0 {
		b.end += n
		// 已读到数据时先交给解码，错误留给下一次 Fill
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
		return ErrStreamClosed
	}
	return err
}

// Peek 返回 [start+offset, start+offset+n) 的拷贝，不移动游标
func (b *Buffer) Peek(offset, n int) ([]byte, error) {
	if offset < 0 || n < 0 || b.Len() < offset+n {
		return nil, ErrInsufficientData
	}
	out := make([]byte, n)
	copy(out, b.data[b.start+offset:b.start+offset+n])
	return out, nil
}

// Consume 同 Peek，但会丢弃 offset 前缀并前进读游标
func (b *Buffer) Consume(offset, n int) ([]byte, error) {
	out, err := b.Peek(offset, n)
	if err != nil {
		return nil, err
	}
	b.start += offset + n
	return out, nil
}
