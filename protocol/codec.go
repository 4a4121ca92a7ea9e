package protocol

// Package 为一次协议交互的单元：action + 不透明负载
type Package struct {
	Action  Action
	Content []byte
}

func NewPackage(action Action, content []byte) Package {
	return Package{Action: action, Content: content}
}

// Encode 返回：4B 头部 + 负载。
// 负载超过 MaxContentSize 时返回 ErrContentTooLarge。
func Encode(p Package) ([]byte, error) {
	if len(p.Content) > MaxContentSize {
		return nil, ErrContentTooLarge
	}
	out := make([]byte, HeaderSize+len(p.Content))
	PutHeader(out, p.Action, len(p.Content))
	copy(out[HeaderSize:], p.Content)
	return out, nil
}

// Decode 尝试从 b 中解出一个完整帧。
// 数据不足时返回 ErrInsufficientData 且不消费任何字节；
// 长度越界或 action 未知属于致命错误。
func Decode(b *Buffer) (Package, error) {
	hdr, err := b.Peek(0, HeaderSize)
	if err != nil {
		return Package{}, err
	}
	action, length, err := ParseHeader(hdr)
	if err != nil {
		return Package{}, err
	}
	if length > MaxContentSize {
		return Package{}, ErrContentTooLarge
	}
	if !action.Valid() {
		return Package{}, ErrUnknownAction
	}
	content, err := b.Consume(HeaderSize, length)
	if err != nil {
		return Package{}, err
	}
	return Package{Action: action, Content: content}, nil
}
