package protocol

import (
	"encoding/binary"
	"fmt"
)

// 头部编码（4B，BE）：
//   bytes 0..1: Action
//   bytes 2..3: BodyLen (0..MaxContentSize)

const (
	actionLen = 2
	bodyLen   = 2
	// HeaderSize 为固定头部长度
	HeaderSize = actionLen + bodyLen
	// MaxContentSize 为单帧最大负载，保证头部+负载可放入一个 Buffer
	MaxContentSize = BufferSize - HeaderSize
)

// Action 标识 Package 的用途
type Action uint16

const (
	ActionConnected Action = 1 // server -> client，携带 ConnectedReply
	ActionHeartbeat Action = 2 // 双向，PING/PONG
	ActionMsgToUser Action = 3 // 双向，携带 MsgToUser
)

// Valid 报告 a 是否为已知的 Action
func (a Action) Valid() bool {
	return a >= ActionConnected && a <= ActionMsgToUser
}

func (a Action) String() string {
	switch a {
	case ActionConnected:
		return "CONNECTED"
	case ActionHeartbeat:
		return "HEARTBEAT"
	case ActionMsgToUser:
		return "MSG_TO_USER"
	}
	return fmt.Sprintf("Action(%d)", uint16(a))
}

// PutHeader 将头部写入 dst[:HeaderSize]
func PutHeader(dst []byte, action Action, length int) {
	binary.BigEndian.PutUint16(dst[:actionLen], uint16(action))
	binary.BigEndian.PutUint16(dst[actionLen:HeaderSize], uint16(length))
}

// ParseHeader 从 b 前 4 字节解析 action 与 body 长度
func ParseHeader(b []byte) (action Action, length int, _ error) {
	if len(b) < HeaderSize {
		return 0, 0, ErrInsufficientData
	}
	action = Action(binary.BigEndian.Uint16(b[:actionLen]))
	length = int(binary.BigEndian.Uint16(b[actionLen:HeaderSize]))
	return action, length, nil
}
