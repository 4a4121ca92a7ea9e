package protocol

import (
	"github.com/gogo/protobuf/proto"
)

// 心跳负载
var (
	Ping = []byte("PING")
	Pong = []byte("PONG")
)

// ConnectedReply 为连接建立后 server 下发的会话信息
type ConnectedReply struct {
	Uid       uint64 `protobuf:"varint,1,opt,name=uid,proto3" json:"uid,omitempty"`
	SessionId string `protobuf:"bytes,2,opt,name=session_id,json=sessionId,proto3" json:"session_id,omitempty"`
}

func (m *ConnectedReply) Reset()         { *m = ConnectedReply{} }
func (m *ConnectedReply) String() string { return proto.CompactTextString(m) }
func (*ConnectedReply) ProtoMessage()    {}

// MsgToUser 为用户间消息；sender_uid 与 message_id 由 server 填写
type MsgToUser struct {
	Seq         uint64 `protobuf:"varint,1,opt,name=seq,proto3" json:"seq,omitempty"`
	SenderUid   uint64 `protobuf:"varint,2,opt,name=sender_uid,json=senderUid,proto3" json:"sender_uid,omitempty"`
	ReceiverUid uint64 `protobuf:"varint,3,opt,name=receiver_uid,json=receiverUid,proto3" json:"receiver_uid,omitempty"`
	MessageId   uint64 `protobuf:"varint,4,opt,name=message_id,json=messageId,proto3" json:"message_id,omitempty"`
	Content     string `protobuf:"bytes,5,opt,name=content,proto3" json:"content,omitempty"`
	Timestamp   uint64 `protobuf:"varint,6,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
}

func (m *MsgToUser) Reset()         { *m = MsgToUser{} }
func (m *MsgToUser) String() string { return proto.CompactTextString(m) }
func (*MsgToUser) ProtoMessage()    {}

// NewConnected 编码 CONNECTED 包
func NewConnected(reply *ConnectedReply) (Package, error) {
	return newMessage(ActionConnected, reply)
}

// NewMsgToUser 编码 MSG_TO_USER 包
func NewMsgToUser(msg *MsgToUser) (Package, error) {
	return newMessage(ActionMsgToUser, msg)
}

// NewHeartbeat 构造心跳包，body 为 Ping 或 Pong
func NewHeartbeat(body []byte) Package {
	return Package{Action: ActionHeartbeat, Content: body}
}

func newMessage(action Action, m proto.Message) (Package, error) {
	b, err := proto.Marshal(m)
	if err != nil {
		return Package{}, err
	}
	if len(b) > MaxContentSize {
		return Package{}, ErrContentTooLarge
	}
	return Package{Action: action, Content: b}, nil
}

// ParseConnected 解析 CONNECTED 负载
func ParseConnected(content []byte) (*ConnectedReply, error) {
	m := &ConnectedReply{}
	if err := proto.Unmarshal(content, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseMsgToUser 解析 MSG_TO_USER 负载
func ParseMsgToUser(content []byte) (*MsgToUser, error) {
	m := &MsgToUser{}
	if err := proto.Unmarshal(content, m); err != nil {
		return nil, err
	}
	return m, nil
}
