package client

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrMalformedCommand 终端输入不符合 send <uid> <content>
var ErrMalformedCommand = errors.New("client: malformed command")

// Command 为一条终端发送指令
type Command struct {
	ReceiverUID uint64
	Content     string // uid 之后的整行剩余部分，可含空格
}

// ParseCommand 解析 "send <uid> <content>"
func ParseCommand(line string) (Command, error) {
	rest := strings.TrimSpace(line)
	verb, rest := nextField(rest)
	if verb != "send" {
		return Command{}, fmt.Errorf("%w: unknown verb %q", ErrMalformedCommand, verb)
	}
	uidText, content := nextField(rest)
	uid, err := strconv.ParseUint(uidText, 10, 64)
	if err != nil || uid == 0 {
		return Command{}, fmt.Errorf("%w: bad uid %q", ErrMalformedCommand, uidText)
	}
	if content == "" {
		return Command{}, fmt.Errorf("%w: empty content", ErrMalformedCommand)
	}
	return Command{ReceiverUID: uid, Content: content}, nil
}

// nextField 切出首个以空白分隔的字段，余下部分去掉前导空白
func nextField(s string) (field, rest string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace)
}
