package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// chunkReader 每次 Read 返回 chunks 中的下一段
type chunkReader struct {
	chunks [][]byte
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	if n < len(r.chunks[0]) {
		r.chunks[0] = r.chunks[0][n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func mustEncode(t *testing.T, p Package) []byte {
	t.Helper()
	b, err := Encode(p)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return b
}

// TestEncodeHeader 校验大端头部布局
func TestEncodeHeader(t *testing.T) {
	t.Parallel()

	got := mustEncode(t, NewPackage(ActionMsgToUser, []byte("hi")))
	want := []byte{0x00, 0x03, 0x00, 0x02, 'h', 'i'}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode() = %v, want %v", got, want)
	}
}

func TestEncodeBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		size    int
		wantErr error
	}{
		{name: "empty", size: 0},
		{name: "at max", size: MaxContentSize},
		{name: "over max", size: MaxContentSize + 1, wantErr: ErrContentTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := Encode(NewPackage(ActionHeartbeat, make([]byte, tt.size)))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Encode() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && len(out) != HeaderSize+tt.size {
				t.Errorf("len = %d, want %d", len(out), HeaderSize+tt.size)
			}
		})
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []Package{
		NewHeartbeat(Ping),
		NewPackage(ActionConnected, nil),
		NewPackage(ActionMsgToUser, []byte{0x00, 0xFF, 0x01}),
		NewPackage(ActionMsgToUser, bytes.Repeat([]byte{'x'}, MaxContentSize)),
	}
	for _, p := range tests {
		b := NewBuffer()
		if err := b.Fill(bytes.NewReader(mustEncode(t, p))); err != nil {
			t.Fatalf("Fill() error = %v", err)
		}
		got, err := Decode(b)
		if err != nil {
			t.Fatalf("Decode(%v) error = %v", p.Action, err)
		}
		if got.Action != p.Action || !bytes.Equal(got.Content, p.Content) {
			t.Errorf("Decode() = %v/%d bytes, want %v/%d bytes", got.Action, len(got.Content), p.Action, len(p.Content))
		}
		if b.Len() != 0 {
			t.Errorf("buffer Len = %d after decode, want 0", b.Len())
		}
	}
}

// TestDecodePartial 头部与负载被拆成三次读取，第二个包的开头保留在缓冲内
func TestDecodePartial(t *testing.T) {
	t.Parallel()

	first := mustEncode(t, NewPackage(ActionMsgToUser, []byte("hello world")))
	second := mustEncode(t, NewHeartbeat(Pong))
	stream := append(append([]byte{}, first...), second[:3]...)

	r := &chunkReader{chunks: [][]byte{stream[:3], stream[3:9], stream[9:]}}
	b := NewBuffer()
	fills := 0
	var got Package
	for {
		p, err := Decode(b)
		if err == nil {
			got = p
			break
		}
		if !errors.Is(err, ErrInsufficientData) {
			t.Fatalf("Decode() error = %v", err)
		}
		if err := b.Fill(r); err != nil {
			t.Fatalf("Fill() error = %v", err)
		}
		fills++
	}
	if fills != 3 {
		t.Errorf("fills = %d, want 3", fills)
	}
	if got.Action != ActionMsgToUser || string(got.Content) != "hello world" {
		t.Errorf("Decode() = %v %q", got.Action, got.Content)
	}
	if _, err := Decode(b); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("second Decode() error = %v, want ErrInsufficientData", err)
	}
	if b.Len() != 3 {
		t.Fatalf("remaining = %d, want 3", b.Len())
	}

	if err := b.Fill(bytes.NewReader(second[3:])); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	p, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if p.Action != ActionHeartbeat || !bytes.Equal(p.Content, Pong) {
		t.Errorf("Decode() = %v %q, want HEARTBEAT PONG", p.Action, p.Content)
	}
}

func TestDecodeFatal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "length over max", data: []byte{0x00, 0x01, 0x0F, 0xFD}, wantErr: ErrContentTooLarge},
		{name: "unknown action", data: []byte{0x00, 0x09, 0x00, 0x00}, wantErr: ErrUnknownAction},
		{name: "zero action", data: []byte{0x00, 0x00, 0x00, 0x01, 'x'}, wantErr: ErrUnknownAction},
		{name: "short header", data: []byte{0x00, 0x01, 0x00}, wantErr: ErrInsufficientData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := NewBuffer()
			if err := b.Fill(bytes.NewReader(tt.data)); err != nil {
				t.Fatalf("Fill() error = %v", err)
			}
			_, err := Decode(b)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
			}
			if IsFatal(err) != !errors.Is(tt.wantErr, ErrInsufficientData) {
				t.Errorf("IsFatal(%v) = %v", err, IsFatal(err))
			}
			if b.Len() != len(tt.data) {
				t.Errorf("Decode consumed bytes on error: Len = %d", b.Len())
			}
		})
	}
}

func TestActionString(t *testing.T) {
	t.Parallel()

	if got := ActionMsgToUser.String(); got != "MSG_TO_USER" {
		t.Errorf("String() = %q", got)
	}
	if got := Action(7).String(); got != "Action(7)" {
		t.Errorf("String() = %q", got)
	}
}
