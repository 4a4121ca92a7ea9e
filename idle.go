package cathy

import (
	"time"

	"github.com/legamerdc/cathy/internal/timingwheel"
)

// IdleKind 区分空闲检测方向
type IdleKind int

const (
	ReaderIdle IdleKind = iota + 1 // 以 LastReadTime 为准
	WriterIdle                     // 以 LastWriteTime 为准
)

func (k IdleKind) String() string {
	switch k {
	case ReaderIdle:
		return "reader-idle"
	case WriterIdle:
		return "writer-idle"
	}
	return "unknown-idle"
}

// IdleFunc 在链路真正空闲满一个周期时调用，返回 true 表示以完整周期继续检测
type IdleFunc func(now time.Time) (again bool)

// IdleTask 为自校正的链路空闲检测任务。
// 到期时若期间发生过读/写，只按剩余时间重新调度，无需在每次读写时取消定时器。
type IdleTask struct {
	kind   IdleKind
	conn   *Connection
	period time.Duration
	onIdle IdleFunc
}

var _ timingwheel.Task = (*IdleTask)(nil)

// NewReaderIdleTask 读空闲检测
func NewReaderIdleTask(conn *Connection, period time.Duration, onIdle IdleFunc) *IdleTask {
	return &IdleTask{kind: ReaderIdle, conn: conn, period: period, onIdle: onIdle}
}

// NewWriterIdleTask 写空闲检测
func NewWriterIdleTask(conn *Connection, period time.Duration, onIdle IdleFunc) *IdleTask {
	return &IdleTask{kind: WriterIdle, conn: conn, period: period, onIdle: onIdle}
}

func (t *IdleTask) Kind() IdleKind { return t.kind }

func (t *IdleTask) Period() time.Duration { return t.period }

func (t *IdleTask) last() time.Time {
	if t.kind == ReaderIdle {
		return t.conn.LastReadTime()
	}
	return t.conn.LastWriteTime()
}

// Remaining 返回距离空闲超时还剩的时间，<=0 表示已超时
func (t *IdleTask) Remaining(now time.Time) time.Duration {
	return t.period - now.Sub(t.last())
}

func (t *IdleTask) Fire(now time.Time) timingwheel.Outcome {
	if t.conn.IsClosed() {
		return timingwheel.Stop()
	}
	if remaining := t.Remaining(now); remaining > 0 {
		return timingwheel.Reschedule(remaining)
	}
	if t.onIdle(now) && !t.conn.IsClosed() {
		return timingwheel.Reschedule(t.period)
	}
	return timingwheel.Stop()
}
