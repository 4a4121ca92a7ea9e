// Package timingwheel 提供基于时间轮的延迟任务调度。
//
// 任务到期后各自在独立 goroutine 中执行，慢任务不会阻塞时钟推进。
// 任务通过返回 Outcome 请求重新调度，自身不持有 Wheel 引用。
package timingwheel

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
)

var (
	// ErrInvalidArgument tick 或 slots 非正
	ErrInvalidArgument = errors.New("timingwheel: invalid argument")
)

// Task 为到期执行一次的任务
type Task interface {
	Fire(now time.Time) Outcome
}

// TaskFunc 将普通函数适配为 Task
type TaskFunc func(now time.Time) Outcome

func (f TaskFunc) Fire(now time.Time) Outcome { return f(now) }

// Outcome 为任务执行结果：Stop 或 Reschedule(delay)
type Outcome struct {
	again bool
	delay time.Duration
}

// Stop 表示任务终止
func Stop() Outcome { return Outcome{} }

// Reschedule 表示任务需在 delay 后再次执行
func Reschedule(delay time.Duration) Outcome { return Outcome{again: true, delay: delay} }

// Rescheduled 返回重新调度的延迟
func (o Outcome) Rescheduled() (time.Duration, bool) { return o.delay, o.again }

// Timeout 为一次调度的句柄，可用于取消
type Timeout struct {
	task      Task
	rounds    int
	cancelled atomic.Bool
}

// Cancel 标记该条目到期时跳过；首次取消返回 true
func (t *Timeout) Cancel() bool { return t.cancelled.CompareAndSwap(false, true) }

func (t *Timeout) Cancelled() bool { return t.cancelled.Load() }

type Option func(*Wheel)

// WithClock 替换任务执行时看到的当前时间
func WithClock(now func() time.Time) Option {
	return func(w *Wheel) { w.now = now }
}

// WithDispatcher 替换到期任务的派发方式（默认每任务一个 goroutine）
func WithDispatcher(dispatch func(func())) Option {
	return func(w *Wheel) { w.dispatch = dispatch }
}

// Wheel 时间轮：slots 个槽位，每 tick 推进一格
type Wheel struct {
	tick     time.Duration
	now      func() time.Time
	dispatch func(func())

	mu    sync.Mutex
	slots []*queue.Queue
	cur   int
	count int

	stopCh  chan struct{}
	started atomic.Bool
	once    sync.Once
	clockWG sync.WaitGroup
	taskWG  sync.WaitGroup
}

// New 构造未启动的时间轮，可直接覆盖的跨度为 tick*slots
func New(tick time.Duration, slots int, opts ...Option) (*Wheel, error) {
	if tick <= 0 || slots <= 0 {
		return nil, ErrInvalidArgument
	}
	w := &Wheel{
		tick:   tick,
		now:    time.Now,
		slots:  make([]*queue.Queue, slots),
		stopCh: make(chan struct{}),
	}
	for i := range w.slots {
		w.slots[i] = queue.New()
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.dispatch == nil {
		w.dispatch = func(fn func()) {
			w.taskWG.Add(1)
			go func() {
				defer w.taskWG.Done()
				fn()
			}()
		}
	}
	return w, nil
}

func (w *Wheel) Tick() time.Duration { return w.tick }

// Start 启动时钟 goroutine，重复调用无效
func (w *Wheel) Start() {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	w.clockWG.Add(1)
	go func() {
		defer w.clockWG.Done()
		w.run()
	}()
}

func (w *Wheel) run() {
	tk := time.NewTicker(w.tick)
	defer tk.Stop()
	for {
		select {
		case <-tk.C:
			w.advance()
		case <-w.stopCh:
			return
		}
	}
}

// Stop 停止时钟并等待已派发的任务结束
func (w *Wheel) Stop() {
	w.once.Do(func() { close(w.stopCh) })
	w.clockWG.Wait()
	w.taskWG.Wait()
}

func (w *Wheel) stopped() bool {
	select {
	case <-w.stopCh:
		return true
	default:
		return false
	}
}

// Schedule 在 delay 后执行 task，可在任意 goroutine（包括执行中的任务）调用。
// 任务重新调度时沿用同一个 Timeout，Cancel 对后续轮次同样有效。
func (w *Wheel) Schedule(task Task, delay time.Duration) *Timeout {
	t := &Timeout{task: task}
	w.insert(t, delay)
	return t
}

func (w *Wheel) insert(t *Timeout, delay time.Duration) {
	ticks := int(delay / w.tick)
	if delay%w.tick != 0 {
		ticks++
	}
	if ticks < 1 {
		ticks = 1
	}
	n := len(w.slots)

	w.mu.Lock()
	t.rounds = (ticks-1)/n + 1
	w.slots[(w.cur+ticks)%n].Add(t)
	w.count++
	w.mu.Unlock()
}

// Pending 返回尚未到期的条目数（含已取消未清理的）
func (w *Wheel) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// advance 推进一格，摘下到期条目并逐个派发
func (w *Wheel) advance() {
	var due []*Timeout

	w.mu.Lock()
	w.cur = (w.cur + 1) % len(w.slots)
	q := w.slots[w.cur]
	for i, n := 0, q.Length(); i < n; i++ {
		t := q.Remove().(*Timeout)
		if t.Cancelled() {
			w.count--
			continue
		}
		t.rounds--
		if t.rounds > 0 {
			q.Add(t)
			continue
		}
		w.count--
		due = append(due, t)
	}
	w.mu.Unlock()

	for _, t := range due {
		w.dispatch(func() { w.fire(t) })
	}
}

func (w *Wheel) fire(t *Timeout) {
	if t.Cancelled() {
		return
	}
	out := t.task.Fire(w.now())
	if delay, ok := out.Rescheduled(); ok && !w.stopped() {
		w.insert(t, delay)
	}
}
