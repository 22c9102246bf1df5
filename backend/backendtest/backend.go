// Package backendtest 提供可插桩的后端，用于测试引擎：
// 统计句柄创建/释放次数，手动触发完成，注入同步失败。
package backendtest

import (
	"fmt"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/Trinoooo/eggie_aio/backend"
	"github.com/Trinoooo/eggie_aio/consts"
)

type Completion struct {
	id     int
	cb     backend.Callback
	ret    atomic.Int64
	done   chan struct{}
	fired  atomic.Bool
	issued bool

	Op     consts.OperatorType
	Offset int64
	Length int

	released atomic.Int32
}

func (c *Completion) ID() int {
	return c.id
}

func (c *Completion) Released() int32 {
	return c.released.Load()
}

type Backend struct {
	// OpenErr Open 返回的错误
	OpenErr error
	// CreateErr CreateCompletion 返回的错误
	CreateErr error
	// RejectErr 非nil时 AioRead/AioWrite 同步拒绝
	RejectErr error
	// CompleteOnWait 为true时 WaitForComplete 以 WaitResult 触发完成
	CompleteOnWait bool
	WaitResult     int64

	mu          sync.Mutex
	opened      bool
	closes      int
	nextID      int
	completions []*Completion
	waits       []int

	created        atomic.Int64
	released       atomic.Int64
	doubleReleases atomic.Int64
}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Open() error {
	if b.OpenErr != nil {
		return b.OpenErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opened = true
	return nil
}

func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opened = false
	b.closes++
	return nil
}

func (b *Backend) CreateCompletion(cb backend.Callback) (backend.Completion, error) {
	if b.CreateErr != nil {
		return nil, b.CreateErr
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	c := &Completion{
		id:   b.nextID,
		cb:   cb,
		done: make(chan struct{}),
	}
	b.completions = append(b.completions, c)
	b.created.Add(1)
	return c, nil
}

func (b *Backend) AioRead(buf []byte, offset int64, c backend.Completion) error {
	return b.submit(consts.OperatorTypeRead, buf, offset, c)
}

func (b *Backend) AioWrite(buf []byte, offset int64, c backend.Completion) error {
	return b.submit(consts.OperatorTypeWrite, buf, offset, c)
}

func (b *Backend) submit(op consts.OperatorType, buf []byte, offset int64, c backend.Completion) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.opened {
		return syscall.ESHUTDOWN
	}
	if b.RejectErr != nil {
		return b.RejectErr
	}

	cc := c.(*Completion)
	cc.Op = op
	cc.Offset = offset
	cc.Length = len(buf)
	cc.issued = true
	return nil
}

func (b *Backend) Release(c backend.Completion) {
	cc := c.(*Completion)
	if cc.released.Add(1) > 1 {
		b.doubleReleases.Add(1)
	}
	b.released.Add(1)
}

func (b *Backend) WaitForComplete(c backend.Completion) {
	cc := c.(*Completion)

	b.mu.Lock()
	b.waits = append(b.waits, cc.id)
	b.mu.Unlock()

	if b.CompleteOnWait {
		b.Fire(cc, b.WaitResult)
	}
	<-cc.done
}

func (b *Backend) ReturnValue(c backend.Completion) int64 {
	return c.(*Completion).ret.Load()
}

func (b *Backend) String() string {
	return "backendtest"
}

// Fire 以ret完成c：先执行回调，再唤醒等待者。重复触发被忽略。
func (b *Backend) Fire(c *Completion, ret int64) bool {
	if !c.fired.CompareAndSwap(false, true) {
		return false
	}
	c.ret.Store(ret)
	c.cb(c)
	close(c.done)
	return true
}

// FireOffset 完成偏移为offset的在途请求
func (b *Backend) FireOffset(offset int64, ret int64) error {
	for _, c := range b.Issued() {
		if c.Offset == offset && !c.fired.Load() {
			b.Fire(c, ret)
			return nil
		}
	}
	return fmt.Errorf("no pending completion at offset %d", offset)
}

// FireAll 完成全部在途请求，返回触发数
func (b *Backend) FireAll(ret int64) int {
	n := 0
	for _, c := range b.Issued() {
		if b.Fire(c, ret) {
			n++
		}
	}
	return n
}

// Issued 已成功提交的句柄，按创建顺序
func (b *Backend) Issued() []*Completion {
	b.mu.Lock()
	defer b.mu.Unlock()

	issued := make([]*Completion, 0, len(b.completions))
	for _, c := range b.completions {
		if c.issued {
			issued = append(issued, c)
		}
	}
	return issued
}

// Waits 被阻塞等待过的句柄id，按等待顺序
func (b *Backend) Waits() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int(nil), b.waits...)
}

func (b *Backend) Opened() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened
}

func (b *Backend) Closes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closes
}

func (b *Backend) Created() int64 {
	return b.created.Load()
}

func (b *Backend) Released() int64 {
	return b.released.Load()
}

func (b *Backend) DoubleReleases() int64 {
	return b.doubleReleases.Load()
}
