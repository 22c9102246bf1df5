package engine

import (
	"sync/atomic"

	"github.com/Trinoooo/eggie_aio/backend"
)

// Slot 请求在引擎内的跟踪记录
//   - complete 只由完成回调置位，是回调与轮询协程之间唯一的发布点
//   - seen 只由收割方置位，且只在观察到 complete 之后
type Slot struct {
	IoU        *IoU
	Completion backend.Completion
	Callback   backend.Callback

	seen     bool
	complete atomic.Bool
}

func NewSlot(ioU *IoU) *Slot {
	return &Slot{IoU: ioU}
}

// Reset 提交前调用
func (s *Slot) Reset() {
	s.seen = false
	s.complete.Store(false)
}

func (s *Slot) Seen() bool {
	return s.seen
}

func (s *Slot) MarkSeen() {
	s.seen = true
}

func (s *Slot) Complete() bool {
	return s.complete.Load()
}

// Publish 必须是回调里最后一次写
func (s *Slot) Publish() {
	s.complete.Store(true)
}
