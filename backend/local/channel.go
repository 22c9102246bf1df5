package local

import (
	"unsafe"

	"github.com/Trinoooo/eggie_aio/consts"
	"github.com/Trinoooo/eggie_aio/utils"
	"github.com/bytedance/gopkg/collection/lscq"
)

// task 一次已受理的异步操作
type task struct {
	op     consts.OperatorType
	buf    []byte
	offset int64
	c      *completion
}

// Channel 提交通道，无界
type Channel struct {
	notifier *utils.UnboundChan
	queue    *lscq.PointerQueue
}

func NewChannel() *Channel {
	return &Channel{
		notifier: utils.NewUnboundChan(),
		queue:    lscq.NewPointer(),
	}
}

func (c *Channel) Produce(t *task) {
	c.queue.Enqueue(unsafe.Pointer(t))
	c.notifier.In()
}

// Consume 阻塞直到有任务，通道关闭且排空后返回nil
func (c *Channel) Consume() *task {
	if ok := c.notifier.Out(); !ok {
		return nil
	}
	data, ok := c.queue.Dequeue()
	if !ok {
		return nil
	}
	return (*task)(data)
}

// Close 之后不允许再 Produce
func (c *Channel) Close() {
	c.notifier.Close()
}
