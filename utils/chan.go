package utils

import "sync/atomic"

// UnboundChan 无界信号通道：In 永不阻塞，Out 每次消费一个信号。
// Close 之后积压的信号仍会被全部消费，之后 Out 返回false。
type UnboundChan struct {
	in, out chan struct{}
	pending atomic.Int64
}

func NewUnboundChan() *UnboundChan {
	uc := &UnboundChan{
		in:  make(chan struct{}),
		out: make(chan struct{}),
	}
	go uc.loop()
	return uc
}

func (uc *UnboundChan) loop() {
	defer close(uc.out)

	in := uc.in
	for in != nil || uc.pending.Load() > 0 {
		// 没有积压时不参与发送
		var out chan struct{}
		if uc.pending.Load() > 0 {
			out = uc.out
		}

		select {
		case _, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			uc.pending.Add(1)
		case out <- struct{}{}:
			uc.pending.Add(-1)
		}
	}
}

func (uc *UnboundChan) In() {
	uc.in <- struct{}{}
}

func (uc *UnboundChan) Out() bool {
	_, ok := <-uc.out
	return ok
}

// Len 尚未被消费的信号数
func (uc *UnboundChan) Len() int64 {
	return uc.pending.Load()
}

func (uc *UnboundChan) Close() {
	close(uc.in)
}
