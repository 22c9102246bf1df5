package harness

import (
	"github.com/Trinoooo/eggie_aio/engine"
	"github.com/gammazero/deque"
)

// requestPool 固定数量的请求，空闲的在free里排队
type requestPool struct {
	all  []*engine.IoU
	free deque.Deque[*engine.IoU]
}

func newRequestPool(depth int, blockSize int64) *requestPool {
	rp := &requestPool{
		all: make([]*engine.IoU, 0, depth),
	}
	for i := 0; i < depth; i++ {
		ioU := &engine.IoU{
			Index:   i,
			XferBuf: make([]byte, blockSize),
		}
		rp.all = append(rp.all, ioU)
		rp.free.PushBack(ioU)
	}
	return rp
}

func (rp *requestPool) get() *engine.IoU {
	if rp.free.Len() == 0 {
		return nil
	}
	return rp.free.PopFront()
}

func (rp *requestPool) put(ioU *engine.IoU) {
	rp.free.PushBack(ioU)
}

func (rp *requestPool) idle() int {
	return rp.free.Len()
}
