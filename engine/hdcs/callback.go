package hdcs

import (
	"syscall"

	"github.com/Trinoooo/eggie_aio/backend"
	"github.com/Trinoooo/eggie_aio/engine"
)

// finishAiocb 运行在后端的协程里，不能阻塞
// 后端只给出整体成功或失败，失败时整个传输都算未完成
func (e *Engine) finishAiocb(c backend.Completion, slot *engine.Slot) {
	ioU := slot.IoU

	ret := e.backend.ReturnValue(c)
	if ret < 0 {
		ioU.Error = syscall.Errno(-ret)
		ioU.Resid = ioU.XferBufLen()
	} else {
		ioU.Error = nil
		ioU.Resid = 0
	}

	slot.Publish()
}
