package hdcs

import (
	"syscall"

	"github.com/Trinoooo/eggie_aio/consts"
	"github.com/Trinoooo/eggie_aio/engine"
	"github.com/Trinoooo/eggie_aio/engine/hdcs/logs"
	"github.com/Trinoooo/eggie_aio/errs"
	"github.com/luci/go-render/render"
	"go.uber.org/zap"
)

// Queue 提交一个请求
// 返回 QueueCompleted 时请求没有进入飞行状态，错误已记录在请求上
func (e *Engine) Queue(ioU *engine.IoU) engine.QueueStatus {
	slot := ioU.EngineData
	slot.Reset()

	c, err := e.backend.CreateCompletion(slot.Callback)
	if err != nil {
		e.fail(ioU, errs.NewCreateCompletionErr().WithErr(err))
		return engine.QueueCompleted
	}
	// 回调可能在异步调用返回前就触发，句柄要先挂上
	slot.Completion = c

	switch ioU.Ddir {
	case consts.OperatorTypeWrite:
		err = e.backend.AioWrite(ioU.XferBuf, ioU.Offset, c)
	case consts.OperatorTypeRead:
		err = e.backend.AioRead(ioU.XferBuf, ioU.Offset, c)
	case consts.OperatorTypeTrim, consts.OperatorTypeSync:
		// 后端暂不支持discard/flush
		err = errs.NewUnsupportedOperatorTypeErr().WithErr(syscall.EOPNOTSUPP)
	default:
		logs.Warn("unhandled ddir", zap.Int64("ddir", int64(ioU.Ddir)))
		err = errs.NewUnsupportedOperatorTypeErr().WithErr(syscall.EINVAL)
	}

	if err != nil {
		e.backend.Release(c)
		slot.Completion = nil
		e.fail(ioU, err)
		return engine.QueueCompleted
	}

	return engine.QueueQueued
}

func (e *Engine) fail(ioU *engine.IoU, err error) {
	ioU.Error = errs.NewSubmissionErr().WithErr(err)
	ioU.Resid = ioU.XferBufLen()
	logs.Error(ioU.Error.Error(), zap.String(consts.LogFieldIoU, render.Render(describe(ioU))))
}

type ioUView struct {
	Index  int
	Ddir   string
	Offset int64
	Length int64
}

// describe 日志里不打印数据缓冲区
func describe(ioU *engine.IoU) ioUView {
	return ioUView{
		Index:  ioU.Index,
		Ddir:   ioU.Ddir.String(),
		Offset: ioU.Offset,
		Length: ioU.XferBufLen(),
	}
}
