package engine

import (
	"time"

	"github.com/Trinoooo/eggie_aio/consts"
)

type IoUFlag uint32

const (
	IoUFlagFlight IoUFlag = 1 << iota // 已提交且结果未被收割
)

// IoU 一个io请求，由harness的请求池持有
type IoU struct {
	Index     int
	Ddir      consts.OperatorType
	Offset    int64
	XferBuf   []byte
	Flags     IoUFlag
	StartTime time.Time // 提交时间

	// Error 为nil表示成功；Resid 为未完成的字节数
	Error error
	Resid int64

	// EngineData 引擎为每个请求挂载的记录
	EngineData *Slot
}

func (u *IoU) XferBufLen() int64 {
	return int64(len(u.XferBuf))
}

func (u *IoU) InFlight() bool {
	return u.Flags&IoUFlagFlight != 0
}

func (u *IoU) SetFlight() {
	u.Flags |= IoUFlagFlight
}

func (u *IoU) ClearFlight() {
	u.Flags &^= IoUFlagFlight
}
