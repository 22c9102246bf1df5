package engine

import (
	"context"

	"github.com/spf13/viper"
)

type QueueStatus int

const (
	QueueQueued    QueueStatus = iota // 已进入飞行状态
	QueueCompleted                    // 同步完成，通常是提交失败
)

func (qs QueueStatus) String() string {
	switch qs {
	case QueueQueued:
		return "queued"
	case QueueCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Job 引擎运行所需的作业信息
type Job struct {
	Name     string
	IoDepth  int
	FileName string
	FileSize int64
	// IoUAll harness请求池内全部请求，引擎只读
	IoUAll []*IoU
	Config *viper.Viper
}

// Engine io引擎
// Queue 与 GetEvents 只允许被同一个协程调用
type Engine interface {
	Name() string
	Setup() error
	Init() error
	Queue(ioU *IoU) QueueStatus
	// GetEvents 收割至少min个、至多max个完成事件，ctx结束时返回已收割数
	GetEvents(ctx context.Context, min, max int) int
	Event(i int) *IoU
	Cleanup()

	IoUInit(ioU *IoU) error
	IoUFree(ioU *IoU)
}

type Builder func(job *Job) (Engine, error)
