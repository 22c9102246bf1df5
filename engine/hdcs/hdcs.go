// Package hdcs 在异步存储后端之上实现io引擎：
// 异步提交请求，并按调用方要求的最小/最大批量收割完成事件。
package hdcs

import (
	"github.com/Trinoooo/eggie_aio/backend"
	"github.com/Trinoooo/eggie_aio/consts"
	"github.com/Trinoooo/eggie_aio/engine"
	"github.com/Trinoooo/eggie_aio/engine/hdcs/logs"
	"github.com/Trinoooo/eggie_aio/errs"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const Name = "hdcs"

type Engine struct {
	job     *engine.Job
	opts    *Options
	backend backend.Backend

	connected bool
	// aioEvents 本次收割到的完成请求，按收割顺序
	// sortEvents 等待阶段暂存未完成请求
	aioEvents  []*engine.IoU
	sortEvents []*engine.IoU
}

func New(job *engine.Job, be backend.Backend, opts *Options) *Engine {
	if opts == nil {
		opts = NewOptions()
	}
	return &Engine{
		job:     job,
		opts:    opts,
		backend: be,
	}
}

// NewBuilder 后端会在构建引擎时一并构建，但直到 Init 才建立会话。
// 构建前先把作业的目标文件与后端配置对齐，后端按作业的大小创建目标。
func NewBuilder(backendBuilder backend.Builder) engine.Builder {
	return func(job *engine.Job) (engine.Engine, error) {
		if backendBuilder == nil || job == nil {
			e := errs.NewSetupErr().WithErr(errs.NewInvalidParamErr())
			logs.Error(e.Error(), zap.String(consts.LogFieldParams, "builder"))
			return nil, e
		}

		config := job.Config
		if config == nil {
			config = viper.New()
			job.Config = config
		}
		if err := bindTarget(job, config); err != nil {
			return nil, err
		}

		be, err := backendBuilder(config)
		if err != nil {
			e := errs.NewSetupErr().WithErr(err)
			logs.Error(e.Error())
			return nil, e
		}
		return New(job, be, optionsFromConfig(config)), nil
	}
}

// bindTarget 作业和配置都指定时必须一致，只有一方指定时互相补齐，都没有时用默认值
func bindTarget(job *engine.Job, config *viper.Viper) error {
	if config.IsSet(consts.ConfSize) {
		size := config.GetInt64(consts.ConfSize)
		if job.FileSize > 0 && job.FileSize != size {
			return targetMismatch(consts.ConfSize, job.FileSize, size)
		}
		job.FileSize = size
	}
	if job.FileSize <= 0 {
		job.FileSize = consts.DefaultFileSize
	}

	if config.IsSet(consts.ConfFilename) {
		filename := config.GetString(consts.ConfFilename)
		if job.FileName != "" && job.FileName != filename {
			return targetMismatch(consts.ConfFilename, job.FileName, filename)
		}
		job.FileName = filename
	}
	if job.FileName == "" {
		job.FileName = consts.DefaultFilename
	}

	config.Set(consts.ConfSize, job.FileSize)
	config.Set(consts.ConfFilename, job.FileName)
	return nil
}

func targetMismatch(param string, job, config interface{}) error {
	e := errs.NewSetupErr().WithErr(errs.NewInvalidParamErr())
	logs.Error(e.Error(), zap.String(consts.LogFieldParams, param), zap.Any("job", job), zap.Any("config", config))
	return e
}

func Register(registry *engine.Registry, backendBuilder backend.Builder) error {
	if backendBuilder == nil {
		e := errs.NewInvalidParamErr()
		logs.Error(e.Error(), zap.String(consts.LogFieldParams, "backend builder"))
		return e
	}
	return registry.Register(Name, NewBuilder(backendBuilder))
}

func (e *Engine) Name() string {
	return Name
}

func (e *Engine) Setup() error {
	if e.aioEvents != nil {
		return nil
	}

	if e.job == nil || e.job.IoDepth <= 0 {
		err := errs.NewSetupErr().WithErr(errs.NewInvalidParamErr())
		fields := []zap.Field{zap.String(consts.LogFieldParams, "iodepth")}
		if e.job != nil {
			fields = append(fields, zap.Int(consts.LogFieldValue, e.job.IoDepth))
		}
		logs.Error(err.Error(), fields...)
		return err
	}

	e.aioEvents = make([]*engine.IoU, e.job.IoDepth)
	e.sortEvents = make([]*engine.IoU, 0, e.job.IoDepth)

	// 后端拿不到目标容量，假装只有一个固定大小的文件
	if e.job.FileName == "" {
		e.job.FileName = consts.DefaultFilename
	}
	if e.job.FileSize <= 0 {
		e.job.FileSize = consts.DefaultFileSize
	}

	logs.Info("setup",
		zap.Int(consts.ConfIoDepth, e.job.IoDepth),
		zap.String(consts.ConfFilename, e.job.FileName),
		zap.Int64(consts.ConfSize, e.job.FileSize),
		zap.Bool(consts.ConfBusyPoll, e.opts.busyPoll),
	)
	return nil
}

func (e *Engine) Init() error {
	if e.connected {
		return nil
	}

	if err := e.backend.Open(); err != nil {
		ce := errs.NewConnectionErr().WithErr(err)
		logs.Error(ce.Error(), zap.String("backend", e.backend.String()), zap.String(consts.ConfClientName, e.opts.clientName))
		return ce
	}

	e.connected = true
	logs.Info("connected", zap.String("backend", e.backend.String()), zap.String(consts.ConfClientName, e.opts.clientName))
	return nil
}

func (e *Engine) Cleanup() {
	e.disconnect()
	e.aioEvents = nil
	e.sortEvents = nil
}

func (e *Engine) disconnect() {
	if !e.connected {
		return
	}

	e.connected = false
	if err := e.backend.Close(); err != nil {
		logs.Warn(errors.Wrap(err, "close backend").Error(), zap.String("backend", e.backend.String()))
	}
}

func (e *Engine) IoUInit(ioU *engine.IoU) error {
	if ioU == nil {
		return errs.NewInvalidParamErr()
	}

	slot := engine.NewSlot(ioU)
	slot.Callback = func(c backend.Completion) {
		e.finishAiocb(c, slot)
	}
	ioU.EngineData = slot
	return nil
}

func (e *Engine) IoUFree(ioU *engine.IoU) {
	slot := ioU.EngineData
	if slot == nil {
		return
	}

	if slot.Completion != nil {
		logs.Warn("free io_u with unreleased completion", zap.Int("index", ioU.Index))
	}
	ioU.EngineData = nil
}
