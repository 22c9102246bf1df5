package local

import (
	"github.com/Trinoooo/eggie_aio/consts"
	"github.com/Trinoooo/eggie_aio/errs"
	"github.com/spf13/viper"
)

const (
	TargetFile = "file"
	TargetMem  = "mem"
)

// Options 本地后端选项
type Options struct {
	target   string // target 后端目标类型
	filename string
	size     int64
	perm     uint32
	// workers 执行异步操作的协程上限
	workers int32
}

func NewOptions() *Options {
	return &Options{
		target:   TargetMem,
		filename: consts.DefaultFilename,
		size:     consts.DefaultFileSize,
		perm:     0660,
		workers:  16,
	}
}

func (opts *Options) SetTarget(target string) *Options {
	opts.target = target
	return opts
}

func (opts *Options) SetFilename(filename string) *Options {
	opts.filename = filename
	return opts
}

func (opts *Options) SetSize(size int64) *Options {
	opts.size = size
	return opts
}

func (opts *Options) SetWorkers(workers int32) *Options {
	opts.workers = workers
	return opts
}

func (opts *Options) check() error {
	if opts.target != TargetFile && opts.target != TargetMem {
		return errs.NewInvalidParamErr()
	}

	if opts.target == TargetFile && opts.filename == "" {
		return errs.NewInvalidParamErr()
	}

	if opts.size <= 0 || opts.workers <= 0 {
		return errs.NewInvalidParamErr()
	}

	return nil
}

func optionsFromConfig(config *viper.Viper) *Options {
	opts := NewOptions()
	if config.IsSet(consts.ConfTarget) {
		opts.SetTarget(config.GetString(consts.ConfTarget))
	}
	if config.IsSet(consts.ConfFilename) {
		opts.SetFilename(config.GetString(consts.ConfFilename))
	}
	if config.IsSet(consts.ConfSize) {
		opts.SetSize(config.GetInt64(consts.ConfSize))
	}
	if config.IsSet(consts.ConfWorkers) {
		opts.SetWorkers(config.GetInt32(consts.ConfWorkers))
	}
	return opts
}
