package harness

import (
	"time"

	"github.com/Trinoooo/eggie_aio/consts"
	"github.com/Trinoooo/eggie_aio/errs"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// RWMode io模式
type RWMode string

const (
	RWRead      RWMode = "read"
	RWWrite     RWMode = "write"
	RWRandRead  RWMode = "randread"
	RWRandWrite RWMode = "randwrite"
	RWRandRW    RWMode = "randrw"
	RWTrim      RWMode = "trim"
)

func (m RWMode) valid() bool {
	switch m {
	case RWRead, RWWrite, RWRandRead, RWRandWrite, RWRandRW, RWTrim:
		return true
	}
	return false
}

func (m RWMode) random() bool {
	return m == RWRandRead || m == RWRandWrite || m == RWRandRW
}

// Options 作业选项
type Options struct {
	Name      string
	IoDepth   int
	BlockSize int64
	// FileName/Size 为空时由引擎按配置或默认值确定
	FileName string
	Size     int64
	RW       RWMode
	// NumberIos 为0时按 Size/BlockSize 计算；设置了 Runtime 时以时间为准
	NumberIos int64
	Runtime   time.Duration
	// BatchMin/BatchMax 每次收割的最小/最大事件数
	BatchMin int
	BatchMax int
}

func NewOptions() *Options {
	return &Options{
		Name:      "eggie_aio",
		IoDepth:   16,
		BlockSize: 4 * consts.KB,
		RW:        RWRandRead,
		BatchMin:  1,
	}
}

func OptionsFromConfig(config *viper.Viper) *Options {
	opts := NewOptions()
	if config.IsSet(consts.ConfIoDepth) {
		opts.IoDepth = config.GetInt(consts.ConfIoDepth)
	}
	if config.IsSet(consts.ConfBlockSize) {
		opts.BlockSize = config.GetInt64(consts.ConfBlockSize)
	}
	if config.IsSet(consts.ConfFilename) {
		opts.FileName = config.GetString(consts.ConfFilename)
	}
	if config.IsSet(consts.ConfSize) {
		opts.Size = config.GetInt64(consts.ConfSize)
	}
	if config.IsSet(consts.ConfRW) {
		opts.RW = RWMode(config.GetString(consts.ConfRW))
	}
	if config.IsSet(consts.ConfNumberIos) {
		opts.NumberIos = config.GetInt64(consts.ConfNumberIos)
	}
	if config.IsSet(consts.ConfRuntime) {
		opts.Runtime = config.GetDuration(consts.ConfRuntime)
	}
	if config.IsSet(consts.ConfBatchMin) {
		opts.BatchMin = config.GetInt(consts.ConfBatchMin)
	}
	if config.IsSet(consts.ConfBatchMax) {
		opts.BatchMax = config.GetInt(consts.ConfBatchMax)
	}
	return opts
}

func (opts *Options) check() error {
	invalid := func(param string, value interface{}) error {
		e := errs.NewInvalidParamErr()
		logger.Error(e.Error(), zap.String(consts.LogFieldParams, param), zap.Any(consts.LogFieldValue, value))
		return e
	}

	if opts.IoDepth <= 0 {
		return invalid(consts.ConfIoDepth, opts.IoDepth)
	}
	if opts.Size < 0 {
		return invalid(consts.ConfSize, opts.Size)
	}
	if opts.BlockSize <= 0 || (opts.Size > 0 && opts.BlockSize > opts.Size) {
		return invalid(consts.ConfBlockSize, opts.BlockSize)
	}
	if !opts.RW.valid() {
		return invalid(consts.ConfRW, opts.RW)
	}
	if opts.NumberIos < 0 {
		return invalid(consts.ConfNumberIos, opts.NumberIos)
	}
	if opts.BatchMin < 0 || (opts.BatchMax > 0 && opts.BatchMin > opts.BatchMax) {
		return invalid(consts.ConfBatchMin, opts.BatchMin)
	}
	return nil
}

// limit 本次作业要提交的请求数，0表示不限；size 为引擎确定后的目标大小
func (opts *Options) limit(size int64) int64 {
	if opts.NumberIos > 0 {
		return opts.NumberIos
	}
	if opts.Runtime > 0 {
		return 0
	}
	return size / opts.BlockSize
}
