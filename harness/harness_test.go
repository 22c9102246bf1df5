package harness

import (
	"context"
	"testing"
	"time"

	"github.com/Trinoooo/eggie_aio/backend/local"
	"github.com/Trinoooo/eggie_aio/consts"
	"github.com/Trinoooo/eggie_aio/engine"
	"github.com/Trinoooo/eggie_aio/engine/hdcs"
	"github.com/Trinoooo/eggie_aio/errs"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *engine.Registry {
	registry := engine.NewRegistry()
	require.Nil(t, hdcs.Register(registry, local.New))
	return registry
}

func memConfig(size int64) *viper.Viper {
	config := viper.New()
	config.Set(consts.ConfTarget, local.TargetMem)
	config.Set(consts.ConfSize, size)
	config.Set(consts.ConfWorkers, 4)
	return config
}

func testOptions(rw RWMode) *Options {
	opts := NewOptions()
	opts.Name = "test"
	opts.IoDepth = 8
	opts.BlockSize = 4 * consts.KB
	opts.Size = consts.MB
	opts.RW = rw
	return opts
}

func TestRunSequentialWrite(t *testing.T) {
	opts := testOptions(RWWrite)
	metrics := NewMetricsHelper("test", "")
	runner, err := NewRunner(newRegistry(t), hdcs.Name, memConfig(opts.Size), opts, metrics)
	require.Nil(t, err)

	stats, err := runner.Run(context.Background())
	require.Nil(t, err)
	assert.Equal(t, int64(256), stats.Ios)
	assert.Equal(t, int64(256), stats.WriteIos)
	assert.Zero(t, stats.Errors)
	assert.Equal(t, int64(consts.MB), stats.Bytes)
	assert.Nil(t, stats.FirstErr)
	assert.Zero(t, runner.inflight)

	assert.Equal(t, float64(256), testutil.ToFloat64(metrics.SubmittedCounter))
	assert.Equal(t, float64(256), testutil.ToFloat64(metrics.CompletedCounter))
	assert.Equal(t, float64(consts.MB), testutil.ToFloat64(metrics.BytesCounter))
	metrics.Close()
}

func TestRunBatchedRandomRead(t *testing.T) {
	opts := testOptions(RWRandRead)
	opts.NumberIos = 100
	opts.BatchMin = 4
	opts.BatchMax = 6
	runner, err := NewRunner(newRegistry(t), hdcs.Name, memConfig(opts.Size), opts, nil)
	require.Nil(t, err)

	stats, err := runner.Run(context.Background())
	require.Nil(t, err)
	assert.Equal(t, int64(100), stats.Ios)
	assert.Equal(t, int64(100), stats.ReadIos)
	assert.Zero(t, stats.Errors)
}

func TestRunBusyPoll(t *testing.T) {
	opts := testOptions(RWRandRW)
	opts.NumberIos = 200
	config := memConfig(opts.Size)
	config.Set(consts.ConfBusyPoll, true)
	runner, err := NewRunner(newRegistry(t), hdcs.Name, config, opts, nil)
	require.Nil(t, err)

	stats, err := runner.Run(context.Background())
	require.Nil(t, err)
	assert.Equal(t, int64(200), stats.Ios)
	assert.Equal(t, stats.Ios, stats.ReadIos+stats.WriteIos)
}

func TestRunTrimReportsErrors(t *testing.T) {
	opts := testOptions(RWTrim)
	opts.NumberIos = 10
	runner, err := NewRunner(newRegistry(t), hdcs.Name, memConfig(opts.Size), opts, nil)
	require.Nil(t, err)

	stats, err := runner.Run(context.Background())
	require.Nil(t, err)
	assert.Equal(t, int64(10), stats.Ios)
	assert.Equal(t, int64(10), stats.Errors)
	assert.Zero(t, stats.Bytes)
	assert.Equal(t, int64(errs.SubmissionErrCode), errs.GetCode(stats.FirstErr))
}

func TestRunRuntime(t *testing.T) {
	opts := testOptions(RWRandWrite)
	opts.Runtime = 50 * time.Millisecond
	runner, err := NewRunner(newRegistry(t), hdcs.Name, memConfig(opts.Size), opts, nil)
	require.Nil(t, err)

	stats, err := runner.Run(context.Background())
	require.Nil(t, err)
	assert.Greater(t, stats.Ios, int64(0))
	assert.Equal(t, stats.Submitted, stats.Ios)
	assert.GreaterOrEqual(t, stats.Elapsed, opts.Runtime)
}

func TestRunConnectionErr(t *testing.T) {
	opts := testOptions(RWRead)
	config := memConfig(opts.Size)
	config.Set(consts.ConfTarget, local.TargetFile)
	// 父路径是普通文件，无法创建目标
	config.Set(consts.ConfFilename, "/dev/null/hdcs")
	runner, err := NewRunner(newRegistry(t), hdcs.Name, config, opts, nil)
	require.Nil(t, err)

	_, err = runner.Run(context.Background())
	assert.Equal(t, int64(errs.ConnectionErrCode), errs.GetCode(err))
}

func TestRunSizeFromConfig(t *testing.T) {
	opts := testOptions(RWWrite)
	opts.Size = 0
	runner, err := NewRunner(newRegistry(t), hdcs.Name, memConfig(consts.MB), opts, nil)
	require.Nil(t, err)
	assert.Equal(t, int64(consts.MB), runner.job.FileSize)

	stats, err := runner.Run(context.Background())
	require.Nil(t, err)
	assert.Equal(t, int64(256), stats.Ios)
	assert.Zero(t, stats.Errors)
}

func TestRunSizeFromJob(t *testing.T) {
	opts := testOptions(RWWrite)
	opts.Size = 2 * consts.MB
	config := viper.New()
	config.Set(consts.ConfTarget, local.TargetMem)

	runner, err := NewRunner(newRegistry(t), hdcs.Name, config, opts, nil)
	require.Nil(t, err)

	// 后端目标按作业大小创建，整个范围都能写
	stats, err := runner.Run(context.Background())
	require.Nil(t, err)
	assert.Equal(t, int64(512), stats.Ios)
	assert.Zero(t, stats.Errors)
}

func TestRunSizeMismatch(t *testing.T) {
	opts := testOptions(RWWrite)
	opts.Size = 2 * consts.MB
	_, err := NewRunner(newRegistry(t), hdcs.Name, memConfig(consts.MB), opts, nil)
	assert.Equal(t, int64(errs.SetupErrCode), errs.GetCode(err))
}

func TestRunBlockLargerThanTarget(t *testing.T) {
	opts := testOptions(RWRead)
	opts.Size = 0
	opts.BlockSize = 2 * consts.MB
	runner, err := NewRunner(newRegistry(t), hdcs.Name, memConfig(consts.MB), opts, nil)
	require.Nil(t, err)

	_, err = runner.Run(context.Background())
	assert.Equal(t, int64(errs.InvalidParamErrCode), errs.GetCode(err))
}

func TestNewRunnerUnknownEngine(t *testing.T) {
	_, err := NewRunner(newRegistry(t), "rbd", memConfig(consts.MB), testOptions(RWRead), nil)
	assert.Equal(t, int64(errs.EngineNotFoundErrCode), errs.GetCode(err))
}

func TestOptionsCheck(t *testing.T) {
	cases := []func(opts *Options){
		func(opts *Options) { opts.IoDepth = 0 },
		func(opts *Options) { opts.BlockSize = 0 },
		func(opts *Options) { opts.BlockSize = opts.Size + 1 },
		func(opts *Options) { opts.Size = -1 },
		func(opts *Options) { opts.RW = "rw" },
		func(opts *Options) { opts.NumberIos = -1 },
		func(opts *Options) { opts.BatchMin, opts.BatchMax = 4, 2 },
	}
	for i, mutate := range cases {
		opts := testOptions(RWRead)
		mutate(opts)
		assert.Equal(t, int64(errs.InvalidParamErrCode), errs.GetCode(opts.check()), "case #%d", i)
	}
	assert.Nil(t, testOptions(RWRead).check())
}

func TestOptionsFromConfig(t *testing.T) {
	config := viper.New()
	config.Set(consts.ConfIoDepth, 32)
	config.Set(consts.ConfBlockSize, 8*consts.KB)
	config.Set(consts.ConfRW, "randwrite")
	config.Set(consts.ConfRuntime, "2s")
	config.Set(consts.ConfBatchMin, 2)

	opts := OptionsFromConfig(config)
	assert.Equal(t, 32, opts.IoDepth)
	assert.Equal(t, int64(8*consts.KB), opts.BlockSize)
	assert.Equal(t, RWRandWrite, opts.RW)
	assert.Equal(t, 2*time.Second, opts.Runtime)
	assert.Equal(t, 2, opts.BatchMin)
	assert.Zero(t, opts.limit(consts.MB))
}

func TestRequestPool(t *testing.T) {
	rp := newRequestPool(2, 512)
	assert.Equal(t, 2, rp.idle())

	a, b := rp.get(), rp.get()
	assert.Equal(t, 0, a.Index)
	assert.Equal(t, 1, b.Index)
	assert.Len(t, a.XferBuf, 512)
	assert.Nil(t, rp.get())

	rp.put(b)
	assert.Equal(t, b, rp.get())
}
