// Package harness 是一个类似fio的作业驱动：
// 从请求池取请求、提交给引擎、收割完成事件并统计。
package harness

import (
	"context"
	"math/rand"
	"time"

	"github.com/Trinoooo/eggie_aio/consts"
	"github.com/Trinoooo/eggie_aio/engine"
	"github.com/Trinoooo/eggie_aio/errs"
	"github.com/Trinoooo/eggie_aio/logs"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var logger = logs.Named(zap.String(consts.Component, "harness"))

type Runner struct {
	opts    *Options
	job     *engine.Job
	eng     engine.Engine
	pool    *requestPool
	metrics *MetricsHelper
	rand    *rand.Rand

	// size 引擎确定的目标大小，limit 本次作业的请求数
	size  int64
	limit int64

	issued   int64
	inflight int
	stats    Stats
}

// NewRunner metrics 为nil时使用不推送的本地指标
func NewRunner(registry *engine.Registry, engineName string, config *viper.Viper, opts *Options, metrics *MetricsHelper) (*Runner, error) {
	if opts == nil {
		opts = NewOptions()
	}
	if err := opts.check(); err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = NewMetricsHelper(opts.Name, "")
	}

	pool := newRequestPool(opts.IoDepth, opts.BlockSize)
	job := &engine.Job{
		Name:     opts.Name,
		IoDepth:  opts.IoDepth,
		FileName: opts.FileName,
		FileSize: opts.Size,
		IoUAll:   pool.all,
		Config:   config,
	}

	eng, err := registry.Build(engineName, job)
	if err != nil {
		return nil, err
	}

	return &Runner{
		opts:    opts,
		job:     job,
		eng:     eng,
		pool:    pool,
		metrics: metrics,
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Run 执行作业。ctx结束后停止提交，已提交的请求全部收割后返回。
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	if err := r.eng.Setup(); err != nil {
		return nil, err
	}
	defer r.eng.Cleanup()

	r.size = r.job.FileSize
	if r.opts.BlockSize > r.size {
		e := errs.NewInvalidParamErr()
		logger.Error(e.Error(), zap.String(consts.LogFieldParams, consts.ConfBlockSize),
			zap.Int64(consts.LogFieldValue, r.opts.BlockSize), zap.Int64(consts.ConfSize, r.size))
		return nil, e
	}
	r.limit = r.opts.limit(r.size)

	for _, ioU := range r.pool.all {
		if err := r.eng.IoUInit(ioU); err != nil {
			return nil, errors.WithMessagef(err, "init io_u #%d", ioU.Index)
		}
	}
	defer func() {
		for _, ioU := range r.pool.all {
			r.eng.IoUFree(ioU)
		}
	}()

	if err := r.eng.Init(); err != nil {
		return nil, err
	}

	if r.opts.Runtime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Runtime)
		defer cancel()
	}

	logger.Info("job start",
		zap.String("job", r.opts.Name),
		zap.String(consts.Engine, r.eng.Name()),
		zap.String(consts.ConfRW, string(r.opts.RW)),
		zap.Int(consts.ConfIoDepth, r.opts.IoDepth),
		zap.Int64(consts.ConfBlockSize, r.opts.BlockSize),
		zap.Int64(consts.ConfSize, r.size),
		zap.Int64("limit", r.limit),
	)

	start := time.Now()
	for {
		for !r.exhausted(ctx) && r.pool.idle() > 0 {
			r.submit(r.pool.get())
		}

		if r.inflight == 0 {
			if r.exhausted(ctx) {
				break
			}
			continue
		}

		r.reap()
	}
	r.stats.Elapsed = time.Since(start)

	logger.Info("job done", zap.String("job", r.opts.Name), zap.String("stats", r.stats.String()))
	return &r.stats, nil
}

func (r *Runner) exhausted(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return r.limit > 0 && r.issued >= r.limit
}

func (r *Runner) submit(ioU *engine.IoU) {
	r.prep(ioU)
	r.issued++
	r.stats.Submitted++
	r.metrics.SubmittedCounter.Inc()

	ioU.StartTime = time.Now()
	ioU.SetFlight()
	if r.eng.Queue(ioU) == engine.QueueCompleted {
		ioU.ClearFlight()
		r.account(ioU)
		r.pool.put(ioU)
		return
	}
	r.inflight++
}

// reap 收割一批。min不超过在途数，否则引擎会一直等待。
func (r *Runner) reap() {
	min := r.opts.BatchMin
	if min > r.inflight {
		min = r.inflight
	}
	max := r.opts.BatchMax
	if max <= 0 || max > r.opts.IoDepth {
		max = r.opts.IoDepth
	}

	// 已提交的请求一定会完成，这里不受作业ctx约束
	n := r.eng.GetEvents(context.Background(), min, max)
	for i := 0; i < n; i++ {
		ioU := r.eng.Event(i)
		ioU.ClearFlight()
		r.inflight--
		r.account(ioU)
		r.pool.put(ioU)
	}
}

func (r *Runner) prep(ioU *engine.IoU) {
	bs := r.opts.BlockSize
	blocks := r.size / bs

	var offset int64
	if r.opts.RW.random() {
		offset = r.rand.Int63n(blocks) * bs
	} else {
		offset = (r.issued % blocks) * bs
	}

	switch r.opts.RW {
	case RWRead, RWRandRead:
		ioU.Ddir = consts.OperatorTypeRead
	case RWWrite, RWRandWrite:
		ioU.Ddir = consts.OperatorTypeWrite
	case RWRandRW:
		ioU.Ddir = consts.OperatorTypeRead
		if r.rand.Intn(2) == 0 {
			ioU.Ddir = consts.OperatorTypeWrite
		}
	case RWTrim:
		ioU.Ddir = consts.OperatorTypeTrim
	}

	if ioU.Ddir == consts.OperatorTypeWrite {
		fill := byte(r.issued)
		for i := range ioU.XferBuf {
			ioU.XferBuf[i] = fill
		}
	}

	ioU.Offset = offset
	ioU.Error = nil
	ioU.Resid = 0
}

func (r *Runner) account(ioU *engine.IoU) {
	r.stats.Ios++
	r.metrics.CompletedCounter.Inc()
	r.metrics.LatencyHistogram.Observe(time.Since(ioU.StartTime).Seconds())

	switch ioU.Ddir {
	case consts.OperatorTypeRead:
		r.stats.ReadIos++
	case consts.OperatorTypeWrite:
		r.stats.WriteIos++
	}

	if ioU.Error != nil {
		r.stats.Errors++
		r.metrics.ErroredCounter.Inc()
		if r.stats.FirstErr == nil {
			r.stats.FirstErr = ioU.Error
			logger.Warn("io_u failed",
				zap.Int("index", ioU.Index),
				zap.String("ddir", ioU.Ddir.String()),
				zap.Int64("offset", ioU.Offset),
				zap.Error(ioU.Error),
			)
		}
	}

	done := ioU.XferBufLen() - ioU.Resid
	r.stats.Bytes += done
	r.metrics.BytesCounter.Add(float64(done))
}
