// Package local 提供进程内的异步后端：
// 提交经由无界通道交给调度协程，再由gopool协程池执行读写并回调。
package local

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/Trinoooo/eggie_aio/backend"
	"github.com/Trinoooo/eggie_aio/consts"
	"github.com/Trinoooo/eggie_aio/errs"
	"github.com/Trinoooo/eggie_aio/logs"
	"github.com/bytedance/gopkg/util/gopool"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var logger = logs.Named(zap.String(consts.Component, "local"))

type completion struct {
	cb       backend.Callback
	ret      atomic.Int64
	done     chan struct{}
	released atomic.Bool
}

type Backend struct {
	opts *Options

	mu     sync.RWMutex
	opened bool
	target Target
	ch     *Channel
	pool   gopool.Pool

	dispatcher sync.WaitGroup
	inflight   sync.WaitGroup
}

// New 按配置构建，满足 backend.Builder
func New(config *viper.Viper) (backend.Backend, error) {
	return NewWithOptions(optionsFromConfig(config))
}

func NewWithOptions(opts *Options) (*Backend, error) {
	if opts == nil {
		opts = NewOptions()
	}

	if err := opts.check(); err != nil {
		logger.Error(err.Error(),
			zap.String(consts.ConfTarget, opts.target),
			zap.String(consts.ConfFilename, opts.filename),
			zap.Int64(consts.ConfSize, opts.size),
			zap.Int32(consts.ConfWorkers, opts.workers),
		)
		return nil, err
	}

	return &Backend{opts: opts}, nil
}

func (b *Backend) Open() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.opened {
		return nil
	}

	target, err := newTarget(b.opts)
	if err != nil {
		logger.Error("open target failed", zap.Error(err))
		return err
	}

	b.target = target
	b.ch = NewChannel()
	b.pool = gopool.NewPool("local-backend", b.opts.workers, gopool.NewConfig())
	b.pool.SetPanicHandler(func(_ context.Context, r interface{}) {
		logger.Error("backend worker panic", zap.Any(consts.LogFieldErr, r))
	})
	b.opened = true

	b.dispatcher.Add(1)
	go b.dispatch(b.ch, b.pool)

	logger.Info("backend opened", zap.String("target", target.String()), zap.Int64(consts.ConfSize, target.Size()))
	return nil
}

func (b *Backend) dispatch(ch *Channel, pool gopool.Pool) {
	defer b.dispatcher.Done()
	for {
		t := ch.Consume()
		if t == nil {
			return
		}
		pool.Go(func() {
			b.execute(t)
		})
	}
}

// Close 排空已受理的操作后关闭目标
func (b *Backend) Close() error {
	b.mu.Lock()
	if !b.opened {
		b.mu.Unlock()
		return nil
	}
	b.opened = false
	b.mu.Unlock()

	b.ch.Close()
	b.dispatcher.Wait()
	b.inflight.Wait()

	if err := b.target.Close(); err != nil {
		return errors.Wrap(err, "close target")
	}
	logger.Info("backend closed", zap.String("target", b.target.String()))
	return nil
}

func (b *Backend) CreateCompletion(cb backend.Callback) (backend.Completion, error) {
	if cb == nil {
		return nil, errs.NewInvalidParamErr()
	}
	return &completion{
		cb:   cb,
		done: make(chan struct{}),
	}, nil
}

func (b *Backend) AioRead(buf []byte, offset int64, c backend.Completion) error {
	return b.submit(consts.OperatorTypeRead, buf, offset, c)
}

func (b *Backend) AioWrite(buf []byte, offset int64, c backend.Completion) error {
	return b.submit(consts.OperatorTypeWrite, buf, offset, c)
}

// submit 同步拒绝时不会回调
func (b *Backend) submit(op consts.OperatorType, buf []byte, offset int64, c backend.Completion) error {
	cc, ok := c.(*completion)
	if !ok || cc == nil {
		return syscall.EINVAL
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.opened {
		return errs.NewBackendClosedErr().WithErr(syscall.ESHUTDOWN)
	}
	if offset < 0 || offset+int64(len(buf)) > b.target.Size() {
		return syscall.EINVAL
	}

	b.inflight.Add(1)
	b.ch.Produce(&task{
		op:     op,
		buf:    buf,
		offset: offset,
		c:      cc,
	})
	return nil
}

// execute 运行在协程池中，回调先于等待者被唤醒。
// 目标或回调panic时等待者同样会被唤醒。
func (b *Backend) execute(t *task) {
	defer b.inflight.Done()
	defer close(t.c.done)

	n, err := b.transfer(t)
	if err == nil && n != len(t.buf) {
		err = io.ErrUnexpectedEOF
	}

	if err != nil {
		t.c.ret.Store(-int64(backend.Errno(err)))
	} else {
		t.c.ret.Store(int64(n))
	}

	b.notify(t)
}

func (b *Backend) transfer(t *task) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.NewUnknownErr().WithErr(errors.Errorf("target panic: %v", r))
			logger.Error(err.Error(), zap.String("target", b.target.String()), zap.Int64("offset", t.offset))
		}
	}()

	switch t.op {
	case consts.OperatorTypeRead:
		n, err = b.target.ReadAt(t.buf, t.offset)
		if errors.Is(err, io.EOF) && n == len(t.buf) {
			err = nil
		}
	case consts.OperatorTypeWrite:
		n, err = b.target.WriteAt(t.buf, t.offset)
	default:
		err = syscall.EOPNOTSUPP
	}
	return n, err
}

func (b *Backend) notify(t *task) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("completion callback panic", zap.Any(consts.LogFieldErr, r))
		}
	}()
	t.c.cb(t.c)
}

func (b *Backend) Release(c backend.Completion) {
	cc := c.(*completion)
	if !cc.released.CompareAndSwap(false, true) {
		logger.Error("completion released twice")
	}
}

func (b *Backend) WaitForComplete(c backend.Completion) {
	<-c.(*completion).done
}

func (b *Backend) ReturnValue(c backend.Completion) int64 {
	return c.(*completion).ret.Load()
}

func (b *Backend) String() string {
	if b.opts.target == TargetFile {
		return fmt.Sprintf("local:%s:%s", b.opts.target, b.opts.filename)
	}
	return fmt.Sprintf("local:%s", b.opts.target)
}
