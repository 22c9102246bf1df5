package local

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"testing"

	"github.com/Trinoooo/eggie_aio/backend"
	"github.com/Trinoooo/eggie_aio/consts"
	"github.com/Trinoooo/eggie_aio/errs"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBackend(t *testing.T, opts *Options) *Backend {
	b, err := NewWithOptions(opts)
	require.Nil(t, err)
	require.Nil(t, b.Open())
	t.Cleanup(func() {
		assert.Nil(t, b.Close())
	})
	return b
}

// roundTrip 写入后读回，全程通过完成句柄等待
func roundTrip(t *testing.T, b *Backend) {
	var callbacks atomic.Int32
	cb := func(c backend.Completion) {
		callbacks.Add(1)
	}

	data := bytes.Repeat([]byte{0xab}, 4*consts.KB)
	wc, err := b.CreateCompletion(cb)
	require.Nil(t, err)
	require.Nil(t, b.AioWrite(data, 8*consts.KB, wc))
	b.WaitForComplete(wc)
	assert.Equal(t, int64(len(data)), b.ReturnValue(wc))
	b.Release(wc)

	buf := make([]byte, len(data))
	rc, err := b.CreateCompletion(cb)
	require.Nil(t, err)
	require.Nil(t, b.AioRead(buf, 8*consts.KB, rc))
	b.WaitForComplete(rc)
	assert.Equal(t, int64(len(buf)), b.ReturnValue(rc))
	b.Release(rc)

	assert.Equal(t, data, buf)
	assert.Equal(t, int32(2), callbacks.Load())
}

func TestMemRoundTrip(t *testing.T) {
	b := openBackend(t, NewOptions().SetSize(consts.MB))
	roundTrip(t, b)
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "target", "hdcs")
	b := openBackend(t, NewOptions().SetTarget(TargetFile).SetFilename(path).SetSize(consts.MB).SetWorkers(2))
	roundTrip(t, b)
	assert.Contains(t, b.String(), path)
}

func TestSubmitRejected(t *testing.T) {
	b, err := NewWithOptions(NewOptions().SetSize(consts.KB * 8))
	require.Nil(t, err)

	nop := func(c backend.Completion) {}
	c, err := b.CreateCompletion(nop)
	require.Nil(t, err)

	// 未打开
	err = b.AioRead(make([]byte, 512), 0, c)
	assert.ErrorIs(t, err, syscall.ESHUTDOWN)
	assert.Equal(t, int64(errs.BackendClosedErrCode), errs.GetCode(err))

	require.Nil(t, b.Open())
	// 越界
	assert.ErrorIs(t, b.AioWrite(make([]byte, 512), consts.KB*8, c), syscall.EINVAL)
	assert.ErrorIs(t, b.AioWrite(make([]byte, 512), -1, c), syscall.EINVAL)
	// 非本后端的句柄
	assert.ErrorIs(t, b.AioWrite(make([]byte, 512), 0, struct{}{}), syscall.EINVAL)

	require.Nil(t, b.Close())
	require.Nil(t, b.Close())
	assert.ErrorIs(t, b.AioRead(make([]byte, 512), 0, c), syscall.ESHUTDOWN)
}

func TestCloseDrainsInflight(t *testing.T) {
	b, err := NewWithOptions(NewOptions().SetSize(consts.MB).SetWorkers(1))
	require.Nil(t, err)
	require.Nil(t, b.Open())

	var callbacks atomic.Int32
	completions := make([]backend.Completion, 0, 64)
	for i := 0; i < 64; i++ {
		c, err := b.CreateCompletion(func(c backend.Completion) {
			callbacks.Add(1)
		})
		require.Nil(t, err)
		require.Nil(t, b.AioWrite(make([]byte, 512), int64(i)*512, c))
		completions = append(completions, c)
	}

	require.Nil(t, b.Close())
	assert.Equal(t, int32(64), callbacks.Load())
	for _, c := range completions {
		assert.Equal(t, int64(512), b.ReturnValue(c))
		b.Release(c)
	}
}

func TestCreateCompletionNilCallback(t *testing.T) {
	b, err := NewWithOptions(nil)
	require.Nil(t, err)
	_, err = b.CreateCompletion(nil)
	assert.Equal(t, int64(errs.InvalidParamErrCode), errs.GetCode(err))
}

func TestOptionsCheck(t *testing.T) {
	_, err := NewWithOptions(NewOptions().SetTarget("rbd"))
	assert.Equal(t, int64(errs.InvalidParamErrCode), errs.GetCode(err))

	_, err = NewWithOptions(NewOptions().SetSize(0))
	assert.Equal(t, int64(errs.InvalidParamErrCode), errs.GetCode(err))

	_, err = NewWithOptions(NewOptions().SetWorkers(0))
	assert.Equal(t, int64(errs.InvalidParamErrCode), errs.GetCode(err))

	_, err = NewWithOptions(NewOptions().SetTarget(TargetFile).SetFilename(""))
	assert.Equal(t, int64(errs.InvalidParamErrCode), errs.GetCode(err))
}

func TestNewFromConfig(t *testing.T) {
	config := viper.New()
	config.Set(consts.ConfTarget, TargetMem)
	config.Set(consts.ConfSize, consts.MB)
	config.Set(consts.ConfWorkers, 4)

	be, err := New(config)
	require.Nil(t, err)
	b := be.(*Backend)
	assert.Equal(t, int64(consts.MB), b.opts.size)
	assert.Equal(t, int32(4), b.opts.workers)
	assert.Equal(t, "local:mem", b.String())
}

func TestFileShortReadFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hdcs")
	b := openBackend(t, NewOptions().SetTarget(TargetFile).SetFilename(path).SetSize(8*consts.KB).SetWorkers(1))

	// 目标被外部截短，读到一半遇到文件尾
	require.Nil(t, os.Truncate(path, 4*consts.KB))

	buf := make([]byte, 4*consts.KB)
	n, err := b.target.ReadAt(buf, 2*consts.KB)
	assert.Equal(t, 2*consts.KB, n)
	assert.ErrorIs(t, err, io.EOF)

	c, err := b.CreateCompletion(func(c backend.Completion) {})
	require.Nil(t, err)
	require.Nil(t, b.AioRead(buf, 2*consts.KB, c))
	b.WaitForComplete(c)
	assert.Equal(t, -int64(syscall.EIO), b.ReturnValue(c))
	b.Release(c)
}

type panicTarget struct {
	Target
}

func (pt *panicTarget) ReadAt(p []byte, off int64) (int, error) {
	panic("broken target")
}

func TestTargetPanicWakesWaiter(t *testing.T) {
	b := openBackend(t, NewOptions().SetSize(consts.MB).SetWorkers(1))
	b.mu.Lock()
	b.target = &panicTarget{Target: b.target}
	b.mu.Unlock()

	var callbacks atomic.Int32
	c, err := b.CreateCompletion(func(c backend.Completion) {
		callbacks.Add(1)
	})
	require.Nil(t, err)
	require.Nil(t, b.AioRead(make([]byte, 512), 0, c))

	b.WaitForComplete(c)
	assert.Equal(t, -int64(syscall.EIO), b.ReturnValue(c))
	assert.Equal(t, int32(1), callbacks.Load())
	b.Release(c)
}

func TestCallbackPanicWakesWaiter(t *testing.T) {
	b := openBackend(t, NewOptions().SetSize(consts.MB).SetWorkers(1))

	c, err := b.CreateCompletion(func(c backend.Completion) {
		panic("broken callback")
	})
	require.Nil(t, err)
	require.Nil(t, b.AioWrite(make([]byte, 512), 0, c))

	b.WaitForComplete(c)
	assert.Equal(t, int64(512), b.ReturnValue(c))
	b.Release(c)
}
