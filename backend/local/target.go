package local

import (
	"io"
	"sync"

	"github.com/Trinoooo/eggie_aio/utils"
)

// Target 块寻址的存储目标
type Target interface {
	io.ReaderAt
	io.WriterAt
	Size() int64
	Close() error
	// String 目标描述，主要用于日志
	String() string
}

func newTarget(opts *Options) (Target, error) {
	switch opts.target {
	case TargetFile:
		ft, err := newFileTarget(opts.filename, opts.size, opts.perm)
		if err != nil {
			return nil, err
		}
		return ft, nil
	default:
		return newMemTarget(opts.size), nil
	}
}

// memTarget 内存目标
type memTarget struct {
	mu   sync.RWMutex
	data []byte
}

func newMemTarget(size int64) *memTarget {
	return &memTarget{
		data: make([]byte, size),
	}
}

func (mt *memTarget) ReadAt(p []byte, off int64) (n int, err error) {
	utils.WrapRLock(&mt.mu, func() {
		if off >= int64(len(mt.data)) {
			err = io.EOF
			return
		}
		n = copy(p, mt.data[off:])
		if n < len(p) {
			err = io.EOF
		}
	})
	return
}

func (mt *memTarget) WriteAt(p []byte, off int64) (n int, err error) {
	utils.WrapLock(&mt.mu, func() {
		if off >= int64(len(mt.data)) {
			err = io.ErrShortWrite
			return
		}
		n = copy(mt.data[off:], p)
		if n < len(p) {
			err = io.ErrShortWrite
		}
	})
	return
}

func (mt *memTarget) Size() int64 {
	return int64(len(mt.data))
}

func (mt *memTarget) Close() error {
	return nil
}

func (mt *memTarget) String() string {
	return "mem"
}
