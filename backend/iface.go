package backend

import (
	"errors"
	"syscall"

	"github.com/spf13/viper"
)

// Completion 后端持有的不透明完成句柄
// 每次提交创建一个，并且只能被 Release 一次
type Completion interface{}

// Callback 操作完成时由后端自己的协程调用
type Callback func(c Completion)

// Backend 异步存储后端
type Backend interface {
	Open() error
	Close() error

	CreateCompletion(cb Callback) (Completion, error)
	AioRead(buf []byte, offset int64, c Completion) error
	AioWrite(buf []byte, offset int64, c Completion) error
	Release(c Completion)
	// WaitForComplete 阻塞直到句柄对应的操作完成且回调已返回
	WaitForComplete(c Completion)
	// ReturnValue 非负表示成功，负数为 -errno
	ReturnValue(c Completion) int64

	// String 后端描述，主要用于日志
	String() string
}

type Builder func(config *viper.Viper) (Backend, error)

// Errno 取出后端错误中的errno，取不到时按EIO处理
func Errno(err error) syscall.Errno {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return syscall.EIO
}
