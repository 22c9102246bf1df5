//go:build unix

package local

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/Trinoooo/eggie_aio/errs"
	"github.com/Trinoooo/eggie_aio/utils"
	"golang.org/x/sys/unix"
)

// fileTarget 文件目标，使用pread/pwrite定位读写
type fileTarget struct {
	fd   *os.File
	raw  int
	size int64
}

func newFileTarget(path string, size int64, perm uint32) (*fileTarget, error) {
	fd, err := utils.CheckAndCreateFile(path, syscall.O_CREAT|syscall.O_RDWR, os.FileMode(perm))
	if err != nil {
		return nil, err
	}

	stat, err := fd.Stat()
	if err != nil {
		_ = fd.Close()
		return nil, errs.NewFileStatErr().WithErr(err)
	}

	if stat.Size() < size {
		if err = fd.Truncate(size); err != nil {
			_ = fd.Close()
			return nil, errs.NewTruncateFileErr().WithErr(err)
		}
	}

	return &fileTarget{
		fd:   fd,
		raw:  int(fd.Fd()),
		size: size,
	}, nil
}

// ReadAt 读不满时返回已读字节数和错误，遇到文件尾为 io.EOF
func (ft *fileTarget) ReadAt(p []byte, off int64) (int, error) {
	done := 0
	for done < len(p) {
		n, err := unix.Pread(ft.raw, p[done:], off+int64(done))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return done, errs.NewReadFileErr().WithErr(err)
		}
		if n == 0 {
			return done, io.EOF
		}
		done += n
	}
	return done, nil
}

func (ft *fileTarget) WriteAt(p []byte, off int64) (int, error) {
	done := 0
	for done < len(p) {
		n, err := unix.Pwrite(ft.raw, p[done:], off+int64(done))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return done, errs.NewWriteFileErr().WithErr(err)
		}
		if n == 0 {
			return done, io.ErrShortWrite
		}
		done += n
	}
	return done, nil
}

func (ft *fileTarget) Size() int64 {
	return ft.size
}

func (ft *fileTarget) Close() error {
	if err := ft.fd.Close(); err != nil {
		return errs.NewCloseFileErr().WithErr(err)
	}
	return nil
}

func (ft *fileTarget) String() string {
	return fmt.Sprintf("file(%s)", ft.fd.Name())
}
