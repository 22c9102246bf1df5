package utils

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/Trinoooo/eggie_aio/errs"
)

// CheckAndCreateFile 父目录不存在时一并创建
func CheckAndCreateFile(filePath string, flag int, perm os.FileMode) (*os.File, error) {
	dir := filepath.Dir(filePath)
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err = os.MkdirAll(dir, 0770); err != nil {
			return nil, errs.NewMkdirErr().WithErr(err)
		}
	case errors.Is(err, os.ErrPermission):
		return nil, errs.NewFileNoPermissionErr().WithErr(err)
	case err != nil:
		return nil, errs.NewFileStatErr().WithErr(err)
	case !info.IsDir():
		return nil, errs.NewOpenFileErr().WithErr(&os.PathError{Op: "open", Path: dir, Err: os.ErrInvalid})
	}

	fd, err := os.OpenFile(filePath, flag, perm)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, errs.NewFileNoPermissionErr().WithErr(err)
		}
		return nil, errs.NewOpenFileErr().WithErr(err)
	}
	return fd, nil
}
