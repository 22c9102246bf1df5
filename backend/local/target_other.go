//go:build !unix

package local

import "github.com/Trinoooo/eggie_aio/errs"

func newFileTarget(path string, size int64, perm uint32) (Target, error) {
	return nil, errs.NewOpenFileErr()
}
