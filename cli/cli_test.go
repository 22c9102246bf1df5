package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Trinoooo/eggie_aio/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.Nil(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestWrapper() (*Wrapper, *bytes.Buffer) {
	out := &bytes.Buffer{}
	wrapper := NewWrapper()
	wrapper.out = out
	return wrapper, out
}

func TestRunWithConfigFile(t *testing.T) {
	path := writeConfig(t, "target: mem\nsize: 1048576\nworkers: 4\nrw: write\n")
	wrapper, out := newTestWrapper()

	err := wrapper.Run([]string{"eggie_aio", "--config", path, "--iodepth", "8", "--number-ios", "64", "run"})
	require.Nil(t, err)
	assert.Contains(t, out.String(), "ios=64 (read=0 write=64) errors=0 bytes=262144")
}

func TestRunFlagOverridesConfig(t *testing.T) {
	path := writeConfig(t, "target: mem\nsize: 1048576\nrw: write\n")
	wrapper, out := newTestWrapper()

	err := wrapper.Run([]string{"eggie_aio", "--config", path, "--rw", "trim", "--number-ios", "4", "run"})
	require.Nil(t, err)
	assert.Contains(t, out.String(), "first error:")
	assert.Contains(t, out.String(), "errors=4")
}

func TestRunInvalidFlag(t *testing.T) {
	wrapper, _ := newTestWrapper()
	err := wrapper.Run([]string{"eggie_aio", "--iodepth", "0", "run"})
	assert.Equal(t, int64(errs.InvalidParamErrCode), errs.GetCode(err))

	wrapper, _ = newTestWrapper()
	err = wrapper.Run([]string{"eggie_aio", "--target", "rbd", "run"})
	assert.Equal(t, int64(errs.InvalidParamErrCode), errs.GetCode(err))
}

func TestRunBadConfig(t *testing.T) {
	path := writeConfig(t, "target: [mem\n")
	wrapper, _ := newTestWrapper()

	err := wrapper.Run([]string{"eggie_aio", "--config", path, "run"})
	assert.Equal(t, int64(errs.ReadConfigErrCode), errs.GetCode(err))

	wrapper, _ = newTestWrapper()
	err = wrapper.Run([]string{"eggie_aio", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "run"})
	assert.Equal(t, int64(errs.ReadConfigErrCode), errs.GetCode(err))
}

func TestRunUnknownEngine(t *testing.T) {
	path := writeConfig(t, "target: mem\nsize: 1048576\n")
	wrapper, _ := newTestWrapper()

	err := wrapper.Run([]string{"eggie_aio", "--config", path, "--engine", "rbd", "run"})
	assert.Equal(t, int64(errs.EngineNotFoundErrCode), errs.GetCode(err))
}
