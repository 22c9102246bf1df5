package engine

import (
	"testing"

	"github.com/Trinoooo/eggie_aio/errs"
	"github.com/stretchr/testify/assert"
)

func nopBuilder(job *Job) (Engine, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	assert.Nil(t, registry.Register("b", nopBuilder))
	assert.Nil(t, registry.Register("a", nopBuilder))
	assert.Equal(t, []string{"a", "b"}, registry.Names())

	err := registry.Register("a", nopBuilder)
	assert.Equal(t, int64(errs.InvalidParamErrCode), errs.GetCode(err))

	err = registry.Register("", nopBuilder)
	assert.Equal(t, int64(errs.InvalidParamErrCode), errs.GetCode(err))

	err = registry.Register("c", nil)
	assert.Equal(t, int64(errs.InvalidParamErrCode), errs.GetCode(err))

	_, err = registry.Lookup("a")
	assert.Nil(t, err)

	registry.Unregister("a")
	_, err = registry.Lookup("a")
	assert.Equal(t, int64(errs.EngineNotFoundErrCode), errs.GetCode(err))

	_, err = registry.Build("missing", &Job{})
	assert.Equal(t, int64(errs.EngineNotFoundErrCode), errs.GetCode(err))
}
