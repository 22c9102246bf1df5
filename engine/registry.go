package engine

import (
	"sort"
	"sync"

	"github.com/Trinoooo/eggie_aio/consts"
	"github.com/Trinoooo/eggie_aio/errs"
	"github.com/Trinoooo/eggie_aio/logs"
	"go.uber.org/zap"
)

// Registry 引擎注册表，启动时显式创建并传递
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]Builder),
	}
}

func (r *Registry) Register(name string, builder Builder) error {
	if name == "" || builder == nil {
		e := errs.NewInvalidParamErr()
		logs.Logger.Error(e.Error(), zap.String(consts.LogFieldParams, "name"), zap.String(consts.LogFieldValue, name))
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exist := r.builders[name]; exist {
		e := errs.NewInvalidParamErr()
		logs.Logger.Error("engine already registered", zap.String(consts.Engine, name))
		return e
	}

	r.builders[name] = builder
	return nil
}

func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.builders, name)
}

func (r *Registry) Lookup(name string) (Builder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	builder, exist := r.builders[name]
	if !exist {
		return nil, errs.NewEngineNotFoundErr()
	}
	return builder, nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build 按名称构建引擎
func (r *Registry) Build(name string, job *Job) (Engine, error) {
	builder, err := r.Lookup(name)
	if err != nil {
		logs.Logger.Error(err.Error(), zap.String(consts.Engine, name))
		return nil, err
	}
	return builder(job)
}
