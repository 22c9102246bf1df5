package hdcs

import (
	"github.com/Trinoooo/eggie_aio/consts"
	"github.com/spf13/viper"
)

// Options hdcs引擎选项
type Options struct {
	// busyPoll 为true时收割过程不阻塞等待，
	// 反复扫描直到满足最小事件数，用cpu换延迟
	busyPoll   bool
	clientName string // 仅用于日志
}

func NewOptions() *Options {
	return &Options{
		clientName: "admin",
	}
}

func (opts *Options) SetBusyPoll(busyPoll bool) *Options {
	opts.busyPoll = busyPoll
	return opts
}

func (opts *Options) SetClientName(clientName string) *Options {
	opts.clientName = clientName
	return opts
}

func (opts *Options) BusyPoll() bool {
	return opts.busyPoll
}

func optionsFromConfig(config *viper.Viper) *Options {
	opts := NewOptions().SetBusyPoll(config.GetBool(consts.ConfBusyPoll))
	if name := config.GetString(consts.ConfClientName); name != "" {
		opts.SetClientName(name)
	}
	return opts
}
