package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Trinoooo/eggie_aio/backend/local"
	"github.com/Trinoooo/eggie_aio/consts"
	"github.com/Trinoooo/eggie_aio/engine"
	"github.com/Trinoooo/eggie_aio/engine/hdcs"
	"github.com/Trinoooo/eggie_aio/errs"
	"github.com/Trinoooo/eggie_aio/harness"
	"github.com/Trinoooo/eggie_aio/interactive"
	"github.com/Trinoooo/eggie_aio/logs"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var logger = logs.Named(zap.String(consts.Component, "cli"))

func invalid(param string, value interface{}) error {
	e := errs.NewInvalidParamErr()
	logger.Error(e.Error(), zap.String(consts.LogFieldParams, param), zap.Any(consts.LogFieldValue, value))
	return e
}

var (
	flagConfig = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "config file path, default is ~/eggie_aio/config/config.yaml.",
	}
	flagEngine = &cli.StringFlag{
		Name:    "engine",
		Aliases: []string{"e"},
		Value:   hdcs.Name,
		Usage:   "io engine name.",
		EnvVars: []string{consts.EnvEngine},
	}
	flagBusyPoll = &cli.BoolFlag{
		Name:    "busy-poll",
		Usage:   "set this flag to spin instead of blocking while reaping.",
		EnvVars: []string{consts.EnvBusyPoll},
	}
	flagTarget = &cli.StringFlag{
		Name:    "target",
		Aliases: []string{"t"},
		Value:   local.TargetMem,
		Usage:   "backend target, file or mem are available.",
		Action: func(c *cli.Context, target string) error {
			if target != local.TargetFile && target != local.TargetMem {
				return invalid("target", target)
			}
			return nil
		},
		EnvVars: []string{consts.EnvTarget},
	}
	flagFilename = &cli.StringFlag{
		Name:    "filename",
		Aliases: []string{"f"},
		Value:   consts.DefaultFilename,
		Usage:   "target file path.",
		EnvVars: []string{consts.EnvFilename},
	}
	flagSize = &cli.Int64Flag{
		Name:    "size",
		Aliases: []string{"s"},
		Value:   consts.DefaultFileSize,
		Usage:   "target size in bytes, 0 < size are available.",
		Action: func(c *cli.Context, size int64) error {
			if size <= 0 {
				return invalid("size", size)
			}
			return nil
		},
	}
	flagWorkers = &cli.IntFlag{
		Name:  "workers",
		Value: 16,
		Usage: "backend worker number, 0 < number <= 1024 are available.",
		Action: func(c *cli.Context, number int) error {
			if number <= 0 || number > 1024 {
				return invalid("workers", number)
			}
			return nil
		},
	}
	flagIoDepth = &cli.IntFlag{
		Name:    "iodepth",
		Aliases: []string{"d"},
		Value:   16,
		Usage:   "max in-flight requests, 0 < iodepth <= 65536 are available.",
		Action: func(c *cli.Context, depth int) error {
			if depth <= 0 || depth > 65536 {
				return invalid("iodepth", depth)
			}
			return nil
		},
	}
	flagBlockSize = &cli.Int64Flag{
		Name:    "bs",
		Aliases: []string{"b"},
		Value:   consts.KB * 4,
		Usage:   "block size per request, 0 < bs <= 16MB are available.",
		Action: func(c *cli.Context, bs int64) error {
			if bs <= 0 || bs > 16*consts.MB {
				return invalid("bs", bs)
			}
			return nil
		},
	}
	flagRW = &cli.StringFlag{
		Name:  "rw",
		Value: string(harness.RWRandRead),
		Usage: "io pattern: read, write, randread, randwrite, randrw, trim.",
	}
	flagNumberIos = &cli.Int64Flag{
		Name:    "number-ios",
		Aliases: []string{"n"},
		Usage:   "requests to submit, 0 means size/bs.",
		Action: func(c *cli.Context, number int64) error {
			if number < 0 {
				return invalid("number-ios", number)
			}
			return nil
		},
	}
	flagRuntime = &cli.DurationFlag{
		Name:  "runtime",
		Usage: "stop submitting after this duration.",
	}
	flagBatchMin = &cli.IntFlag{
		Name:  "batch-min",
		Value: 1,
		Usage: "min events per reap.",
	}
	flagBatchMax = &cli.IntFlag{
		Name:  "batch-max",
		Usage: "max events per reap, 0 means iodepth.",
	}
	flagPushGateway = &cli.StringFlag{
		Name:    "push-gateway",
		Usage:   "prometheus pushgateway url.",
		EnvVars: []string{consts.EnvPushGateway},
	}
)

// flagToConf 命令行参数到配置项的映射，参数优先于配置文件
var flagToConf = map[string]string{
	"engine":       consts.ConfEngine,
	"busy-poll":    consts.ConfBusyPoll,
	"target":       consts.ConfTarget,
	"filename":     consts.ConfFilename,
	"size":         consts.ConfSize,
	"workers":      consts.ConfWorkers,
	"iodepth":      consts.ConfIoDepth,
	"bs":           consts.ConfBlockSize,
	"rw":           consts.ConfRW,
	"number-ios":   consts.ConfNumberIos,
	"runtime":      consts.ConfRuntime,
	"batch-min":    consts.ConfBatchMin,
	"batch-max":    consts.ConfBatchMax,
	"push-gateway": consts.ConfPushGateway,
}

type Wrapper struct {
	app *cli.App
	out io.Writer
}

func NewWrapper() *Wrapper {
	wrapper := &Wrapper{
		app: &cli.App{
			Name:    "eggie_aio",
			Usage:   "a fio style async io engine over hdcs backends",
			Version: "0.0.1.261019_alpha",
		},
		out: os.Stdout,
	}
	wrapper.modifyDefaultHelp()
	wrapper.withFlags()
	wrapper.withCommands()
	wrapper.withAuthor()
	return wrapper
}

func (wrapper *Wrapper) Run(args []string) error {
	return wrapper.app.Run(args)
}

func (wrapper *Wrapper) modifyDefaultHelp() {
	cli.HelpFlag = &cli.BoolFlag{
		Name: "help",
	}
	cli.AppHelpTemplate = consts.HelpTemplate
}

func (wrapper *Wrapper) withFlags() {
	wrapper.app.Flags = []cli.Flag{
		flagConfig,
		flagEngine,
		flagBusyPoll,
		flagTarget,
		flagFilename,
		flagSize,
		flagWorkers,
		flagIoDepth,
		flagBlockSize,
		flagRW,
		flagNumberIos,
		flagRuntime,
		flagBatchMin,
		flagBatchMax,
		flagPushGateway,
	}
}

func (wrapper *Wrapper) withCommands() {
	wrapper.app.Commands = []*cli.Command{
		{
			Name:   "run",
			Usage:  "run a job and print its stats",
			Action: wrapper.runAction,
		},
		{
			Name:   "shell",
			Usage:  "submit single requests interactively",
			Action: wrapper.shellAction,
		},
	}
}

func (wrapper *Wrapper) withAuthor() {
	wrapper.app.Authors = []*cli.Author{
		{
			Name:  "Trino",
			Email: "sujun.trinoooo@gmail.com",
		},
	}
}

// loadConfig 配置文件不存在时只使用命令行参数
func loadConfig(c *cli.Context) (*viper.Viper, error) {
	config := viper.New()
	config.SetEnvPrefix("EGGIE_AIO")
	config.AutomaticEnv()

	if path := c.String(flagConfig.Name); path != "" {
		config.SetConfigFile(path)
	} else {
		config.SetConfigName("config")
		config.SetConfigType("yaml")
		config.AddConfigPath(consts.DefaultConfigPath)
	}

	if err := config.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			e := errs.NewReadConfigErr().WithErr(err)
			logger.Error(e.Error())
			return nil, e
		}
	}

	for name, key := range flagToConf {
		if c.IsSet(name) || !config.IsSet(key) {
			config.Set(key, c.Value(name))
		}
	}
	return config, nil
}

func newRegistry() (*engine.Registry, error) {
	registry := engine.NewRegistry()
	if err := hdcs.Register(registry, local.New); err != nil {
		return nil, err
	}
	return registry, nil
}

// signalContext 收到退出信号后取消ctx
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// 缓冲通道，避免信号先于select到达时被丢弃
		sig := make(chan os.Signal, 5)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sig)
		select {
		case <-sig:
			logger.Info("shutdown...")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func (wrapper *Wrapper) runAction(c *cli.Context) error {
	config, err := loadConfig(c)
	if err != nil {
		return err
	}
	registry, err := newRegistry()
	if err != nil {
		return err
	}

	opts := harness.OptionsFromConfig(config)
	metrics := harness.NewMetricsHelper(opts.Name, config.GetString(consts.ConfPushGateway))
	defer metrics.Close()

	runner, err := harness.NewRunner(registry, config.GetString(consts.ConfEngine), config, opts, metrics)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	stats, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	if stats.FirstErr != nil {
		_, _ = fmt.Fprintf(wrapper.out, "first error: %v\n", stats.FirstErr)
	}
	_, _ = fmt.Fprintln(wrapper.out, stats.String())
	return nil
}

func (wrapper *Wrapper) shellAction(c *cli.Context) error {
	config, err := loadConfig(c)
	if err != nil {
		return err
	}
	registry, err := newRegistry()
	if err != nil {
		return err
	}

	job := &engine.Job{
		Name:     "shell",
		IoDepth:  1,
		FileName: config.GetString(consts.ConfFilename),
		FileSize: config.GetInt64(consts.ConfSize),
		Config:   config,
	}
	eng, err := registry.Build(config.GetString(consts.ConfEngine), job)
	if err != nil {
		return err
	}

	shell := interactive.NewShell(eng, job)
	if err := shell.Start(); err != nil {
		return err
	}
	defer shell.Close()

	ctx, cancel := signalContext()
	defer cancel()
	return shell.Run(ctx, fmt.Sprintf("%s> ", eng.Name()))
}
