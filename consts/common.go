package consts

import (
	"fmt"
	"github.com/mitchellh/go-homedir"
)

const (
	Engine    = "engine"
	Component = "component"
)

// 日志字段
const (
	LogFieldParams = "params"
	LogFieldValue  = "value"
	LogFieldIoU    = "io_u"
	LogFieldErr    = "err"
)

func init() {
	home, _ := homedir.Dir()
	BaseDir = fmt.Sprintf("%s/eggie_aio", home)
	DefaultConfigPath = fmt.Sprintf("%s/config", BaseDir)
}

var (
	BaseDir           string
	DefaultConfigPath string
	TmpDir            = "/tmp/eggie_aio"
)
