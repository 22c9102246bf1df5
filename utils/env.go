package utils

import (
	"os"

	"github.com/Trinoooo/eggie_aio/consts"
)

// Env 运行环境，取值 test 时使用开发配置
func Env() string {
	return os.Getenv(consts.EnvMode)
}

func IsTest() bool {
	return Env() == "test"
}
