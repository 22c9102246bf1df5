package logs

import (
	"github.com/Trinoooo/eggie_aio/utils"
	"go.uber.org/zap"
)

var Logger *zap.Logger

func init() {
	var err error
	option := zap.AddCaller()
	if utils.IsTest() {
		Logger, err = zap.NewDevelopment(option)
	} else {
		Logger, err = zap.NewProduction(option)
	}

	if err != nil {
		panic(err)
	}
}

// Named 为组件派生带公共字段的logger
func Named(fields ...zap.Field) *zap.Logger {
	return Logger.With(fields...)
}
