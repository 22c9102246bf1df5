package logs

import (
	"github.com/Trinoooo/eggie_aio/consts"
	"github.com/Trinoooo/eggie_aio/logs"
	"go.uber.org/zap"
)

var commonFields = []zap.Field{
	zap.String(consts.Engine, "hdcs"),
}

var hdcsLogger *zap.Logger

func init() {
	// 跳过本文件的包装函数
	hdcsLogger = logs.Named(commonFields...).WithOptions(zap.AddCallerSkip(1))
}

func Debug(msg string, fields ...zap.Field) {
	hdcsLogger.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	hdcsLogger.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	hdcsLogger.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	hdcsLogger.Error(msg, fields...)
}
