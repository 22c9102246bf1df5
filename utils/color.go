package utils

import "fmt"

const (
	ERROR = "\033[1;31;40m[ERROR] %s\033[0m"
	WARN  = "\033[1;33;40m[WARN] %s\033[0m"
	INFO  = "\033[1;34;40m[INFO] %s\033[0m"
)

// NoColor 输出不是终端时关闭颜色
var NoColor bool

func wrap(color, level, format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	if NoColor {
		return fmt.Sprintf("[%s] %s", level, msg)
	}
	return fmt.Sprintf(color, msg)
}

func WrapError(format string, args ...any) string {
	return wrap(ERROR, "ERROR", format, args...)
}

func WrapWarn(format string, args ...any) string {
	return wrap(WARN, "WARN", format, args...)
}

func WrapInfo(format string, args ...any) string {
	return wrap(INFO, "INFO", format, args...)
}
