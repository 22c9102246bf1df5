package errs

import (
	"errors"
	"fmt"
)

type AioErr struct {
	msg  string
	code int64
	err  error
}

// Error 输出格式：
// [错误码] 错误类型描述 ( => 包含错误详细描述 )
// 解释：(xxx) 表示可选内容
func (ae *AioErr) Error() string {
	details := fmt.Sprintf("[%d] %s", ae.code, ae.msg)
	if ae.err != nil {
		details += fmt.Sprintf(" => %s", ae.err)
	}

	return details
}

func (ae *AioErr) Code() int64 {
	return ae.code
}

func (ae *AioErr) WithErr(err error) *AioErr {
	ae.err = err
	return ae
}

// Unwrap 暴露被包装的底层错误，便于 errors.Is 匹配 errno
func (ae *AioErr) Unwrap() error {
	return ae.err
}

func GetCode(err error) int64 {
	var ae *AioErr
	if errors.As(err, &ae) {
		return ae.code
	}
	return UnknownErrCode
}

const (
	UnknownErrCode                 = 0
	InvalidParamErrCode            = 100001
	UnsupportedOperatorTypeErrCode = 100004
	OpenFileErrCode                = 100005
	FileNoPermissionErrCode        = 100007
	FileStatErrCode                = 100008
	MkdirErrCode                   = 100009
	ReadFileErrCode                = 100010
	WriteFileErrCode               = 100011
	CloseFileErrCode               = 100013
	TruncateFileErrCode            = 100030
	ReadConfigErrCode              = 100038
	EngineNotFoundErrCode          = 100039
	BackendClosedErrCode           = 100040
	SetupErrCode                   = 200001
	ConnectionErrCode              = 200002
	SubmissionErrCode              = 200003
	CreateCompletionErrCode        = 200004
)

func NewUnknownErr() *AioErr {
	return &AioErr{msg: "unknown error", code: UnknownErrCode}
}

func NewInvalidParamErr() *AioErr {
	return &AioErr{msg: "invalid params", code: InvalidParamErrCode}
}

func NewUnsupportedOperatorTypeErr() *AioErr {
	return &AioErr{msg: "unsupported operator type", code: UnsupportedOperatorTypeErrCode}
}

func NewOpenFileErr() *AioErr {
	return &AioErr{msg: "open file failed", code: OpenFileErrCode}
}

func NewFileNoPermissionErr() *AioErr {
	return &AioErr{msg: "file no permission", code: FileNoPermissionErrCode}
}

func NewFileStatErr() *AioErr {
	return &AioErr{msg: "file stat failed", code: FileStatErrCode}
}

func NewMkdirErr() *AioErr {
	return &AioErr{msg: "mkdir failed", code: MkdirErrCode}
}

func NewReadFileErr() *AioErr {
	return &AioErr{msg: "read file failed", code: ReadFileErrCode}
}

func NewWriteFileErr() *AioErr {
	return &AioErr{msg: "write file failed", code: WriteFileErrCode}
}

func NewCloseFileErr() *AioErr {
	return &AioErr{msg: "close file failed", code: CloseFileErrCode}
}

func NewTruncateFileErr() *AioErr {
	return &AioErr{msg: "truncate file failed", code: TruncateFileErrCode}
}

func NewReadConfigErr() *AioErr {
	return &AioErr{msg: "read config failed", code: ReadConfigErrCode}
}

func NewEngineNotFoundErr() *AioErr {
	return &AioErr{msg: "engine not found", code: EngineNotFoundErrCode}
}

func NewBackendClosedErr() *AioErr {
	return &AioErr{msg: "backend session closed", code: BackendClosedErrCode}
}

func NewSetupErr() *AioErr {
	return &AioErr{msg: "engine setup failed", code: SetupErrCode}
}

func NewConnectionErr() *AioErr {
	return &AioErr{msg: "backend connect failed", code: ConnectionErrCode}
}

func NewSubmissionErr() *AioErr {
	return &AioErr{msg: "submit io failed", code: SubmissionErrCode}
}

func NewCreateCompletionErr() *AioErr {
	return &AioErr{msg: "create completion failed", code: CreateCompletionErrCode}
}
