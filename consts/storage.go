package consts

const (
	B = 1 << (iota * 10)
	KB
	MB
	GB
)

const HelpTemplate = `NAME:
   {{.Name}} - {{.Usage}}
USAGE:
   {{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}{{if .Commands}} command [command options]{{end}} {{if .ArgsUsage}}{{.ArgsUsage}}{{else}}[arguments...]{{end}}
   {{if len .Authors}}
AUTHOR:
   {{range .Authors}}{{ . }}{{end}}
   {{end}}{{if .Commands}}
COMMANDS:
{{range .Commands}}{{if not .HideHelp}}   {{join .Names ", "}}{{ "\t"}}{{.Usage}}{{ "\n" }}{{end}}{{end}}{{end}}{{if .VisibleFlags}}
GLOBAL OPTIONS:
   {{range .VisibleFlags}}{{.}}
   {{end}}{{end}}{{if .Copyright }}
COPYRIGHT:
   {{.Copyright}}
   {{end}}{{if .Version}}
VERSION:
   {{.Version}}
   {{end}}
`

// OperatorType io方向
type OperatorType int64

const (
	OperatorTypeUnknown OperatorType = 0
	OperatorTypeRead    OperatorType = 1
	OperatorTypeWrite   OperatorType = 2
	OperatorTypeTrim    OperatorType = 3
	OperatorTypeSync    OperatorType = 4
)

func (op OperatorType) String() string {
	switch op {
	case OperatorTypeRead:
		return "read"
	case OperatorTypeWrite:
		return "write"
	case OperatorTypeTrim:
		return "trim"
	case OperatorTypeSync:
		return "sync"
	default:
		return "unknown"
	}
}

// DefaultFileSize 后端不提供容量信息，目标大小默认按1GB处理
const DefaultFileSize = GB

const DefaultFilename = "hdcs"
