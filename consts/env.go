package consts

const (
	EnvMode        = "EGGIE_AIO_ENV"          // 运行环境
	EnvEngine      = "EGGIE_AIO_ENGINE"       // 引擎名
	EnvTarget      = "EGGIE_AIO_TARGET"       // 后端目标类型，file 或 mem
	EnvFilename    = "EGGIE_AIO_FILENAME"     // 目标文件路径
	EnvBusyPoll    = "EGGIE_AIO_BUSY_POLL"    // 忙轮询
	EnvPushGateway = "EGGIE_AIO_PUSH_GATEWAY" // prometheus pushgateway 地址
)

// 配置项
const (
	ConfEngine      = "engine"
	ConfBusyPoll    = "busy_poll"
	ConfTarget      = "target"
	ConfFilename    = "filename"
	ConfSize        = "size"
	ConfWorkers     = "workers"
	ConfIoDepth     = "iodepth"
	ConfBlockSize   = "bs"
	ConfRW          = "rw"
	ConfNumberIos   = "number_ios"
	ConfRuntime     = "runtime"
	ConfBatchMin    = "iodepth_batch_complete_min"
	ConfBatchMax    = "iodepth_batch_complete_max"
	ConfPushGateway = "push_gateway"
	ConfClientName  = "client_name"
)
