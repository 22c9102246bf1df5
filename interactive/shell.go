package interactive

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Trinoooo/eggie_aio/consts"
	"github.com/Trinoooo/eggie_aio/engine"
	"github.com/Trinoooo/eggie_aio/utils"
	"github.com/chzyer/readline"
	"github.com/luci/go-render/render"
)

// maxPreview 读结果最多展示的字节数
const maxPreview = 16

type shellStats struct {
	Commands int64
	Bytes    int64
	Errors   int64
}

// Shell 逐条提交单个请求并等待其完成
type Shell struct {
	eng   engine.Engine
	job   *engine.Job
	ioU   *engine.IoU
	stats shellStats
}

// NewShell job.IoUAll 会被替换为shell独占的单个请求
func NewShell(eng engine.Engine, job *engine.Job) *Shell {
	ioU := &engine.IoU{}
	job.IoUAll = []*engine.IoU{ioU}
	return &Shell{
		eng: eng,
		job: job,
		ioU: ioU,
	}
}

func (s *Shell) Start() error {
	if err := s.eng.Setup(); err != nil {
		return err
	}
	if err := s.eng.IoUInit(s.ioU); err != nil {
		return err
	}
	return s.eng.Init()
}

func (s *Shell) Close() {
	s.eng.IoUFree(s.ioU)
	s.eng.Cleanup()
}

// Execute 执行一行命令，返回展示内容；exit为true时应结束会话
func (s *Shell) Execute(line string) (output string, exit bool) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return "", false
	}

	switch strings.ToLower(args[0]) {
	case "exit", "quit":
		return "", true
	case "stats":
		return render.Render(s.stats), false
	case "help":
		return "read <offset> <length> | write <offset> <length> [byte] | trim <offset> <length> | sync | stats | exit", false
	case "read":
		return s.io(consts.OperatorTypeRead, args[1:]), false
	case "write":
		return s.io(consts.OperatorTypeWrite, args[1:]), false
	case "trim":
		return s.io(consts.OperatorTypeTrim, args[1:]), false
	case "sync":
		return s.io(consts.OperatorTypeSync, []string{"0", "0"}), false
	default:
		return utils.WrapWarn("unknown command: %s", args[0]), false
	}
}

func (s *Shell) io(ddir consts.OperatorType, args []string) string {
	if len(args) < 2 {
		return utils.WrapError("usage: %s <offset> <length>", ddir)
	}

	offset, err := strconv.ParseInt(args[0], 0, 64)
	if err != nil || offset < 0 {
		return utils.WrapError("invalid offset: %s", args[0])
	}
	length, err := strconv.ParseInt(args[1], 0, 64)
	if err != nil || length < 0 || length > consts.MB {
		return utils.WrapError("invalid length: %s", args[1])
	}

	ioU := s.ioU
	ioU.Ddir = ddir
	ioU.Offset = offset
	ioU.XferBuf = make([]byte, length)
	ioU.Error = nil
	ioU.Resid = 0

	if ddir == consts.OperatorTypeWrite {
		fill := byte(0xff)
		if len(args) > 2 {
			v, err := strconv.ParseUint(args[2], 0, 8)
			if err != nil {
				return utils.WrapError("invalid byte: %s", args[2])
			}
			fill = byte(v)
		}
		for i := range ioU.XferBuf {
			ioU.XferBuf[i] = fill
		}
	}

	s.stats.Commands++
	ioU.StartTime = time.Now()
	ioU.SetFlight()
	if s.eng.Queue(ioU) == engine.QueueQueued {
		n := s.eng.GetEvents(context.Background(), 1, 1)
		if n != 1 || s.eng.Event(0) != ioU {
			ioU.ClearFlight()
			return utils.WrapError("lost completion")
		}
	}
	ioU.ClearFlight()
	elapsed := time.Since(ioU.StartTime)

	if ioU.Error != nil {
		s.stats.Errors++
		return utils.WrapError("%s failed: %v (resid=%d)", ddir, ioU.Error, ioU.Resid)
	}

	done := ioU.XferBufLen() - ioU.Resid
	s.stats.Bytes += done
	out := utils.WrapInfo("%s %d bytes at %d in %s", ddir, done, offset, elapsed)
	if ddir == consts.OperatorTypeRead && done > 0 {
		preview := ioU.XferBuf
		if len(preview) > maxPreview {
			preview = preview[:maxPreview]
		}
		out += "\n" + hex.EncodeToString(preview)
	}
	return out
}

// Run 读取交互输入直到exit、EOF或ctx结束
func (s *Shell) Run(ctx context.Context, prompt string) error {
	utils.NoColor = !readline.DefaultIsTerminal()
	input, err := readline.NewEx(&readline.Config{
		Prompt: prompt,
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("read"),
			readline.PcItem("write"),
			readline.PcItem("trim"),
			readline.PcItem("sync"),
			readline.PcItem("stats"),
			readline.PcItem("help"),
			readline.PcItem("exit"),
		),
		HistoryFile: fmt.Sprintf("%s/shell/cmd_history_%s", consts.TmpDir, time.Now().Format("20060102")),
	})
	if err != nil {
		return err
	}
	defer input.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := input.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		output, exit := s.Execute(line)
		if exit {
			return nil
		}
		if output != "" {
			_, _ = fmt.Fprintln(input.Stdout(), output)
		}
	}
}
