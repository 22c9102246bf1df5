package hdcs

import (
	"context"
	"runtime"
	"sort"

	"github.com/Trinoooo/eggie_aio/engine"
	"github.com/Trinoooo/eggie_aio/engine/hdcs/logs"
	"go.uber.org/zap"
)

// GetEvents 收割完成事件
// 调用方需保证min不超过实际飞行中的请求数，否则在ctx结束前不会返回。
// ctx只在两轮扫描之间以及发起阻塞等待之前检查，已发起的等待不可中断。
func (e *Engine) GetEvents(ctx context.Context, min, max int) int {
	if e.aioEvents == nil {
		return 0
	}

	if max <= 0 || max > len(e.aioEvents) {
		max = len(e.aioEvents)
	}
	if min > max {
		min = max
	}

	var (
		events int
		wait   bool
	)
	for {
		thisEvents := e.iterEvents(ctx, &events, min, max, wait)
		if events >= min {
			break
		}
		if thisEvents > 0 {
			continue
		}

		if err := ctx.Err(); err != nil {
			logs.Debug("getevents interrupted", zap.Int("events", events), zap.Int("min", min), zap.Error(err))
			break
		}

		if !e.opts.busyPoll {
			wait = true
		} else {
			runtime.Gosched()
		}
	}

	return events
}

func (e *Engine) Event(i int) *engine.IoU {
	return e.aioEvents[i]
}

// iterEvents 一轮扫描，返回本轮收割数
func (e *Engine) iterEvents(ctx context.Context, events *int, min, max int, wait bool) int {
	var thisEvents int

	pending := e.sortEvents[:0]
	for _, ioU := range e.job.IoUAll {
		if *events >= max {
			break
		}
		if !ioU.InFlight() {
			continue
		}
		slot := ioU.EngineData
		if slot == nil || slot.Seen() {
			continue
		}

		if e.checkComplete(ioU, events) {
			thisEvents++
		} else if wait {
			pending = append(pending, ioU)
		}
	}

	if !wait || len(pending) == 0 {
		return thisEvents
	}

	// 按提交时间排序，先等最老的。
	// 事件够了就不再等待，但继续检查剩下的是否已经完成。
	if len(pending) > 1 {
		sort.SliceStable(pending, func(i, j int) bool {
			return pending[i].StartTime.Before(pending[j].StartTime)
		})
	}

	for _, ioU := range pending {
		if *events >= max {
			break
		}
		if e.checkComplete(ioU, events) {
			thisEvents++
			continue
		}

		if *events >= min || ctx.Err() != nil {
			continue
		}

		e.backend.WaitForComplete(ioU.EngineData.Completion)

		if e.checkComplete(ioU, events) {
			thisEvents++
		}
	}

	for i := range pending {
		pending[i] = nil
	}
	e.sortEvents = pending[:0]
	return thisEvents
}

// checkComplete 收割：标记已见、放入事件数组、释放句柄
func (e *Engine) checkComplete(ioU *engine.IoU, events *int) bool {
	slot := ioU.EngineData
	if !slot.Complete() {
		return false
	}

	slot.MarkSeen()
	e.aioEvents[*events] = ioU
	*events++

	e.backend.Release(slot.Completion)
	slot.Completion = nil
	return true
}
