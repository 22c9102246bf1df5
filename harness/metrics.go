package harness

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"
)

const pushInterval = 5 * time.Second

type MetricsHelper struct {
	SubmittedCounter prometheus.Counter   // 提交次数
	CompletedCounter prometheus.Counter   // 完成事件数，含失败
	ErroredCounter   prometheus.Counter   // 失败数
	BytesCounter     prometheus.Counter   // 完成字节数
	LatencyHistogram prometheus.Histogram // 提交到收割的延迟，单位秒

	registry *prometheus.Registry
	pusher   *push.Pusher
	stop     chan struct{}
	done     sync.WaitGroup
}

// NewMetricsHelper pushGateway 为空时不推送
func NewMetricsHelper(job, pushGateway string) *MetricsHelper {
	mh := &MetricsHelper{
		SubmittedCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eggie_aio_io_submitted_counter",
		}),
		CompletedCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eggie_aio_io_completed_counter",
		}),
		ErroredCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eggie_aio_io_errored_counter",
		}),
		BytesCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eggie_aio_io_bytes_counter",
		}),
		LatencyHistogram: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "eggie_aio_io_latency_seconds",
			Buckets: prometheus.ExponentialBuckets(1e-6, 2, 24),
		}),
		registry: prometheus.NewRegistry(),
		stop:     make(chan struct{}),
	}
	mh.registry.MustRegister(
		mh.SubmittedCounter,
		mh.CompletedCounter,
		mh.ErroredCounter,
		mh.BytesCounter,
		mh.LatencyHistogram,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if pushGateway == "" {
		return mh
	}

	mh.pusher = push.New(pushGateway, job).Gatherer(mh.registry)
	mh.done.Add(1)
	go func() {
		defer mh.done.Done()
		ticker := time.NewTicker(pushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-mh.stop:
				return
			case <-ticker.C:
				mh.push()
			}
		}
	}()
	return mh
}

func (mh *MetricsHelper) Registry() *prometheus.Registry {
	return mh.registry
}

func (mh *MetricsHelper) push() {
	if err := mh.pusher.Add(); err != nil {
		logger.Warn("prometheus pusher push failed", zap.Error(err))
	}
}

// Close 停止定时推送，并做最后一次推送
func (mh *MetricsHelper) Close() {
	if mh.pusher == nil {
		return
	}
	select {
	case <-mh.stop:
		return
	default:
	}
	close(mh.stop)
	mh.done.Wait()
	mh.push()
}
