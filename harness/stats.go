package harness

import (
	"fmt"
	"time"
)

// Stats 作业统计
type Stats struct {
	Submitted int64
	Ios       int64
	ReadIos   int64
	WriteIos  int64
	Errors    int64
	Bytes     int64
	Elapsed   time.Duration
	// FirstErr 第一个失败请求的错误
	FirstErr error
}

func (s *Stats) IOPS() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Ios) / s.Elapsed.Seconds()
}

// Bandwidth 字节每秒
func (s *Stats) Bandwidth() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Bytes) / s.Elapsed.Seconds()
}

func (s *Stats) String() string {
	return fmt.Sprintf("ios=%d (read=%d write=%d) errors=%d bytes=%d elapsed=%s iops=%.1f bw=%.1fKiB/s",
		s.Ios, s.ReadIos, s.WriteIos, s.Errors, s.Bytes, s.Elapsed, s.IOPS(), s.Bandwidth()/1024)
}
