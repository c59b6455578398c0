package monitor

import (
	"sync/atomic"
)

// WorkloadStats tracks request and store activity with lock-free
// counters. One instance is shared by the HTTP handler, the TCP
// handler and the result store.
type WorkloadStats struct {
	CalcCount      uint64
	CalcErrorCount uint64
	ReadCount      uint64
	WriteCount     uint64
	HitCount       uint64
}

func NewWorkloadStats() *WorkloadStats {
	return &WorkloadStats{}
}

func (ws *WorkloadStats) RecordCalc() {
	atomic.AddUint64(&ws.CalcCount, 1)
}

func (ws *WorkloadStats) RecordCalcError() {
	atomic.AddUint64(&ws.CalcErrorCount, 1)
}

func (ws *WorkloadStats) RecordRead() {
	atomic.AddUint64(&ws.ReadCount, 1)
}

func (ws *WorkloadStats) RecordWrite() {
	atomic.AddUint64(&ws.WriteCount, 1)
}

// RecordHit counts a read answered from the in-memory cache.
func (ws *WorkloadStats) RecordHit() {
	atomic.AddUint64(&ws.HitCount, 1)
}

func (ws *WorkloadStats) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"calc_count":       atomic.LoadUint64(&ws.CalcCount),
		"calc_error_count": atomic.LoadUint64(&ws.CalcErrorCount),
		"read_count":       atomic.LoadUint64(&ws.ReadCount),
		"write_count":      atomic.LoadUint64(&ws.WriteCount),
		"cache_hit_count":  atomic.LoadUint64(&ws.HitCount),
	}
}
