package search

import (
	"sync/atomic"
	"time"
)

// Metrics summarizes the work done by one BestMove call.
type Metrics struct {
	StartTime time.Time
	Duration  time.Duration
	Nodes     int64 // Score invocations
	Leaves    int64 // terminal positions reached
	Prunes    int64 // alpha-beta cutoffs
}

type MetricsCollector interface {
	Start()
	AddNode()
	AddLeaf()
	AddPrune()
	Complete() Metrics
}

type metricsCollector struct {
	startTime time.Time
	nodes     atomic.Int64
	leaves    atomic.Int64
	prunes    atomic.Int64
}

// NewMetricsCollector returns a collector safe for use by parallel root searches.
func NewMetricsCollector() MetricsCollector {
	return &metricsCollector{}
}

func (m *metricsCollector) Start() {
	m.startTime = time.Now()
	m.nodes.Store(0)
	m.leaves.Store(0)
	m.prunes.Store(0)
}

func (m *metricsCollector) AddNode()  { m.nodes.Add(1) }
func (m *metricsCollector) AddLeaf()  { m.leaves.Add(1) }
func (m *metricsCollector) AddPrune() { m.prunes.Add(1) }

func (m *metricsCollector) Complete() Metrics {
	return Metrics{
		StartTime: m.startTime,
		Duration:  time.Since(m.startTime),
		Nodes:     m.nodes.Load(),
		Leaves:    m.leaves.Load(),
		Prunes:    m.prunes.Load(),
	}
}

type noMetricsCollector struct{}

func NewNoMetricsCollector() MetricsCollector {
	return noMetricsCollector{}
}

func (noMetricsCollector) Start()            {}
func (noMetricsCollector) AddNode()          {}
func (noMetricsCollector) AddLeaf()          {}
func (noMetricsCollector) AddPrune()         {}
func (noMetricsCollector) Complete() Metrics { return Metrics{} }
