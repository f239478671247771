package telemetry

import (
	"slices"
	"sync"
)

// Report is a single call made against MemoryAPI.
type Report struct {
	ID     string
	Params []any
}

// MemoryAPI implements API by keeping every report in memory, it is meant for tests that
// assert a component reported (or did not report) something.
type MemoryAPI struct {
	mu       sync.Mutex
	broken   []Report
	warnings []Report
	debug    []Report
	counts   map[string]int64
}

func NewMemoryAPI() *MemoryAPI {
	return &MemoryAPI{counts: map[string]int64{}}
}

func (m *MemoryAPI) ReportBroken(id string, params ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broken = append(m.broken, Report{ID: id, Params: params})
}

func (m *MemoryAPI) ReportWarning(id string, params ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnings = append(m.warnings, Report{ID: id, Params: params})
}

func (m *MemoryAPI) ReportDebug(msg string, params ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debug = append(m.debug, Report{ID: msg, Params: params})
}

func (m *MemoryAPI) ReportCount(id string, count int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[id] = count
}

func (m *MemoryAPI) Broken() []Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.broken)
}

func (m *MemoryAPI) Warnings() []Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.warnings)
}

func (m *MemoryAPI) Debug() []Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.debug)
}

// Count returns the last count reported under id.
func (m *MemoryAPI) Count(id string) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.counts[id]
	return n, ok
}
