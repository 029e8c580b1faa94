package testutil

import (
	"fmt"
	"sync"
	"time"
	"withings-mcp/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (e LogEntry) Message() string {
	return fmt.Sprintf(e.Format, e.Args...)
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Entries returns the recorded entries of one level.
func (m *MockLogger) Entries(level string) []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []LogEntry
	for _, e := range m.Logs {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu             sync.Mutex
	ToolCalls      map[string]int
	ToolFailures   map[string]int
	VendorRequests map[string]int
	Refreshes      int
	FailedRefresh  int
	TokenExpiry    time.Time
	CacheHits      int
	CacheMisses    int
	HTTPRequests   map[string]int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		ToolCalls:      make(map[string]int),
		ToolFailures:   make(map[string]int),
		VendorRequests: make(map[string]int),
		HTTPRequests:   make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HTTPRequests[endpoint]++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncToolCalls(tool string, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ToolCalls[tool]++
	if failed {
		m.ToolFailures[tool]++
	}
}

func (m *MockMetrics) ObserveToolDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncVendorRequests(endpoint string, vendorStatus int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VendorRequests[fmt.Sprintf("%s:%d", endpoint, vendorStatus)]++
}

func (m *MockMetrics) ObserveVendorDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncTokenRefreshes(failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if failed {
		m.FailedRefresh++
		return
	}
	m.Refreshes++
}

func (m *MockMetrics) SetTokenExpiry(expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TokenExpiry = expiresAt
}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu      sync.Mutex
	Data    map[string][]byte
	Cleared int
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data = make(map[string][]byte)
	m.Cleared++
}

// MockCompressor implements providers.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}
