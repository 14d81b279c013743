package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for platform interactions
// and health-server requests.
type Metrics struct {
	mu               sync.Mutex
	requestCount     map[string]int64
	interactionCount map[string]int64
	errorCount       map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:     make(map[string]int64),
		interactionCount: make(map[string]int64),
		errorCount:       make(map[string]int64),
	}
}

// RecordRequest increments counters for health-server requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordInteraction increments counters for handled platform events
// (ticket_submit, ticket_update, ticket_complete, ticket_delete, export).
func (m *Metrics) RecordInteraction(kind string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactionCount[kind]++
}

// RecordError increments error counters by interaction kind and code.
func (m *Metrics) RecordError(kind, code string) {
	if m == nil {
		return
	}
	key := kind + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// InteractionCount returns the counter for one interaction kind.
func (m *Metrics) InteractionCount(kind string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interactionCount[kind]
}
