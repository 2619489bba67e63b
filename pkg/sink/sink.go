// Package sink provides transform sink implementations: a ZeroMQ
// publisher, a websocket client for a remote transform server, an
// in-memory latest-value cache, and a fan-out combinator.
package sink

import (
	"sync"

	"github.com/vrkit/go-vrbridge/pkg/transform"
)

// Multi fans a publication out to several sinks.
type Multi []transform.Sink

var _ transform.Sink = Multi{}

func (m Multi) Publish(child, parent string, mat transform.Matrix4) {
	for _, s := range m {
		s.Publish(child, parent, mat)
	}
}

// Latest keeps the most recent transform per child frame. It backs the
// query API and lets tests observe what was last published.
type Latest struct {
	mu      sync.RWMutex
	records map[string]transform.Record
}

var _ transform.Sink = (*Latest)(nil)

// NewLatest creates an empty latest-value cache.
func NewLatest() *Latest {
	return &Latest{records: make(map[string]transform.Record)}
}

func (l *Latest) Publish(child, parent string, m transform.Matrix4) {
	l.mu.Lock()
	l.records[child] = transform.Record{Child: child, Parent: parent, Matrix: m}
	l.mu.Unlock()
}

// Get returns the last transform published for a child frame.
func (l *Latest) Get(child string) (transform.Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	record, ok := l.records[child]
	return record, ok
}

// Snapshot returns a copy of all current records.
func (l *Latest) Snapshot() []transform.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	records := make([]transform.Record, 0, len(l.records))
	for _, record := range l.records {
		records = append(records, record)
	}
	return records
}

// Len returns the number of distinct child frames seen.
func (l *Latest) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
