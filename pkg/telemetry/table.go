// Package telemetry publishes robot state and holds operator-tunable
// values, in the manner of a dashboard key/value table.
package telemetry

import (
	"sort"
	"sync"
)

// Sink accepts published values. Publishing never blocks and is never
// acknowledged.
type Sink interface {
	Publish(key string, value float64)
}

// Update is one published value.
type Update struct {
	Key   string
	Value float64
}

// Table is a concurrent key/value store with change notification. The
// control loop publishes into it; dashboards read and set entries.
type Table struct {
	mu     sync.RWMutex
	values map[string]float64
	subs   []chan Update
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{values: make(map[string]float64)}
}

// Publish stores value under key and notifies subscribers.
func (t *Table) Publish(key string, value float64) {
	t.mu.Lock()
	t.values[key] = value
	subs := t.subs
	t.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- Update{Key: key, Value: value}:
		default:
			// Drop if subscriber is behind
		}
	}
}

// SetDefault stores value only if key has never been set.
func (t *Table) SetDefault(key string, value float64) {
	t.mu.Lock()
	_, ok := t.values[key]
	if !ok {
		t.values[key] = value
	}
	t.mu.Unlock()
}

// Number returns the value of key, or def if unset.
func (t *Table) Number(key string, def float64) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if v, ok := t.values[key]; ok {
		return v
	}
	return def
}

// Lookup returns the value of key and whether it is set.
func (t *Table) Lookup(key string) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[key]
	return v, ok
}

// Keys returns all keys in sorted order.
func (t *Table) Keys() []string {
	t.mu.RLock()
	keys := make([]string, 0, len(t.values))
	for k := range t.values {
		keys = append(keys, k)
	}
	t.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Subscribe returns a channel receiving every later update. Updates are
// dropped when the channel buffer is full.
func (t *Table) Subscribe(buffer int) <-chan Update {
	ch := make(chan Update, buffer)
	t.mu.Lock()
	t.subs = append(t.subs, ch)
	t.mu.Unlock()
	return ch
}
