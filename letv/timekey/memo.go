package timekey

import "sync"

// memoSize bounds a MemoKeyer; tokens are only ever asked for around "now".
const memoSize = 64

// MemoKeyer caches the keys of another Keyer by timestamp.
type MemoKeyer struct {
	next Keyer

	mu   sync.RWMutex
	data map[int64]uint32
}

// Memo wraps k. Errors are not cached.
func Memo(k Keyer) *MemoKeyer {
	return &MemoKeyer{next: k, data: make(map[int64]uint32)}
}

// Key implements Keyer.
func (m *MemoKeyer) Key(timestamp int64) (uint32, error) {
	m.mu.RLock()
	v, ok := m.data[timestamp]
	m.mu.RUnlock()
	if ok {
		return v, nil
	}

	v, err := m.next.Key(timestamp)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	if len(m.data) >= memoSize {
		clear(m.data)
	}
	m.data[timestamp] = v
	m.mu.Unlock()
	return v, nil
}
