package cache

import "context"

// Snapshot is an exact capture of a set of cache entries taken before an
// optimistic write. Restore puts every captured key back byte-for-byte,
// including dropping keys that were absent at capture time.
type Snapshot struct {
	store *Store
	state map[Key]*entry
}

// Snapshot captures the current state of the given keys.
func (s *Store) Snapshot(keys ...Key) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := make(map[Key]*entry, len(keys))
	for _, key := range keys {
		if e, ok := s.entries[key]; ok {
			captured := e
			state[key] = &captured
		} else {
			state[key] = nil
		}
	}
	return Snapshot{store: s, state: state}
}

// Restore reinstates the captured state.
func (s Snapshot) Restore() {
	if s.store == nil {
		return
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for key, captured := range s.state {
		if captured == nil {
			delete(s.store.entries, key)
			continue
		}
		s.store.entries[key] = *captured
	}
}

// Keys returns the captured keys.
func (s Snapshot) Keys() []Key {
	keys := make([]Key, 0, len(s.state))
	for key := range s.state {
		keys = append(keys, key)
	}
	return keys
}

// TrackInflight registers the cancel func of a fetch that is about to
// write to key, and returns a token identifying the registration. Any
// number of fetches may be outstanding for the same key at once. A
// mutation uses CancelInflight to kill all of them before its
// optimistic write, so a stale response can never overwrite the
// optimistic value.
func (s *Store) TrackInflight(key Key, cancel context.CancelFunc) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens++
	regs, ok := s.inflight[key]
	if !ok {
		regs = make(map[uint64]context.CancelFunc)
		s.inflight[key] = regs
	}
	regs[s.tokens] = cancel
	return s.tokens
}

// ClearInflight removes the registration identified by token and
// reports whether it was still present. A false return means a
// mutation cancelled the fetch in the meantime.
func (s *Store) ClearInflight(key Key, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	regs, ok := s.inflight[key]
	if !ok {
		return false
	}
	if _, ok := regs[token]; !ok {
		return false
	}
	delete(regs, token)
	if len(regs) == 0 {
		delete(s.inflight, key)
	}
	return true
}

// SetIfInflight writes value only when the fetch identified by token is
// still registered, and reports whether it wrote. The check and the
// write happen under one lock, so a fetch that raced a mutation's
// CancelInflight cannot land after the optimistic write.
func (s *Store) SetIfInflight(key Key, token uint64, value any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	regs, ok := s.inflight[key]
	if !ok {
		return false
	}
	if _, ok := regs[token]; !ok {
		return false
	}
	s.entries[key] = entry{value: value, fetchedAt: s.now()}
	return true
}

// CancelInflight cancels and unregisters every outstanding fetch for
// the given keys.
func (s *Store) CancelInflight(keys ...Key) {
	s.mu.Lock()
	var cancels []context.CancelFunc
	for _, key := range keys {
		for _, cancel := range s.inflight[key] {
			cancels = append(cancels, cancel)
		}
		delete(s.inflight, key)
	}
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}
