package site

import "sync"

// InFlight tracks form tokens with a submission currently running, so a
// double-posted form is refused instead of registering the team twice.
type InFlight struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func NewInFlight() *InFlight {
	return &InFlight{busy: make(map[string]struct{})}
}

// Acquire marks token busy. ok is false when it already was; otherwise the
// caller must call release exactly once, typically via defer.
func (f *InFlight) Acquire(token string) (release func(), ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, taken := f.busy[token]; taken {
		return nil, false
	}
	f.busy[token] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.busy, token)
			f.mu.Unlock()
		})
	}, true
}
