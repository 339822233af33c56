package daemon

import "sync"

// progressFanout delivers progress of an in-flight fetch to every caller
// waiting on the same law, not only the one that started it.
type progressFanout struct {
	mu   sync.Mutex
	subs map[string]map[*func(string)]struct{}
}

func newProgressFanout() *progressFanout {
	return &progressFanout{subs: make(map[string]map[*func(string)]struct{})}
}

// subscribe registers fn for progress on key until the returned func is
// called.
func (p *progressFanout) subscribe(key string, fn func(string)) func() {
	ref := &fn
	p.mu.Lock()
	if p.subs[key] == nil {
		p.subs[key] = make(map[*func(string)]struct{})
	}
	p.subs[key][ref] = struct{}{}
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs[key], ref)
		if len(p.subs[key]) == 0 {
			delete(p.subs, key)
		}
		p.mu.Unlock()
	}
}

// publish sends msg to the subscribers of key. Callbacks run outside the
// lock, so a slow client does not block subscribe.
func (p *progressFanout) publish(key, msg string) {
	p.mu.Lock()
	fns := make([]func(string), 0, len(p.subs[key]))
	for ref := range p.subs[key] {
		fns = append(fns, *ref)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(msg)
	}
}
