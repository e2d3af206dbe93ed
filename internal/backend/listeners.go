package backend

import "sync"

type listeners struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func()
}

func (ls *listeners) add(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	ls.mu.Lock()
	if ls.fns == nil {
		ls.fns = make(map[int]func())
	}
	ls.nextID++
	id := ls.nextID
	ls.fns[id] = fn
	ls.mu.Unlock()
	return func() {
		ls.mu.Lock()
		delete(ls.fns, id)
		ls.mu.Unlock()
	}
}

func (ls *listeners) notify() {
	ls.mu.Lock()
	fns := make([]func(), 0, len(ls.fns))
	for _, fn := range ls.fns {
		fns = append(fns, fn)
	}
	ls.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
