package identity

import (
	"sync"

	"github.com/yoockh/yoointerview/internal/models"
)

type ChangeKind string

const (
	SignedIn  ChangeKind = "signed_in"
	SignedOut ChangeKind = "signed_out"
)

type Change struct {
	Kind   ChangeKind
	UserID string
	User   *models.User // nil on sign-out
}

// Watcher fans identity changes out to subscribers in registration order.
type Watcher struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Change)
	ids  []int
}

func NewWatcher() *Watcher {
	return &Watcher{subs: map[int]func(Change){}}
}

// Subscribe registers fn and returns a func that removes it.
func (w *Watcher) Subscribe(fn func(Change)) func() {
	w.mu.Lock()
	id := w.next
	w.next++
	w.subs[id] = fn
	w.ids = append(w.ids, id)
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.subs, id)
			for i, v := range w.ids {
				if v == id {
					w.ids = append(w.ids[:i], w.ids[i+1:]...)
					break
				}
			}
			w.mu.Unlock()
		})
	}
}

func (w *Watcher) Publish(ch Change) {
	w.mu.RLock()
	fns := make([]func(Change), 0, len(w.ids))
	for _, id := range w.ids {
		fns = append(fns, w.subs[id])
	}
	w.mu.RUnlock()

	for _, fn := range fns {
		fn(ch)
	}
}
