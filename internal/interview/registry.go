package interview

import (
	"sync"

	"github.com/yoockh/yoointerview/internal/models"
)

// Registry keeps one Controller per user and routes voice events by call ID.
// Lock order is registry then controller; controllers call back into the
// registry only with their own lock released.
type Registry struct {
	deps  Deps
	saves sync.WaitGroup

	mu     sync.Mutex
	byUser map[string]*Controller
	byCall map[string]*Controller
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:   deps,
		byUser: map[string]*Controller{},
		byCall: map[string]*Controller{},
	}
}

// ForUser returns the user's controller, creating it on first use.
func (r *Registry) ForUser(u *models.User) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byUser[u.ID]
	if !ok {
		c = NewController(u, r.deps)
		c.calls = r
		c.saves = &r.saves
		r.byUser[u.ID] = c
		return c
	}
	c.SetUser(u)
	return c
}

func (r *Registry) ByCall(callID string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byCall[callID]
	return c, ok
}

// SignedOut drops the identity of the user's controller so that a session
// ending afterwards is not saved. An idle controller is forgotten at once,
// a busy one when its session is over.
func (r *Registry) SignedOut(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byUser[userID]
	if !ok {
		return
	}
	c.SetUser(nil)
	if c.orphaned() {
		delete(r.byUser, userID)
	}
}

// Wait blocks until every save started by a controller has finished.
func (r *Registry) Wait() { r.saves.Wait() }

func (r *Registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser)
}

func (r *Registry) bindCall(callID string, c *Controller) {
	r.mu.Lock()
	r.byCall[callID] = c
	r.mu.Unlock()
}

func (r *Registry) unbindCall(callID string) {
	r.mu.Lock()
	delete(r.byCall, callID)
	r.mu.Unlock()
}

func (r *Registry) release(c *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byUser[c.ownerID] == c && c.orphaned() {
		delete(r.byUser, c.ownerID)
	}
}
