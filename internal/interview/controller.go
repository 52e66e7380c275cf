package interview

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/yoointerview/internal/models"
)

var (
	ErrNotSignedIn   = errors.New("not signed in")
	ErrNotConfigured = errors.New("voice service is not configured")
)

// Call identifies one conversation opened on the voice service.
type Call struct {
	ID         string `json:"id"`
	WebCallURL string `json:"web_call_url,omitempty"`
	ControlURL string `json:"-"`
}

// VoiceClient opens and closes calls. Events come back through Dispatch.
type VoiceClient interface {
	Open(ctx context.Context, assistantID string) (Call, error)
	Close(ctx context.Context, call Call) error
}

// Notifier is told about every state change.
type Notifier interface {
	Notify(ctx context.Context, userID string, st State)
}

// callBinder is implemented by Registry. It is never called with mu held.
type callBinder interface {
	bindCall(callID string, c *Controller)
	unbindCall(callID string)
	release(c *Controller)
}

type Deps struct {
	Voice       VoiceClient
	AssistantID string
	ConfigErr   error // non-nil disables StartSession
	Saver       *Saver
	Notifier    Notifier // optional
	Logger      *logrus.Logger
}

// Controller owns the session state of one user. Events are serialised by mu,
// which is released around calls to the voice service and the store.
// A bound call keeps the session in progress until the voice service reports
// that it started, failed or ended.
type Controller struct {
	ownerID string
	deps    Deps
	calls   callBinder
	saves   *sync.WaitGroup
	log     *logrus.Entry

	mu    sync.Mutex
	user  *models.User
	state State
	call  Call
}

func NewController(user *models.User, deps Deps) *Controller {
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	c := &Controller{
		deps:  deps,
		saves: &sync.WaitGroup{},
		user:  user,
		state: idleState(),
	}
	if user != nil {
		c.ownerID = user.ID
	}
	c.log = deps.Logger.WithField("user_id", c.ownerID)
	if deps.ConfigErr != nil {
		c.state.Status = Status{Kind: StatusConfigError, Message: msgConfigError}
	}
	return c
}

func (c *Controller) OwnerID() string { return c.ownerID }

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

func (c *Controller) User() *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// SetUser records an identity change. nil means signed out.
func (c *Controller) SetUser(u *models.User) {
	c.mu.Lock()
	c.user = u
	c.mu.Unlock()
}

// Wait blocks until the saves started by Dispatch have finished.
func (c *Controller) Wait() { c.saves.Wait() }

// orphaned reports a signed-out controller with nothing left to finish.
func (c *Controller) orphaned() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user == nil && !c.state.Active && !c.state.Connecting && !c.state.Saving
}

// StartSession opens a call. It is a no-op while a session is active or
// connecting. Failures are reported both in the state and as the error.
func (c *Controller) StartSession(ctx context.Context) (Call, error) {
	c.mu.Lock()
	switch {
	case c.deps.ConfigErr != nil:
		c.state.Status = Status{Kind: StatusConfigError, Message: msgConfigError}
		snap := c.state.clone()
		c.mu.Unlock()
		c.emit(ctx, snap)
		return Call{}, ErrNotConfigured
	case c.user == nil:
		c.state.Status = Status{Kind: StatusSignInRequired, Message: msgSignInRequired}
		snap := c.state.clone()
		c.mu.Unlock()
		c.emit(ctx, snap)
		return Call{}, ErrNotSignedIn
	case c.state.Active || c.state.Connecting:
		call := c.call
		c.mu.Unlock()
		return call, nil
	}

	// a call that failed without ending is left bound; its late events must
	// not reach the new session
	stale := c.call
	c.call = Call{}
	c.state.Connecting = true
	c.state.Finalized = false
	c.state.Transcript = []Entry{}
	c.state.StartTime = nil
	c.state.CallID = ""
	c.state.Status = Status{Kind: StatusConnecting, Message: msgConnecting}
	snap := c.state.clone()
	c.mu.Unlock()
	c.emit(ctx, snap)

	if stale.ID != "" {
		if c.calls != nil {
			c.calls.unbindCall(stale.ID)
		}
		if err := c.deps.Voice.Close(ctx, stale); err != nil {
			c.log.WithError(err).WithField("call_id", stale.ID).Debug("previous call close failed")
		}
	}

	call, err := c.deps.Voice.Open(ctx, c.deps.AssistantID)

	c.mu.Lock()
	if err != nil {
		c.state.Connecting = false
		c.state.Active = false
		reason := err.Error()
		if reason == "" {
			reason = msgConnectHint
		}
		c.state.Status = Status{Kind: StatusError, Message: msgConnectFailed + reason}
		snap = c.state.clone()
		c.mu.Unlock()
		c.log.WithError(err).Warn("voice call open failed")
		c.emit(ctx, snap)
		return Call{}, err
	}
	c.call = call
	c.state.CallID = call.ID
	snap = c.state.clone()
	c.mu.Unlock()

	if c.calls != nil {
		c.calls.bindCall(call.ID, c)
	}

	c.log.WithField("call_id", call.ID).Info("voice call opened")
	c.emit(ctx, snap)
	return call, nil
}

// StopSession asks the voice service to hang up, including a call that is
// open but not yet started. The session is finalised when the service
// reports the end, not here.
func (c *Controller) StopSession(ctx context.Context) error {
	c.mu.Lock()
	if c.call.ID == "" || !(c.state.Active || c.state.Connecting) {
		c.mu.Unlock()
		return nil
	}
	c.state.Status = Status{Kind: StatusEnding, Message: msgEnding}
	call := c.call
	snap := c.state.clone()
	c.mu.Unlock()
	c.emit(ctx, snap)

	if err := c.deps.Voice.Close(ctx, call); err != nil {
		c.log.WithError(err).WithField("call_id", call.ID).Warn("voice call close failed")
		c.mu.Lock()
		if c.state.Active || c.state.Connecting {
			c.state.Status = Status{Kind: StatusError, Message: "Error: " + err.Error()}
		}
		snap = c.state.clone()
		c.mu.Unlock()
		c.emit(ctx, snap)
		return err
	}
	return nil
}

// ClearTranscript resets the transcript when no session is running.
func (c *Controller) ClearTranscript(ctx context.Context) {
	c.mu.Lock()
	if c.state.Active || c.state.Connecting {
		c.mu.Unlock()
		return
	}
	c.state.Transcript = []Entry{}
	c.state.StartTime = nil
	c.state.Status = Status{Kind: StatusIdle, Message: msgIdle}
	snap := c.state.clone()
	c.mu.Unlock()
	c.emit(ctx, snap)
}

// Dispatch feeds one voice event into the state machine. Events tagged with
// a call other than the bound one are dropped. When the event closes a
// session with something worth keeping, the save runs in the background;
// Wait blocks until it is done.
func (c *Controller) Dispatch(ctx context.Context, ev Event) {
	c.mu.Lock()
	callID := c.call.ID
	if ev.CallID != "" && ev.CallID != callID {
		c.mu.Unlock()
		c.log.WithFields(logrus.Fields{"event": ev.Kind, "call_id": ev.CallID, "current_call_id": callID}).
			Debug("event for a previous call dropped")
		return
	}

	next, rec := Reduce(c.state, ev, c.user)
	if rec != nil {
		next.Saving = true
		next.Status = Status{Kind: StatusSaving, Message: msgSaving}
		c.saves.Add(1)
	}
	c.state = next
	ended := ev.Kind == EventEnded
	if ended {
		c.call = Call{}
	}
	snap := c.state.clone()
	c.mu.Unlock()

	if ended && callID != "" && c.calls != nil {
		c.calls.unbindCall(callID)
	}

	c.log.WithFields(logrus.Fields{"event": ev.Kind, "call_id": callID}).Debug("voice event")
	c.emit(ctx, snap)

	if rec != nil {
		go func() {
			defer c.saves.Done()
			c.persist(context.WithoutCancel(ctx), rec)
		}()
		return
	}
	if ended && c.calls != nil {
		c.calls.release(c)
	}
}

func (c *Controller) persist(ctx context.Context, rec *models.Interview) {
	_, err := c.deps.Saver.Save(ctx, rec)

	c.mu.Lock()
	c.state.Saving = false
	// a new session may already have started while the write was in flight
	if !c.state.Active && !c.state.Connecting {
		if err != nil {
			c.state.Status = Status{Kind: StatusSaveFailed, Message: msgSaveFailed}
		} else {
			c.state.Status = Status{Kind: StatusSaved, Message: msgSaved}
		}
	}
	snap := c.state.clone()
	c.mu.Unlock()

	c.emit(ctx, snap)
	if c.calls != nil {
		c.calls.release(c)
	}
}

func (c *Controller) emit(ctx context.Context, st State) {
	if c.deps.Notifier != nil {
		c.deps.Notifier.Notify(context.WithoutCancel(ctx), c.ownerID, st)
	}
}
