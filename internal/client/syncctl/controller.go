// Package syncctl owns the canonical client-side copies of the remote
// collections and every mutation against them. All other client code treats
// the collections as read-only snapshots.
package syncctl

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/widiatmoko/jurnalku/internal/client/gateway"
	"github.com/widiatmoko/jurnalku/internal/client/notify"
	"github.com/widiatmoko/jurnalku/internal/client/session"
	"github.com/widiatmoko/jurnalku/internal/domain/journal"
	"github.com/widiatmoko/jurnalku/internal/domain/user"
)

type State int

const (
	StateUnauthenticated State = iota
	StateSynchronizing
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateSynchronizing:
		return "synchronizing"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return "unknown"
}

var ErrNotAuthenticated = errors.New("not authenticated")

// Remote is the slice of the gateway the controller needs.
type Remote interface {
	Login(ctx context.Context, role, identifier, password string) (user.User, string, error)
	SetToken(token string)

	ListUsers(ctx context.Context) ([]user.User, error)
	CreateUser(ctx context.Context, req user.CreateUserRequest) (user.User, error)
	UpdateUser(ctx context.Context, req user.UpdateUserRequest) (user.User, error)
	DeleteUser(ctx context.Context, id string) error
	ResetAllData(ctx context.Context) error

	ListJournals(ctx context.Context) ([]journal.Entry, error)
	CreateEntry(ctx context.Context, req journal.CreateEntryRequest) (journal.Entry, error)
	UpdateEntry(ctx context.Context, req journal.UpdateEntryRequest) (journal.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
}

type SessionStore interface {
	Load() (session.StoredUser, string, bool, error)
	Save(u session.StoredUser, token string) error
	Clear() error
}

type Options struct {
	PollInterval  time.Duration
	SplashTimeout time.Duration
}

type Controller struct {
	remote   Remote
	sessions SessionStore
	log      *slog.Logger
	notify   notify.Notifier

	pollInterval  time.Duration
	splashTimeout time.Duration

	// Polling, foreground transitions and manual refetch all funnel into
	// Refresh; the group makes concurrent triggers share one flight.
	group singleflight.Group

	mu      sync.Mutex
	state   State
	lastErr error
	authed  bool
	self    session.StoredUser
	token   string
	users   []user.User
	entries []journal.Entry
	// loaded is true once a refresh has succeeded for the active session.
	loaded bool
	// issuedSeq/appliedSeq order refresh cycles so a pair of responses
	// fetched under an older cycle can never overwrite a newer one.
	issuedSeq  uint64
	appliedSeq uint64
}

func New(remote Remote, sessions SessionStore, log *slog.Logger, notifier notify.Notifier, opts Options) *Controller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 30 * time.Second
	}
	if opts.SplashTimeout <= 0 {
		opts.SplashTimeout = 8 * time.Second
	}
	return &Controller{
		remote:        remote,
		sessions:      sessions,
		log:           log,
		notify:        notifier,
		pollInterval:  opts.PollInterval,
		splashTimeout: opts.SplashTimeout,
		state:         StateUnauthenticated,
	}
}

// Bootstrap restores a persisted session and runs the initial
// synchronization, bounded by the splash timeout. Without a stored session
// it leaves the controller unauthenticated for the login screen.
func (c *Controller) Bootstrap(ctx context.Context) error {
	stored, token, ok, err := c.sessions.Load()
	if err != nil {
		c.log.Warn("session load failed", "err", err)
		ok = false
	}
	if !ok {
		c.setState(StateUnauthenticated, nil)
		return nil
	}

	c.mu.Lock()
	c.authed = true
	c.self = stored
	c.token = token
	c.loaded = false
	c.state = StateSynchronizing
	c.mu.Unlock()
	c.remote.SetToken(token)

	bctx, cancel := context.WithTimeout(ctx, c.splashTimeout)
	defer cancel()

	return c.Refresh(bctx)
}

// Login authenticates against the backend, persists the minimal identity
// and synchronizes. A failure keeps the previous unauthenticated state and
// returns the server's message verbatim.
func (c *Controller) Login(ctx context.Context, role, identifier, password string) error {
	u, token, err := c.remote.Login(ctx, role, identifier, password)
	if err != nil {
		return err
	}

	stored := session.FromUser(u)
	if err := c.sessions.Save(stored, token); err != nil {
		c.log.Warn("session persist failed", "err", err)
	}
	c.remote.SetToken(token)

	c.mu.Lock()
	c.authed = true
	c.self = stored
	c.token = token
	c.loaded = false
	c.state = StateSynchronizing
	c.mu.Unlock()

	return c.Refresh(ctx)
}

// Logout drops the session. Cached collections are intentionally kept; the
// next login refreshes them regardless.
func (c *Controller) Logout() error {
	c.mu.Lock()
	c.authed = false
	c.self = session.StoredUser{}
	c.token = ""
	c.state = StateUnauthenticated
	c.lastErr = nil
	c.mu.Unlock()

	c.remote.SetToken("")
	return c.sessions.Clear()
}

// Refresh synchronizes both collections. Concurrent triggers (poll tick,
// foreground transition, manual retry) share a single in-flight refresh.
func (c *Controller) Refresh(ctx context.Context) error {
	_, err, _ := c.group.Do("refresh", func() (any, error) {
		return nil, c.doRefresh(ctx)
	})
	return err
}

func (c *Controller) doRefresh(ctx context.Context) error {
	c.mu.Lock()
	if !c.authed {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	c.issuedSeq++
	seq := c.issuedSeq
	if !c.loaded {
		c.state = StateSynchronizing
	}
	c.mu.Unlock()

	var (
		users   []user.User
		entries []journal.Entry
	)

	// Both fetches must succeed; a partial result never touches state.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = c.remote.ListUsers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = c.remote.ListJournals(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		if gateway.IsUnauthorized(err) {
			// The token was rejected; retrying cannot help.
			c.forceLogout("Your session has expired; please sign in again.")
			return err
		}
		c.mu.Lock()
		if c.loaded {
			// Last-good data stays on screen; the failure is non-fatal.
			c.mu.Unlock()
			c.log.Warn("background refresh failed", "err", err)
			c.notify.Warn("Refresh failed: " + err.Error())
			return err
		}
		c.state = StateError
		c.lastErr = err
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	if seq < c.appliedSeq {
		// A newer cycle already applied; this pair is stale.
		c.mu.Unlock()
		c.log.Debug("discarding stale refresh", "seq", seq)
		return nil
	}
	if !c.authed {
		c.mu.Unlock()
		return nil
	}
	c.appliedSeq = seq
	c.users = users
	c.entries = entries
	c.loaded = true
	c.state = StateReady
	c.lastErr = nil
	forcedOut := c.reconcileSelfLocked()
	c.mu.Unlock()

	if forcedOut {
		c.forceLogout("Your account no longer exists; you have been signed out.")
	}
	return nil
}

// reconcileSelfLocked re-derives the authenticated identity from the users
// collection. Returns true when the account no longer exists and the
// session must be terminated. Callers hold c.mu.
func (c *Controller) reconcileSelfLocked() bool {
	if !c.authed {
		return false
	}

	for _, u := range c.users {
		if u.ID != c.self.ID {
			continue
		}
		current := session.FromUser(u)
		if current != c.self {
			c.self = current
			if err := c.sessions.Save(current, c.token); err != nil {
				c.log.Warn("session rewrite failed", "err", err)
			}
		}
		return false
	}
	return true
}

// forceLogout ends the session when the server no longer recognizes it,
// telling the user why.
func (c *Controller) forceLogout(reason string) {
	c.notify.Warn(reason)
	if err := c.Logout(); err != nil {
		c.log.Warn("forced logout cleanup failed", "err", err)
	}
}

// ResetAllData wipes the backend and resynchronizes unconditionally.
func (c *Controller) ResetAllData(ctx context.Context) error {
	if err := c.remote.ResetAllData(ctx); err != nil {
		c.notify.Error("Reset failed: " + err.Error())
		return err
	}
	c.notify.Info("All application data has been reset.")
	return c.Refresh(ctx)
}

// Run polls in the background until the context ends.
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.Authenticated() {
				continue
			}
			_ = c.Refresh(ctx)
		}
	}
}

// Resume is the return-to-foreground trigger; it shares the poll loop's
// refresh flight when one is already running.
func (c *Controller) Resume(ctx context.Context) {
	if !c.Authenticated() {
		return
	}
	_ = c.Refresh(ctx)
}

// --- mutations (optimistic local-merge) ---
//
// Every mutation sends the request, then merges the server-confirmed record
// into local state before returning. A failure leaves state untouched,
// raises a notification and propagates the error.

func (c *Controller) AddUser(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	created, err := c.remote.CreateUser(ctx, req)
	if err != nil {
		c.notify.Error("Could not add user: " + err.Error())
		return user.User{}, err
	}

	c.mu.Lock()
	c.users = upsertUser(c.users, created)
	c.mu.Unlock()
	return created, nil
}

func (c *Controller) UpdateUser(ctx context.Context, req user.UpdateUserRequest) (user.User, error) {
	updated, err := c.remote.UpdateUser(ctx, req)
	if err != nil {
		c.notify.Error("Could not update user: " + err.Error())
		return user.User{}, err
	}

	c.mu.Lock()
	c.users = upsertUser(c.users, updated)
	forcedOut := c.reconcileSelfLocked()
	c.mu.Unlock()

	if forcedOut {
		c.forceLogout("Your account no longer exists; you have been signed out.")
	}
	return updated, nil
}

func (c *Controller) DeleteUser(ctx context.Context, id string) error {
	if err := c.remote.DeleteUser(ctx, id); err != nil {
		c.notify.Error("Could not delete user: " + err.Error())
		return err
	}

	c.mu.Lock()
	users := c.users[:0:0]
	for _, u := range c.users {
		if u.ID != id {
			users = append(users, u)
		}
	}
	c.users = users
	// The server drops a deleted student's entries; mirror that locally.
	entries := c.entries[:0:0]
	for _, e := range c.entries {
		if e.StudentID != id {
			entries = append(entries, e)
		}
	}
	c.entries = entries
	forcedOut := c.reconcileSelfLocked()
	c.mu.Unlock()

	if forcedOut {
		c.forceLogout("Your account no longer exists; you have been signed out.")
	}
	return nil
}

func (c *Controller) AddEntry(ctx context.Context, req journal.CreateEntryRequest) (journal.Entry, error) {
	created, err := c.remote.CreateEntry(ctx, req)
	if err != nil {
		c.notify.Error("Could not add journal entry: " + err.Error())
		return journal.Entry{}, err
	}

	c.mu.Lock()
	c.entries = upsertEntry(c.entries, created)
	c.mu.Unlock()
	return created, nil
}

func (c *Controller) UpdateEntry(ctx context.Context, req journal.UpdateEntryRequest) (journal.Entry, error) {
	updated, err := c.remote.UpdateEntry(ctx, req)
	if err != nil {
		c.notify.Error("Could not update journal entry: " + err.Error())
		return journal.Entry{}, err
	}

	c.mu.Lock()
	c.entries = upsertEntry(c.entries, updated)
	c.mu.Unlock()
	return updated, nil
}

func (c *Controller) DeleteEntry(ctx context.Context, id string) error {
	if err := c.remote.DeleteEntry(ctx, id); err != nil {
		c.notify.Error("Could not delete journal entry: " + err.Error())
		return err
	}

	c.mu.Lock()
	entries := c.entries[:0:0]
	for _, e := range c.entries {
		if e.ID != id {
			entries = append(entries, e)
		}
	}
	c.entries = entries
	c.mu.Unlock()
	return nil
}

// --- snapshots ---

func (c *Controller) State() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.lastErr
}

func (c *Controller) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authed
}

func (c *Controller) Self() (session.StoredUser, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.self, c.authed
}

func (c *Controller) Users() []user.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]user.User, len(c.users))
	copy(out, c.users)
	return out
}

func (c *Controller) Entries() []journal.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]journal.Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// --- local-merge helpers ---

func upsertUser(users []user.User, u user.User) []user.User {
	replaced := false
	for i := range users {
		if users[i].ID == u.ID {
			users[i] = u
			replaced = true
			break
		}
	}
	if !replaced {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		a, b := strings.ToLower(users[i].Name), strings.ToLower(users[j].Name)
		if a == b {
			return users[i].ID < users[j].ID
		}
		return a < b
	})
	return users
}

func upsertEntry(entries []journal.Entry, e journal.Entry) []journal.Entry {
	replaced := false
	for i := range entries {
		if entries[i].ID == e.ID {
			entries[i] = e
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date > entries[j].Date
		}
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

func (c *Controller) setState(s State, err error) {
	c.mu.Lock()
	c.state = s
	c.lastErr = err
	c.mu.Unlock()
}
