// Package dispatch maps an authenticated role to its dashboard: which slice
// of the collections the role sees and which mutations it may perform. A
// capability a role lacks is a nil callback, so the presentation layer can
// hide the control instead of handling a rejection.
package dispatch

import (
	"context"
	"fmt"

	"github.com/widiatmoko/jurnalku/internal/client/prefs"
	"github.com/widiatmoko/jurnalku/internal/client/session"
	"github.com/widiatmoko/jurnalku/internal/domain/journal"
	"github.com/widiatmoko/jurnalku/internal/domain/user"
)

// Mutator is the slice of the sync controller the dashboards drive.
type Mutator interface {
	AddUser(ctx context.Context, req user.CreateUserRequest) (user.User, error)
	UpdateUser(ctx context.Context, req user.UpdateUserRequest) (user.User, error)
	DeleteUser(ctx context.Context, id string) error
	AddEntry(ctx context.Context, req journal.CreateEntryRequest) (journal.Entry, error)
	UpdateEntry(ctx context.Context, req journal.UpdateEntryRequest) (journal.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
	ResetAllData(ctx context.Context) error
}

// Snapshot is the read-only state a dashboard is built from.
type Snapshot struct {
	Users    []user.User
	Entries  []journal.Entry
	Settings prefs.Settings
}

// Dashboard is the role-filtered view plus the role's allowed actions.
// Nil action fields mean the capability is absent for this role.
type Dashboard struct {
	View     string
	Self     session.StoredUser
	Users    []user.User
	Children []user.User
	Entries  []journal.Entry
	Settings prefs.Settings

	AddEntry    func(ctx context.Context, req journal.CreateEntryRequest) (journal.Entry, error)
	UpdateEntry func(ctx context.Context, req journal.UpdateEntryRequest) (journal.Entry, error)
	DeleteEntry func(ctx context.Context, id string) error

	AddUser    func(ctx context.Context, req user.CreateUserRequest) (user.User, error)
	UpdateUser func(ctx context.Context, req user.UpdateUserRequest) (user.User, error)
	DeleteUser func(ctx context.Context, id string) error
	ResetAll   func(ctx context.Context) error

	// CanEditSettings gates the school-wide settings (categories, attendance
	// window, school name). Theme stays per-user and is not gated.
	CanEditSettings bool
}

type UnknownRoleError struct {
	Role string
}

func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("unknown role %q", e.Role)
}

// For builds the dashboard for the authenticated identity. Filtering is by
// the live user record when present; the stored projection only names who
// we are.
func For(self session.StoredUser, snap Snapshot, m Mutator) (Dashboard, error) {
	d := Dashboard{Self: self, Settings: snap.Settings}

	switch self.Role {
	case user.RoleStudent:
		d.View = "student"
		d.Entries = entriesByStudents(snap.Entries, map[string]bool{self.ID: true})
		d.AddEntry = m.AddEntry
		d.UpdateEntry = m.UpdateEntry
		d.DeleteEntry = m.DeleteEntry

	case user.RoleTeacher:
		d.View = "teacher"
		d.Users = usersByRole(snap.Users, user.RoleStudent)
		d.Entries = snap.Entries
		// Teachers annotate entries with feedback; they never author or
		// remove a student's own records.
		d.UpdateEntry = m.UpdateEntry

	case user.RoleParent:
		d.View = "parent"
		children := map[string]bool{}
		for _, u := range snap.Users {
			if u.ID != self.ID {
				continue
			}
			for _, id := range u.ChildIDs {
				children[id] = true
			}
		}
		for _, u := range snap.Users {
			if children[u.ID] {
				d.Children = append(d.Children, u)
			}
		}
		d.Entries = entriesByStudents(snap.Entries, children)

	case user.RoleAdmin:
		d.View = "admin"
		d.Users = snap.Users
		d.Entries = snap.Entries
		d.AddUser = m.AddUser
		d.UpdateUser = m.UpdateUser
		d.DeleteUser = m.DeleteUser
		d.ResetAll = m.ResetAllData
		d.CanEditSettings = true

	default:
		return Dashboard{}, &UnknownRoleError{Role: self.Role}
	}

	return d, nil
}

func usersByRole(users []user.User, role string) []user.User {
	var out []user.User
	for _, u := range users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out
}

func entriesByStudents(entries []journal.Entry, ids map[string]bool) []journal.Entry {
	var out []journal.Entry
	for _, e := range entries {
		if ids[e.StudentID] {
			out = append(out, e)
		}
	}
	return out
}
