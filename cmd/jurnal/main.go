package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/widiatmoko/jurnalku/internal/client/dispatch"
	"github.com/widiatmoko/jurnalku/internal/client/gateway"
	"github.com/widiatmoko/jurnalku/internal/client/notify"
	"github.com/widiatmoko/jurnalku/internal/client/prefs"
	"github.com/widiatmoko/jurnalku/internal/client/session"
	"github.com/widiatmoko/jurnalku/internal/client/syncctl"
	"github.com/widiatmoko/jurnalku/internal/config"
	"github.com/widiatmoko/jurnalku/internal/domain/journal"
	"github.com/widiatmoko/jurnalku/internal/domain/user"
	"github.com/widiatmoko/jurnalku/internal/observability"
)

func main() {
	cfg := config.LoadClient()
	log := observability.NewLogger(cfg.Env)

	gw := gateway.New(cfg.ServerURL, &http.Client{Timeout: cfg.RequestTimeout})
	sessions := session.NewStore(cfg.DataDir)
	settings := prefs.NewStore(cfg.DataDir)
	notifier := notify.NewLogNotifier(log)

	ctrl := syncctl.New(gw, sessions, log, notifier, syncctl.Options{
		PollInterval:  cfg.PollInterval,
		SplashTimeout: cfg.SplashTimeout,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ctrl.Bootstrap(ctx); err != nil {
		// A stale session that cannot refresh is reported but not fatal;
		// the user can retry or log in again.
		fmt.Fprintln(os.Stderr, "initial sync failed:", err)
	}

	go ctrl.Run(ctx)

	app := &cli{ctrl: ctrl, prefs: settings, in: bufio.NewScanner(os.Stdin)}
	app.loop(ctx)
}

type cli struct {
	ctrl  *syncctl.Controller
	prefs *prefs.Store
	in    *bufio.Scanner
}

func (c *cli) loop(ctx context.Context) {
	for {
		if self, ok := c.ctrl.Self(); ok {
			fmt.Printf("%s (%s)> ", self.Name, strings.ToLower(self.Role))
		} else {
			fmt.Print("jurnal> ")
		}
		if !c.in.Scan() {
			return
		}

		line := strings.TrimSpace(c.in.Text())
		if line == "" {
			continue
		}
		args := strings.Fields(line)

		switch args[0] {
		case "quit", "exit":
			return
		case "help":
			c.help()
		case "login":
			c.login(ctx)
		case "logout":
			if err := c.ctrl.Logout(); err != nil {
				fmt.Println("logout:", err)
			}
		case "refresh":
			c.ctrl.Resume(ctx)
			c.status()
		case "status":
			c.status()
		case "show":
			c.show()
		case "add", "feedback", "del", "add-user", "del-user", "reset":
			c.mutate(ctx, args)
		case "theme":
			if len(args) < 2 {
				fmt.Println("usage: theme light|dark")
				continue
			}
			if err := c.prefs.SetTheme(args[1]); err != nil {
				fmt.Println("theme:", err)
			}
		case "set-school", "set-window", "set-categories":
			c.editSettings(args)
		default:
			fmt.Println("unknown command; try 'help'")
		}
	}
}

func (c *cli) help() {
	fmt.Println(`commands:
  login                        sign in
  logout                       sign out
  status                       connection state
  show                         role dashboard
  refresh                      force a sync
  add <date> <category> <content...>      add a journal entry (student)
  feedback <entryID> <text...>            annotate an entry (teacher)
  del <entryID>                           delete an entry (student)
  add-user <role> <name...>               create an account (admin)
  del-user <userID>                       delete an account (admin)
  reset                                   wipe all application data (admin)
  theme light|dark             switch theme
  set-school <name...>                    rename the school (admin)
  set-window <start> <end>                attendance window, HH:MM (admin)
  set-categories <a,b,c>                  journal categories (admin)
  quit`)
}

func (c *cli) login(ctx context.Context) {
	role := strings.ToUpper(c.prompt("role (student/teacher/parent/admin): "))
	if !user.ValidRole(role) {
		fmt.Println("unknown role")
		return
	}

	var label string
	switch role {
	case user.RoleStudent:
		label = "NISN"
	case user.RoleTeacher:
		label = "NIP"
	case user.RoleParent:
		label = "NIK"
	case user.RoleAdmin:
		label = "username"
	}

	identifier := c.prompt(label + ": ")
	password := c.prompt("password: ")

	if err := c.ctrl.Login(ctx, role, identifier, password); err != nil {
		fmt.Println("login failed:", err)
		return
	}
	c.show()
}

func (c *cli) status() {
	state, lastErr := c.ctrl.State()
	fmt.Println("state:", state)
	if lastErr != nil {
		fmt.Println("last error:", lastErr)
	}
}

// dashboard builds the role view from the current snapshot.
func (c *cli) dashboard() (dispatch.Dashboard, bool) {
	self, ok := c.ctrl.Self()
	if !ok {
		fmt.Println("not signed in")
		return dispatch.Dashboard{}, false
	}

	settings, err := c.prefs.Load()
	if err != nil {
		fmt.Println("preferences:", err)
		settings = prefs.DefaultSettings()
	}

	d, err := dispatch.For(self, dispatch.Snapshot{
		Users:    c.ctrl.Users(),
		Entries:  c.ctrl.Entries(),
		Settings: settings,
	}, c.ctrl)
	if err != nil {
		fmt.Println(err)
		return dispatch.Dashboard{}, false
	}
	return d, true
}

func (c *cli) show() {
	d, ok := c.dashboard()
	if !ok {
		return
	}

	fmt.Printf("== %s dashboard — %s ==\n", d.View, d.Settings.SchoolName)
	if len(d.Children) > 0 {
		fmt.Println("children:")
		for _, u := range d.Children {
			fmt.Printf("  %s  %s\n", u.ID, u.Name)
		}
	}
	if d.View == "admin" {
		fmt.Println("users:")
		for _, u := range d.Users {
			fmt.Printf("  %s  %-8s %s\n", u.ID, u.Role, u.Name)
		}
	}
	fmt.Println("journal:")
	for _, e := range d.Entries {
		fmt.Printf("  %s  %s  [%s] %s", e.ID, e.Date, e.Category, e.Content)
		if e.Feedback != "" {
			fmt.Printf("  // %s", e.Feedback)
		}
		fmt.Println()
	}
}

func (c *cli) mutate(ctx context.Context, args []string) {
	d, ok := c.dashboard()
	if !ok {
		return
	}

	switch args[0] {
	case "add":
		if d.AddEntry == nil {
			fmt.Println("not allowed for your role")
			return
		}
		if len(args) < 4 {
			fmt.Println("usage: add <date> <category> <content...>")
			return
		}
		_, err := d.AddEntry(ctx, journal.CreateEntryRequest{
			StudentID: d.Self.ID,
			Date:      args[1],
			Category:  args[2],
			Content:   strings.Join(args[3:], " "),
		})
		report(err)

	case "feedback":
		if d.UpdateEntry == nil {
			fmt.Println("not allowed for your role")
			return
		}
		if len(args) < 3 {
			fmt.Println("usage: feedback <entryID> <text...>")
			return
		}
		entry, found := findEntry(d.Entries, args[1])
		if !found {
			fmt.Println("no such entry")
			return
		}
		feedback := strings.Join(args[2:], " ")
		_, err := d.UpdateEntry(ctx, journal.UpdateEntryRequest{
			ID:        entry.ID,
			StudentID: entry.StudentID,
			Date:      entry.Date,
			Category:  entry.Category,
			Content:   entry.Content,
			Feedback:  feedback,
		})
		report(err)

	case "del":
		if d.DeleteEntry == nil {
			fmt.Println("not allowed for your role")
			return
		}
		if len(args) < 2 {
			fmt.Println("usage: del <entryID>")
			return
		}
		report(d.DeleteEntry(ctx, args[1]))

	case "add-user":
		if d.AddUser == nil {
			fmt.Println("not allowed for your role")
			return
		}
		if len(args) < 3 {
			fmt.Println("usage: add-user <role> <name...>")
			return
		}
		role := strings.ToUpper(args[1])
		if !user.ValidRole(role) {
			fmt.Println("unknown role")
			return
		}
		req := user.CreateUserRequest{
			Role:     role,
			Name:     strings.Join(args[2:], " "),
			Password: c.prompt("password: "),
		}
		switch req.Role {
		case user.RoleStudent:
			req.NISN = c.prompt("NISN: ")
		case user.RoleTeacher:
			req.NIP = c.prompt("NIP: ")
		case user.RoleParent:
			req.NIK = c.prompt("NIK: ")
		case user.RoleAdmin:
			req.Username = c.prompt("username: ")
		}
		_, err := d.AddUser(ctx, req)
		report(err)

	case "del-user":
		if d.DeleteUser == nil {
			fmt.Println("not allowed for your role")
			return
		}
		if len(args) < 2 {
			fmt.Println("usage: del-user <userID>")
			return
		}
		report(d.DeleteUser(ctx, args[1]))

	case "reset":
		if d.ResetAll == nil {
			fmt.Println("not allowed for your role")
			return
		}
		if c.prompt("type 'yes' to wipe all data: ") != "yes" {
			return
		}
		rctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		report(d.ResetAll(rctx))
	}
}

func (c *cli) editSettings(args []string) {
	d, ok := c.dashboard()
	if !ok {
		return
	}
	if !d.CanEditSettings {
		fmt.Println("not allowed for your role")
		return
	}

	switch args[0] {
	case "set-school":
		if len(args) < 2 {
			fmt.Println("usage: set-school <name...>")
			return
		}
		report(c.prefs.SetSchoolName(strings.Join(args[1:], " ")))
	case "set-window":
		if len(args) < 3 {
			fmt.Println("usage: set-window <start> <end>")
			return
		}
		report(c.prefs.SetAttendanceWindow(args[1], args[2]))
	case "set-categories":
		if len(args) < 2 {
			fmt.Println("usage: set-categories <a,b,c>")
			return
		}
		report(c.prefs.SetCategories(strings.Split(args[1], ",")))
	}
}

func findEntry(entries []journal.Entry, id string) (journal.Entry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return journal.Entry{}, false
}

func (c *cli) prompt(label string) string {
	fmt.Print(label)
	if !c.in.Scan() {
		return ""
	}
	return strings.TrimSpace(c.in.Text())
}

func report(err error) {
	if err != nil {
		fmt.Println("failed:", err)
		return
	}
	fmt.Println("ok")
}
