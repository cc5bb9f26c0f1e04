package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/clipboardhistoryio/companion/internal/client/client"
	"github.com/clipboardhistoryio/companion/internal/client/dashboard"
	"github.com/clipboardhistoryio/companion/internal/client/gate"
	"github.com/clipboardhistoryio/companion/internal/client/signin"
	"github.com/clipboardhistoryio/companion/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

const (
	helpSignIn      = "Enter your email, then the code we send you. Commands: edit, exit"
	helpNothing     = "Waiting for the session or the subscription check. Commands: logout, exit"
	helpCheckFailed = "Commands: retry, logout, exit"
	helpDashboard   = "Available commands: (l)ist, tab <all|favorites|cloud>, search [text], " +
		"add <text> [#tag...] [--fav], fav <id>, unfav <id>, reload, logout, exit"
)

func (a *App) getStatus() string {
	s := ""
	if u := a.session.State().User; u != nil {
		s = u.Email + " "
	}
	if m := a.Mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", strings.TrimSpace(s))
	}
	return s
}

// Root prints the greeting and runs the REPL until the user exits or input
// ends.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to Clipboard History companion (type 'help' for commands)")
	runREPL(ctx, a)
}

// runREPL is a read-eval-print loop whose commands depend on the current
// view:
//
//	sign-in:      email, then code; edit, exit
//	nothing:      logout, exit (empty line re-checks)
//	check-failed: retry, logout, exit
//	dashboard:    list, tab, search, add, fav, unfav, reload, logout, exit
//
// Handler errors are reported to the user and never end the loop.
func runREPL(ctx context.Context, a *App) {
	for {
		a.page.Refresh(ctx)
		v := a.page.View()
		if v != a.lastView {
			a.lastView = v
			a.enter(ctx, v)
		}

		var quit bool
		switch v {
		case gate.ViewSignIn:
			quit = a.signInStep(ctx)
		default:
			quit = a.command(ctx, v)
		}
		if quit {
			return
		}
	}
}

// enter runs once each time the REPL switches to v.
func (a *App) enter(ctx context.Context, v gate.View) {
	switch v {
	case gate.ViewCheckFailed:
		printlnFn(fmt.Sprintf("Could not check your subscription: %v", a.page.CheckErr()))
		printlnFn("Type 'retry' to try again.")
	case gate.ViewDashboard:
		a.dash.Load(ctx)
		a.list()
	}
}

func isExit(s string) bool {
	return s == "exit" || s == "quit"
}

func (a *App) signInStep(ctx context.Context) bool {
	flow := a.page.Flow()
	st := flow.Snapshot()

	switch st.Step {
	case signin.StepEmailEntry:
		line, err := GetSimpleText(a.reader, fmt.Sprintf("Sign in %s\nEmail:", a.getStatus()), a.out)
		if err != nil {
			return true
		}
		switch {
		case isExit(line):
			printlnFn("Bye!")
			return true
		case line == "help":
			printlnFn(helpSignIn)
			return false
		}
		flow.SetEmail(line)
		_ = flow.Submit(ctx)

	case signin.StepCodeEntry:
		prompt := fmt.Sprintf("Enter the %d-digit code sent to %s ('edit' changes the email):",
			common.CodeLength, st.Form.Email)
		code, entered, err := GetCode(a.reader, prompt, a.out, func(typed string) bool {
			_ = flow.SetCode(ctx, typed)
			return utf8.RuneCountInString(typed) >= common.CodeLength
		})
		if err != nil {
			return true
		}
		if !entered {
			break
		}
		switch {
		case isExit(code):
			printlnFn("Bye!")
			return true
		case code == "help":
			printlnFn(helpSignIn)
			return false
		case code == "edit":
			flow.EditEmail()
			return false
		}
		a.enterCode(ctx, flow, code)
	}

	a.printFieldErrors(flow.Snapshot())
	return false
}

// enterCode replaces the code field with code. A complete code submits
// itself; an empty line resubmits what the field holds.
func (a *App) enterCode(ctx context.Context, flow *signin.Flow, code string) {
	if code == "" {
		_ = flow.Submit(ctx)
		return
	}
	_ = flow.SetCode(ctx, "")
	_ = flow.SetCode(ctx, code)
	if utf8.RuneCountInString(code) < common.CodeLength {
		_ = flow.Submit(ctx)
	}
}

func (a *App) printFieldErrors(st signin.State) {
	if st.Errors.Email != "" {
		printlnFn(st.Errors.Email)
	}
	if st.Errors.Code != "" {
		printlnFn(st.Errors.Code)
	}
}

// command reads and runs one command outside the sign-in form.
func (a *App) command(ctx context.Context, v gate.View) bool {
	line, err := GetSimpleText(a.reader, fmt.Sprintf("cbh %s", a.getStatus()), a.out)
	if err != nil {
		return true
	}
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd, args := parts[0], parts[1:]

	switch {
	case isExit(cmd):
		printlnFn("Bye!")
		return true
	case cmd == "logout":
		a.logout(ctx)
		return false
	}

	switch v {
	case gate.ViewNothing:
		if cmd == "help" {
			printlnFn(helpNothing)
			return false
		}
	case gate.ViewCheckFailed:
		switch cmd {
		case "help":
			printlnFn(helpCheckFailed)
			return false
		case "retry":
			a.page.Retry(ctx)
			return false
		}
	case gate.ViewDashboard:
		if a.dashboardCommand(ctx, cmd, args) {
			return false
		}
	}

	printlnFn("Unknown command:", cmd)
	return false
}

// dashboardCommand runs cmd and reports whether it was recognised.
func (a *App) dashboardCommand(ctx context.Context, cmd string, args []string) bool {
	switch cmd {
	case "help":
		printlnFn(helpDashboard)

	case "l", "list":
		a.list()

	case "tab":
		if len(args) != 1 {
			printlnFn("Usage: tab <all|favorites|cloud>")
			return true
		}
		tab, err := dashboard.ParseTab(args[0])
		if err != nil {
			printlnFn(err.Error())
			return true
		}
		a.dash.SetTab(tab)
		a.list()

	case "search":
		a.dash.SetSearch(strings.Join(args, " "))
		a.list()

	case "add":
		a.add(ctx, args)

	case "fav", "unfav":
		if len(args) != 1 {
			printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
			return true
		}
		a.favorite(ctx, args[0], cmd == "fav")

	case "reload":
		a.dash.Load(ctx)
		a.list()

	default:
		return false
	}
	return true
}

func (a *App) logout(ctx context.Context) {
	if err := a.session.SignOut(ctx); err != nil {
		a.logger.Error(ctx, "sign out failed", "error", err)
	}
	a.dash.SetSearch("")
	a.dash.SetTab(dashboard.TabAll)
	printlnFn("Signed out.")
}

func (a *App) list() {
	if a.dash.Blank(a.session.State().IsLoading) {
		return
	}

	header := fmt.Sprintf("[%s]", a.dash.Tab())
	if s := a.dash.Search(); s != "" {
		header += fmt.Sprintf(" search: %q", s)
	}
	printlnFn(header)

	entries := a.dash.Entries()
	if len(entries) == 0 {
		printlnFn(a.dash.EmptyMessage())
		return
	}
	for _, e := range entries {
		printlnFn(formatEntry(e))
	}
}

func (a *App) add(ctx context.Context, args []string) {
	content, tags, fav := parseAdd(args)
	if content == "" {
		printlnFn("Usage: add <text> [#tag...] [--fav]")
		return
	}

	e, err := a.store.AddEntry(ctx, content, tags, fav)
	if err != nil {
		a.reportError(ctx, "add entry", err)
		return
	}
	printlnFn("Added", e.ID)

	a.dash.Load(ctx)
	a.list()
}

func (a *App) favorite(ctx context.Context, id string, fav bool) {
	if err := a.store.SetFavorite(ctx, id, fav); err != nil {
		a.reportError(ctx, "set favorite", err)
		return
	}

	a.dash.Load(ctx)
	a.list()
}

func (a *App) reportError(ctx context.Context, op string, err error) {
	a.logger.Warn(ctx, op+" failed", "error", err)
	var msg string
	switch {
	case errors.Is(err, client.ErrUnavailable):
		msg = signin.MsgUnreachable
	case errors.Is(err, client.ErrRateLimited):
		msg = signin.MsgRateLimited
	default:
		msg = err.Error()
	}
	printlnFn(fmt.Sprintf("Could not %s: %s", op, msg))
}
