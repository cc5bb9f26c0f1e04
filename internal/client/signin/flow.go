// Package signin is the two-step magic-code sign-in form: the user enters an
// email, receives a code, and enters the code to establish a session.
package signin

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/clipboardhistoryio/companion/internal/client/client"
	"github.com/clipboardhistoryio/companion/internal/common"
	"github.com/clipboardhistoryio/companion/internal/logging"
)

// Step is the form step. The zero value is StepEmailEntry.
type Step int

const (
	StepEmailEntry Step = iota
	StepCodeEntry
)

func (s Step) String() string {
	switch s {
	case StepEmailEntry:
		return "email"
	case StepCodeEntry:
		return "code"
	}
	return "unknown"
}

// Field error messages.
const (
	MsgEmailRequired = "Email is required"
	MsgCodeRequired  = "Code is required"
	MsgInvalidEmail  = "Invalid email"
	MsgInvalidCode   = "Invalid code"
	MsgUnreachable   = "Network unreachable, try again"
	MsgRateLimited   = "Too many requests, try again later"
)

var (
	// ErrSubmitting is returned when a submit is already in flight.
	ErrSubmitting = errors.New("submit in progress")
	// ErrRequired is returned when the current step's field is empty.
	ErrRequired = errors.New("field is required")
)

// Auth is the backend the flow talks to.
type Auth interface {
	SendMagicCode(ctx context.Context, email string) error
	SignInWithMagicCode(ctx context.Context, email, code string) error
}

type Form struct {
	Email string
	Code  string
}

type FieldErrors struct {
	Email string
	Code  string
}

// State is a copy of the flow at one instant.
type State struct {
	Step       Step
	Form       Form
	Errors     FieldErrors
	Submitting bool
}

// Flow is safe for concurrent use. Backend calls run without the lock held;
// a result that arrives after EditEmail is discarded.
type Flow struct {
	auth   Auth
	logger logging.Logger

	mu         sync.Mutex
	step       Step
	form       Form
	errs       FieldErrors
	submitting bool
	gen        uint64
	onSignedIn func()
}

func New(auth Auth, logger logging.Logger) *Flow {
	return &Flow{auth: auth, logger: logger.With("module", "signin")}
}

// OnSignedIn sets fn to run after every successful sign-in, once the form
// has been reset.
func (f *Flow) OnSignedIn(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onSignedIn = fn
}

func (f *Flow) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{Step: f.step, Form: f.form, Errors: f.errs, Submitting: f.submitting}
}

func (f *Flow) SetEmail(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.form.Email = v
}

func truncate(v string, n int) string {
	if utf8.RuneCountInString(v) <= n {
		return v
	}
	return string([]rune(v)[:n])
}

// SetCode stores v cut to common.CodeLength characters. When the code goes
// from incomplete to complete at StepCodeEntry, and no submit is in flight,
// it is submitted and the result returned.
func (f *Flow) SetCode(ctx context.Context, v string) error {
	v = truncate(v, common.CodeLength)

	f.mu.Lock()
	wasComplete := utf8.RuneCountInString(f.form.Code) == common.CodeLength
	f.form.Code = v
	complete := utf8.RuneCountInString(v) == common.CodeLength

	if f.step != StepCodeEntry || wasComplete || !complete || f.submitting {
		f.mu.Unlock()
		return nil
	}
	f.submitting = true
	step, form, gen := f.step, f.form, f.gen
	f.mu.Unlock()

	return f.run(ctx, step, form, gen)
}

// Submit submits the current step.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitting
	}

	switch f.step {
	case StepEmailEntry:
		if strings.TrimSpace(f.form.Email) == "" {
			f.errs.Email = MsgEmailRequired
			f.mu.Unlock()
			return ErrRequired
		}
	case StepCodeEntry:
		if f.form.Code == "" {
			f.errs.Code = MsgCodeRequired
			f.mu.Unlock()
			return ErrRequired
		}
	}

	f.submitting = true
	step, form, gen := f.step, f.form, f.gen
	f.mu.Unlock()

	return f.run(ctx, step, form, gen)
}

// EditEmail goes back to StepEmailEntry with a cleared form.
func (f *Flow) EditEmail() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = StepEmailEntry
	f.form = Form{}
	f.errs = FieldErrors{}
	f.gen++
}

func (f *Flow) run(ctx context.Context, step Step, form Form, gen uint64) error {
	switch step {
	case StepEmailEntry:
		err := f.auth.SendMagicCode(ctx, strings.TrimSpace(form.Email))

		f.mu.Lock()
		defer f.mu.Unlock()
		f.submitting = false
		if f.gen != gen {
			return err
		}
		if err != nil {
			f.logger.Warn(ctx, "send code failed", "step", step, "error", err)
			f.errs.Email = message(err, MsgInvalidEmail)
			return err
		}
		f.step = StepCodeEntry
		f.form.Code = ""
		f.errs = FieldErrors{}
		return nil

	case StepCodeEntry:
		err := f.auth.SignInWithMagicCode(ctx, strings.TrimSpace(form.Email), form.Code)

		f.mu.Lock()
		f.submitting = false
		if f.gen != gen {
			f.mu.Unlock()
			return err
		}
		if err != nil {
			f.logger.Warn(ctx, "verify code failed", "step", step, "error", err)
			f.errs.Code = message(err, MsgInvalidCode)
			if !errors.Is(err, client.ErrUnavailable) {
				f.form.Code = ""
			}
			f.mu.Unlock()
			return err
		}
		f.step = StepEmailEntry
		f.form = Form{}
		f.errs = FieldErrors{}
		f.gen++
		hook := f.onSignedIn
		f.mu.Unlock()

		if hook != nil {
			hook()
		}
		return nil
	}

	f.mu.Lock()
	f.submitting = false
	f.mu.Unlock()
	return nil
}

// message picks the field error shown for err.
func message(err error, rejected string) string {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		return MsgUnreachable
	case errors.Is(err, client.ErrRateLimited):
		return MsgRateLimited
	default:
		return rejected
	}
}
