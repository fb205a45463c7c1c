// Package publisher models the admin client's state: the authentication gate
// in front of the upload form, and the form's single-in-flight submission
// rules. Like the reader session, a Gate belongs to one page session and is
// not safe for concurrent use.
package publisher

import (
	"errors"
	"strings"

	"github.com/gospel-app/backend/internal/trust"
)

// State enumerates the gate's two states.
type State string

const (
	// StateUnauthenticated renders the password prompt.
	StateUnauthenticated State = "unauthenticated"
	// StateAuthenticated renders the upload form. It lasts for the current
	// page session only; a reload starts over (except via device trust).
	StateAuthenticated State = "authenticated"
)

const incorrectPasswordMessage = "Incorrect password."

var errMissingAdminSecret = errors.New("publisher: admin secret required")

// GateConfig configures the authentication gate.
type GateConfig struct {
	AdminSecret string
	Trust       trust.DeviceTrustChecker
}

// Gate is the Unauthenticated -> Authenticated state machine in front of the
// upload form. Entry is by exact password match or by a positive device-trust
// check on page load. A wrong password re-renders the prompt with an inline
// message; there is no lockout or attempt counter.
type Gate struct {
	adminSecret string
	trust       trust.DeviceTrustChecker
	state       State
	message     string
}

// NewGate constructs a closed gate.
func NewGate(cfg GateConfig) (*Gate, error) {
	if cfg.AdminSecret == "" {
		return nil, errMissingAdminSecret
	}
	return &Gate{
		adminSecret: cfg.AdminSecret,
		trust:       cfg.Trust,
		state:       StateUnauthenticated,
	}, nil
}

// State returns the current gate state.
func (g *Gate) State() State {
	return g.state
}

// Message returns the inline message shown near the password form.
func (g *Gate) Message() string {
	return g.message
}

// SubmitPassword attempts the password gate. The comparison is exact and
// case-sensitive. It reports whether the gate opened.
func (g *Gate) SubmitPassword(candidate string) bool {
	if candidate == g.adminSecret {
		g.state = StateAuthenticated
		g.message = ""
		return true
	}
	g.message = incorrectPasswordMessage
	return false
}

// CheckDevice runs the automatic trust check with the locally computed
// fingerprint, opening the gate without a password for allow-listed devices.
func (g *Gate) CheckDevice(fingerprint string) bool {
	if g.trust == nil {
		return false
	}
	if !g.trust.IsTrusted(strings.TrimSpace(fingerprint)) {
		return false
	}
	g.state = StateAuthenticated
	g.message = ""
	return true
}
