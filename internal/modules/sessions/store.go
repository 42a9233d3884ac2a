// Package sessions provides session-scoped state: the sticky echo of prior
// form submissions, the selected UX mode, and enrollment status. The
// advisory core never reaches into session state directly; it only sees the
// narrow Store interface.
package sessions

import "time"

// Store is the session-scoped key-value state the plan builder writes its
// single side effect into (the data-sharing opt-in flag).
type Store interface {
	SetDataShareOptIn(sessionID string, optIn bool) error
}

// Session is one visitor's server-side state.
type Session struct {
	ID             string
	Mode           string
	Sticky         map[string]string // Raw form values echoed back into the form
	DataShareOptIn bool
	Enrolled       bool
	UpdatedAt      time.Time
}
