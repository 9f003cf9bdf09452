// Package tui provides the interactive chat terminal interface.
// It is a driving adapter over the session and index ports.
package tui

import (
	"github.com/custodia-labs/assetchat/internal/core/domain"
	"github.com/custodia-labs/assetchat/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI uses.
type Ports struct {
	// Sessions starts conversations.
	Sessions driving.SessionService

	// Index describes the loaded index. Optional.
	Index driving.IndexService

	// Mode is the active answer strategy, shown in the status bar.
	Mode domain.ChatMode

	// Examples overrides the example questions.
	Examples []string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Sessions == nil {
		return ErrMissingSessionService
	}
	return nil
}
