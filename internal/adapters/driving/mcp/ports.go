package mcp

import (
	"github.com/custodia-labs/assetchat/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server uses.
type Ports struct {
	// Sessions answers questions; each MCP client can keep its own session.
	Sessions driving.SessionService

	// Index serves similarity search and the summary resources.
	Index driving.IndexService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Sessions == nil {
		return ErrMissingSessionService
	}
	if p.Index == nil {
		return ErrMissingIndexService
	}
	return nil
}
