package mcp

import (
	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Curation opens and refines sessions.
	Curation driving.CurationService

	// Export writes sessions as markdown. Optional; the export tool
	// fails without it.
	Export driving.ExportService

	// Session lists stored sessions. Optional.
	Session driving.SessionService

	// Settings supplies export defaults. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Curation == nil {
		return ErrMissingCurationService
	}
	return nil
}

// exportDefaults returns the configured export settings, falling back to
// the built-in defaults when settings are unavailable.
func (p *Ports) exportDefaults() domain.ExportSettings {
	if p.Settings != nil {
		if settings, err := p.Settings.Get(); err == nil && settings != nil {
			return settings.Export
		}
	}
	return domain.DefaultAppSettings().Export
}
