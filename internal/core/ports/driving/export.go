package driving

import (
	"context"

	"github.com/alexpineda/llmdump/internal/core/domain"
)

// ExportOptions configures document assembly.
type ExportOptions struct {
	// Mode selects single-file or per-category output.
	Mode domain.AssemblyMode

	// Clean runs each document body through the cleanup oracle.
	Clean bool

	// Manifest also writes a YAML manifest describing the export.
	Manifest bool
}

// ExportService assembles a session into markdown files.
type ExportService interface {
	// WriteDocumentsToFile writes the session's categorised documents under
	// outputDir and returns the written paths in write order.
	WriteDocumentsToFile(ctx context.Context, session *domain.Session, outputDir string, opts ExportOptions) ([]string, error)
}
