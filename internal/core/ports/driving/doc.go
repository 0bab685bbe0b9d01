// Package driving declares what front ends can ask of llmdump: start and
// curate a session, export it, manage archived sessions and settings.
// The CLI and the MCP server both drive the application through these
// interfaces; internal/core/services implements them.
package driving
