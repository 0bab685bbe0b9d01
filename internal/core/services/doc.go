// Package services implements the driving ports: curation of a crawled
// site into categories, export to markdown, archived sessions and settings.
//
// Services hold no session state. Every operation receives the session it
// acts on and returns the updated value, persisting through the session
// store after each mutation.
package services
