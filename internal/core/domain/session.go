package domain

import (
	"regexp"
	"strings"
	"time"
)

// CurrentSessionKey is the key of the working session.
// Archived sessions are stored under other keys.
const CurrentSessionKey = "current"

// maxIdentifierLength caps identifiers used as filename stems.
const maxIdentifierLength = 48

// defaultIdentifier is used when sanitising leaves nothing behind.
const defaultIdentifier = "crawl"

// Session is one crawl result with its categories and identifier.
// Services take a Session and return the updated value; nothing in the
// core holds session state between calls.
type Session struct {
	// Key locates the session in the SessionStore.
	Key string

	// Crawl is the crawl result the categories refer to.
	Crawl CrawlResult

	// Categories is the current grouping of the crawl's documents.
	Categories CategorySet

	// Identifier names the session and prefixes exported filenames.
	Identifier string
}

// IsCurrent reports whether the session is the working session.
func (s Session) IsCurrent() bool {
	return s.Key == CurrentSessionKey
}

// SessionInfo describes a stored session for listings.
type SessionInfo struct {
	Key           string
	Identifier    string
	SourceURL     string
	DocumentCount int
	CategoryCount int
	CreatedAt     time.Time
}

var (
	identifierInvalid = regexp.MustCompile(`[^a-z0-9_-]+`)
	whitespaceRun     = regexp.MustCompile(`\s+`)
)

// SanitizeIdentifier makes an oracle-supplied identifier safe to use as a
// file or directory name: lowercase, anything outside [a-z0-9_-] collapsed
// to "-", trimmed, capped in length. An identifier that sanitises to
// nothing becomes "crawl".
func SanitizeIdentifier(raw string) string {
	id := strings.ToLower(strings.TrimSpace(raw))
	id = identifierInvalid.ReplaceAllString(id, "-")
	id = strings.Trim(id, "-_")
	if len(id) > maxIdentifierLength {
		id = strings.TrimRight(id[:maxIdentifierLength], "-_")
	}
	if id == "" {
		return defaultIdentifier
	}
	return id
}

// CategoryFileComponent turns a category name into the part of a filename
// that follows the identifier: whitespace runs become "_" and path
// separators become "-".
func CategoryFileComponent(name string) string {
	out := whitespaceRun.ReplaceAllString(strings.TrimSpace(name), "_")
	return strings.NewReplacer("/", "-", `\`, "-").Replace(out)
}
