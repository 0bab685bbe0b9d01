// Package file implements driven.SessionStore as JSON files on disk.
//
// Layout:
//
//	{dataDir}/sessions/current/crawl.json
//	{dataDir}/sessions/current/categories.json
//	{dataDir}/sessions/current/identifier.json
//	{dataDir}/sessions/archive/{key}/...
//
// Archive keys start with a UTC timestamp, so a directory listing sorts
// oldest first.
package file
