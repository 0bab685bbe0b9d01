package oracle

import "github.com/alexpineda/llmdump/internal/core/ports/driven"

const defaultClassifyPrompt = `You are organising crawled documentation pages into topics for a reader.

Group the documents below into a small number of coherent categories
(usually 3 to 12). Use short, human readable category names. Every
document should appear in exactly one category. Refer to documents by
their exact "url" value.

Respond with a JSON object and nothing else, in this shape:
{"categories": [{"category": "Getting Started", "refUrls": ["https://..."]}]}

Documents:
%s`

const defaultIdentifierPrompt = `Pick a short identifier for the documentation set below. It will be
used as a file name, so use lowercase words joined by hyphens, at most
five words, for example "react-router-docs".

Respond with a JSON object and nothing else, in this shape:
{"identifier": "react-router-docs"}

Documents:
%s`

const defaultCleanupPrompt = `You clean up markdown scraped from documentation websites.

Remove navigation menus, cookie banners, footers, "edit this page"
links, repeated headers and other page chrome. Keep every piece of
technical content: prose, code blocks, tables, lists and links that are
part of the text. Do not summarise and do not add commentary.

Reply with the cleaned markdown only.`

// DefaultPrompts returns the built-in prompt templates keyed by prompt
// name. The classify and identifier templates take one %s verb for the
// JSON document list.
func DefaultPrompts() map[string]string {
	return map[string]string{
		driven.PromptClassify:   defaultClassifyPrompt,
		driven.PromptIdentifier: defaultIdentifierPrompt,
		driven.PromptCleanup:    defaultCleanupPrompt,
	}
}
