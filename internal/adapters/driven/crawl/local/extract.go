package local

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/alexpineda/llmdump/internal/core/domain"
)

var errNoContent = errors.New("no readable content")

// extract turns an HTML page into a CrawledDocument. The title comes from
// readability, then <title>; the description from the meta description
// tags; the content is readability's main article rendered as markdown.
func extract(pageURL string, body []byte) (domain.CrawledDocument, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return domain.CrawledDocument{}, err
	}

	page, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.CrawledDocument{}, fmt.Errorf("parse html: %w", err)
	}

	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(body), parsed)
	if err != nil {
		return domain.CrawledDocument{}, fmt.Errorf("readability: %w", err)
	}

	content, err := toMarkdown(article.Content)
	if err != nil {
		return domain.CrawledDocument{}, err
	}
	if content == "" {
		return domain.CrawledDocument{}, errNoContent
	}

	title := normalizeSpace(article.Title)
	if title == "" {
		title = normalizeSpace(page.Find("title").First().Text())
	}

	return domain.CrawledDocument{
		URL:         pageURL,
		Title:       title,
		Description: metaDescription(page),
		Content:     content,
	}, nil
}

func metaDescription(page *goquery.Document) string {
	for _, sel := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
		if v, ok := page.Find(sel).First().Attr("content"); ok {
			if v = normalizeSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// toMarkdown renders the block elements of an article fragment as
// markdown. Inline formatting other than links and code is dropped.
func toMarkdown(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parse article: %w", err)
	}

	var blocks []string
	doc.Find("h1,h2,h3,h4,h5,h6,p,li,pre,blockquote,table").Each(func(_ int, s *goquery.Selection) {
		// Nested matches are rendered by their outermost block, except list
		// items, which render one per line.
		outer := "pre,table,blockquote,p"
		if goquery.NodeName(s) != "li" {
			outer += ",li"
		}
		if s.ParentsFiltered(outer).Length() > 0 {
			return
		}
		if block := renderBlock(s); block != "" {
			blocks = append(blocks, block)
		}
	})
	return strings.Join(blocks, "\n\n"), nil
}

func renderBlock(s *goquery.Selection) string {
	tag := goquery.NodeName(s)
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		text := inlineText(s)
		if text == "" {
			return ""
		}
		return strings.Repeat("#", int(tag[1]-'0')) + " " + text
	case "pre":
		return renderCode(s)
	case "li":
		ordered := goquery.NodeName(s.Parent()) == "ol"
		if s.Find("li").Length() > 0 {
			// Only the item's own text; nested items render separately.
			clone := s.Clone()
			clone.Find("ul,ol").Remove()
			s = clone
		}
		text := inlineText(s)
		if text == "" {
			return ""
		}
		if ordered {
			return "1. " + text
		}
		return "- " + text
	case "blockquote":
		text := inlineText(s)
		if text == "" {
			return ""
		}
		return "> " + text
	case "table":
		return renderTable(s)
	default:
		return inlineText(s)
	}
}

func renderCode(s *goquery.Selection) string {
	codeSel := s.Find("code").First()
	code := s.Text()
	lang := ""
	if codeSel.Length() > 0 {
		code = codeSel.Text()
		if class, ok := codeSel.Attr("class"); ok {
			for _, c := range strings.Fields(class) {
				if strings.HasPrefix(c, "language-") {
					lang = strings.TrimPrefix(c, "language-")
					break
				}
			}
		}
	}
	code = strings.Trim(code, "\n")
	if strings.TrimSpace(code) == "" {
		return ""
	}
	return "```" + lang + "\n" + code + "\n```"
}

func renderTable(s *goquery.Selection) string {
	var rows [][]string
	s.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.ReplaceAll(inlineText(cell), "|", `\|`))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	if len(rows) == 0 {
		return ""
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	var b strings.Builder
	for i, r := range rows {
		for len(r) < width {
			r = append(r, "")
		}
		b.WriteString("| " + strings.Join(r, " | ") + " |")
		if i == 0 {
			b.WriteString("\n|" + strings.Repeat(" --- |", width))
		}
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// inlineText flattens a block to one line, keeping links and inline code.
func inlineText(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		writeInline(&b, n)
	}
	return normalizeSpace(b.String())
}

func writeInline(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "a":
			text := normalizeSpace(nodeText(n))
			href := attr(n, "href")
			if href == "" || text == "" || strings.HasPrefix(href, "#") {
				b.WriteString(text)
				return
			}
			b.WriteString("[" + text + "](" + href + ")")
			return
		case "code":
			if text := nodeText(n); strings.TrimSpace(text) != "" {
				b.WriteString("`" + strings.TrimSpace(text) + "`")
			}
			return
		case "br":
			b.WriteString(" ")
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeInline(b, c)
	}
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
