package embed

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	paragraphRe = regexp.MustCompile(`(?s)<p[^>]*>(.*?)</p>`)
	divRe       = regexp.MustCompile(`(?s)<div[^>]*>(.*?)</div>`)
	anyTagRe    = regexp.MustCompile(`(?s)<[^>]+>(.*?)</[^>]+>`)
)

// ExtractExcerpt derives a short plain-text preview from a raw description.
//
// Markup input: the content of the first paragraph tag wins, then the first
// div, then the first matched tag pair; the extracted content has any nested
// markup stripped. Plain text: everything before the first blank line. Empty
// input yields "". The extraction is lossy on malformed markup; a wrong
// fallback is tolerated, not retried.
func ExtractExcerpt(text string) string {
	if text == "" {
		return ""
	}

	if strings.Contains(text, "<") && strings.Contains(text, ">") {
		if m := paragraphRe.FindStringSubmatch(text); m != nil {
			return stripMarkup(m[1])
		}
		if m := divRe.FindStringSubmatch(text); m != nil {
			return stripMarkup(m[1])
		}
		if m := anyTagRe.FindStringSubmatch(text); m != nil {
			return stripMarkup(m[1])
		}
	}

	// Plain text: first blank-line-separated segment.
	if idx := strings.Index(text, "\n\n"); idx >= 0 {
		return strings.TrimSpace(text[:idx])
	}
	return strings.TrimSpace(text)
}

// stripMarkup flattens any nested tags inside an extracted fragment to their
// text content. html.Parse never fails on arbitrary input; it recovers instead.
func stripMarkup(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return strings.TrimSpace(fragment)
	}
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	var text strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
			text.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(strings.Fields(text.String()), " ")
}
