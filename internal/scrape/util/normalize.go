package util

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	nonAlnumRe = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	markupRe   = regexp.MustCompile(`<(/?[a-zA-Z][a-zA-Z0-9]*)[^>]*>`)
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// NormalizeNewlines turns \r\n and lone \r into \n.
func NormalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// StripNonAlnum keeps letters, digits and whitespace only.
func StripNonAlnum(s string) string {
	return CleanText(nonAlnumRe.ReplaceAllString(s, ""))
}

// LooksLikeHTML reports whether s carries element tags.
func LooksLikeHTML(s string) bool {
	return markupRe.MatchString(s)
}

// HTMLToText renders markup as plain text, keeping one line per block
// element. Plain text is returned unchanged.
func HTMLToText(s string) string {
	if !LooksLikeHTML(s) {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, li, div, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = CleanText(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// ContainsAny reports whether the lower-cased text contains any needle.
func ContainsAny(text string, needles ...string) bool {
	low := strings.ToLower(text)
	for _, n := range needles {
		if n != "" && strings.Contains(low, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
