package markdown

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

var (
	imageRe        = regexp.MustCompile(`!\[[^\]]*\]\([^\)]+\)`)
	blankRunRe     = regexp.MustCompile(`\n{3,}`)
	invalidEscRe   = regexp.MustCompile(`\\([^\\nrt"'bfvx0-7*_#\[\]()` + "`" + `>-])`)
	controlCharsRe = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ConvertHTMLToMarkdown converts an HTML fragment to markdown and does a light
// cleanup. Entity-escaped input (as forum APIs return it) is unescaped first.
func ConvertHTMLToMarkdown(fragment string) string {
	if strings.Contains(fragment, "&lt;") {
		fragment = html.UnescapeString(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	body := doc.Find("body")
	body.Find("script, style, noscript, iframe, svg, form, button, input").Each(func(_ int, s *goquery.Selection) { s.Remove() })

	inner, err := body.Html()
	if err != nil {
		return ""
	}

	conv := md.NewConverter("", true, nil)
	out, err := conv.ConvertString(inner)
	if err != nil {
		return ""
	}
	return CleanMarkdownBoilerplate(out)
}

// fixInvalidEscapes drops stray backslashes and characters that break JSON
// encoding of the text later on.
func fixInvalidEscapes(text string) string {
	text = invalidEscRe.ReplaceAllString(text, "$1")
	return fixControlCharacters(text)
}

// fixControlCharacters removes control and invisible characters.
func fixControlCharacters(text string) string {
	text = controlCharsRe.ReplaceAllString(text, "")

	invisibleChars := []string{
		"\u200B", // zero-width space
		"\u200C", // zero-width non-joiner
		"\u200D", // zero-width joiner
		"\u200E", // left-to-right mark
		"\u200F", // right-to-left mark
		"\u2028", // line separator
		"\u2029", // paragraph separator
		"\uFEFF", // byte order mark
		"\uFFFD", // replacement character
	}
	for _, char := range invisibleChars {
		text = strings.ReplaceAll(text, char, "")
	}
	return text
}

// CleanMarkdownBoilerplate removes markdown-level noise: blank lines, pure
// image lines, invalid escapes and control characters.
func CleanMarkdownBoilerplate(mdText string) string {
	lines := strings.Split(mdText, "\n")
	out := make([]string, 0, len(lines))

	for _, l := range lines {
		line := strings.TrimRight(l, " \t\r")
		if strings.TrimSpace(line) == "" {
			out = append(out, "")
			continue
		}
		if imageRe.MatchString(line) && strings.TrimSpace(imageRe.ReplaceAllString(line, "")) == "" {
			continue
		}
		out = append(out, fixInvalidEscapes(line))
	}

	cleaned := strings.Join(out, "\n")
	cleaned = blankRunRe.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

// Truncate cuts s to at most max runes, appending marker when it had to cut.
func Truncate(s string, max int, marker string) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + marker
}
