package generate

import (
	"regexp"
	"strings"
)

var (
	boldStars       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicStar      = regexp.MustCompile(`\*(.+?)\*`)
	boldUnderscores = regexp.MustCompile(`__(.+?)__`)
	italicUnder     = regexp.MustCompile(`_(.+?)_`)
)

// inlineEmphasis substitutes bold and italic spans. Double markers are
// matched before single ones to avoid double-matching.
func inlineEmphasis(text string) string {
	text = boldStars.ReplaceAllString(text, "<strong>$1</strong>")
	text = italicStar.ReplaceAllString(text, "<em>$1</em>")
	text = boldUnderscores.ReplaceAllString(text, "<strong>$1</strong>")
	text = italicUnder.ReplaceAllString(text, "<em>$1</em>")
	return text
}

// MarkdownToHTML converts a limited markdown subset to an HTML fragment with
// a single line-oriented pass. It supports # / ## / ### headings, > blockquote
// paragraphs, - and * list items, bold and italic emphasis, and blank lines
// as block separators. Any other non-blank line becomes a paragraph.
func MarkdownToHTML(markdown string) string {
	var out []string
	inList := false
	inBlockquote := false

	closeOpen := func() {
		if inList {
			out = append(out, "</ul>")
			inList = false
		}
		if inBlockquote {
			out = append(out, "</blockquote>")
			inBlockquote = false
		}
	}

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "### "):
			closeOpen()
			out = append(out, "<h3>"+inlineEmphasis(trimmed[4:])+"</h3>")
		case strings.HasPrefix(trimmed, "## "):
			closeOpen()
			out = append(out, "<h2>"+inlineEmphasis(trimmed[3:])+"</h2>")
		case strings.HasPrefix(trimmed, "# "):
			closeOpen()
			out = append(out, "<h2>"+inlineEmphasis(trimmed[2:])+"</h2>")
		case strings.HasPrefix(trimmed, "> "):
			if inList {
				out = append(out, "</ul>")
				inList = false
			}
			if !inBlockquote {
				out = append(out, "<blockquote>")
				inBlockquote = true
			}
			out = append(out, "<p>"+inlineEmphasis(trimmed[2:])+"</p>")
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			if inBlockquote {
				out = append(out, "</blockquote>")
				inBlockquote = false
			}
			if !inList {
				out = append(out, "<ul>")
				inList = true
			}
			out = append(out, "<li>"+inlineEmphasis(trimmed[2:])+"</li>")
		case trimmed == "":
			closeOpen()
		default:
			closeOpen()
			out = append(out, "<p>"+inlineEmphasis(trimmed)+"</p>")
		}
	}
	closeOpen()

	return strings.Join(out, "\n")
}
