package generate

import (
	"strings"
)

// sectionMarkers are the leading emoji the script prompt mandates for its
// five labeled sections.
var sectionMarkers = []string{"🎬", "📖", "🔍", "💡", "📢"}

// defaultSectionMarker tags a leading fragment that precedes the first marker.
const defaultSectionMarker = "📄"

// Section is one displayable slice of a generated script.
type Section struct {
	Emoji   string `json:"emoji"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ParseSections splits a raw script on the section marker emoji. Each marker
// starts a new section; the first line yields the marker and title, the rest
// is the body. Sections with neither title nor body are discarded, and a
// non-empty fragment before the first marker becomes a section with the
// default marker.
func ParseSections(script string) []Section {
	var sections []Section
	for _, part := range splitOnMarkers(script) {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}

		lines := strings.SplitN(trimmed, "\n", 2)
		firstLine := lines[0]

		emoji := defaultSectionMarker
		title := firstLine
		for _, marker := range sectionMarkers {
			if strings.HasPrefix(firstLine, marker) {
				emoji = marker
				title = strings.TrimPrefix(firstLine, marker)
				break
			}
		}
		title = strings.TrimSpace(title)

		content := ""
		if len(lines) > 1 {
			content = strings.TrimSpace(lines[1])
		}

		if title != "" || content != "" {
			sections = append(sections, Section{Emoji: emoji, Title: title, Content: content})
		}
	}
	return sections
}

// splitOnMarkers cuts the script immediately before every marker occurrence,
// keeping the markers with their sections.
func splitOnMarkers(script string) []string {
	var boundaries []int
	for i := 0; i < len(script); {
		advanced := false
		for _, marker := range sectionMarkers {
			if strings.HasPrefix(script[i:], marker) {
				boundaries = append(boundaries, i)
				i += len(marker)
				advanced = true
				break
			}
		}
		if !advanced {
			i++
		}
	}

	if len(boundaries) == 0 {
		return []string{script}
	}

	parts := make([]string, 0, len(boundaries)+1)
	if boundaries[0] > 0 {
		parts = append(parts, script[:boundaries[0]])
	}
	for i, start := range boundaries {
		end := len(script)
		if i+1 < len(boundaries) {
			end = boundaries[i+1]
		}
		parts = append(parts, script[start:end])
	}
	return parts
}
