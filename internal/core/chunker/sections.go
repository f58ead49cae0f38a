package chunker

import (
	"regexp"
	"strings"
)

// Section is a heading-delimited span of a document. HeadingLevel 0 means
// the section has no heading.
type Section struct {
	Heading      *string
	HeadingLevel int
	Content      string
	StartLine    int
}

// A heading line is 1-6 '#' characters, whitespace, then non-empty text.
var headingRe = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// ParseSections splits markdown-ish text into an ordered list of sections.
// Non-heading lines accumulate verbatim into the current section, blank
// lines included; they act as paragraph separators later. A document with
// no headings yields exactly one heading-less section. Heading markers
// inside fenced code blocks still start a new section.
func ParseSections(text string) []Section {
	lines := strings.Split(text, "\n")

	var sections []Section
	current := Section{StartLine: 0}
	var buf []string

	// A section is kept only if it has a heading or non-blank content, so
	// stray blank lines before the first heading are dropped.
	close := func() {
		content := strings.TrimSpace(strings.Join(buf, "\n"))
		if content == "" && current.Heading == nil {
			return
		}
		current.Content = content
		sections = append(sections, current)
	}

	for i, line := range lines {
		m := headingRe.FindStringSubmatch(line)
		if m == nil {
			buf = append(buf, line)
			continue
		}
		close()
		heading := strings.TrimSpace(m[2])
		current = Section{
			Heading:      &heading,
			HeadingLevel: len(m[1]),
			StartLine:    i,
		}
		buf = buf[:0]
	}
	close()

	return sections
}
