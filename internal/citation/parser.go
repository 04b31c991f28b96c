// Package citation splits assistant text into plain segments and page
// citations so the rendering layer can turn `[page N]` tokens into links.
package citation

import (
	"regexp"
	"strconv"
)

// Segment is one slice of an assistant message. Text always holds the
// original literal, so joining all segments reproduces the input exactly.
type Segment struct {
	Text string
	Page int
}

// IsCitation reports whether the segment carries a page reference.
func (s Segment) IsCitation() bool {
	return s.Page > 0
}

var tokenPattern = regexp.MustCompile(`(?i)\[page\s+([0-9]+)\]`)

// Parse partitions text into plain and citation segments in original order.
// Tokens whose digits do not parse as a positive integer stay plain text;
// citation content is untrusted, so nothing here rejects or rewrites it.
func Parse(text string) []Segment {
	if text == "" {
		return nil
	}
	matches := tokenPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []Segment{{Text: text}}
	}

	segments := make([]Segment, 0, len(matches)*2+1)
	pos := 0
	for _, match := range matches {
		start, end := match[0], match[1]
		literal := text[start:end]
		page, err := strconv.Atoi(text[match[2]:match[3]])
		if err != nil || page <= 0 {
			// Malformed number inside the brackets: keep scanning, the
			// literal joins the surrounding plain text.
			continue
		}
		if start > pos {
			segments = append(segments, Segment{Text: text[pos:start]})
		}
		segments = append(segments, Segment{Text: literal, Page: page})
		pos = end
	}
	if pos < len(text) {
		segments = append(segments, Segment{Text: text[pos:]})
	}
	if len(segments) == 0 {
		return []Segment{{Text: text}}
	}
	return segments
}

// Pages returns the page numbers of every citation segment in order.
func Pages(segments []Segment) []int {
	var pages []int
	for _, segment := range segments {
		if segment.IsCitation() {
			pages = append(pages, segment.Page)
		}
	}
	return pages
}
