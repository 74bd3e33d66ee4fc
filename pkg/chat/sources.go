package chat

import (
	"regexp"
	"strings"
)

// SourcesMarker introduces the trailing citation section of a reply
const SourcesMarker = "Sources:"

var sourceLinkRegex = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// Presentation is what the user sees for a given accumulated reply
type Presentation struct {
	Text    string
	Sources []Source
}

// Present maps accumulated raw reply text to its displayed form. It is pure
// and is applied to the whole buffer on every update.
func Present(raw string) Presentation {
	text, sources := ExtractSources(raw)
	return Presentation{Text: text, Sources: sources}
}

// ExtractSources splits a reply at its last Sources: marker. Every Markdown
// link after the marker becomes a Source; the marker and everything after it
// are removed from the returned text. Text without a marker is returned as is.
func ExtractSources(raw string) (string, []Source) {
	idx := strings.LastIndex(raw, SourcesMarker)
	if idx < 0 {
		return raw, nil
	}

	text := strings.TrimRightFunc(raw[:idx], isSpace)
	matches := sourceLinkRegex.FindAllStringSubmatch(raw[idx+len(SourcesMarker):], -1)

	sources := make([]Source, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, Source{
			Title: strings.TrimSpace(m[1]),
			URL:   strings.TrimSpace(m[2]),
		})
	}
	return text, sources
}

// TrimPartialMarker drops a trailing prefix of the marker ("S", "Sour",
// "Sources") that the next chunk might complete
func TrimPartialMarker(raw string) string {
	for n := len(SourcesMarker) - 1; n > 0; n-- {
		if strings.HasSuffix(raw, SourcesMarker[:n]) {
			return raw[:len(raw)-n]
		}
	}
	return raw
}

// StablePrefix returns the part of the displayed text that no later chunk
// can change. Writers that cannot erase output print only this much while
// streaming and the rest of Present(raw).Text once the reply is complete.
func StablePrefix(raw string) string {
	if idx := strings.Index(raw, SourcesMarker); idx >= 0 {
		raw = raw[:idx]
	} else {
		raw = TrimPartialMarker(raw)
	}
	return strings.TrimRightFunc(raw, isSpace)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
