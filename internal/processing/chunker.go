package processing

import (
	"regexp"
	"strings"
)

const (
	maxChunkRunes = 1000
	chunkOverlap  = 200
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// ChunkText splits text into paragraphs and cuts paragraphs longer than
// 1000 characters into overlapping windows. Empty input gives no chunks.
func ChunkText(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range paragraphBreak.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, splitLong(p, maxChunkRunes, chunkOverlap)...)
	}
	return out
}

// splitLong works on runes so multi-byte characters are never cut in half.
func splitLong(s string, max, overlap int) []string {
	runes := []rune(s)
	if len(runes) <= max {
		return []string{s}
	}
	var res []string
	for i := 0; i < len(runes); i += max - overlap {
		end := min(i+max, len(runes))
		if piece := strings.TrimSpace(string(runes[i:end])); piece != "" {
			res = append(res, piece)
		}
		if end == len(runes) {
			break
		}
	}
	return res
}
