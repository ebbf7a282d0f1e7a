package layout

import (
	"strings"

	"github.com/xkilldash9x/stylebox/internal/style"
)

// segment is a piece of a text node: a word, a run of white space, or a
// forced line break.
type segment struct {
	text  string
	space bool
	brk   bool
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'
}

// segments splits text according to the white-space mode. Collapsing modes
// reduce every white space run to a single space; pre keeps each source line
// as one unbreakable segment.
func segments(text string, ws style.WhiteSpaceType) []segment {
	lines := []string{text}
	if ws.KeepsNewlines() {
		lines = strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	}

	var out []segment
	for i, line := range lines {
		if i > 0 {
			out = append(out, segment{brk: true})
		}
		if ws == style.WhiteSpacePre {
			if line != "" {
				out = append(out, segment{text: line})
			}
			continue
		}
		out = append(out, splitWords(line, ws.CollapsesSpaces())...)
	}
	return out
}

func splitWords(s string, collapse bool) []segment {
	var out []segment
	start := 0
	inSpace := false
	flush := func(end int) {
		if end <= start {
			return
		}
		chunk := s[start:end]
		if !inSpace {
			out = append(out, segment{text: chunk})
			return
		}
		if collapse {
			chunk = " "
		}
		out = append(out, segment{text: chunk, space: true})
	}
	for i, r := range s {
		sp := isSpace(r)
		if i > start && sp != inSpace {
			flush(i)
			start = i
		}
		inSpace = sp
	}
	flush(len(s))
	return out
}
