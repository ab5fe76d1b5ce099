package querylang

import "strings"

// StripComments blanks # line comments in a filter. Everything from an
// unquoted # to the end of that line is replaced by spaces, so byte offsets
// reported by the parser still point into the original text. A # inside a
// quoted string ("..." or '...') does not start a comment.
func StripComments(s string) string {
	if !strings.Contains(s, "#") {
		return s
	}
	buf := []byte(s)

	var quote byte
	escaped := false
	for i := 0; i < len(buf); i++ {
		c := buf[i]

		if escaped {
			escaped = false
			continue
		}
		if quote != 0 {
			switch c {
			case '\\':
				escaped = true
			case quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'':
			quote = c
		case '#':
			// Blank to end of line, keeping the newline.
			for ; i < len(buf) && buf[i] != '\n'; i++ {
				buf[i] = ' '
			}
		}
	}
	return string(buf)
}
