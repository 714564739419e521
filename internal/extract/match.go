package extract

import (
	"strings"
	"unicode"

	"github.com/sells-group/nameplate-cli/internal/model"
)

// separators are removed anywhere in an inline value once the alias is cut.
// A hyphen joining two letters or digits is part of the value ("99-AB-221")
// and is kept.
const separators = ":=-|"

// Match finds the value of one field in lines.
//
// Lines are scanned in order and, for each line, patterns in priority order;
// the first line containing any pattern (ASCII case-insensitive substring)
// decides the result. Every occurrence of that pattern is cut from the line,
// separators are removed and the rest is trimmed. An empty remainder falls
// back to the following line, verbatim.
func Match(spec model.FieldSpec, lines []string) model.FieldValue {
	for i, line := range lines {
		lowered := lowerASCII(line)
		for _, p := range spec.Patterns {
			lp := lowerASCII(p)
			if lp == "" || !strings.Contains(lowered, lp) {
				continue
			}

			value := stripSeparators(removeAll(line, lowered, lp))
			if value != "" {
				return model.Found(value)
			}
			if i+1 < len(lines) {
				if next := strings.TrimSpace(lines[i+1]); next != "" {
					return model.Found(next)
				}
			}
			return model.NotFound()
		}
	}
	return model.NotFound()
}

// removeAll cuts every non-overlapping occurrence of lp (lowercased) out of
// line, using lowered (line lowercased byte-for-byte) to locate matches.
func removeAll(line, lowered, lp string) string {
	var sb strings.Builder
	sb.Grow(len(line))
	start := 0
	for {
		idx := strings.Index(lowered[start:], lp)
		if idx < 0 {
			break
		}
		sb.WriteString(line[start : start+idx])
		start += idx + len(lp)
	}
	sb.WriteString(line[start:])
	return sb.String()
}

func stripSeparators(s string) string {
	runes := []rune(s)
	var sb strings.Builder
	sb.Grow(len(s))
	for i, r := range runes {
		if !strings.ContainsRune(separators, r) {
			sb.WriteRune(r)
			continue
		}
		if r == '-' && i > 0 && i+1 < len(runes) && isAlnum(runes[i-1]) && isAlnum(runes[i+1]) {
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// lowerASCII folds A-Z only, so byte offsets stay aligned with the input.
func lowerASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}
