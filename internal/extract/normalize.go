package extract

import "strings"

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Normalize splits raw OCR text into trimmed, non-empty lines in their
// original order. "\r\n", "\r" and "\n" all end a line. It never fails;
// empty input yields an empty slice.
func Normalize(raw string) []string {
	raw = lineBreaks.Replace(raw)
	lines := make([]string, 0, strings.Count(raw, "\n")+1)
	for _, seg := range strings.Split(raw, "\n") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		lines = append(lines, seg)
	}
	return lines
}
