package extract

import (
	"regexp"
	"strings"
	"unicode"
)

var spaceRunRe = regexp.MustCompile(`\s+`)

// Normalize 把摘要区段的多行文本合并为单一段落
// Lines are joined with single spaces, hyphenated Latin line breaks are
// repaired, and whitespace runs collapse to one space. Wording and
// punctuation are preserved verbatim. The result contains no line breaks
// and Normalize is idempotent over its own output.
func Normalize(lines []string) string {
	var merged []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// 英文断字：上一行以 '-' 结尾且本行以小写字母开头时直接拼接
		if len(merged) > 0 {
			prev := merged[len(merged)-1]
			if strings.HasSuffix(prev, "-") && startsLower(line) {
				merged[len(merged)-1] = strings.TrimSuffix(prev, "-") + line
				continue
			}
		}
		merged = append(merged, line)
	}
	out := strings.Join(merged, " ")
	out = spaceRunRe.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

func startsLower(s string) bool {
	for _, r := range s {
		return unicode.IsLower(r)
	}
	return false
}
