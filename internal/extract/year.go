package extract

import (
	"regexp"
	"strings"

	"pdf-abstract/internal/types"
)

var (
	yearAnywhereRe = regexp.MustCompile(`\b(19|20)(\d{2})\b`)
	yearStemRes    = []*regexp.Regexp{
		// _YYYYMMDD / _YYYY / (YYYY) 结尾
		regexp.MustCompile(`(?:_|\()((?:19|20)\d{2})(?:\d{4})?\)?$`),
		// [YYYY] 结尾
		regexp.MustCompile(`\[((?:19|20)\d{2})\]$`),
		// 裸 YYYY 结尾
		regexp.MustCompile(`((?:19|20)\d{2})$`),
	}
	metaYearRe = regexp.MustCompile(`(?:D:)?((?:19|20)\d{2})`)
)

// ResolveYear 解析年分：文件名优先，其次前几页内文，最后 metadata 建立日期
// Returns a 4-digit year string or "".
func (e *Extractor) ResolveYear(doc *types.Document) string {
	if y := yearFromStem(doc.FilenameStem); y != "" {
		return y
	}

	// 前三页内文中的第一个西元年
	for p := 1; p <= 3 && p <= doc.PageCount(); p++ {
		for _, ln := range strings.Split(doc.Page(p), "\n") {
			if m := yearAnywhereRe.FindStringSubmatch(ln); m != nil {
				return m[1] + m[2]
			}
		}
	}

	// metadata 的 CreationDate 常见格式 'D:YYYYMMDDHHmmss'
	if doc.MetadataDate != "" {
		if m := metaYearRe.FindStringSubmatch(doc.MetadataDate); m != nil {
			return m[1]
		}
	}
	return ""
}

func yearFromStem(stem string) string {
	for _, re := range yearStemRes {
		if m := re.FindStringSubmatch(stem); m != nil {
			return m[1]
		}
	}
	if m := yearAnywhereRe.FindStringSubmatch(stem); m != nil {
		return m[1] + m[2]
	}
	return ""
}
