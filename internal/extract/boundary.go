package extract

import (
	"regexp"
	"strings"

	"pdf-abstract/internal/types"
)

// lineRef is one document line with its 1-indexed page and in-page line number.
type lineRef struct {
	page int
	line int
	text string
}

// flatten splits every page into lines, preserving page/line positions.
func flatten(doc *types.Document) []lineRef {
	var out []lineRef
	for p := 1; p <= doc.PageCount(); p++ {
		text := strings.ReplaceAll(doc.Page(p), "\r\n", "\n")
		text = strings.ReplaceAll(text, "\r", "\n")
		for i, ln := range strings.Split(text, "\n") {
			out = append(out, lineRef{page: p, line: i, text: strings.TrimRight(ln, " \t")})
		}
	}
	return out
}

var (
	romanPageRe = regexp.MustCompile(`^[ivxlcdmIVXLCDM]{1,4}\.?$`)
	digitPageRe = regexp.MustCompile(`^\d{1,3}$`)
	headerCapRe = regexp.MustCompile(`[A-Z]`)
	latinHdrRe  = regexp.MustCompile(`^(?:Abstract|ABSTRACT|Introduction|Conclusions?)\b`)
	cjkHdrRe    = regexp.MustCompile(`^(?:摘要|引言|結論|結語|緒論|關鍵字|目錄)`)
)

// DetectBoundary 扫描逐页文本，定位摘要区段
// It returns the span, the raw body lines it bounds, and whether a start
// pattern was found at all. A missing stop pattern truncates the span at
// start_page + MaxAbstractPages − 1 and leaves EndPattern empty.
func (e *Extractor) DetectBoundary(doc *types.Document, tr *Trace) (*types.AbstractSpan, []string, bool) {
	lines := flatten(doc)
	if len(lines) == 0 {
		tr.Debugf("ABSTRACT", "no text lines in document")
		return nil, nil, false
	}

	// 1) 起始标记：最先命中的规则获胜
	startIdx := -1
	var startRule string
	var inlineFirst string
	for i, ln := range lines {
		if r, inline := e.rules.MatchStart(ln.text); r != nil {
			startIdx = i
			startRule = r.Name
			inlineFirst = strings.TrimSpace(inline)
			tr.Debugf("ABSTRACT", "start found on page %d: %q", ln.page, truncateForTrace(ln.text))
			break
		}
	}
	if startIdx < 0 {
		tr.Debugf("ABSTRACT", "start marker not found")
		return nil, nil, false
	}

	startPage := lines[startIdx].page
	maxEndPage := startPage + e.rules.Thresholds.MaxAbstractPages - 1

	span := &types.AbstractSpan{
		StartPage:    startPage,
		StartLine:    lines[startIdx].line,
		StartPattern: startRule,
	}

	// 2) 自起点向后收集，直到结束标记或页数上限
	var collected []string
	if inlineFirst != "" {
		collected = append(collected, inlineFirst)
	}

	endIdx := -1
	for i := startIdx + 1; i < len(lines); i++ {
		ln := lines[i]

		if ln.page > maxEndPage {
			endIdx = i
			tr.Debugf("ABSTRACT", "page cap reached after page %d", maxEndPage)
			break
		}

		if stop := e.rules.MatchStop(ln.text); stop != nil {
			endIdx = i
			span.EndPattern = stop.Name
			tr.Debugf("ABSTRACT", "end found on page %d (%s): %q", ln.page, stop.Name, truncateForTrace(ln.text))
			break
		}

		// 软性结束：已收集到一定行数后遇到疑似章节标题
		if len(collected) >= e.rules.Thresholds.SoftStopMinLines && looksLikeHeader(ln.text) {
			endIdx = i
			span.EndPattern = "soft-header"
			tr.Debugf("ABSTRACT", "soft end on page %d: %q", ln.page, truncateForTrace(ln.text))
			break
		}

		collected = append(collected, ln.text)
	}

	// 3) 确定区段终点（结束行本身不计入）
	lastIdx := len(lines) - 1
	if endIdx >= 0 {
		lastIdx = endIdx - 1
	}
	if lastIdx < startIdx {
		lastIdx = startIdx
	}
	span.EndPage = lines[lastIdx].page
	if span.EndPage > maxEndPage {
		span.EndPage = maxEndPage
	}
	span.EndLine = lines[lastIdx].line
	// 行内起始且下一行即结束标记时，终点仍须落在起点之后
	if span.EndPage == span.StartPage && span.EndLine <= span.StartLine {
		span.EndLine = span.StartLine + 1
	}

	// 修剪首尾空行与孤立页码（罗马数字/阿拉伯数字）
	collected = trimBlank(collected)
	for len(collected) > 0 {
		tail := strings.TrimSpace(collected[len(collected)-1])
		if romanPageRe.MatchString(tail) || digitPageRe.MatchString(tail) {
			collected = collected[:len(collected)-1]
			continue
		}
		break
	}
	collected = trimBlank(collected)

	if len(collected) == 0 {
		tr.Debugf("ABSTRACT", "empty text after extraction")
		return nil, nil, false
	}
	return span, collected, true
}

func trimBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// looksLikeHeader reports whether a line resembles a section heading.
// This is the soft stop condition.
func looksLikeHeader(line string) bool {
	s := strings.TrimSpace(line)
	if s == "" {
		return false
	}
	// 全英文且几乎全大写的短行（章节标题样式）
	if len(s) <= 60 && isASCII(s) && s == strings.ToUpper(s) && headerCapRe.MatchString(s) {
		return true
	}
	if latinHdrRe.MatchString(s) {
		return true
	}
	return cjkHdrRe.MatchString(s)
}

func isASCII(s string) bool {
	for _, r := range s {
		if r >= 128 {
			return false
		}
	}
	return true
}

func truncateForTrace(s string) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) > 60 {
		return string(r[:60]) + "…"
	}
	return s
}
