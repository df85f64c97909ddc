package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"pdf-abstract/internal/rules"
	"pdf-abstract/internal/types"
)

var (
	categoryPrefixRe = regexp.MustCompile(`^(?:基礎|標準|查詢)\d+_`)
	dateSuffixRe     = regexp.MustCompile(`_(?:19|20)\d{2}(?:\d{4})?$`)
	versionSuffixRe  = regexp.MustCompile(`[\s\-_/·]*[（(]?(?:最終版|最終|定稿|定版|final|FINAL|Final|修訂版|修正版|v\d{1,3})[）)]?\s*$`)
	canonStripRe     = regexp.MustCompile(`[\s　，。、；：！？,.;:!()（）\[\]【】·\-—_/|]+`)
	cjkThenASCIIRe   = regexp.MustCompile(`([` + rules.CJKClass + `])([A-Za-z0-9])`)
	asciiThenCJKRe   = regexp.MustCompile(`([A-Za-z0-9])([` + rules.CJKClass + `])`)
	cjkHyphenLeftRe  = regexp.MustCompile(`([` + rules.CJKClass + `])\s*-\s*`)
	cjkHyphenRightRe = regexp.MustCompile(`\s*-\s*([` + rules.CJKClass + `])`)
	lineBreakRe      = regexp.MustCompile(`[\r\n]+`)
	multiSpaceRe     = regexp.MustCompile(`\s{2,}`)
)

// TitleFromFilename 由文件名主干推断基础题目
// Strips directory-style category prefixes (基礎1_ / 標準10_ / 查詢3_),
// trailing date/year suffixes, and filename underscores.
func TitleFromFilename(stem string) string {
	s := categoryPrefixRe.ReplaceAllString(stem, "")
	s = dateSuffixRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "_", "")
	return strings.TrimSpace(s)
}

// ResolveTitle 解析题目：以文件名为锚点，再用内文证据扩充
func (e *Extractor) ResolveTitle(doc *types.Document, tr *Trace) types.TitleCandidate {
	base := TitleFromFilename(doc.FilenameStem)
	cand := types.TitleCandidate{Value: base, Source: types.TitleFromFilename}

	window := e.titleWindow(doc)
	if expanded, idx := e.expandBySuperstring(base, window); expanded != "" {
		cand.Value = expanded
		cand.Source = types.TitleFromSuperstring
		tr.Debugf("TITLE", "superstring expansion: %q", truncateForTrace(expanded))

		// 延续行：紧跟其后的一行若像标题的折行，拼接一次
		if cont := e.continuationLine(window, idx); cont != "" {
			cand.Value = expanded + cont
			cand.Source = types.TitleFromContinuation
			tr.Debugf("TITLE", "continuation joined: %q", truncateForTrace(cont))
		}
	} else if idx := e.findTitleLine(base, window); idx >= 0 {
		// 标题整行出现但不比文件名长时也可能折行，仍试拼接一次
		if cont := e.continuationLine(window, idx); cont != "" {
			cand.Value = strings.TrimSpace(window[idx]) + cont
			cand.Source = types.TitleFromContinuation
			tr.Debugf("TITLE", "continuation joined: %q", truncateForTrace(cont))
		}
	}

	cand.Value = e.normalizeTitle(cand.Value)
	if cand.Value == "" {
		// 扩充结果被正规化清空时退回文件名题目
		cand.Value = e.normalizeTitle(base)
		cand.Source = types.TitleFromFilename
	}
	return cand
}

// titleWindow returns the body lines preceding the abstract heading,
// limited to the document's opening region.
func (e *Extractor) titleWindow(doc *types.Document) []string {
	const windowPages = 5
	const windowLines = 200

	var out []string
	for p := 1; p <= windowPages && p <= doc.PageCount(); p++ {
		for _, ln := range strings.Split(doc.Page(p), "\n") {
			if r, _ := e.rules.MatchStart(ln); r != nil {
				return out
			}
			out = append(out, ln)
			if len(out) >= windowLines {
				return out
			}
		}
	}
	return out
}

// expandBySuperstring looks for a line that contains the filename title as a
// contiguous substring (after canonicalization) and is strictly longer.
// Returns the winning line and its index in window, or "" when none qualify.
// Chinese-title case only.
func (e *Extractor) expandBySuperstring(base string, window []string) (string, int) {
	if base == "" || !rules.HasCJK(base) {
		return "", -1
	}
	baseCanon := canonicalize(base)
	if len([]rune(baseCanon)) < 4 {
		return "", -1
	}

	th := e.rules.Thresholds
	best := ""
	bestIdx := -1
	for i, ln := range window {
		s := strings.TrimSpace(ln)
		if s == "" || !rules.HasCJK(s) {
			continue
		}
		if e.rules.TitleDeny.MatchString(s) {
			continue
		}
		// 叙述句开头（本研究/本文…）不是标题
		if e.rules.BadLeading.MatchString(s) {
			continue
		}
		// 末尾为句号/冒号的多半是叙述句
		if strings.HasSuffix(s, "。") || strings.HasSuffix(s, ":") || strings.HasSuffix(s, "：") {
			continue
		}
		if len(e.rules.InnerPunct.FindAllString(s, -1)) > th.TitlePunctLimit {
			continue
		}
		if len([]rune(s)) > th.TitleMaxRunes {
			continue
		}
		sCanon := canonicalize(s)
		if len([]rune(sCanon)) < len([]rune(baseCanon))+th.TitleMinExtraRunes {
			continue
		}
		if !strings.Contains(sCanon, baseCanon) {
			continue
		}
		// 最长者获胜；等长时保留先出现者
		if len([]rune(s)) > len([]rune(best)) {
			best = s
			bestIdx = i
		}
	}
	return best, bestIdx
}

// findTitleLine locates the window line that equals the filename title after
// canonicalization. Used when no strictly longer superstring line exists.
func (e *Extractor) findTitleLine(base string, window []string) int {
	if base == "" || !rules.HasCJK(base) {
		return -1
	}
	baseCanon := canonicalize(base)
	if len([]rune(baseCanon)) < 4 {
		return -1
	}
	for i, ln := range window {
		if strings.EqualFold(canonicalize(ln), baseCanon) {
			return i
		}
	}
	return -1
}

// continuationLine checks whether the line after idx looks like the folded
// remainder of a title. One continuation step at most.
func (e *Extractor) continuationLine(window []string, idx int) string {
	if idx < 0 || idx+1 >= len(window) {
		return ""
	}
	next := strings.TrimSpace(window[idx+1])
	if next == "" || !rules.HasCJK(next) {
		return ""
	}
	if len([]rune(next)) > e.rules.Thresholds.ContinuationMaxRunes {
		return ""
	}
	if e.rules.TitleDeny.MatchString(next) {
		return ""
	}
	if r, _ := e.rules.MatchStart(next); r != nil {
		return ""
	}
	if e.rules.MatchStop(next) != nil {
		return ""
	}
	if strings.HasSuffix(next, "。") || strings.HasSuffix(next, ":") || strings.HasSuffix(next, "：") {
		return ""
	}
	if e.rules.CJKName.MatchString(next) {
		// 多半是作者行而非标题折行
		return ""
	}
	// 带冒号的行（研究生：… / 指導教授：…）是栏位行
	if strings.ContainsAny(next, ":：") {
		return ""
	}
	if e.rules.AdvisorHint.MatchString(next) {
		return ""
	}
	return next
}

// joinBrokenLines 合并折行：断点两侧皆为中文时直接相连，否则补一个空格
// PDF 的中文折行没有空格语义，英文折行则有。
func joinBrokenLines(s string) string {
	parts := lineBreakRe.Split(s, -1)
	var b strings.Builder
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if b.Len() == 0 {
			b.WriteString(p)
			continue
		}
		last, _ := utf8.DecodeLastRuneInString(b.String())
		first, _ := utf8.DecodeRuneInString(p)
		if !rules.HasCJK(string(last)) || !rules.HasCJK(string(first)) {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
	return b.String()
}

// canonicalize strips whitespace and weak punctuation so substring
// comparison survives PDF line breaking and spacing artifacts.
func canonicalize(s string) string {
	return canonStripRe.ReplaceAllString(s, "")
}

// normalizeTitle 题目正规化：去折行、去版本尾缀、整理中英文间距
// The result never ends in a sentence-terminal period or colon.
func (e *Extractor) normalizeTitle(title string) string {
	t := strings.TrimSpace(title)
	t = joinBrokenLines(t)
	t = versionSuffixRe.ReplaceAllString(t, "")
	// 去除仅作分隔用的 CJK 连字号（保留英文词内部的连字号）
	t = cjkHyphenLeftRe.ReplaceAllString(t, "$1")
	t = cjkHyphenRightRe.ReplaceAllString(t, "$1")
	// 中英文之间补一个空格，提升可读性
	t = cjkThenASCIIRe.ReplaceAllString(t, "$1 $2")
	t = asciiThenCJKRe.ReplaceAllString(t, "$1 $2")
	t = multiSpaceRe.ReplaceAllString(t, " ")
	t = strings.TrimSpace(t)
	for strings.HasSuffix(t, "。") || strings.HasSuffix(t, "：") || strings.HasSuffix(t, ":") {
		t = strings.TrimRight(strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(t, "。"), "："), ":"), " ")
	}
	return t
}
