package extract

import (
	"regexp"
	"strings"

	"pdf-abstract/internal/rules"
	"pdf-abstract/internal/types"
)

var (
	hanRunRe      = regexp.MustCompile(`[` + rules.HanClass + `]+`)
	cjkNameSwapRe = regexp.MustCompile(`^([` + rules.HanClass + `]{1,3})\s+([` + rules.HanClass + `]{1,2})$`)
)

// authorStrategy 作者解析策略：按优先级逐一尝试，首个成功者获胜
// Adding or reordering strategies is a data change, not control flow.
type authorStrategy struct {
	source  types.AuthorSource
	attempt func() string
}

// ResolveAuthor 解析作者：标签行 → 启发式猜测 → CJK 覆写 → metadata
// The provenance tag records which strategy produced the value.
func (e *Extractor) ResolveAuthor(doc *types.Document, title string, tr *Trace) types.AuthorCandidate {
	th := e.rules.Thresholds
	narrow := windowLines(doc, th.LabelWindowNarrow, 300)
	wide := windowLines(doc, th.LabelWindowWide, 800)

	strategies := []authorStrategy{
		{types.AuthorLabel3P, func() string { return e.labelledAuthor(narrow, tr) }},
		{types.AuthorLabel8P, func() string { return e.labelledAuthor(wide, tr) }},
		{types.AuthorGuess3P, func() string { return e.guessAuthor(narrow, title, false, tr) }},
		{types.AuthorGuess8P, func() string { return e.guessAuthor(wide, title, false, tr) }},
	}

	var cand types.AuthorCandidate
	for _, s := range strategies {
		if name := s.attempt(); name != "" {
			cand = types.AuthorCandidate{Value: name, Source: s.source}
			break
		}
	}

	// CJK 覆写：题目为中文而作者为纯英文时，改找中文姓名
	if cand.Value != "" && !rules.HasCJK(cand.Value) && rules.HasCJK(title) {
		tr.Debugf("AUTHOR", "author %q is ASCII-only but title is CJK, attempting override", cand.Value)
		if g := e.guessAuthor(wide, title, true, tr); g != "" && rules.HasCJK(g) {
			cand = types.AuthorCandidate{Value: g, Source: types.AuthorCJKOverride}
		}
	}

	// metadata 仅在所有策略落空时使用
	if cand.Value == "" && doc.MetadataAuthor != "" {
		tr.Debugf("AUTHOR", "falling back to PDF metadata author: %q", doc.MetadataAuthor)
		cand = types.AuthorCandidate{Value: doc.MetadataAuthor, Source: types.AuthorMetadata}
	}

	cand.Value = e.normalizeAuthor(cand.Value)
	if cand.Value == "" {
		cand.Source = ""
	}
	return cand
}

// windowLines returns the lines of the first maxPages pages, capped at
// maxLines.
func windowLines(doc *types.Document, maxPages, maxLines int) []string {
	var out []string
	for p := 1; p <= maxPages && p <= doc.PageCount(); p++ {
		for _, ln := range strings.Split(doc.Page(p), "\n") {
			out = append(out, ln)
			if len(out) >= maxLines {
				return out
			}
		}
	}
	return out
}

// labelledAuthor 找带有明确标签（作者/研究生/Author…）的姓名行
func (e *Extractor) labelledAuthor(lines []string, tr *Trace) string {
	for i, line := range lines {
		for j := range e.rules.AuthorLabels {
			rule := &e.rules.AuthorLabels[j]
			m := rule.Re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if rule.NextLine {
				// 标签独占一行，姓名在下一行
				if i+1 < len(lines) {
					next := strings.TrimSpace(lines[i+1])
					if n := len([]rune(next)); n > 1 && n <= 30 {
						tr.Debugf("AUTHOR", "label %s matched at line %d, next-line name %q", rule.Name, i+1, next)
						return next
					}
				}
				continue
			}
			idx := rule.Re.SubexpIndex("name")
			if idx < 0 || idx >= len(m) {
				continue
			}
			name := strings.TrimSpace(m[idx])
			if name == "" || len([]rune(name)) > 100 {
				continue
			}
			tr.Debugf("AUTHOR", "label %s matched at line %d: %q", rule.Name, i+1, name)
			return name
		}
	}
	return ""
}

// guessAuthor 无标签时按姓名外形猜测：中文 2–4 字，英文首字母大写的词串
// Candidates adjacent to academic context lines (school/department/advisor)
// win over isolated ones; Latin-shaped candidates are only accepted near
// such context. cjkOnly restricts the scan to Chinese-character names.
func (e *Extractor) guessAuthor(lines []string, title string, cjkOnly bool, tr *Trace) string {
	window := e.rules.Thresholds.GuessWindowLines
	if window > len(lines) {
		window = len(lines)
	}

	var nearCtx, others []string
	for i := 0; i < window; i++ {
		s := strings.TrimSpace(lines[i])
		if s == "" {
			continue
		}

		var cand string
		if m := e.rules.CJKName.FindStringSubmatch(s); m != nil {
			cand = m[1] + m[2]
		} else if !cjkOnly && !rules.HasCJK(s) && e.rules.LatinName.MatchString(s) {
			cand = s
		}
		if cand == "" {
			continue
		}
		if e.rules.IsStopword(cand) {
			continue
		}
		if title != "" && strings.Contains(title, cand) {
			// 标题折行的片段不是作者
			continue
		}

		neighborhood := neighborhoodOf(lines, i, 3)
		if e.rules.ContextHint.MatchString(neighborhood) || e.rules.AdvisorHint.MatchString(neighborhood) {
			nearCtx = append(nearCtx, cand)
		} else if rules.HasCJK(cand) {
			others = append(others, cand)
		}
	}

	if len(nearCtx) > 0 {
		tr.Debugf("AUTHOR", "guessed near academic context: %q", nearCtx[0])
		return nearCtx[0]
	}
	if len(others) > 0 {
		tr.Debugf("AUTHOR", "guessed by name shape: %q", others[0])
		return others[0]
	}
	return ""
}

func neighborhoodOf(lines []string, i, radius int) string {
	lo := i - radius
	if lo < 0 {
		lo = 0
	}
	hi := i + radius + 1
	if hi > len(lines) {
		hi = len(lines)
	}
	return strings.Join(lines[lo:hi], "\n")
}

// normalizeAuthor 姓名后处理：
// - 过滤 metadata 占位词（user/admin/unknown…）
// - 「名 姓」且姓氏一字时调整为「姓名」
// - 中英文并列时仅保留中文姓名
func (e *Extractor) normalizeAuthor(name string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		return ""
	}
	switch strings.ToLower(s) {
	case "user", "admin", "unknown", "untitled", "test":
		return ""
	}

	if m := cjkNameSwapRe.FindStringSubmatch(s); m != nil {
		if len([]rune(m[2])) == 1 {
			// 第二段仅一字，极可能是姓氏
			s = m[2] + m[1]
		} else {
			s = m[1] + m[2]
		}
	}
	s = multiSpaceRe.ReplaceAllString(s, " ")

	// 同一行同时含中英文姓名时，仅保留最长的中文片段
	if runs := hanRunRe.FindAllString(s, -1); len(runs) > 0 {
		best := runs[0]
		for _, r := range runs[1:] {
			if len([]rune(r)) > len([]rune(best)) {
				best = r
			}
		}
		s = best
	}

	if len([]rune(s)) > 100 {
		return ""
	}
	return strings.TrimSpace(s)
}
