// Package extract 实作摘要抽取引擎的核心流程：
// 边界侦测、摘要正规化、题目/作者/年分解析与记录组装。
package extract

import (
	"pdf-abstract/internal/rules"
	"pdf-abstract/internal/types"
)

// Extractor binds the extraction pipeline to one compiled rule set.
// It is stateless across documents and safe for concurrent use.
type Extractor struct {
	rules *rules.Ruleset
}

// New 建立抽取器。rs 为 nil 时使用内建默认规则。
func New(rs *rules.Ruleset) *Extractor {
	if rs == nil {
		rs = rules.Default()
	}
	return &Extractor{rules: rs}
}

// Rules returns the compiled rule set the extractor runs with.
func (e *Extractor) Rules() *rules.Ruleset {
	return e.rules
}

// Extract 对单一文档执行完整抽取，组装出最终记录
// Field resolution is independent: a missing abstract does not stop title,
// author, or year resolution, and every absent field stays an empty string.
func (e *Extractor) Extract(doc *types.Document, tr *Trace) types.ExtractionRecord {
	rec := types.ExtractionRecord{}

	span, body, found := e.DetectBoundary(doc, tr)
	if found {
		rec.Abstract = Normalize(body)
		if span.Truncated() {
			tr.Verbosef("ABSTRACT", "no end marker, truncated at page %d", span.EndPage)
		}
	} else {
		tr.Verbosef("ABSTRACT", "not found in %s", doc.FilenameStem)
	}

	title := e.ResolveTitle(doc, tr)
	rec.Title = title.Value
	tr.Verbosef("TITLE", "%s (%s)", rec.Title, title.Source)

	rec.Year = e.ResolveYear(doc)
	if rec.Year != "" {
		tr.Verbosef("YEAR", "%s", rec.Year)
	}

	author := e.ResolveAuthor(doc, rec.Title, tr)
	rec.Author = author.Value
	if rec.Author != "" {
		tr.Verbosef("AUTHOR", "%s (%s)", rec.Author, author.Source)
	}

	return rec
}
