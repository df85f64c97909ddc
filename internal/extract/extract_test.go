package extract

import (
	"strings"
	"testing"
)

// 端到端：典型的学位论文首页布局
func TestExtractEndToEnd(t *testing.T) {
	doc := docFromPages("基礎1_測試標題_20220101",
		[]string{
			"國立測試大學資訊工程研究所碩士論文",
			"測試標題之延伸研究",
			"研究生：吳昺儒",
			"指導教授：林大明 博士",
			"摘要",
			"本研究針對測試方法提出改進方案，",
			"並以大量實驗驗證其可行性。",
			"關鍵字：測試、驗證",
		},
	)

	e := New(nil)
	tr := NewTrace()
	rec := e.Extract(doc, tr)

	if rec.Title != "測試標題之延伸研究" {
		t.Errorf("Title = %q, want 測試標題之延伸研究", rec.Title)
	}
	if rec.Year != "2022" {
		t.Errorf("Year = %q, want 2022", rec.Year)
	}
	if rec.Author != "吳昺儒" {
		t.Errorf("Author = %q, want 吳昺儒", rec.Author)
	}
	wantAbstract := "本研究針對測試方法提出改進方案， 並以大量實驗驗證其可行性。"
	if rec.Abstract != wantAbstract {
		t.Errorf("Abstract = %q, want %q", rec.Abstract, wantAbstract)
	}

	var sb strings.Builder
	tr.Render(&sb, Verbose)
	out := sb.String()
	if !strings.Contains(out, "[AUTHOR] 吳昺儒 (label-3p)") {
		t.Errorf("trace missing author summary, got:\n%s", out)
	}
}

// 字段独立性：摘要缺失时其余字段照常解析
func TestExtractFieldsIndependent(t *testing.T) {
	doc := docFromPages("測試標題_2021",
		[]string{
			"測試標題之延伸研究",
			"研究生：吳昺儒",
			"目錄",
		},
	)

	e := New(nil)
	rec := e.Extract(doc, nil)

	if rec.Abstract != "" {
		t.Errorf("Abstract = %q, want empty", rec.Abstract)
	}
	if rec.Title == "" {
		t.Error("Title should resolve without an abstract")
	}
	if rec.Year != "2021" {
		t.Errorf("Year = %q, want 2021", rec.Year)
	}
	if rec.Author != "吳昺儒" {
		t.Errorf("Author = %q, want 吳昺儒", rec.Author)
	}
}

func TestExtractNilTrace(t *testing.T) {
	doc := docFromPages("測試標題",
		[]string{"摘要", "內文。", "關鍵字：測試"},
	)

	e := New(nil)
	rec := e.Extract(doc, nil)
	if rec.Abstract == "" {
		t.Error("extraction must work with a nil trace")
	}
}
