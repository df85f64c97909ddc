package extract

import (
	"strings"
	"testing"

	"pdf-abstract/internal/types"
)

func docFromPages(stem string, pages ...[]string) *types.Document {
	d := &types.Document{FilenameStem: stem}
	for _, p := range pages {
		d.Pages = append(d.Pages, strings.Join(p, "\n"))
	}
	return d
}

func TestDetectBoundaryWithStopRule(t *testing.T) {
	doc := docFromPages("示例論文",
		[]string{
			"測試題目之研究",
			"摘要",
			"本研究提出一種新的分析方法，",
			"並以實驗驗證其有效性。",
			"關鍵字：分析、驗證",
			"緒論",
		},
	)

	e := New(nil)
	span, body, found := e.DetectBoundary(doc, nil)
	if !found {
		t.Fatal("boundary not found")
	}
	if span.StartPage != 1 || span.StartPattern != "摘要" {
		t.Errorf("span start = page %d pattern %q", span.StartPage, span.StartPattern)
	}
	if span.EndPattern != "keywords" {
		t.Errorf("EndPattern = %q, want keywords", span.EndPattern)
	}
	if span.Truncated() {
		t.Error("span with a stop pattern must not be truncated")
	}
	want := []string{
		"本研究提出一種新的分析方法，",
		"並以實驗驗證其有效性。",
	}
	if len(body) != len(want) {
		t.Fatalf("body = %q, want %q", body, want)
	}
	for i := range want {
		if body[i] != want[i] {
			t.Errorf("body[%d] = %q, want %q", i, body[i], want[i])
		}
	}
}

func TestDetectBoundaryInlineStart(t *testing.T) {
	doc := docFromPages("示例論文",
		[]string{
			"摘要：本研究探討影像辨識。",
			"實驗結果顯示準確率提升。",
			"關鍵字：影像辨識",
		},
	)

	e := New(nil)
	span, body, found := e.DetectBoundary(doc, nil)
	if !found {
		t.Fatal("boundary not found")
	}
	if span.StartPattern != "摘要-inline" {
		t.Errorf("StartPattern = %q, want 摘要-inline", span.StartPattern)
	}
	if len(body) == 0 || body[0] != "本研究探討影像辨識。" {
		t.Errorf("inline body text not captured as first line: %q", body)
	}
}

func TestDetectBoundaryInlineStartImmediateStop(t *testing.T) {
	// 行内起始且下一行即结束标记：区段终点仍须落在起点之后
	doc := docFromPages("示例論文",
		[]string{
			"摘要：只有一行。",
			"關鍵字：測試",
		},
	)

	e := New(nil)
	span, body, found := e.DetectBoundary(doc, nil)
	if !found {
		t.Fatal("boundary not found")
	}
	if span.EndPattern != "keywords" {
		t.Errorf("EndPattern = %q, want keywords", span.EndPattern)
	}
	if len(body) != 1 || body[0] != "只有一行。" {
		t.Errorf("body = %q, want the single inline line", body)
	}
	if span.EndPage == span.StartPage && span.EndLine <= span.StartLine {
		t.Errorf("span end (page %d line %d) not after start (page %d line %d)",
			span.EndPage, span.EndLine, span.StartPage, span.StartLine)
	}
}

func TestDetectBoundaryNotFound(t *testing.T) {
	doc := docFromPages("示例論文",
		[]string{"封面", "測試題目之研究", "目錄"},
		[]string{"第一章 內容"},
	)

	e := New(nil)
	if _, _, found := e.DetectBoundary(doc, nil); found {
		t.Fatal("boundary reported found in a document without an abstract heading")
	}
}

func TestDetectBoundaryPageCapTruncation(t *testing.T) {
	// 起始在第 1 页且无任何结束标记，应在 MaxAbstractPages 处截断
	doc := docFromPages("示例論文",
		[]string{"摘要", "第一頁內文第一行。", "第一頁內文第二行。"},
		[]string{"第二頁內文。"},
		[]string{"第三頁內文。"},
		[]string{"第四頁內文，不應包含。"},
	)

	e := New(nil)
	span, body, found := e.DetectBoundary(doc, nil)
	if !found {
		t.Fatal("boundary not found")
	}
	if !span.Truncated() {
		t.Error("span without a stop pattern must report truncation")
	}
	if span.EndPage != 3 {
		t.Errorf("EndPage = %d, want 3", span.EndPage)
	}
	joined := strings.Join(body, " ")
	if strings.Contains(joined, "第四頁") {
		t.Errorf("body crossed the page cap: %q", joined)
	}
	if !strings.Contains(joined, "第三頁") {
		t.Errorf("body missing capped-range text: %q", joined)
	}
}

func TestDetectBoundarySoftHeaderStop(t *testing.T) {
	doc := docFromPages("示例論文",
		[]string{
			"摘要",
			"內文一。", "內文二。", "內文三。", "內文四。", "內文五。",
			"METHODOLOGY",
			"不應收集的內文。",
		},
	)

	e := New(nil)
	span, body, found := e.DetectBoundary(doc, nil)
	if !found {
		t.Fatal("boundary not found")
	}
	if span.EndPattern != "soft-header" {
		t.Errorf("EndPattern = %q, want soft-header", span.EndPattern)
	}
	if strings.Contains(strings.Join(body, " "), "不應收集") {
		t.Error("collection continued past the soft header")
	}
}

func TestDetectBoundaryTrimsPageNumbers(t *testing.T) {
	doc := docFromPages("示例論文",
		[]string{
			"摘要",
			"本研究提出一種新的分析方法。",
			"iii",
			"關鍵字：分析",
		},
	)

	e := New(nil)
	_, body, found := e.DetectBoundary(doc, nil)
	if !found {
		t.Fatal("boundary not found")
	}
	for _, ln := range body {
		if ln == "iii" {
			t.Error("roman page number not trimmed from body")
		}
	}
}
