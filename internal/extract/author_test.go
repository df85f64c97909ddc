package extract

import (
	"testing"

	"pdf-abstract/internal/types"
)

func TestResolveAuthorLabelled(t *testing.T) {
	tests := []struct {
		name       string
		doc        *types.Document
		title      string
		want       string
		wantSource types.AuthorSource
	}{
		{
			name: "student label",
			doc: docFromPages("示例",
				[]string{"國立測試大學", "研究生：吳昺儒", "摘要", "內文。"},
			),
			want:       "吳昺儒",
			wantSource: types.AuthorLabel3P,
		},
		{
			name: "author label with colon",
			doc: docFromPages("示例",
				[]string{"作者：王小明", "摘要", "內文。"},
			),
			want:       "王小明",
			wantSource: types.AuthorLabel3P,
		},
		{
			name: "label on its own line, name below",
			doc: docFromPages("示例",
				[]string{"作者", "陳大文", "摘要", "內文。"},
			),
			want:       "陳大文",
			wantSource: types.AuthorLabel3P,
		},
		{
			name: "label beats metadata",
			doc: &types.Document{
				FilenameStem:   "示例",
				Pages:          []string{"研究生：吳昺儒\n摘要\n內文。"},
				MetadataAuthor: "張三",
			},
			want:       "吳昺儒",
			wantSource: types.AuthorLabel3P,
		},
		{
			name: "label beyond narrow window",
			doc: docFromPages("示例",
				[]string{"封面"}, []string{"第二頁"}, []string{"第三頁"},
				[]string{"姓名：林志明"},
			),
			want:       "林志明",
			wantSource: types.AuthorLabel8P,
		},
	}

	e := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ResolveAuthor(tt.doc, tt.title, nil)
			if got.Value != tt.want {
				t.Errorf("author = %q, want %q", got.Value, tt.want)
			}
			if got.Source != tt.wantSource {
				t.Errorf("source = %q, want %q", got.Source, tt.wantSource)
			}
		})
	}
}

func TestResolveAuthorMixedScriptKeepsCJK(t *testing.T) {
	doc := docFromPages("示例",
		[]string{"作者：吳昺儒 Bing-Ru Wu", "摘要", "內文。"},
	)

	e := New(nil)
	got := e.ResolveAuthor(doc, "", nil)
	if got.Value != "吳昺儒" {
		t.Errorf("author = %q, want 吳昺儒 (CJK run only)", got.Value)
	}
}

func TestResolveAuthorNameOrderSwap(t *testing.T) {
	// 「名 姓」形式且第二段仅一字时视为姓氏前置
	doc := docFromPages("示例",
		[]string{"作者：小明 王", "摘要", "內文。"},
	)

	e := New(nil)
	got := e.ResolveAuthor(doc, "", nil)
	if got.Value != "王小明" {
		t.Errorf("author = %q, want 王小明", got.Value)
	}
}

func TestResolveAuthorGuessNearContext(t *testing.T) {
	doc := docFromPages("示例",
		[]string{
			"國立測試大學資訊工程研究所",
			"吳昺儒",
			"摘要",
			"內文。",
		},
	)

	e := New(nil)
	got := e.ResolveAuthor(doc, "深度學習之研究", nil)
	if got.Value != "吳昺儒" {
		t.Errorf("author = %q, want 吳昺儒", got.Value)
	}
	if got.Source != types.AuthorGuess3P {
		t.Errorf("source = %q, want %q", got.Source, types.AuthorGuess3P)
	}
}

func TestResolveAuthorGuessSkipsTitleFragments(t *testing.T) {
	// 标题折行的片段不应被当成姓名
	doc := docFromPages("示例",
		[]string{
			"國立測試大學資訊工程研究所",
			"影像辨識",
			"吳昺儒",
			"摘要",
			"內文。",
		},
	)

	e := New(nil)
	got := e.ResolveAuthor(doc, "深度學習與影像辨識之研究", nil)
	if got.Value != "吳昺儒" {
		t.Errorf("author = %q, want 吳昺儒", got.Value)
	}
}

func TestResolveAuthorCJKOverride(t *testing.T) {
	// 中文题目配英文作者时，宽窗内的中文姓名覆写
	doc := docFromPages("示例",
		[]string{
			"Author: John Smith",
			"國立測試大學資訊工程研究所",
			"吳昺儒",
			"摘要",
			"內文。",
		},
	)

	e := New(nil)
	got := e.ResolveAuthor(doc, "深度學習之研究", nil)
	if got.Value != "吳昺儒" {
		t.Errorf("author = %q, want 吳昺儒", got.Value)
	}
	if got.Source != types.AuthorCJKOverride {
		t.Errorf("source = %q, want %q", got.Source, types.AuthorCJKOverride)
	}
}

func TestResolveAuthorMetadataFallback(t *testing.T) {
	doc := &types.Document{
		FilenameStem:   "示例",
		Pages:          []string{"封面\n摘要\n內文。"},
		MetadataAuthor: "張三",
	}

	e := New(nil)
	got := e.ResolveAuthor(doc, "", nil)
	if got.Value != "張三" {
		t.Errorf("author = %q, want 張三", got.Value)
	}
	if got.Source != types.AuthorMetadata {
		t.Errorf("source = %q, want %q", got.Source, types.AuthorMetadata)
	}
}

func TestResolveAuthorSuppressesPlaceholders(t *testing.T) {
	for _, placeholder := range []string{"user", "Admin", "unknown", "test"} {
		doc := &types.Document{
			FilenameStem:   "示例",
			Pages:          []string{"封面"},
			MetadataAuthor: placeholder,
		}

		e := New(nil)
		got := e.ResolveAuthor(doc, "", nil)
		if got.Value != "" {
			t.Errorf("placeholder %q produced author %q, want empty", placeholder, got.Value)
		}
	}
}
