package keywords

import (
	"context"
	"testing"
)

func TestCleanKeywords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "already separated", in: "深度學習、影像辨識、CNN", want: "深度學習、影像辨識、CNN"},
		{name: "mixed separators", in: "深度學習, 影像辨識；CNN", want: "深度學習、影像辨識、CNN"},
		{name: "newline separated", in: "深度學習\n影像辨識", want: "深度學習、影像辨識"},
		{name: "quoted answer", in: "\"測試、驗證\"", want: "測試、驗證"},
		{name: "empty fragments dropped", in: "測試、、驗證、", want: "測試、驗證"},
		{name: "empty", in: "  ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanKeywords(tt.in); got != tt.want {
				t.Errorf("cleanKeywords(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewAnnotatorRequiresAPIKey(t *testing.T) {
	if _, err := NewAnnotator(context.Background(), "", "https://api.openai.com/v1", "gpt-4o-mini"); err == nil {
		t.Fatal("NewAnnotator() should fail without an API key")
	}
}
