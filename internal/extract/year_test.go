package extract

import (
	"testing"

	"pdf-abstract/internal/types"
)

func TestResolveYear(t *testing.T) {
	e := New(nil)

	tests := []struct {
		name string
		doc  *types.Document
		want string
	}{
		{
			name: "full date suffix in filename",
			doc:  &types.Document{FilenameStem: "基礎1_測試標題_20220101", Pages: []string{"內文"}},
			want: "2022",
		},
		{
			name: "bare year suffix in filename",
			doc:  &types.Document{FilenameStem: "測試標題_2021", Pages: []string{"內文"}},
			want: "2021",
		},
		{
			name: "parenthesized year in filename",
			doc:  &types.Document{FilenameStem: "測試標題(2019)", Pages: []string{"內文"}},
			want: "2019",
		},
		{
			name: "filename wins over body",
			doc:  &types.Document{FilenameStem: "測試標題_2021", Pages: []string{"2020年6月"}},
			want: "2021",
		},
		{
			name: "year from body text",
			doc:  &types.Document{FilenameStem: "測試標題", Pages: []string{"封面", "2020年6月出版"}},
			want: "2020",
		},
		{
			name: "year from metadata creation date",
			doc: &types.Document{
				FilenameStem: "測試標題",
				Pages:        []string{"封面"},
				MetadataDate: "D:20190315120000Z",
			},
			want: "2019",
		},
		{
			name: "no year anywhere",
			doc:  &types.Document{FilenameStem: "測試標題", Pages: []string{"封面"}},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.ResolveYear(tt.doc); got != tt.want {
				t.Errorf("ResolveYear() = %q, want %q", got, tt.want)
			}
		})
	}
}
