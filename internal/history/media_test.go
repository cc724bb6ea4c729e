package history_test

import (
	"reflect"
	"testing"

	"github.com/comment-profiler/internal/history"
)

func TestParseMediaList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{}},
		{"empty brackets", "[]", []string{}},
		{"nan marker", "nan", []string{}},
		{"single url", "[http://img/a.jpg]", []string{"http://img/a.jpg"}},
		{"two urls", "[http://img/a.jpg, http://img/b.jpg]", []string{"http://img/a.jpg", "http://img/b.jpg"}},
		{"quoted urls", `['http://img/a.jpg', "http://img/b.jpg"]`, []string{"http://img/a.jpg", "http://img/b.jpg"}},
		{"no brackets", "http://img/a.jpg", []string{"http://img/a.jpg"}},
		{"trailing comma", "[http://img/a.jpg,]", []string{"http://img/a.jpg"}},
		{"whitespace only", "   ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := history.ParseMediaList(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseMediaList(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
