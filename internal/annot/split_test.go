package annot

import (
	"errors"
	"testing"

	"bridgeir/internal/source"
)

func TestSplitGroup(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Pair
	}{
		{name: "empty", text: "   ", want: nil},
		{
			name: "single",
			text: `representation = "class"`,
			want: []Pair{{Key: "representation", Value: Literal{Value: "class"}}},
		},
		{
			name: "two with trailing comma",
			text: `representation="struct" ,exposedName = "FfiFoo",`,
			want: []Pair{
				{Key: "representation", Value: Literal{Value: "struct"}},
				{Key: "exposedName", Value: Literal{Value: "FfiFoo"}},
			},
		},
		{
			name: "escapes are decoded",
			text: `exposedName = "Say \"hi\""`,
			want: []Pair{{Key: "exposedName", Value: Literal{Value: `Say "hi"`}}},
		},
		{
			name: "unknown keys still split",
			text: `swift_repr = "class"`,
			want: []Pair{{Key: "swift_repr", Value: Literal{Value: "class"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitGroup(tt.text, source.Span{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d pairs, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Key != tt.want[i].Key || got[i].Value.Value != tt.want[i].Value.Value {
					t.Fatalf("pair %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitGroup_Spans(t *testing.T) {
	base := source.Span{File: 2, Start: 100, End: 130}
	pairs, err := SplitGroup(`exposedName = "A", representation = "class"`, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := pairs[0].KeySpan; got != (source.Span{File: 2, Start: 100, End: 111}) {
		t.Fatalf("key span: got %v", got)
	}
	if got := pairs[0].Value.Span; got != (source.Span{File: 2, Start: 114, End: 117}) {
		t.Fatalf("literal span: got %v", got)
	}
	if got := pairs[1].Value.Span; got != (source.Span{File: 2, Start: 136, End: 143}) {
		t.Fatalf("second literal span: got %v", got)
	}
}

func TestSplitGroup_Errors(t *testing.T) {
	tests := []struct {
		text   string
		offset int
	}{
		{text: `representation "class"`, offset: 15},
		{text: `representation = class`, offset: 17},
		{text: `representation = "class`, offset: 17},
		{text: `= "class"`, offset: 0},
		{text: `a = "x" b = "y"`, offset: 8},
		{text: `a = "\q"`, offset: 4},
	}
	for _, tt := range tests {
		_, err := SplitGroup(tt.text, source.Span{})
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Fatalf("%q: expected SyntaxError, got %v", tt.text, err)
		}
		if se.Offset != tt.offset {
			t.Fatalf("%q: got offset %d, want %d", tt.text, se.Offset, tt.offset)
		}
	}
}
