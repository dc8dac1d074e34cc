package ranking

import (
	"reflect"
	"testing"
)

func TestTokenizer_Tokenize(t *testing.T) {
	tests := []struct {
		name      string
		minLength int
		stopWords bool
		text      string
		want      []string
	}{
		{"empty", 1, false, "", nil},
		{"only separators", 1, false, " -- !! ", nil},
		{"case folded", 1, false, "Machine LEARNING", []string{"machine", "learning"}},
		{"split on punctuation", 1, false, "go-lang,rust;c++", []string{"go", "lang", "rust", "c"}},
		{"digits kept", 1, false, "web3 and 2024", []string{"web3", "and", "2024"}},
		{"single rune kept", 1, false, "x y", []string{"x", "y"}},
		{"min length", 3, false, "a an the rust", []string{"the", "rust"}},
		{"stop words removed", 1, true, "we build the tools", []string{"build", "tools"}},
		{"only stop words", 1, true, "of the and", nil},
		{"unicode letters", 1, false, "Café ÉCOLE", []string{"café", "école"}},
		{"compatibility forms", 1, false, "ｆｕｌｌwidth", []string{"fullwidth"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewTokenizer(tt.minLength, tt.stopWords).Tokenize(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestTokenizer_IsStopWord(t *testing.T) {
	withStops := NewTokenizer(1, true)
	if !withStops.IsStopWord("the") {
		t.Error("expected 'the' to be a stop word")
	}
	if withStops.IsStopWord("machine") {
		t.Error("expected 'machine' not to be a stop word")
	}

	withoutStops := NewTokenizer(1, false)
	if withoutStops.IsStopWord("the") {
		t.Error("expected no stop words when disabled")
	}
}
