package textutil

import (
	"reflect"
	"testing"
)

func TestSearchTokens(t *testing.T) {
	got := SearchTokens("  Moonlight   SONATA\tbeethoven ")
	want := []string{"moonlight", "sonata", "beethoven"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SearchTokens = %v, want %v", got, want)
	}
	if tokens := SearchTokens("   "); len(tokens) != 0 {
		t.Fatalf("expected no tokens for blank query, got %v", tokens)
	}
}

func TestSearchKeyFoldsUnicode(t *testing.T) {
	// "é" as e + combining acute versus the precomposed rune.
	decomposed := "Cafe\u0301"
	precomposed := "caf\u00e9"
	if SearchKey(decomposed) != SearchKey(precomposed) {
		t.Fatalf("expected normalised keys to match: %q vs %q", SearchKey(decomposed), SearchKey(precomposed))
	}
	if SearchKey("ÉCOLE") != "école" {
		t.Fatalf("unexpected lower-casing: %q", SearchKey("ÉCOLE"))
	}
}

func TestContainsAll(t *testing.T) {
	key := SearchKey("Queen - Bohemian Rhapsody (Piano Solo)")
	cases := []struct {
		query string
		want  bool
	}{
		{"rhapsody queen", true},
		{"piano boh", true},
		{"queen guitar", false},
		{"", true},
	}
	for _, tc := range cases {
		if got := ContainsAll(key, SearchTokens(tc.query)); got != tc.want {
			t.Errorf("ContainsAll(%q) = %v, want %v", tc.query, got, tc.want)
		}
	}
}
