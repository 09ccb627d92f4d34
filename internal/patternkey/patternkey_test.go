package patternkey

import (
	"reflect"
	"testing"
)

func TestCompareLongerPrefixWins(t *testing.T) {
	if Compare("@app/components/*", "@app/*") >= 0 {
		t.Fatal("expected the longer literal prefix to be more specific")
	}
}

func TestCompareNoWildcardBeatsWildcard(t *testing.T) {
	if Compare("@app/button", "@app/*") >= 0 {
		t.Fatal("expected the exact (no-wildcard) pattern to be more specific")
	}
}

func TestCompareEqualPrefixLongerSuffixWins(t *testing.T) {
	if Compare("@app/*.tsx", "@app/*") >= 0 {
		t.Fatal("expected the pattern with a longer literal suffix to be more specific")
	}
}

func TestCompareEqual(t *testing.T) {
	if Compare("@app/*", "@app/*") != 0 {
		t.Fatal("expected identical patterns to compare equal")
	}
}

func TestSortOrdersMostSpecificFirst(t *testing.T) {
	patterns := []string{"*", "@app/*", "@app/button", "@app/components/*"}
	Sort(patterns)
	want := []string{"@app/components/*", "@app/button", "@app/*", "*"}
	if !reflect.DeepEqual(patterns, want) {
		t.Fatalf("got %v, want %v", patterns, want)
	}
}
