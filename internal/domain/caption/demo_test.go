package caption

import (
	"fmt"
	"testing"
)

func TestDemoResultAt(t *testing.T) {
	for i, entry := range demoEntries {
		result := demoResultAt(i)
		if !result.Demo {
			t.Errorf("entry %d not marked demo", i)
		}
		if result.Caption != entry.caption {
			t.Errorf("entry %d caption mismatch", i)
		}
		want := fmt.Sprintf("%d%% Confidence", entry.accuracy)
		if result.Confidence != want {
			t.Errorf("entry %d confidence = %q, want %q", i, result.Confidence, want)
		}
		if result.Objects != entry.objects || result.Words != entry.words || result.Accuracy != entry.accuracy {
			t.Errorf("entry %d stats mismatch: %+v", i, result)
		}
	}
}

func TestDemoResult_AlwaysValid(t *testing.T) {
	for i := 0; i < 50; i++ {
		result := DemoResult()
		if result.Caption == "" || !result.Demo {
			t.Fatalf("invalid demo result: %+v", result)
		}
	}
}

func TestWordCount(t *testing.T) {
	cases := []struct {
		caption string
		want    int
	}{
		{"A dog running in a park.", 6},
		{"hello", 1},
		{"", 1},
		{"two words", 2},
	}
	for _, c := range cases {
		if got := WordCount(c.caption); got != c.want {
			t.Errorf("WordCount(%q) = %d, want %d", c.caption, got, c.want)
		}
	}
}
