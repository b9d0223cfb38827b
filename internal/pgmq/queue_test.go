package pgmq

import (
	"testing"
	"time"
)

func TestBackoffSeconds(t *testing.T) {
	cases := []struct {
		attempt int
		max     time.Duration
		want    int
	}{
		{0, 30 * time.Second, 1},
		{1, 30 * time.Second, 1},
		{2, 30 * time.Second, 2},
		{4, 30 * time.Second, 8},
		{10, 30 * time.Second, 30},
	}
	for _, tc := range cases {
		if got := backoffSeconds(tc.attempt, tc.max); got != tc.want {
			t.Fatalf("backoffSeconds(%d, %v) = %d, want %d", tc.attempt, tc.max, got, tc.want)
		}
	}
}

func TestValidJSONQuotesGarbage(t *testing.T) {
	if got := string(validJSON([]byte(`{"a":1}`))); got != `{"a":1}` {
		t.Fatalf("valid JSON should pass through, got %s", got)
	}
	if got := string(validJSON([]byte("not json"))); got != `"not json"` {
		t.Fatalf("invalid JSON should be quoted, got %s", got)
	}
}
