package cmd

import (
	"reflect"
	"testing"
)

func Test_normalizeTables(t *testing.T) {
	if got := normalizeTables(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
	if got := normalizeTables([]string{"  ", ""}); got != nil {
		t.Fatalf("expected nil for blank-only input, got %v", got)
	}
	got := normalizeTables([]string{" Exercise_History ", "WORD_MASTERY", ""})
	want := []string{"exercise_history", "word_mastery"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
