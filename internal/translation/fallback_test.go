package translation

import (
	"strings"
	"testing"

	"github.com/feedbackfix/feedbackfix-backend/pkg/enums"
)

func TestSynthesizeFallbackShape(t *testing.T) {
	tasks := SynthesizeFallback("make it pop")

	if len(tasks) != 3 {
		t.Fatalf("expected 3 fallback tasks, got %d", len(tasks))
	}
	if !strings.Contains(tasks[0].Description, "make it pop") {
		t.Fatalf("expected first task to reference the feedback, got %q", tasks[0].Description)
	}

	wantMinutes := []int{30, 60, 15}
	wantDifficulty := []enums.TaskDifficulty{
		enums.TaskDifficultyMedium,
		enums.TaskDifficultyMedium,
		enums.TaskDifficultyEasy,
	}
	for i, task := range tasks {
		if task.EstimatedMinutes == nil || *task.EstimatedMinutes != wantMinutes[i] {
			t.Fatalf("task %d: expected %d minutes", i, wantMinutes[i])
		}
		if task.Difficulty == nil || *task.Difficulty != wantDifficulty[i] {
			t.Fatalf("task %d: expected difficulty %s", i, wantDifficulty[i])
		}
	}
}

func TestSynthesizeFallbackTruncatesLongFeedback(t *testing.T) {
	long := strings.Repeat("a", 250)
	tasks := SynthesizeFallback(long)

	if strings.Contains(tasks[0].Description, long) {
		t.Fatal("expected long feedback to be truncated in the review task")
	}
	if !strings.Contains(tasks[0].Description, strings.Repeat("a", 100)) {
		t.Fatal("expected the first 100 characters to be preserved")
	}
}

func TestSynthesizeFallbackDeterministic(t *testing.T) {
	first := SynthesizeFallback("too busy")
	second := SynthesizeFallback("too busy")

	if len(first) != len(second) {
		t.Fatal("expected identical task counts")
	}
	for i := range first {
		if first[i].Description != second[i].Description {
			t.Fatalf("task %d differs between calls", i)
		}
	}
}
