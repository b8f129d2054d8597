package translation

import (
	"errors"
	"testing"

	"github.com/feedbackfix/feedbackfix-backend/pkg/enums"
)

func TestNormalizeJSONArray(t *testing.T) {
	raw := `[
		{"task": "Increase logo size by 15%.", "estimated_time_minutes": 10, "difficulty_level": "easy"},
		{"task": "Test 3 new color palettes for the CTA buttons."}
	]`

	tasks, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Description != "Increase logo size by 15%." {
		t.Fatalf("unexpected first task %q", tasks[0].Description)
	}
	if tasks[0].EstimatedMinutes == nil || *tasks[0].EstimatedMinutes != 10 {
		t.Fatal("expected estimated minutes 10 on first task")
	}
	if tasks[0].Difficulty == nil || *tasks[0].Difficulty != enums.TaskDifficultyEasy {
		t.Fatal("expected easy difficulty on first task")
	}
	if tasks[1].EstimatedMinutes != nil || tasks[1].Difficulty != nil {
		t.Fatal("expected optional fields absent on second task")
	}
}

func TestNormalizeFencedJSON(t *testing.T) {
	raw := "```json\n[{\"task\": \"Add 40px of whitespace between sections.\"}]\n```"

	tasks, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Description != "Add 40px of whitespace between sections." {
		t.Fatalf("unexpected task %q", tasks[0].Description)
	}
}

func TestNormalizeFencedJSONWithPreamble(t *testing.T) {
	raw := "Here are the tasks:\n```json\n[{\"task\": \"Increase logo size by 15%.\"}]\n```"

	tasks, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Description != "Increase logo size by 15%." {
		t.Fatalf("unexpected task %q", tasks[0].Description)
	}
}

func TestNormalizeBareFenceWithTrailer(t *testing.T) {
	raw := "```\n[\"Tighten the nav spacing.\"]\n```\nLet me know if you need more."

	tasks, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Description != "Tighten the nav spacing." {
		t.Fatalf("unexpected tasks %+v", tasks)
	}
}

func TestNormalizeTasksEnvelope(t *testing.T) {
	raw := `{"tasks": [{"task": "Raise body text from 16px to 18px.", "difficulty_level": "medium"}]}`

	tasks, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Difficulty == nil || *tasks[0].Difficulty != enums.TaskDifficultyMedium {
		t.Fatal("expected medium difficulty")
	}
}

func TestNormalizeSingleObject(t *testing.T) {
	tasks, err := Normalize(`{"task": "Darken the hero overlay to 60% opacity."}`)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Description != "Darken the hero overlay to 60% opacity." {
		t.Fatalf("unexpected tasks %+v", tasks)
	}
}

func TestNormalizeStringElements(t *testing.T) {
	tasks, err := Normalize(`["Swap the headline font for a display face.", "  ", "Add icon accents."]`)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[1].Description != "Add icon accents." {
		t.Fatalf("unexpected second task %q", tasks[1].Description)
	}
}

func TestNormalizePlainTextLines(t *testing.T) {
	raw := "Increase contrast on the headline\n\nAdd a drop shadow to the CTA button\n"

	tasks, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Description != "Increase contrast on the headline" {
		t.Fatalf("unexpected first task %q", tasks[0].Description)
	}
}

func TestNormalizeInvalidDifficultyDropped(t *testing.T) {
	tasks, err := Normalize(`[{"task": "Tune the palette.", "difficulty_level": "impossible"}]`)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if tasks[0].Difficulty != nil {
		t.Fatal("expected invalid difficulty to be dropped")
	}
}

func TestNormalizeNonPositiveMinutesDropped(t *testing.T) {
	tasks, err := Normalize(`[{"task": "Tune the palette.", "estimated_time_minutes": 0}]`)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if tasks[0].EstimatedMinutes != nil {
		t.Fatal("expected non-positive minutes to be dropped")
	}
}

func TestNormalizeEmptyArrayIsInvalid(t *testing.T) {
	if _, err := Normalize("[]"); !errors.Is(err, ErrNoTasks) {
		t.Fatalf("expected ErrNoTasks, got %v", err)
	}
}

func TestNormalizeBlankIsInvalid(t *testing.T) {
	if _, err := Normalize("   \n  "); !errors.Is(err, ErrNoTasks) {
		t.Fatalf("expected ErrNoTasks, got %v", err)
	}
}
