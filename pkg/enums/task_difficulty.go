package enums

import "fmt"

// TaskDifficulty grades how hard a generated design task is to execute.
type TaskDifficulty string

const (
	TaskDifficultyEasy   TaskDifficulty = "easy"
	TaskDifficultyMedium TaskDifficulty = "medium"
	TaskDifficultyHard   TaskDifficulty = "hard"
)

var validTaskDifficulties = []TaskDifficulty{
	TaskDifficultyEasy,
	TaskDifficultyMedium,
	TaskDifficultyHard,
}

// String implements fmt.Stringer.
func (d TaskDifficulty) String() string {
	return string(d)
}

// IsValid reports whether the value is known.
func (d TaskDifficulty) IsValid() bool {
	for _, candidate := range validTaskDifficulties {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseTaskDifficulty converts raw input into a TaskDifficulty.
func ParseTaskDifficulty(value string) (TaskDifficulty, error) {
	for _, candidate := range validTaskDifficulties {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid task difficulty %q", value)
}
