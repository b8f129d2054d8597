package translation

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/feedbackfix/feedbackfix-backend/pkg/enums"
)

// ErrNoTasks indicates that no usable task descriptions survived normalization.
var ErrNoTasks = errors.New("no tasks extracted from model output")

type wireTask struct {
	Task             string `json:"task"`
	EstimatedMinutes *int   `json:"estimated_time_minutes"`
	Difficulty       string `json:"difficulty_level"`
}

type wireEnvelope struct {
	Tasks []json.RawMessage `json:"tasks"`
}

// Normalize extracts a task list from raw model output. It tolerates fenced
// code blocks, a {"tasks": [...]} envelope, a single task object, and falls
// back to treating non-blank lines as task descriptions when the output is
// not structured at all.
func Normalize(raw string) ([]Task, error) {
	content := stripFences(raw)

	tasks, parsed := decodeStructured(content)
	if len(tasks) > 0 {
		return tasks, nil
	}
	if !parsed {
		if tasks := splitLines(content); len(tasks) > 0 {
			return tasks, nil
		}
	}
	return nil, ErrNoTasks
}

func decodeStructured(content string) ([]Task, bool) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, false
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &elements); err == nil {
		return elementsToTasks(elements), true
	}

	var envelope wireEnvelope
	if err := json.Unmarshal([]byte(trimmed), &envelope); err == nil {
		if len(envelope.Tasks) > 0 {
			return elementsToTasks(envelope.Tasks), true
		}

		var single wireTask
		if err := json.Unmarshal([]byte(trimmed), &single); err == nil && strings.TrimSpace(single.Task) != "" {
			return []Task{buildTask(single)}, true
		}
		return nil, true
	}

	return nil, false
}

func elementsToTasks(elements []json.RawMessage) []Task {
	tasks := make([]Task, 0, len(elements))
	for _, element := range elements {
		var obj wireTask
		if err := json.Unmarshal(element, &obj); err == nil && strings.TrimSpace(obj.Task) != "" {
			tasks = append(tasks, buildTask(obj))
			continue
		}

		var text string
		if err := json.Unmarshal(element, &text); err == nil && strings.TrimSpace(text) != "" {
			tasks = append(tasks, Task{Description: strings.TrimSpace(text)})
		}
	}
	return tasks
}

func buildTask(w wireTask) Task {
	task := Task{Description: strings.TrimSpace(w.Task)}
	if w.EstimatedMinutes != nil && *w.EstimatedMinutes > 0 {
		task.EstimatedMinutes = w.EstimatedMinutes
	}
	if difficulty, err := enums.ParseTaskDifficulty(w.Difficulty); err == nil {
		task.Difficulty = &difficulty
	}
	return task
}

// stripFences extracts the content of the first markdown code fence, so a
// model reply that wraps its JSON in ```json ... ``` (optionally with prose
// around the block) parses cleanly. Input without a fence passes through.
func stripFences(raw string) string {
	marker := "```json"
	start := strings.Index(raw, marker)
	if start < 0 {
		marker = "```"
		start = strings.Index(raw, marker)
	}
	if start < 0 {
		return raw
	}
	inner := raw[start+len(marker):]
	if end := strings.Index(inner, "```"); end >= 0 {
		inner = inner[:end]
	}
	return strings.TrimSpace(inner)
}

// splitLines is the last-resort recovery for plain-text model output.
func splitLines(content string) []Task {
	var tasks []Task
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tasks = append(tasks, Task{Description: line})
	}
	return tasks
}
