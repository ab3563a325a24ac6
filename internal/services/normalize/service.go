// Package normalize converts raw remote records into their parsed forms:
// checklist items extracted from issue descriptions and label names resolved
// to full label records. Everything here is pure.
package normalize

import (
	"regexp"
	"strings"

	"github.com/mkarlsen/ganttdash/internal/models"
)

// checklistPattern matches one markdown task-list line: optional leading
// whitespace, a "-" or "*" bullet, a checkbox, then free text. The "x" is
// case-insensitive. Anything else on the line disqualifies it, including
// checkboxes without a bullet. Indented-beyond-pattern or multi-paragraph
// checklist entries are intentionally dropped; looser parsing is unverified
// against real issue descriptions.
var checklistPattern = regexp.MustCompile(`(?m)^[ \t]*[-*][ \t]+\[([ xX])\][ \t]+(.*)$`)

// Normalize resolves labels and extracts checklists for every issue.
// Unresolved label names (deleted or renamed upstream) are dropped without
// error.
func Normalize(issues []models.RemoteIssue, labels []models.RemoteLabel) []models.ParsedIssue {
	byName := make(map[string]models.RemoteLabel, len(labels))
	for _, label := range labels {
		byName[label.Name] = label
	}

	parsed := make([]models.ParsedIssue, 0, len(issues))
	for _, issue := range issues {
		var resolved []models.RemoteLabel
		for _, name := range issue.Labels {
			if label, ok := byName[name]; ok {
				resolved = append(resolved, label)
			}
		}

		parsed = append(parsed, models.ParsedIssue{
			RemoteIssue:  issue,
			Tasks:        ExtractChecklist(issue.Description),
			LabelObjects: resolved,
		})
	}
	return parsed
}

// ExtractChecklist returns the task-list items of a description in source
// order.
func ExtractChecklist(description string) []models.ChecklistItem {
	matches := checklistPattern.FindAllStringSubmatch(description, -1)
	if len(matches) == 0 {
		return nil
	}

	items := make([]models.ChecklistItem, 0, len(matches))
	for _, m := range matches {
		items = append(items, models.ChecklistItem{
			Text:    strings.TrimRight(m[2], " \t\r"),
			Checked: m[1] != " ",
		})
	}
	return items
}
