package edit

import "errors"

// Edit-related errors
var (
	// ErrNotEditable indicates the id belongs to a checklist sub-item or an
	// unrecognized shape; only milestones and issues carry real dates.
	ErrNotEditable = errors.New("node is not independently editable")

	// ErrInvalidRange indicates the new end is not after the new start.
	ErrInvalidRange = errors.New("end date must be after start date")

	// ErrUnknownIssue indicates the issue id is not part of the current build.
	ErrUnknownIssue = errors.New("issue not found in current state")
)
