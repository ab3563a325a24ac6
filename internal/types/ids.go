// Package types holds the chart node identifier scheme. Node ids are string
// keys namespaced by origin so a single flat list can carry milestones,
// issues, and checklist sub-items without collisions.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeKind identifies which origin a node id belongs to.
type NodeKind int

const (
	KindMilestone NodeKind = iota + 1
	KindIssue
	KindChecklist
)

// NodeRef is a parsed node id.
type NodeRef struct {
	Kind        NodeKind
	MilestoneID int
	IssueID     int
	TaskIndex   int
}

// MilestoneNodeID formats the id for a milestone row.
func MilestoneNodeID(milestoneID int) string {
	return fmt.Sprintf("milestone-%d", milestoneID)
}

// IssueNodeID formats the id for an issue row.
func IssueNodeID(issueID int) string {
	return fmt.Sprintf("issue-%d", issueID)
}

// ChecklistNodeID formats the id for a checklist sub-item. The index is the
// item's position within its issue's description, so it is only stable
// across rebuilds while the description's checklist ordering is stable.
func ChecklistNodeID(issueID, index int) string {
	return fmt.Sprintf("issue-%d-task-%d", issueID, index)
}

// ParseNodeID parses a node id back into its components. It reports ok=false
// for any id that is not one of the three recognized shapes.
func ParseNodeID(id string) (NodeRef, bool) {
	if rest, found := strings.CutPrefix(id, "milestone-"); found {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			return NodeRef{}, false
		}
		return NodeRef{Kind: KindMilestone, MilestoneID: n}, true
	}

	rest, found := strings.CutPrefix(id, "issue-")
	if !found {
		return NodeRef{}, false
	}

	if issuePart, taskPart, hasTask := strings.Cut(rest, "-task-"); hasTask {
		issueID, err := strconv.Atoi(issuePart)
		if err != nil || issueID < 0 {
			return NodeRef{}, false
		}
		index, err := strconv.Atoi(taskPart)
		if err != nil || index < 0 {
			return NodeRef{}, false
		}
		return NodeRef{Kind: KindChecklist, IssueID: issueID, TaskIndex: index}, true
	}

	issueID, err := strconv.Atoi(rest)
	if err != nil || issueID < 0 {
		return NodeRef{}, false
	}
	return NodeRef{Kind: KindIssue, IssueID: issueID}, true
}
