package resolver

import (
	"errors"
	"fmt"

	"studybuilder/internal/model"
)

// IssueKind classifies a snapshot integrity problem.
type IssueKind string

const (
	IssueInconsistentLine   IssueKind = "inconsistent_line"
	IssueDuplicateOrder     IssueKind = "duplicate_display_order"
	IssueUnknownLineContent IssueKind = "unknown_line_content"
	IssueInvalidRule        IssueKind = "invalid_rule"
	IssueUnresolvableTarget IssueKind = "unresolvable_target"
	IssueUnknownOwner       IssueKind = "unknown_owner"
	IssueTriggerCount       IssueKind = "trigger_count"
	IssueForeignTrigger     IssueKind = "foreign_trigger"
)

// Issue is one integrity problem found in a snapshot.
type Issue struct {
	Kind    IssueKind
	LineID  string
	RuleID  string
	Message string
}

func (i Issue) Error() string {
	switch {
	case i.LineID != "":
		return fmt.Sprintf("%s: line %s: %s", i.Kind, i.LineID, i.Message)
	case i.RuleID != "":
		return fmt.Sprintf("%s: rule %s: %s", i.Kind, i.RuleID, i.Message)
	default:
		return fmt.Sprintf("%s: %s", i.Kind, i.Message)
	}
}

// Validate reports integrity problems Resolve would silently tolerate.
func Validate(snap Snapshot) []Issue {
	var issues []Issue
	graph := NewContentGraph(snap.Questions, snap.Modules, snap.Tags)

	orders := make(map[int]string)
	for _, line := range snap.Lines {
		id, ok := line.ContentRef()
		if !ok {
			issues = append(issues, Issue{
				Kind:    IssueInconsistentLine,
				LineID:  line.ID,
				Message: fmt.Sprintf("content type %q needs exactly one matching reference", line.ContentType),
			})
		} else if !graph.HasTarget(line.ContentType, id) {
			issues = append(issues, Issue{
				Kind:    IssueUnknownLineContent,
				LineID:  line.ID,
				Message: fmt.Sprintf("%s %s does not exist", line.ContentType, id),
			})
		}
		if other, dup := orders[line.DisplayOrder]; dup {
			issues = append(issues, Issue{
				Kind:    IssueDuplicateOrder,
				LineID:  line.ID,
				Message: fmt.Sprintf("display order %d also used by line %s", line.DisplayOrder, other),
			})
		} else {
			orders[line.DisplayOrder] = line.ID
		}
	}

	ruleTypes := make(map[string]model.RuleType, len(snap.ConfigurationQuestions))
	for _, q := range snap.ConfigurationQuestions {
		ruleTypes[q.ID] = q.RuleType
	}
	answerOwner := make(map[string]string, len(snap.ConfigurationAnswers))
	for _, a := range snap.ConfigurationAnswers {
		answerOwner[a.ID] = a.ConfigurationQuestionID
	}

	for _, rule := range snap.Rules {
		if !rule.Type.Valid() || !rule.Classification.Valid() || !rule.ContentType.Valid() {
			issues = append(issues, Issue{
				Kind:    IssueInvalidRule,
				RuleID:  rule.ID,
				Message: fmt.Sprintf("type=%q classification=%q content=%q", rule.Type, rule.Classification, rule.ContentType),
			})
		} else if !graph.HasTarget(rule.ContentType, rule.TargetID) {
			issues = append(issues, Issue{
				Kind:    IssueUnresolvableTarget,
				RuleID:  rule.ID,
				Message: fmt.Sprintf("%s %s does not exist", rule.ContentType, rule.TargetID),
			})
		}

		ruleType, known := ruleTypes[rule.ConfigurationQuestionID]
		if !known {
			issues = append(issues, Issue{
				Kind:    IssueUnknownOwner,
				RuleID:  rule.ID,
				Message: fmt.Sprintf("configuration question %s not found", rule.ConfigurationQuestionID),
			})
		}
		if ruleType == model.RuleTypeSingleCoded && len(rule.TriggeringAnswerIDs) != 1 {
			issues = append(issues, Issue{
				Kind:    IssueTriggerCount,
				RuleID:  rule.ID,
				Message: fmt.Sprintf("single-coded rule has %d triggering answers", len(rule.TriggeringAnswerIDs)),
			})
		}
		if len(rule.TriggeringAnswerIDs) == 0 && ruleType != model.RuleTypeSingleCoded {
			issues = append(issues, Issue{
				Kind:    IssueTriggerCount,
				RuleID:  rule.ID,
				Message: "rule has no triggering answers",
			})
		}
		for _, answerID := range rule.TriggeringAnswerIDs {
			owner, ok := answerOwner[answerID]
			if ok && owner != rule.ConfigurationQuestionID {
				issues = append(issues, Issue{
					Kind:    IssueForeignTrigger,
					RuleID:  rule.ID,
					Message: fmt.Sprintf("answer %s belongs to configuration question %s", answerID, owner),
				})
			}
		}
	}
	return issues
}

// JoinIssues folds issues into a single error, nil when there are none.
func JoinIssues(issues []Issue) error {
	if len(issues) == 0 {
		return nil
	}
	errs := make([]error, len(issues))
	for i, issue := range issues {
		errs[i] = issue
	}
	return errors.Join(errs...)
}
