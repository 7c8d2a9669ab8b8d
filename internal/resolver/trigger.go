package resolver

import (
	"fmt"
	"strings"

	"studybuilder/internal/model"
)

// MatchPolicy decides when a multi-coded rule fires.
type MatchPolicy string

const (
	// MatchSubset fires when every required answer was given. Extra answers,
	// even to the same configuration question, do not prevent firing.
	MatchSubset MatchPolicy = "subset"
	// MatchExact additionally requires that every given answer of the owning
	// configuration question is part of the rule's required set.
	MatchExact MatchPolicy = "exact"
)

// ParseMatchPolicy parses a policy name; the empty string yields MatchSubset.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch MatchPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchSubset:
		return MatchSubset, nil
	case MatchExact:
		return MatchExact, nil
	default:
		return "", fmt.Errorf("unknown match policy %q", s)
	}
}

// TriggerEvaluator decides whether dependency rules fire for a set of answers.
// It is read-only after construction.
type TriggerEvaluator struct {
	policy      MatchPolicy
	ruleTypes   map[string]model.RuleType // configuration question -> rule type
	answerOwner map[string]string         // configuration answer -> configuration question
}

// NewTriggerEvaluator creates an evaluator over the configuration questions and
// answers that rules may reference.
func NewTriggerEvaluator(questions []model.ConfigurationQuestion, answers []model.ConfigurationAnswer, policy MatchPolicy) *TriggerEvaluator {
	if policy == "" {
		policy = MatchSubset
	}
	e := &TriggerEvaluator{
		policy:      policy,
		ruleTypes:   make(map[string]model.RuleType, len(questions)),
		answerOwner: make(map[string]string, len(answers)),
	}
	for _, q := range questions {
		e.ruleTypes[q.ID] = q.RuleType
	}
	for _, a := range answers {
		e.answerOwner[a.ID] = a.ConfigurationQuestionID
	}
	return e
}

// Policy returns the multi-coded match policy in effect.
func (e *TriggerEvaluator) Policy() MatchPolicy {
	return e.policy
}

// Fire reports whether rule fires for the answered set.
func (e *TriggerEvaluator) Fire(rule model.DependencyRule, answered AnswerSet) bool {
	if len(rule.TriggeringAnswerIDs) == 0 || len(answered) == 0 {
		return false
	}

	switch e.ruleTypes[rule.ConfigurationQuestionID] {
	case model.RuleTypeSingleCoded:
		if len(rule.TriggeringAnswerIDs) != 1 {
			return false
		}
		return answered.Has(rule.TriggeringAnswerIDs[0])
	case model.RuleTypeMultiCoded:
		return e.matchMulti(rule, answered)
	default:
		// Owner unknown: a required-set test covers the single answer case too
		return containsAll(answered, rule.TriggeringAnswerIDs)
	}
}

// FiredRules returns the rules that fire, preserving the caller's order.
func (e *TriggerEvaluator) FiredRules(rules []model.DependencyRule, answered AnswerSet) []model.DependencyRule {
	var fired []model.DependencyRule
	for _, rule := range rules {
		if e.Fire(rule, answered) {
			fired = append(fired, rule)
		}
	}
	return fired
}

// FilterExactMatchRules keeps the multi-coded candidate rules whose required
// answers are all present, in input order.
func (e *TriggerEvaluator) FilterExactMatchRules(rules []model.DependencyRule, answered AnswerSet) []model.DependencyRule {
	var matched []model.DependencyRule
	for _, rule := range rules {
		if len(rule.TriggeringAnswerIDs) == 0 {
			continue
		}
		if e.matchMulti(rule, answered) {
			matched = append(matched, rule)
		}
	}
	return matched
}

func (e *TriggerEvaluator) matchMulti(rule model.DependencyRule, answered AnswerSet) bool {
	if !containsAll(answered, rule.TriggeringAnswerIDs) {
		return false
	}
	if e.policy != MatchExact {
		return true
	}

	required := NewAnswerSet(rule.TriggeringAnswerIDs...)
	for id := range answered {
		if e.answerOwner[id] != rule.ConfigurationQuestionID {
			continue
		}
		if !required.Has(id) {
			return false
		}
	}
	return true
}

func containsAll(answered AnswerSet, ids []string) bool {
	for _, id := range ids {
		if !answered.Has(id) {
			return false
		}
	}
	return true
}
