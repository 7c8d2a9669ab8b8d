// Package resolver computes which template content is materialized into a
// study questionnaire and in what order.
//
// Resolution is a pure function of its snapshot: it performs no I/O, keeps no
// state between calls and may run concurrently as long as callers do not
// mutate a snapshot while it is being resolved.
package resolver

import "studybuilder/internal/model"

// Snapshot is everything a single resolution reads.
type Snapshot struct {
	Lines []model.TemplateLine
	// Questions is optional; when nil, question targets are not checked for existence
	Questions              []model.Question
	Modules                []model.Module
	Tags                   []model.Tag
	ConfigurationQuestions []model.ConfigurationQuestion
	ConfigurationAnswers   []model.ConfigurationAnswer
	// Rules are candidates in a stable caller order, typically creation order
	Rules []model.DependencyRule
}

// Options configures a resolution.
type Options struct {
	MatchPolicy MatchPolicy
}

// Result is the ordered questionnaire plus diagnostics.
type Result struct {
	Items []model.ResolvedContentItem
	Fired []model.DependencyRule
	// Orphans are included questions no template line reaches; they were
	// appended after the structural walk
	Orphans []string
}

// FiredRuleIDs returns the IDs of the fired rules in evaluation order.
func (r Result) FiredRuleIDs() []string {
	ids := make([]string, 0, len(r.Fired))
	for _, rule := range r.Fired {
		ids = append(ids, rule.ID)
	}
	return ids
}

// Resolve evaluates triggers, composes the final inclusion set and orders it.
func Resolve(snap Snapshot, answered AnswerSet, opts Options) Result {
	graph := NewContentGraph(snap.Questions, snap.Modules, snap.Tags)
	evaluator := NewTriggerEvaluator(snap.ConfigurationQuestions, snap.ConfigurationAnswers, opts.MatchPolicy)

	fired := evaluator.FiredRules(snap.Rules, answered)
	comp := NewSetComposer(graph).Compose(snap.Lines, fired)
	items, orphans := NewOrderAssigner(graph).Assign(snap.Lines, comp.Final, comp.Introduced)

	return Result{
		Items:   items,
		Fired:   fired,
		Orphans: orphans,
	}
}
