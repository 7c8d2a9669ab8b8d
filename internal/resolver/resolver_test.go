package resolver

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybuilder/internal/model"
)

func qLine(id, questionID string, order int, def bool) model.TemplateLine {
	return model.TemplateLine{ID: id, ContentType: model.ContentQuestion, QuestionID: questionID, DisplayOrder: order, IncludeByDefault: def}
}

func mLine(id, moduleID string, order int, def bool) model.TemplateLine {
	return model.TemplateLine{ID: id, ContentType: model.ContentModule, ModuleID: moduleID, DisplayOrder: order, IncludeByDefault: def}
}

func module(id string, questionIDs ...string) model.Module {
	m := model.Module{ID: id}
	for i, q := range questionIDs {
		m.Members = append(m.Members, model.ModuleMember{QuestionID: q, SortOrder: i + 1, Active: true})
	}
	return m
}

func rule(id string, typ model.DependencyType, class model.Classification, ct model.ContentType, target string, answers ...string) model.DependencyRule {
	return model.DependencyRule{
		ID:                      id,
		ConfigurationQuestionID: "cq-1",
		Type:                    typ,
		ContentType:             ct,
		TargetID:                target,
		Classification:          class,
		TriggeringAnswerIDs:     answers,
	}
}

var singleCoded = []model.ConfigurationQuestion{{ID: "cq-1", RuleType: model.RuleTypeSingleCoded}}

func questionIDs(items []model.ResolvedContentItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.QuestionID
	}
	return ids
}

func requireContiguous(t *testing.T, items []model.ResolvedContentItem) {
	t.Helper()
	seen := make(map[string]bool)
	for i, item := range items {
		require.Equal(t, i+1, item.DisplayOrder, "display order at %d", i)
		require.False(t, seen[item.QuestionID], "duplicate question %s", item.QuestionID)
		seen[item.QuestionID] = true
	}
}

func TestResolve_DefaultOnly(t *testing.T) {
	snap := Snapshot{
		Lines: []model.TemplateLine{
			qLine("l1", "A", 1, true),
			qLine("l2", "B", 2, false),
		},
	}

	res := Resolve(snap, NewAnswerSet(), Options{})

	want := []model.ResolvedContentItem{{QuestionID: "A", TemplateLineID: "l1", DisplayOrder: 1}}
	if diff := cmp.Diff(want, res.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, res.Fired)
	assert.Empty(t, res.Orphans)
}

func TestResolve_ModuleExpansionKeepsOrder(t *testing.T) {
	snap := Snapshot{
		Lines: []model.TemplateLine{
			qLine("l1", "A", 1, true),
			mLine("l2", "M", 2, true),
			qLine("l3", "C", 3, true),
		},
		Modules: []model.Module{module("M", "D", "E")},
	}

	res := Resolve(snap, NewAnswerSet(), Options{})

	want := []model.ResolvedContentItem{
		{QuestionID: "A", TemplateLineID: "l1", DisplayOrder: 1},
		{QuestionID: "D", ModuleID: "M", TemplateLineID: "l2", DisplayOrder: 2},
		{QuestionID: "E", ModuleID: "M", TemplateLineID: "l2", DisplayOrder: 3},
		{QuestionID: "C", TemplateLineID: "l3", DisplayOrder: 4},
	}
	if diff := cmp.Diff(want, res.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_PrimaryExcludeRemovesModuleContent(t *testing.T) {
	snap := Snapshot{
		Lines: []model.TemplateLine{
			qLine("l1", "A", 1, true),
			mLine("l2", "M", 2, true),
			qLine("l3", "C", 3, true),
		},
		Modules:                []model.Module{module("M", "D", "E")},
		ConfigurationQuestions: singleCoded,
		Rules: []model.DependencyRule{
			rule("r1", model.DependencyExclude, model.ClassificationPrimary, model.ContentQuestion, "D", "ans-1"),
		},
	}

	res := Resolve(snap, NewAnswerSet("ans-1"), Options{})

	assert.Equal(t, []string{"A", "E", "C"}, questionIDs(res.Items))
	assert.Equal(t, []string{"r1"}, res.FiredRuleIDs())
	requireContiguous(t, res.Items)
}

func TestResolve_SecondaryIncludeOverridesDefaultFalseModule(t *testing.T) {
	snap := Snapshot{
		Lines: []model.TemplateLine{
			qLine("l1", "A", 1, true),
			mLine("l2", "M", 2, false),
			qLine("l3", "C", 3, true),
		},
		Modules:                []model.Module{module("M", "D", "E")},
		ConfigurationQuestions: singleCoded,
		Rules: []model.DependencyRule{
			rule("r1", model.DependencyInclude, model.ClassificationSecondary, model.ContentModule, "M", "ans-1"),
		},
	}

	res := Resolve(snap, NewAnswerSet("ans-1"), Options{})

	assert.Equal(t, []string{"A", "D", "E", "C"}, questionIDs(res.Items))
	assert.Equal(t, "M", res.Items[1].ModuleID)
	assert.Empty(t, res.Orphans)
	requireContiguous(t, res.Items)
}

func TestResolve_TagIncludeFollowsTemplateOrder(t *testing.T) {
	snap := Snapshot{
		Lines: []model.TemplateLine{
			qLine("l1", "A", 1, false),
			qLine("l2", "B", 2, false),
			qLine("l3", "C", 3, false),
		},
		Tags:                   []model.Tag{{ID: "T", QuestionIDs: []string{"C", "B"}}},
		ConfigurationQuestions: singleCoded,
		Rules: []model.DependencyRule{
			rule("r1", model.DependencyInclude, model.ClassificationPrimary, model.ContentTag, "T", "ans-1"),
		},
	}

	res := Resolve(snap, NewAnswerSet("ans-1"), Options{})

	assert.Equal(t, []string{"B", "C"}, questionIDs(res.Items))
	requireContiguous(t, res.Items)
}

func TestResolve_SecondaryIncludeBeatsPrimaryExclude(t *testing.T) {
	snap := Snapshot{
		Lines: []model.TemplateLine{
			qLine("l1", "A", 1, true),
			qLine("l2", "B", 2, true),
		},
		ConfigurationQuestions: singleCoded,
		Rules: []model.DependencyRule{
			// Secondary listed first: evaluation order must not matter
			rule("r2", model.DependencyInclude, model.ClassificationSecondary, model.ContentQuestion, "B", "ans-1"),
			rule("r1", model.DependencyExclude, model.ClassificationPrimary, model.ContentQuestion, "B", "ans-1"),
		},
	}

	res := Resolve(snap, NewAnswerSet("ans-1"), Options{})

	assert.Equal(t, []string{"A", "B"}, questionIDs(res.Items))
}

func TestResolve_SecondaryExcludeBeatsPrimaryInclude(t *testing.T) {
	snap := Snapshot{
		Lines: []model.TemplateLine{
			qLine("l1", "A", 1, true),
			qLine("l2", "B", 2, false),
		},
		ConfigurationQuestions: singleCoded,
		Rules: []model.DependencyRule{
			rule("r1", model.DependencyInclude, model.ClassificationPrimary, model.ContentQuestion, "B", "ans-1"),
			rule("r2", model.DependencyExclude, model.ClassificationSecondary, model.ContentQuestion, "A", "ans-1"),
		},
	}

	res := Resolve(snap, NewAnswerSet("ans-1"), Options{})

	assert.Equal(t, []string{"B"}, questionIDs(res.Items))
	assert.Equal(t, 1, res.Items[0].DisplayOrder)
}

func TestResolve_OrphanAppendedInRuleOrder(t *testing.T) {
	snap := Snapshot{
		Lines:                  []model.TemplateLine{qLine("l1", "A", 1, true)},
		Tags:                   []model.Tag{{ID: "T", QuestionIDs: []string{"Y", "X"}}},
		ConfigurationQuestions: singleCoded,
		Rules: []model.DependencyRule{
			rule("r1", model.DependencyInclude, model.ClassificationSecondary, model.ContentQuestion, "Z", "ans-1"),
			rule("r2", model.DependencyInclude, model.ClassificationPrimary, model.ContentTag, "T", "ans-1"),
		},
	}

	res := Resolve(snap, NewAnswerSet("ans-1"), Options{})

	// Primary pass introduces Y, X before the secondary pass introduces Z
	assert.Equal(t, []string{"A", "Y", "X", "Z"}, questionIDs(res.Items))
	assert.Equal(t, []string{"Y", "X", "Z"}, res.Orphans)
	assert.Empty(t, res.Items[1].TemplateLineID)
	requireContiguous(t, res.Items)
}

func TestResolve_QuestionInModuleAndLineTakesFirstPosition(t *testing.T) {
	snap := Snapshot{
		Lines: []model.TemplateLine{
			mLine("l1", "M", 1, true),
			qLine("l2", "B", 2, true),
			qLine("l3", "D", 3, true),
		},
		Modules: []model.Module{module("M", "D", "E")},
	}

	res := Resolve(snap, NewAnswerSet(), Options{})

	assert.Equal(t, []string{"D", "E", "B"}, questionIDs(res.Items))
	assert.Equal(t, "M", res.Items[0].ModuleID)
	requireContiguous(t, res.Items)
}

func TestResolve_LinesSortedByDisplayOrder(t *testing.T) {
	snap := Snapshot{
		Lines: []model.TemplateLine{
			qLine("l3", "C", 30, true),
			qLine("l1", "A", 10, true),
			qLine("l2", "B", 20, true),
		},
	}

	res := Resolve(snap, NewAnswerSet(), Options{})

	assert.Equal(t, []string{"A", "B", "C"}, questionIDs(res.Items))
}

func TestResolve_EmptyInputs(t *testing.T) {
	res := Resolve(Snapshot{}, nil, Options{})

	assert.Empty(t, res.Items)
	assert.Empty(t, res.Fired)
	assert.Empty(t, res.Orphans)
}

func TestResolve_InconsistentInputsContributeNothing(t *testing.T) {
	snap := Snapshot{
		Lines: []model.TemplateLine{
			qLine("l1", "A", 1, true),
			{ID: "both", ContentType: model.ContentQuestion, QuestionID: "B", ModuleID: "M", DisplayOrder: 2, IncludeByDefault: true},
			{ID: "neither", ContentType: model.ContentModule, DisplayOrder: 3, IncludeByDefault: true},
			{ID: "tag", ContentType: model.ContentTag, DisplayOrder: 4, IncludeByDefault: true},
		},
		Modules:                []model.Module{module("M", "D")},
		ConfigurationQuestions: singleCoded,
		Rules: []model.DependencyRule{
			rule("r1", model.DependencyInclude, model.ClassificationPrimary, model.ContentModule, "retired", "ans-1"),
			rule("r2", "toggle", model.ClassificationPrimary, model.ContentQuestion, "A", "ans-1"),
		},
	}

	res := Resolve(snap, NewAnswerSet("ans-1"), Options{})

	assert.Equal(t, []string{"A"}, questionIDs(res.Items))
	assert.Empty(t, res.Orphans)
}

func TestResolve_Deterministic(t *testing.T) {
	snap := Snapshot{
		Lines: []model.TemplateLine{
			qLine("l1", "A", 1, false),
			mLine("l2", "M", 2, true),
		},
		Modules: []model.Module{module("M", "D", "E", "F")},
		Tags: []model.Tag{
			{ID: "T1", QuestionIDs: []string{"O3", "O1", "A"}},
			{ID: "T2", QuestionIDs: []string{"O2", "E"}},
		},
		ConfigurationQuestions: singleCoded,
		Rules: []model.DependencyRule{
			rule("r1", model.DependencyInclude, model.ClassificationPrimary, model.ContentTag, "T1", "ans-1"),
			rule("r2", model.DependencyInclude, model.ClassificationPrimary, model.ContentTag, "T2", "ans-1"),
			rule("r3", model.DependencyExclude, model.ClassificationSecondary, model.ContentQuestion, "O1", "ans-1"),
		},
	}

	first := Resolve(snap, NewAnswerSet("ans-1"), Options{})
	for i := 0; i < 50; i++ {
		again := Resolve(snap, NewAnswerSet("ans-1"), Options{})
		require.Empty(t, cmp.Diff(first.Items, again.Items), "run %d differs", i)
	}
	assert.Equal(t, []string{"A", "D", "E", "F", "O3", "O2"}, questionIDs(first.Items))
	requireContiguous(t, first.Items)
}
