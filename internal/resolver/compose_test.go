package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"studybuilder/internal/model"
)

func TestSetComposer_Default(t *testing.T) {
	g := NewContentGraph(nil, []model.Module{module("M", "D", "E")}, nil)
	lines := []model.TemplateLine{
		qLine("l1", "A", 1, true),
		qLine("l2", "B", 2, false),
		mLine("l3", "M", 3, true),
	}

	set := NewSetComposer(g).Default(lines)

	assert.Equal(t, QuestionSet{"A": {}, "D": {}, "E": {}}, set)
}

func TestSetComposer_NoRulesReturnsDefault(t *testing.T) {
	g := NewContentGraph(nil, nil, nil)
	lines := []model.TemplateLine{qLine("l1", "A", 1, true)}

	comp := NewSetComposer(g).Compose(lines, nil)

	assert.Equal(t, comp.Default, comp.Final)
	assert.Empty(t, comp.Introduced)
}

func TestSetComposer_PassIsBatchWithExcludeAfterInclude(t *testing.T) {
	g := NewContentGraph(nil, nil, []model.Tag{{ID: "T", QuestionIDs: []string{"B", "C"}}})
	lines := []model.TemplateLine{qLine("l1", "A", 1, true)}

	// The exclude precedes the include in rule order but still wins within the pass
	fired := []model.DependencyRule{
		rule("r1", model.DependencyExclude, model.ClassificationPrimary, model.ContentQuestion, "B"),
		rule("r2", model.DependencyInclude, model.ClassificationPrimary, model.ContentTag, "T"),
	}

	comp := NewSetComposer(g).Compose(lines, fired)

	assert.Equal(t, QuestionSet{"A": {}, "C": {}}, comp.Final)
	assert.Equal(t, []string{"B", "C"}, comp.Introduced)
}

func TestSetComposer_SecondaryOperatesOnIntermediate(t *testing.T) {
	g := NewContentGraph(nil, []model.Module{module("M", "D", "E")}, nil)
	lines := []model.TemplateLine{
		qLine("l1", "A", 1, true),
		mLine("l2", "M", 2, true),
	}
	fired := []model.DependencyRule{
		rule("r1", model.DependencyExclude, model.ClassificationPrimary, model.ContentModule, "M"),
		rule("r2", model.DependencyInclude, model.ClassificationSecondary, model.ContentQuestion, "E"),
		rule("r3", model.DependencyExclude, model.ClassificationSecondary, model.ContentQuestion, "A"),
	}

	comp := NewSetComposer(g).Compose(lines, fired)

	assert.Equal(t, QuestionSet{"E": {}}, comp.Final)
	assert.Equal(t, QuestionSet{"A": {}, "D": {}, "E": {}}, comp.Default, "default set untouched")
}
