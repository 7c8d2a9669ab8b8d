package resolver

import "studybuilder/internal/model"

// Composition is the outcome of applying fired rules to the default set.
type Composition struct {
	Default QuestionSet
	Final   QuestionSet
	// Introduced lists question IDs in the order an include rule first brought
	// them in (primary pass before secondary, rule order, expansion order).
	Introduced []string
}

// SetComposer builds inclusion sets from template lines and fired rules.
type SetComposer struct {
	graph *ContentGraph
}

func NewSetComposer(graph *ContentGraph) *SetComposer {
	return &SetComposer{graph: graph}
}

// Default returns the questions included purely by IncludeByDefault.
func (c *SetComposer) Default(lines []model.TemplateLine) QuestionSet {
	set := make(QuestionSet)
	for _, line := range lines {
		if !line.IncludeByDefault {
			continue
		}
		id, ok := line.ContentRef()
		if !ok {
			continue
		}
		set.add(c.graph.Expand(line.ContentType, id))
	}
	return set
}

// Compose applies the primary pass to the default set and the secondary pass
// to its result. Within a pass all includes land before any exclude.
func (c *SetComposer) Compose(lines []model.TemplateLine, fired []model.DependencyRule) Composition {
	def := c.Default(lines)
	comp := Composition{Default: def}
	seen := make(map[string]struct{})

	intermediate := c.pass(def, fired, model.ClassificationPrimary, &comp.Introduced, seen)
	comp.Final = c.pass(intermediate, fired, model.ClassificationSecondary, &comp.Introduced, seen)
	return comp
}

func (c *SetComposer) pass(base QuestionSet, fired []model.DependencyRule, class model.Classification, introduced *[]string, seen map[string]struct{}) QuestionSet {
	out := base.clone()
	var excludes []string

	for _, rule := range fired {
		if rule.Classification != class {
			continue
		}
		targets := c.graph.Expand(rule.ContentType, rule.TargetID)
		switch rule.Type {
		case model.DependencyInclude:
			out.add(targets)
			for _, id := range targets {
				if _, ok := seen[id]; !ok {
					seen[id] = struct{}{}
					*introduced = append(*introduced, id)
				}
			}
		case model.DependencyExclude:
			excludes = append(excludes, targets...)
		default:
			// Unknown dependency types contribute nothing
		}
	}

	out.remove(excludes)
	return out
}
