package resolver

import (
	"sort"

	"studybuilder/internal/model"
)

// position is where a question first appears in the template structure.
type position struct {
	line     int // index in display-ordered lines
	member   int // index within the module, 0 for question lines
	lineID   string
	moduleID string
}

func (p position) before(o position) bool {
	if p.line != o.line {
		return p.line < o.line
	}
	return p.member < o.member
}

// OrderAssigner turns a final inclusion set into numbered content items.
type OrderAssigner struct {
	graph *ContentGraph
}

func NewOrderAssigner(graph *ContentGraph) *OrderAssigner {
	return &OrderAssigner{graph: graph}
}

// Assign orders the final set by template position, appends content that no
// template line reaches in introduced order, and numbers items from 1. The
// IDs of the appended questions are returned as orphans.
func (a *OrderAssigner) Assign(lines []model.TemplateLine, final QuestionSet, introduced []string) (items []model.ResolvedContentItem, orphans []string) {
	positions := a.positions(lines)

	placed := make([]string, 0, len(final))
	for id := range final {
		if _, ok := positions[id]; ok {
			placed = append(placed, id)
		}
	}
	sort.Slice(placed, func(i, j int) bool {
		return positions[placed[i]].before(positions[placed[j]])
	})

	items = make([]model.ResolvedContentItem, 0, len(final))
	for _, id := range placed {
		pos := positions[id]
		items = append(items, model.ResolvedContentItem{
			QuestionID:     id,
			ModuleID:       pos.moduleID,
			TemplateLineID: pos.lineID,
		})
	}

	emitted := make(map[string]struct{}, len(final))
	for _, id := range placed {
		emitted[id] = struct{}{}
	}
	for _, id := range introduced {
		if _, ok := emitted[id]; ok || !final.Has(id) {
			continue
		}
		emitted[id] = struct{}{}
		orphans = append(orphans, id)
		items = append(items, model.ResolvedContentItem{QuestionID: id})
	}

	// Only reachable through inconsistent input; sorted so output stays stable
	var rest []string
	for id := range final {
		if _, ok := emitted[id]; !ok {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		orphans = append(orphans, id)
		items = append(items, model.ResolvedContentItem{QuestionID: id})
	}

	for i := range items {
		items[i].DisplayOrder = i + 1
	}
	return items, orphans
}

// positions walks every consistent line once, regardless of IncludeByDefault,
// and keeps the first position of each question.
func (a *OrderAssigner) positions(lines []model.TemplateLine) map[string]position {
	ordered := make([]model.TemplateLine, len(lines))
	copy(ordered, lines)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DisplayOrder < ordered[j].DisplayOrder
	})

	positions := make(map[string]position)
	for i, line := range ordered {
		id, ok := line.ContentRef()
		if !ok {
			continue
		}
		switch line.ContentType {
		case model.ContentQuestion:
			for _, qid := range a.graph.Expand(model.ContentQuestion, id) {
				if _, seen := positions[qid]; !seen {
					positions[qid] = position{line: i, lineID: line.ID}
				}
			}
		case model.ContentModule:
			for m, qid := range a.graph.Expand(model.ContentModule, id) {
				if _, seen := positions[qid]; !seen {
					positions[qid] = position{line: i, member: m, lineID: line.ID, moduleID: id}
				}
			}
		}
	}
	return positions
}
