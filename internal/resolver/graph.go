package resolver

import (
	"sort"

	"studybuilder/internal/model"
)

// ContentGraph is a read-only view of modules, tags and (optionally) the
// question catalogue. Unknown targets expand to nothing, since historical
// rules may still point at retired content.
type ContentGraph struct {
	questions map[string]struct{} // nil means no catalogue was supplied
	modules   map[string][]string
	tags      map[string][]string
}

// NewContentGraph indexes the content. With a question catalogue, question
// targets and module and tag members outside it expand to nothing. Pass nil
// questions to skip existence checks.
func NewContentGraph(questions []model.Question, modules []model.Module, tags []model.Tag) *ContentGraph {
	g := &ContentGraph{
		modules: make(map[string][]string, len(modules)),
		tags:    make(map[string][]string, len(tags)),
	}
	if questions != nil {
		g.questions = make(map[string]struct{}, len(questions))
		for _, q := range questions {
			g.questions[q.ID] = struct{}{}
		}
	}

	for _, m := range modules {
		members := make([]model.ModuleMember, 0, len(m.Members))
		for _, member := range m.Members {
			if member.Active && member.QuestionID != "" {
				members = append(members, member)
			}
		}
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].SortOrder < members[j].SortOrder
		})
		ids := make([]string, 0, len(members))
		for _, member := range members {
			ids = append(ids, member.QuestionID)
		}
		g.modules[m.ID] = dedupe(ids)
	}

	for _, t := range tags {
		g.tags[t.ID] = dedupe(t.QuestionIDs)
	}
	return g
}

// Expand returns the question IDs a target stands for. Module members come in
// sort order; tag members carry no meaningful order.
func (g *ContentGraph) Expand(contentType model.ContentType, id string) []string {
	if id == "" {
		return nil
	}
	switch contentType {
	case model.ContentQuestion:
		if g.questions != nil {
			if _, ok := g.questions[id]; !ok {
				return nil
			}
		}
		return []string{id}
	case model.ContentModule:
		return g.known(g.modules[id])
	case model.ContentTag:
		return g.known(g.tags[id])
	default:
		return nil
	}
}

// known copies ids, dropping questions missing from the catalogue
func (g *ContentGraph) known(ids []string) []string {
	if g.questions == nil {
		return clone(ids)
	}
	var out []string
	for _, id := range ids {
		if _, ok := g.questions[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// HasTarget reports whether a rule target resolves to known content.
func (g *ContentGraph) HasTarget(contentType model.ContentType, id string) bool {
	switch contentType {
	case model.ContentQuestion:
		if g.questions == nil {
			return id != ""
		}
		_, ok := g.questions[id]
		return ok
	case model.ContentModule:
		_, ok := g.modules[id]
		return ok
	case model.ContentTag:
		_, ok := g.tags[id]
		return ok
	default:
		return false
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func clone(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
