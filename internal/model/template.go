package model

import "time"

// Template is a reusable blueprint that questionnaires are instantiated from
type Template struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// TemplateLine is one position within a template
type TemplateLine struct {
	ID               string      `json:"id" bson:"_id"`
	TemplateID       string      `json:"templateId" bson:"templateId"`
	ContentType      ContentType `json:"contentType" bson:"contentType"`
	QuestionID       string      `json:"questionId,omitempty" bson:"questionId,omitempty"`
	ModuleID         string      `json:"moduleId,omitempty" bson:"moduleId,omitempty"`
	DisplayOrder     int         `json:"displayOrder" bson:"displayOrder"`
	IncludeByDefault bool        `json:"includeByDefault" bson:"includeByDefault"`
}

// ContentRef returns the ID the line references. ok is false when the line
// does not reference exactly one of question/module matching its ContentType.
func (l TemplateLine) ContentRef() (id string, ok bool) {
	switch l.ContentType {
	case ContentQuestion:
		if l.QuestionID == "" || l.ModuleID != "" {
			return "", false
		}
		return l.QuestionID, true
	case ContentModule:
		if l.ModuleID == "" || l.QuestionID != "" {
			return "", false
		}
		return l.ModuleID, true
	default:
		return "", false
	}
}

// TemplateStructure is the cacheable part of a template: its lines and the
// modules those lines reference
type TemplateStructure struct {
	Template Template       `json:"template"`
	Lines    []TemplateLine `json:"lines"`
	Modules  []Module       `json:"modules"`
}

// ModuleIDs returns the distinct module IDs referenced by the lines, in line order
func (s *TemplateStructure) ModuleIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, line := range s.Lines {
		if line.ContentType != ContentModule || line.ModuleID == "" {
			continue
		}
		if _, ok := seen[line.ModuleID]; ok {
			continue
		}
		seen[line.ModuleID] = struct{}{}
		ids = append(ids, line.ModuleID)
	}
	return ids
}
