package model

import "time"

// Study is a concrete project whose questionnaire is materialized from a template
type Study struct {
	ID         string     `json:"id" bson:"_id"`
	Name       string     `json:"name" bson:"name"`
	OwnerID    string     `json:"ownerId" bson:"ownerId"`
	TemplateID string     `json:"templateId,omitempty" bson:"templateId,omitempty"`
	AppliedAt  *time.Time `json:"appliedAt,omitempty" bson:"appliedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt"`
}

// QuestionnaireLine is a persisted resolved content item of a study
type QuestionnaireLine struct {
	ID             string    `json:"id" bson:"_id"`
	StudyID        string    `json:"studyId" bson:"studyId"`
	QuestionID     string    `json:"questionId" bson:"questionId"`
	ModuleID       string    `json:"moduleId,omitempty" bson:"moduleId,omitempty"`
	TemplateLineID string    `json:"templateLineId,omitempty" bson:"templateLineId,omitempty"`
	DisplayOrder   int       `json:"displayOrder" bson:"displayOrder"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

// ApplyTemplateRequest asks for a template to be materialized into a study
type ApplyTemplateRequest struct {
	TemplateID        string   `json:"templateId"`
	AnsweredAnswerIDs []string `json:"answeredAnswerIds"`
}

// ApplyTemplateResult reports what was materialized
type ApplyTemplateResult struct {
	StudyID       string              `json:"studyId"`
	TemplateID    string              `json:"templateId"`
	Lines         []QuestionnaireLine `json:"lines"`
	FiredRuleIDs  []string            `json:"firedRuleIds"`
	OrphanedIDs   []string            `json:"orphanedQuestionIds,omitempty"`
	IssueMessages []string            `json:"issues,omitempty"`
}

// PreviewResult is a resolution that was not persisted
type PreviewResult struct {
	TemplateID    string                `json:"templateId"`
	Items         []ResolvedContentItem `json:"items"`
	FiredRuleIDs  []string              `json:"firedRuleIds"`
	OrphanedIDs   []string              `json:"orphanedQuestionIds,omitempty"`
	IssueMessages []string              `json:"issues,omitempty"`
}
