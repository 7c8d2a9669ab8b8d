package model

import "time"

// RuleType defines how many answers a configuration question accepts
type RuleType string

const (
	RuleTypeSingleCoded RuleType = "single" // Exactly one answer selectable
	RuleTypeMultiCoded  RuleType = "multi"  // Any number of answers selectable
)

// DependencyType is the effect a fired rule has on its target
type DependencyType string

const (
	DependencyInclude DependencyType = "include"
	DependencyExclude DependencyType = "exclude"
)

// Valid reports whether t is include or exclude
func (t DependencyType) Valid() bool {
	return t == DependencyInclude || t == DependencyExclude
}

// Classification orders rule application: primary rules first, then secondary
type Classification string

const (
	ClassificationPrimary   Classification = "primary"
	ClassificationSecondary Classification = "secondary"
)

// Valid reports whether c is primary or secondary
func (c Classification) Valid() bool {
	return c == ClassificationPrimary || c == ClassificationSecondary
}

// ConfigurationQuestion is a study setup question whose answers trigger rules
type ConfigurationQuestion struct {
	ID       string   `json:"id" bson:"_id"`
	Name     string   `json:"name" bson:"name"`
	RuleType RuleType `json:"ruleType" bson:"ruleType"`
}

// ConfigurationAnswer is one selectable answer of a configuration question
type ConfigurationAnswer struct {
	ID                      string `json:"id" bson:"_id"`
	ConfigurationQuestionID string `json:"configurationQuestionId" bson:"configurationQuestionId"`
	Name                    string `json:"name" bson:"name"`
}

// DependencyRule includes or excludes content when its triggering answers are given
type DependencyRule struct {
	ID                      string         `json:"id" bson:"_id"`
	ConfigurationQuestionID string         `json:"configurationQuestionId" bson:"configurationQuestionId"`
	Type                    DependencyType `json:"type" bson:"type"`
	ContentType             ContentType    `json:"contentType" bson:"contentType"`
	TargetID                string         `json:"targetId" bson:"targetId"`
	Classification          Classification `json:"classification" bson:"classification"`
	// Single-coded owners carry exactly one ID, multi-coded owners the full required set
	TriggeringAnswerIDs []string  `json:"triggeringAnswerIds" bson:"triggeringAnswerIds"`
	CreatedAt           time.Time `json:"createdAt" bson:"createdAt"`
}

// ResolvedContentItem is one ordered, deduplicated question of a resolved questionnaire
type ResolvedContentItem struct {
	QuestionID     string `json:"questionId"`
	ModuleID       string `json:"moduleId,omitempty"`       // Set when the question arrived via a module line
	TemplateLineID string `json:"templateLineId,omitempty"` // Empty for orphaned content
	DisplayOrder   int    `json:"displayOrder"`
}
