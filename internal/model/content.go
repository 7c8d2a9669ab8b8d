package model

// ContentType identifies what a template line or dependency rule points at
type ContentType string

const (
	ContentQuestion ContentType = "question"
	ContentModule   ContentType = "module"
	ContentTag      ContentType = "tag" // Rule targets only, never a template line
)

// Valid reports whether t is one of the known content types
func (t ContentType) Valid() bool {
	switch t {
	case ContentQuestion, ContentModule, ContentTag:
		return true
	default:
		return false
	}
}

// Question is the leaf content unit
type Question struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
	Text string `json:"text" bson:"text"`
}

// ModuleMember links a question into a module at a sort position
type ModuleMember struct {
	QuestionID string `json:"questionId" bson:"questionId"`
	SortOrder  int    `json:"sortOrder" bson:"sortOrder"`
	Active     bool   `json:"active" bson:"active"` // Inactive links never participate
}

// Module is an ordered container of questions
type Module struct {
	ID      string         `json:"id" bson:"_id"`
	Name    string         `json:"name" bson:"name"`
	Members []ModuleMember `json:"members" bson:"members"`
}

// Tag is an unordered group of questions usable as a rule target
type Tag struct {
	ID          string   `json:"id" bson:"_id"`
	Name        string   `json:"name" bson:"name"`
	QuestionIDs []string `json:"questionIds" bson:"questionIds"`
}
