package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToStudy(studyID string, msgType string, payload interface{})
}

// Event types pushed to study subscribers
const (
	EventQuestionnaireMaterialized = "questionnaire_materialized"
)
