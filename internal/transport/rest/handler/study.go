package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"studybuilder/internal/model"
	"studybuilder/internal/service"
	"studybuilder/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Studies is the study service surface used by StudyHandler
type Studies interface {
	Create(ctx context.Context, study *model.Study) (string, error)
	Get(ctx context.Context, studyID, authorID string) (*model.Study, error)
	Questionnaire(ctx context.Context, studyID, authorID string) ([]model.QuestionnaireLine, error)
	ApplyTemplate(ctx context.Context, studyID, authorID string, req *model.ApplyTemplateRequest) (*model.ApplyTemplateResult, error)
	Preview(ctx context.Context, templateID string, answerIDs []string) (*model.PreviewResult, error)
}

// StudyHandler handles study and template endpoints
type StudyHandler struct {
	studySvc Studies
	logger   *zap.Logger
}

// NewStudyHandler creates a new study handler
func NewStudyHandler(studySvc Studies, logger *zap.Logger) *StudyHandler {
	return &StudyHandler{
		studySvc: studySvc,
		logger:   logger,
	}
}

// CreateStudyRequest is the request body for creating a study
type CreateStudyRequest struct {
	Name string `json:"name"`
}

// PreviewRequest is the request body for previewing a template
type PreviewRequest struct {
	AnsweredAnswerIDs []string `json:"answeredAnswerIds"`
}

// Create handles POST /v1/studies
func (h *StudyHandler) Create(w http.ResponseWriter, r *http.Request) {
	authorID := middleware.GetAuthorID(r.Context())
	if authorID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateStudyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.studySvc.Create(r.Context(), &model.Study{Name: req.Name, OwnerID: authorID})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"studyId": id})
}

// Get handles GET /v1/studies/{studyId}
func (h *StudyHandler) Get(w http.ResponseWriter, r *http.Request) {
	study, err := h.studySvc.Get(r.Context(), mux.Vars(r)["studyId"], middleware.GetAuthorID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, study)
}

// ApplyTemplate handles POST /v1/studies/{studyId}/questionnaire
func (h *StudyHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var req model.ApplyTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.studySvc.ApplyTemplate(r.Context(), mux.Vars(r)["studyId"], middleware.GetAuthorID(r.Context()), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// Questionnaire handles GET /v1/studies/{studyId}/questionnaire
func (h *StudyHandler) Questionnaire(w http.ResponseWriter, r *http.Request) {
	lines, err := h.studySvc.Questionnaire(r.Context(), mux.Vars(r)["studyId"], middleware.GetAuthorID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if lines == nil {
		lines = []model.QuestionnaireLine{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"lines": lines})
}

// Preview handles POST /v1/templates/{templateId}/preview
func (h *StudyHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.studySvc.Preview(r.Context(), mux.Vars(r)["templateId"], req.AnsweredAnswerIDs)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// fail maps service errors onto HTTP statuses
func (h *StudyHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrStudyNotFound), errors.Is(err, service.ErrTemplateNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotStudyOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrQuestionnaireExists), errors.Is(err, service.ErrApplyInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidSnapshot):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrMissingTemplateID):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
