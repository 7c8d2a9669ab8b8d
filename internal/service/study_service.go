package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studybuilder/internal/cache"
	"studybuilder/internal/metrics"
	"studybuilder/internal/model"
	"studybuilder/internal/repository"
	"studybuilder/internal/resolver"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StudyOptions configures how templates are resolved for studies
type StudyOptions struct {
	MatchPolicy      resolver.MatchPolicy
	StrictValidation bool
}

// StudyService creates studies and materializes templates into them
type StudyService struct {
	studyRepo   repository.StudyRepo
	snapshots   *SnapshotService
	lock        cache.ApplyLock
	broadcaster Broadcaster
	opts        StudyOptions
	logger      *zap.Logger
	now         func() time.Time
}

// NewStudyService creates a new study service
func NewStudyService(
	studyRepo repository.StudyRepo,
	snapshots *SnapshotService,
	lock cache.ApplyLock,
	opts StudyOptions,
	logger *zap.Logger,
) *StudyService {
	return &StudyService{
		studyRepo: studyRepo,
		snapshots: snapshots,
		lock:      lock,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// SetBroadcaster sets the broadcaster for study events
func (s *StudyService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Create creates a new, empty study
func (s *StudyService) Create(ctx context.Context, study *model.Study) (string, error) {
	return s.studyRepo.Create(ctx, study)
}

// Get retrieves a study owned by authorID
func (s *StudyService) Get(ctx context.Context, studyID, authorID string) (*model.Study, error) {
	study, err := s.studyRepo.GetByID(ctx, studyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get study: %w", err)
	}
	if study == nil {
		return nil, ErrStudyNotFound
	}
	if study.OwnerID != authorID {
		return nil, ErrNotStudyOwner
	}
	return study, nil
}

// Questionnaire returns the persisted questionnaire lines of a study
func (s *StudyService) Questionnaire(ctx context.Context, studyID, authorID string) ([]model.QuestionnaireLine, error) {
	if _, err := s.Get(ctx, studyID, authorID); err != nil {
		return nil, err
	}
	return s.studyRepo.GetQuestionnaireLines(ctx, studyID)
}

// Preview resolves a template without persisting anything
func (s *StudyService) Preview(ctx context.Context, templateID string, answerIDs []string) (*model.PreviewResult, error) {
	if templateID == "" {
		return nil, ErrMissingTemplateID
	}
	res, issues, err := s.resolve(ctx, templateID, answerIDs)
	if err != nil {
		return nil, err
	}
	metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomePreview).Inc()

	return &model.PreviewResult{
		TemplateID:    templateID,
		Items:         res.Items,
		FiredRuleIDs:  res.FiredRuleIDs(),
		OrphanedIDs:   res.Orphans,
		IssueMessages: issueMessages(issues),
	}, nil
}

// ApplyTemplate materializes a template into a study's questionnaire. A study
// gets its questionnaire once; existing lines are never modified.
func (s *StudyService) ApplyTemplate(ctx context.Context, studyID, authorID string, req *model.ApplyTemplateRequest) (*model.ApplyTemplateResult, error) {
	if req.TemplateID == "" {
		return nil, ErrMissingTemplateID
	}
	if _, err := s.Get(ctx, studyID, authorID); err != nil {
		return nil, err
	}

	token, err := s.lock.Acquire(ctx, studyID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock study: %w", err)
	}
	if token == "" {
		return nil, ErrApplyInProgress
	}
	defer func() {
		// Release on a fresh context so a cancelled request still frees the lock
		if err := s.lock.Release(context.Background(), studyID, token); err != nil {
			s.logger.Warn("failed to release apply lock", zap.String("studyId", studyID), zap.Error(err))
		}
	}()

	// Re-read under the lock; a template may resolve to no lines at all
	study, err := s.Get(ctx, studyID, authorID)
	if err != nil {
		return nil, err
	}
	if study.AppliedAt != nil {
		return nil, ErrQuestionnaireExists
	}
	existing, err := s.studyRepo.CountQuestionnaireLines(ctx, studyID)
	if err != nil {
		return nil, fmt.Errorf("failed to check questionnaire: %w", err)
	}
	if existing > 0 {
		return nil, ErrQuestionnaireExists
	}

	res, issues, err := s.resolve(ctx, req.TemplateID, req.AnsweredAnswerIDs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	lines := make([]model.QuestionnaireLine, len(res.Items))
	for i, item := range res.Items {
		lines[i] = model.QuestionnaireLine{
			ID:             uuid.New().String(),
			StudyID:        studyID,
			QuestionID:     item.QuestionID,
			ModuleID:       item.ModuleID,
			TemplateLineID: item.TemplateLineID,
			DisplayOrder:   item.DisplayOrder,
			CreatedAt:      now,
		}
	}

	// Lines go in before the study is marked. Inserted lines alone already
	// block a second apply, so a failed mark never reopens the study.
	if err := s.studyRepo.InsertQuestionnaireLines(ctx, lines); err != nil {
		metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, fmt.Errorf("failed to persist questionnaire: %w", err)
	}
	if err := s.studyRepo.MarkApplied(ctx, studyID, req.TemplateID, now); err != nil {
		metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		s.logger.Error("questionnaire persisted but study not marked applied",
			zap.String("studyId", studyID),
			zap.String("templateId", req.TemplateID),
			zap.Int("lines", len(lines)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to mark study applied: %w", err)
	}
	metrics.QuestionnaireLinesTotal.Add(float64(len(lines)))
	metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomeApplied).Inc()

	result := &model.ApplyTemplateResult{
		StudyID:       studyID,
		TemplateID:    req.TemplateID,
		Lines:         lines,
		FiredRuleIDs:  res.FiredRuleIDs(),
		OrphanedIDs:   res.Orphans,
		IssueMessages: issueMessages(issues),
	}

	s.logger.Info("questionnaire materialized",
		zap.String("studyId", studyID),
		zap.String("templateId", req.TemplateID),
		zap.Int("lines", len(lines)),
		zap.Int("firedRules", len(result.FiredRuleIDs)))

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToStudy(studyID, EventQuestionnaireMaterialized, map[string]interface{}{
			"studyId":    studyID,
			"templateId": req.TemplateID,
			"lines":      len(lines),
		})
	}
	return result, nil
}

// resolve loads, validates and resolves a template
func (s *StudyService) resolve(ctx context.Context, templateID string, answerIDs []string) (resolver.Result, []resolver.Issue, error) {
	snap, err := s.snapshots.Load(ctx, templateID, answerIDs)
	if err != nil {
		if !errors.Is(err, ErrTemplateNotFound) {
			metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		}
		return resolver.Result{}, nil, err
	}

	issues := resolver.Validate(*snap)
	for _, issue := range issues {
		metrics.SnapshotIssuesTotal.WithLabelValues(string(issue.Kind)).Inc()
		s.logger.Warn("template integrity issue",
			zap.String("templateId", templateID),
			zap.String("kind", string(issue.Kind)),
			zap.String("lineId", issue.LineID),
			zap.String("ruleId", issue.RuleID),
			zap.String("detail", issue.Message))
	}
	if s.opts.StrictValidation && len(issues) > 0 {
		metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return resolver.Result{}, issues, fmt.Errorf("%w: %w", ErrInvalidSnapshot, resolver.JoinIssues(issues))
	}

	start := time.Now()
	res := resolver.Resolve(*snap, resolver.NewAnswerSet(answerIDs...), resolver.Options{MatchPolicy: s.opts.MatchPolicy})
	metrics.ResolutionDuration.Observe(time.Since(start).Seconds())
	metrics.FiredRules.Observe(float64(len(res.Fired)))

	if len(res.Orphans) > 0 {
		metrics.OrphanedQuestionsTotal.Add(float64(len(res.Orphans)))
		s.logger.Warn("rules included content outside the template structure",
			zap.String("templateId", templateID),
			zap.Strings("questionIds", res.Orphans))
	}
	return res, issues, nil
}

func issueMessages(issues []resolver.Issue) []string {
	if len(issues) == 0 {
		return nil
	}
	msgs := make([]string, len(issues))
	for i, issue := range issues {
		msgs[i] = issue.Error()
	}
	return msgs
}
