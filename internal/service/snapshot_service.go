package service

import (
	"context"
	"fmt"

	"studybuilder/internal/cache"
	"studybuilder/internal/metrics"
	"studybuilder/internal/model"
	"studybuilder/internal/repository"
	"studybuilder/internal/resolver"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SnapshotService assembles the read-only inputs of a resolution
type SnapshotService struct {
	templateRepo repository.TemplateRepo
	contentRepo  repository.ContentRepo
	ruleRepo     repository.RuleRepo
	cache        cache.SnapshotCache
	logger       *zap.Logger
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(
	templateRepo repository.TemplateRepo,
	contentRepo repository.ContentRepo,
	ruleRepo repository.RuleRepo,
	snapshotCache cache.SnapshotCache,
	logger *zap.Logger,
) *SnapshotService {
	return &SnapshotService{
		templateRepo: templateRepo,
		contentRepo:  contentRepo,
		ruleRepo:     ruleRepo,
		cache:        snapshotCache,
		logger:       logger,
	}
}

// Structure returns a template's lines and modules, from cache when possible
func (s *SnapshotService) Structure(ctx context.Context, templateID string) (*model.TemplateStructure, error) {
	cached, err := s.cache.Get(ctx, templateID)
	if err != nil {
		// A broken cache only costs a database round trip
		s.logger.Warn("snapshot cache read failed", zap.String("templateId", templateID), zap.Error(err))
	}
	if cached != nil {
		metrics.SnapshotCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.SnapshotCacheTotal.WithLabelValues("miss").Inc()

	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	if template == nil {
		return nil, ErrTemplateNotFound
	}

	lines, err := s.templateRepo.GetLines(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get template lines: %w", err)
	}

	structure := &model.TemplateStructure{Template: *template, Lines: lines}
	structure.Modules, err = s.contentRepo.GetModulesByIDs(ctx, structure.ModuleIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to get modules: %w", err)
	}

	if err := s.cache.Set(ctx, structure); err != nil {
		s.logger.Warn("snapshot cache write failed", zap.String("templateId", templateID), zap.Error(err))
	}
	return structure, nil
}

// Load builds the snapshot for resolving templateID against answerIDs. Only
// rules sharing a triggering answer with answerIDs are loaded; rules without
// any answered trigger cannot fire.
func (s *SnapshotService) Load(ctx context.Context, templateID string, answerIDs []string) (*resolver.Snapshot, error) {
	structure, err := s.Structure(ctx, templateID)
	if err != nil {
		return nil, err
	}

	rules, err := s.ruleRepo.GetByTriggeringAnswers(ctx, answerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get dependency rules: %w", err)
	}

	snap := &resolver.Snapshot{
		Lines:   structure.Lines,
		Modules: structure.Modules,
		Rules:   rules,
	}

	ownerIDs := distinct(rules, func(r model.DependencyRule) (string, bool) {
		return r.ConfigurationQuestionID, r.ConfigurationQuestionID != ""
	})
	tagIDs := distinct(rules, func(r model.DependencyRule) (string, bool) {
		return r.TargetID, r.ContentType == model.ContentTag
	})
	ruleModuleIDs := distinct(rules, func(r model.DependencyRule) (string, bool) {
		return r.TargetID, r.ContentType == model.ContentModule
	})

	var extraModules []model.Module
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.ConfigurationQuestions, err = s.ruleRepo.GetConfigurationQuestions(gctx, ownerIDs)
		return err
	})
	g.Go(func() error {
		var err error
		snap.ConfigurationAnswers, err = s.ruleRepo.GetConfigurationAnswers(gctx, ownerIDs)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Tags, err = s.contentRepo.GetTagsByIDs(gctx, tagIDs)
		return err
	})
	g.Go(func() error {
		missing := missingModules(structure.Modules, ruleModuleIDs)
		var err error
		extraModules, err = s.contentRepo.GetModulesByIDs(gctx, missing)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load rule targets: %w", err)
	}
	snap.Modules = append(append([]model.Module{}, snap.Modules...), extraModules...)

	snap.Questions, err = s.contentRepo.GetQuestionsByIDs(ctx, referencedQuestions(snap))
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	if snap.Questions == nil {
		// Keep existence checks on even when nothing was found
		snap.Questions = []model.Question{}
	}
	return snap, nil
}

func distinct(rules []model.DependencyRule, pick func(model.DependencyRule) (string, bool)) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, r := range rules {
		id, ok := pick(r)
		if !ok || id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func missingModules(have []model.Module, want []string) []string {
	loaded := make(map[string]struct{}, len(have))
	for _, m := range have {
		loaded[m.ID] = struct{}{}
	}
	var missing []string
	for _, id := range want {
		if _, ok := loaded[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// referencedQuestions lists every question ID the snapshot can reach
func referencedQuestions(snap *resolver.Snapshot) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, line := range snap.Lines {
		add(line.QuestionID)
	}
	for _, m := range snap.Modules {
		for _, member := range m.Members {
			add(member.QuestionID)
		}
	}
	for _, t := range snap.Tags {
		for _, id := range t.QuestionIDs {
			add(id)
		}
	}
	for _, r := range snap.Rules {
		if r.ContentType == model.ContentQuestion {
			add(r.TargetID)
		}
	}
	return ids
}
