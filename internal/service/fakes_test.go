package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"studybuilder/internal/model"
)

type fakeTemplateRepo struct {
	templates map[string]model.Template
	lines     map[string][]model.TemplateLine
	getCalls  int
}

func (f *fakeTemplateRepo) Create(_ context.Context, t *model.Template) (string, error) {
	f.templates[t.ID] = *t
	return t.ID, nil
}

func (f *fakeTemplateRepo) GetByID(_ context.Context, id string) (*model.Template, error) {
	f.getCalls++
	t, ok := f.templates[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeTemplateRepo) GetLines(_ context.Context, templateID string) ([]model.TemplateLine, error) {
	return f.lines[templateID], nil
}

func (f *fakeTemplateRepo) ReplaceLines(_ context.Context, templateID string, lines []model.TemplateLine) error {
	f.lines[templateID] = lines
	return nil
}

type fakeContentRepo struct {
	questions map[string]model.Question
	modules   map[string]model.Module
	tags      map[string]model.Tag
}

func pick[T any](src map[string]T, ids []string) []T {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	var out []T
	for _, id := range sorted {
		if v, ok := src[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

func (f *fakeContentRepo) GetQuestionsByIDs(_ context.Context, ids []string) ([]model.Question, error) {
	return pick(f.questions, ids), nil
}

func (f *fakeContentRepo) GetModulesByIDs(_ context.Context, ids []string) ([]model.Module, error) {
	return pick(f.modules, ids), nil
}

func (f *fakeContentRepo) GetTagsByIDs(_ context.Context, ids []string) ([]model.Tag, error) {
	return pick(f.tags, ids), nil
}

func (f *fakeContentRepo) UpsertQuestion(_ context.Context, q *model.Question) error {
	f.questions[q.ID] = *q
	return nil
}

func (f *fakeContentRepo) UpsertModule(_ context.Context, m *model.Module) error {
	f.modules[m.ID] = *m
	return nil
}

func (f *fakeContentRepo) UpsertTag(_ context.Context, t *model.Tag) error {
	f.tags[t.ID] = *t
	return nil
}

type fakeRuleRepo struct {
	rules     []model.DependencyRule
	questions map[string]model.ConfigurationQuestion
	answers   []model.ConfigurationAnswer
}

func (f *fakeRuleRepo) GetByTriggeringAnswers(_ context.Context, answerIDs []string) ([]model.DependencyRule, error) {
	want := make(map[string]bool)
	for _, id := range answerIDs {
		want[id] = true
	}
	var out []model.DependencyRule
	for _, r := range f.rules {
		for _, id := range r.TriggeringAnswerIDs {
			if want[id] {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRuleRepo) Create(_ context.Context, r *model.DependencyRule) (string, error) {
	f.rules = append(f.rules, *r)
	return r.ID, nil
}

func (f *fakeRuleRepo) GetConfigurationQuestions(_ context.Context, ids []string) ([]model.ConfigurationQuestion, error) {
	return pick(f.questions, ids), nil
}

func (f *fakeRuleRepo) GetConfigurationAnswers(_ context.Context, questionIDs []string) ([]model.ConfigurationAnswer, error) {
	want := make(map[string]bool)
	for _, id := range questionIDs {
		want[id] = true
	}
	var out []model.ConfigurationAnswer
	for _, a := range f.answers {
		if want[a.ConfigurationQuestionID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRuleRepo) UpsertConfigurationQuestion(_ context.Context, q *model.ConfigurationQuestion) error {
	f.questions[q.ID] = *q
	return nil
}

func (f *fakeRuleRepo) UpsertConfigurationAnswer(_ context.Context, a *model.ConfigurationAnswer) error {
	f.answers = append(f.answers, *a)
	return nil
}

type fakeStudyRepo struct {
	studies   map[string]model.Study
	lines     map[string][]model.QuestionnaireLine
	insertErr error
	markErr   error
}

func (f *fakeStudyRepo) Create(_ context.Context, s *model.Study) (string, error) {
	f.studies[s.ID] = *s
	return s.ID, nil
}

func (f *fakeStudyRepo) GetByID(_ context.Context, id string) (*model.Study, error) {
	s, ok := f.studies[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeStudyRepo) MarkApplied(_ context.Context, id, templateID string, at time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	s := f.studies[id]
	s.TemplateID = templateID
	s.AppliedAt = &at
	f.studies[id] = s
	return nil
}

func (f *fakeStudyRepo) CountQuestionnaireLines(_ context.Context, studyID string) (int64, error) {
	return int64(len(f.lines[studyID])), nil
}

func (f *fakeStudyRepo) InsertQuestionnaireLines(_ context.Context, lines []model.QuestionnaireLine) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, l := range lines {
		f.lines[l.StudyID] = append(f.lines[l.StudyID], l)
	}
	return nil
}

func (f *fakeStudyRepo) GetQuestionnaireLines(_ context.Context, studyID string) ([]model.QuestionnaireLine, error) {
	return f.lines[studyID], nil
}

type fakeSnapshotCache struct {
	entries map[string]model.TemplateStructure
	readErr error
}

func (f *fakeSnapshotCache) Get(_ context.Context, templateID string) (*model.TemplateStructure, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	s, ok := f.entries[templateID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeSnapshotCache) Set(_ context.Context, s *model.TemplateStructure) error {
	f.entries[s.Template.ID] = *s
	return nil
}

func (f *fakeSnapshotCache) Invalidate(_ context.Context, templateID string) error {
	delete(f.entries, templateID)
	return nil
}

type fakeLock struct {
	held     map[string]string
	released []string
	err      error
}

func (f *fakeLock) Acquire(_ context.Context, studyID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, ok := f.held[studyID]; ok {
		return "", nil
	}
	f.held[studyID] = "token-" + studyID
	return f.held[studyID], nil
}

func (f *fakeLock) Release(_ context.Context, studyID, token string) error {
	if f.held[studyID] != token {
		return errors.New("token mismatch")
	}
	delete(f.held, studyID)
	f.released = append(f.released, studyID)
	return nil
}

type broadcast struct {
	studyID string
	msgType string
	payload interface{}
}

type fakeBroadcaster struct {
	mu   sync.Mutex
	sent []broadcast
}

func (f *fakeBroadcaster) BroadcastToStudy(studyID, msgType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, broadcast{studyID, msgType, payload})
}
