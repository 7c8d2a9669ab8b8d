package repository

import (
	"context"
	"time"

	"studybuilder/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RuleRepo handles MongoDB operations for dependency rules and the
// configuration questions that trigger them
type RuleRepo interface {
	// GetByTriggeringAnswers returns candidate rules sharing at least one
	// triggering answer with answerIDs, in creation order
	GetByTriggeringAnswers(ctx context.Context, answerIDs []string) ([]model.DependencyRule, error)
	Create(ctx context.Context, rule *model.DependencyRule) (string, error)

	GetConfigurationQuestions(ctx context.Context, ids []string) ([]model.ConfigurationQuestion, error)
	GetConfigurationAnswers(ctx context.Context, questionIDs []string) ([]model.ConfigurationAnswer, error)
	UpsertConfigurationQuestion(ctx context.Context, question *model.ConfigurationQuestion) error
	UpsertConfigurationAnswer(ctx context.Context, answer *model.ConfigurationAnswer) error
}

type ruleRepo struct {
	rules     *mongo.Collection
	questions *mongo.Collection
	answers   *mongo.Collection
}

// NewRuleRepo creates a new rule repository
func NewRuleRepo(db *mongo.Database) RuleRepo {
	return &ruleRepo{
		rules:     db.Collection("dependency_rules"),
		questions: db.Collection("configuration_questions"),
		answers:   db.Collection("configuration_answers"),
	}
}

func (r *ruleRepo) GetByTriggeringAnswers(ctx context.Context, answerIDs []string) ([]model.DependencyRule, error) {
	if len(answerIDs) == 0 {
		return nil, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.rules.Find(ctx, bson.M{"triggeringAnswerIds": bson.M{"$in": answerIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rules []model.DependencyRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *ruleRepo) Create(ctx context.Context, rule *model.DependencyRule) (string, error) {
	if rule.ID == "" {
		rule.ID = primitive.NewObjectID().Hex()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now()
	}
	if _, err := r.rules.InsertOne(ctx, rule); err != nil {
		return "", err
	}
	return rule.ID, nil
}

func (r *ruleRepo) GetConfigurationQuestions(ctx context.Context, ids []string) ([]model.ConfigurationQuestion, error) {
	var questions []model.ConfigurationQuestion
	if err := findByIDs(ctx, r.questions, ids, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// GetConfigurationAnswers returns every answer of the given configuration questions
func (r *ruleRepo) GetConfigurationAnswers(ctx context.Context, questionIDs []string) ([]model.ConfigurationAnswer, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.answers.Find(ctx, bson.M{"configurationQuestionId": bson.M{"$in": questionIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var answers []model.ConfigurationAnswer
	if err := cursor.All(ctx, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *ruleRepo) UpsertConfigurationQuestion(ctx context.Context, question *model.ConfigurationQuestion) error {
	return upsertByID(ctx, r.questions, question.ID, question)
}

func (r *ruleRepo) UpsertConfigurationAnswer(ctx context.Context, answer *model.ConfigurationAnswer) error {
	return upsertByID(ctx, r.answers, answer.ID, answer)
}
