package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"studybuilder/internal/cache"
	"studybuilder/internal/config"
	"studybuilder/internal/logging"
	"studybuilder/internal/model"
	"studybuilder/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a demo template, content library and dependency rules",
	RunE:  seed,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

const demoTemplateID = "tpl-brand-tracker"

func seed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.Mongo.Database)
	repository.EnsureIndexes(ctx, db, logger)

	templates := repository.NewTemplateRepo(db)
	content := repository.NewContentRepo(db)
	rules := repository.NewRuleRepo(db)

	questions := []model.Question{
		{ID: "q-awareness", Name: "AWARE", Text: "Which of these brands have you heard of?"},
		{ID: "q-usage", Name: "USAGE", Text: "Which of these brands have you used in the past month?"},
		{ID: "q-nps", Name: "NPS", Text: "How likely are you to recommend the brand to a friend?"},
		{ID: "q-age", Name: "AGE", Text: "What is your age?"},
		{ID: "q-region", Name: "REGION", Text: "Which region do you live in?"},
		{ID: "q-income", Name: "INCOME", Text: "What is your household income?"},
		{ID: "q-ad-recall", Name: "ADRECALL", Text: "Do you remember seeing an advert for the brand recently?"},
		{ID: "q-ad-channel", Name: "ADCHANNEL", Text: "Where did you see the advert?"},
		{ID: "q-kids", Name: "KIDS", Text: "How many children live in your household?"},
	}
	for i := range questions {
		if err := content.UpsertQuestion(ctx, &questions[i]); err != nil {
			return fmt.Errorf("seed question %s: %w", questions[i].ID, err)
		}
	}

	modules := []model.Module{
		{ID: "m-demographics", Name: "Demographics", Members: []model.ModuleMember{
			{QuestionID: "q-age", SortOrder: 1, Active: true},
			{QuestionID: "q-region", SortOrder: 2, Active: true},
			{QuestionID: "q-income", SortOrder: 3, Active: true},
			{QuestionID: "q-kids", SortOrder: 4, Active: false},
		}},
		{ID: "m-advertising", Name: "Advertising", Members: []model.ModuleMember{
			{QuestionID: "q-ad-recall", SortOrder: 1, Active: true},
			{QuestionID: "q-ad-channel", SortOrder: 2, Active: true},
		}},
	}
	for i := range modules {
		if err := content.UpsertModule(ctx, &modules[i]); err != nil {
			return fmt.Errorf("seed module %s: %w", modules[i].ID, err)
		}
	}

	tag := model.Tag{ID: "t-family", Name: "Family", QuestionIDs: []string{"q-kids"}}
	if err := content.UpsertTag(ctx, &tag); err != nil {
		return fmt.Errorf("seed tag: %w", err)
	}

	configQuestions := []model.ConfigurationQuestion{
		{ID: "cq-market", Name: "Market", RuleType: model.RuleTypeSingleCoded},
		{ID: "cq-objectives", Name: "Study objectives", RuleType: model.RuleTypeMultiCoded},
	}
	for i := range configQuestions {
		if err := rules.UpsertConfigurationQuestion(ctx, &configQuestions[i]); err != nil {
			return fmt.Errorf("seed configuration question %s: %w", configQuestions[i].ID, err)
		}
	}

	configAnswers := []model.ConfigurationAnswer{
		{ID: "a-market-b2c", ConfigurationQuestionID: "cq-market", Name: "Consumer"},
		{ID: "a-market-b2b", ConfigurationQuestionID: "cq-market", Name: "Business"},
		{ID: "a-obj-ads", ConfigurationQuestionID: "cq-objectives", Name: "Advertising effectiveness"},
		{ID: "a-obj-loyalty", ConfigurationQuestionID: "cq-objectives", Name: "Loyalty"},
		{ID: "a-obj-family", ConfigurationQuestionID: "cq-objectives", Name: "Family households"},
	}
	for i := range configAnswers {
		if err := rules.UpsertConfigurationAnswer(ctx, &configAnswers[i]); err != nil {
			return fmt.Errorf("seed configuration answer %s: %w", configAnswers[i].ID, err)
		}
	}

	existing, err := templates.GetByID(ctx, demoTemplateID)
	if err != nil {
		return fmt.Errorf("look up template: %w", err)
	}
	if existing == nil {
		if _, err := templates.Create(ctx, &model.Template{ID: demoTemplateID, Name: "Brand tracker"}); err != nil {
			return fmt.Errorf("seed template: %w", err)
		}
	}

	lines := []model.TemplateLine{
		{ID: "tl-awareness", ContentType: model.ContentQuestion, QuestionID: "q-awareness", DisplayOrder: 10, IncludeByDefault: true},
		{ID: "tl-usage", ContentType: model.ContentQuestion, QuestionID: "q-usage", DisplayOrder: 20, IncludeByDefault: true},
		{ID: "tl-advertising", ContentType: model.ContentModule, ModuleID: "m-advertising", DisplayOrder: 30},
		{ID: "tl-nps", ContentType: model.ContentQuestion, QuestionID: "q-nps", DisplayOrder: 40},
		{ID: "tl-demographics", ContentType: model.ContentModule, ModuleID: "m-demographics", DisplayOrder: 50, IncludeByDefault: true},
	}
	if err := templates.ReplaceLines(ctx, demoTemplateID, lines); err != nil {
		return fmt.Errorf("seed template lines: %w", err)
	}

	// A running server may hold the previous structure
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer rdb.Close()
	if err := cache.NewSnapshotCache(rdb, cfg.SnapshotTTL()).Invalidate(ctx, demoTemplateID); err != nil {
		logger.Warn("failed to invalidate template cache", zap.String("templateId", demoTemplateID), zap.Error(err))
	}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	demoRules := []model.DependencyRule{
		{ID: "r-b2b-no-income", ConfigurationQuestionID: "cq-market", Type: model.DependencyExclude,
			ContentType: model.ContentQuestion, TargetID: "q-income", Classification: model.ClassificationPrimary,
			TriggeringAnswerIDs: []string{"a-market-b2b"}},
		{ID: "r-ads", ConfigurationQuestionID: "cq-objectives", Type: model.DependencyInclude,
			ContentType: model.ContentModule, TargetID: "m-advertising", Classification: model.ClassificationPrimary,
			TriggeringAnswerIDs: []string{"a-obj-ads"}},
		{ID: "r-loyalty", ConfigurationQuestionID: "cq-objectives", Type: model.DependencyInclude,
			ContentType: model.ContentQuestion, TargetID: "q-nps", Classification: model.ClassificationPrimary,
			TriggeringAnswerIDs: []string{"a-obj-loyalty"}},
		{ID: "r-ads-loyalty-no-channel", ConfigurationQuestionID: "cq-objectives", Type: model.DependencyExclude,
			ContentType: model.ContentQuestion, TargetID: "q-ad-channel", Classification: model.ClassificationSecondary,
			TriggeringAnswerIDs: []string{"a-obj-ads", "a-obj-loyalty"}},
		{ID: "r-family", ConfigurationQuestionID: "cq-objectives", Type: model.DependencyInclude,
			ContentType: model.ContentTag, TargetID: "t-family", Classification: model.ClassificationSecondary,
			TriggeringAnswerIDs: []string{"a-obj-family"}},
	}
	created := 0
	for i := range demoRules {
		demoRules[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if _, err := rules.Create(ctx, &demoRules[i]); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return fmt.Errorf("seed rule %s: %w", demoRules[i].ID, err)
		}
		created++
	}

	logger.Info("seed complete",
		zap.String("templateId", demoTemplateID),
		zap.Int("questions", len(questions)),
		zap.Int("modules", len(modules)),
		zap.Int("lines", len(lines)),
		zap.Int("rulesCreated", created))
	return nil
}
