package repository

import (
	"context"
	"testing"
	"time"

	"studybuilder/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestStudyRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("get by id", func(mt *mtest.T) {
		repo := NewStudyRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "studybuilder.studies", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "study-1"},
			{Key: "name", Value: "Brand tracker"},
			{Key: "ownerId", Value: "author-1"},
		}))

		study, err := repo.GetByID(ctx, "study-1")
		require.NoError(mt, err)
		require.NotNil(mt, study)
		assert.Equal(mt, "Brand tracker", study.Name)
		assert.Equal(mt, "author-1", study.OwnerID)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		repo := NewStudyRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "studybuilder.studies", mtest.FirstBatch))

		study, err := repo.GetByID(ctx, "missing")
		require.NoError(mt, err)
		assert.Nil(mt, study)
	})

	mt.Run("insert questionnaire lines", func(mt *mtest.T) {
		repo := NewStudyRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.InsertQuestionnaireLines(ctx, []model.QuestionnaireLine{
			{ID: "l1", StudyID: "study-1", QuestionID: "A", DisplayOrder: 1, CreatedAt: time.Now()},
			{ID: "l2", StudyID: "study-1", QuestionID: "B", DisplayOrder: 2, CreatedAt: time.Now()},
		})
		require.NoError(mt, err)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "insert", started.CommandName)
	})

	mt.Run("insert nothing skips the round trip", func(mt *mtest.T) {
		repo := NewStudyRepo(mt.DB)

		require.NoError(mt, repo.InsertQuestionnaireLines(ctx, nil))
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("count questionnaire lines", func(mt *mtest.T) {
		repo := NewStudyRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "studybuilder.questionnaire_lines", mtest.FirstBatch, bson.D{
			{Key: "n", Value: int32(3)},
		}))

		n, err := repo.CountQuestionnaireLines(ctx, "study-1")
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), n)
	})
}

func TestRuleRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("candidate rules by answers", func(mt *mtest.T) {
		repo := NewRuleRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "studybuilder.dependency_rules", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "r1"},
				{Key: "configurationQuestionId", Value: "region"},
				{Key: "type", Value: "include"},
				{Key: "contentType", Value: "module"},
				{Key: "targetId", Value: "M"},
				{Key: "classification", Value: "primary"},
				{Key: "triggeringAnswerIds", Value: bson.A{"emea"}},
			},
			bson.D{
				{Key: "_id", Value: "r2"},
				{Key: "configurationQuestionId", Value: "channels"},
				{Key: "type", Value: "exclude"},
				{Key: "contentType", Value: "tag"},
				{Key: "targetId", Value: "T"},
				{Key: "classification", Value: "secondary"},
				{Key: "triggeringAnswerIds", Value: bson.A{"web", "phone"}},
			},
		))

		rules, err := repo.GetByTriggeringAnswers(ctx, []string{"emea", "web"})
		require.NoError(mt, err)
		require.Len(mt, rules, 2)
		assert.Equal(mt, model.ContentModule, rules[0].ContentType)
		assert.Equal(mt, model.ClassificationSecondary, rules[1].Classification)
		assert.Equal(mt, []string{"web", "phone"}, rules[1].TriggeringAnswerIDs)
	})

	mt.Run("no answers no query", func(mt *mtest.T) {
		repo := NewRuleRepo(mt.DB)

		rules, err := repo.GetByTriggeringAnswers(ctx, nil)
		require.NoError(mt, err)
		assert.Empty(mt, rules)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestTemplateRepo_GetLines(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes lines", func(mt *mtest.T) {
		repo := NewTemplateRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "studybuilder.template_lines", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "l1"},
				{Key: "templateId", Value: "tpl-1"},
				{Key: "contentType", Value: "question"},
				{Key: "questionId", Value: "A"},
				{Key: "displayOrder", Value: int32(1)},
				{Key: "includeByDefault", Value: true},
			},
			bson.D{
				{Key: "_id", Value: "l2"},
				{Key: "templateId", Value: "tpl-1"},
				{Key: "contentType", Value: "module"},
				{Key: "moduleId", Value: "M"},
				{Key: "displayOrder", Value: int32(2)},
				{Key: "includeByDefault", Value: false},
			},
		))

		lines, err := repo.GetLines(context.Background(), "tpl-1")
		require.NoError(mt, err)
		require.Len(mt, lines, 2)

		id, ok := lines[1].ContentRef()
		assert.True(mt, ok)
		assert.Equal(mt, "M", id)
		assert.True(mt, lines[0].IncludeByDefault)
	})
}
