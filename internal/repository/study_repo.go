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

// StudyRepo handles MongoDB operations for studies and their questionnaire lines
type StudyRepo interface {
	Create(ctx context.Context, study *model.Study) (string, error)
	GetByID(ctx context.Context, id string) (*model.Study, error)
	MarkApplied(ctx context.Context, id, templateID string, at time.Time) error

	// Questionnaire lines are create-only
	CountQuestionnaireLines(ctx context.Context, studyID string) (int64, error)
	InsertQuestionnaireLines(ctx context.Context, lines []model.QuestionnaireLine) error
	GetQuestionnaireLines(ctx context.Context, studyID string) ([]model.QuestionnaireLine, error)
}

type studyRepo struct {
	studies *mongo.Collection
	lines   *mongo.Collection
}

// NewStudyRepo creates a new study repository
func NewStudyRepo(db *mongo.Database) StudyRepo {
	return &studyRepo{
		studies: db.Collection("studies"),
		lines:   db.Collection("questionnaire_lines"),
	}
}

func (r *studyRepo) Create(ctx context.Context, study *model.Study) (string, error) {
	if study.ID == "" {
		study.ID = primitive.NewObjectID().Hex()
	}
	study.CreatedAt = time.Now()

	if _, err := r.studies.InsertOne(ctx, study); err != nil {
		return "", err
	}
	return study.ID, nil
}

func (r *studyRepo) GetByID(ctx context.Context, id string) (*model.Study, error) {
	var study model.Study
	err := r.studies.FindOne(ctx, bson.M{"_id": id}).Decode(&study)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &study, nil
}

func (r *studyRepo) MarkApplied(ctx context.Context, id, templateID string, at time.Time) error {
	_, err := r.studies.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"templateId": templateID, "appliedAt": at}},
	)
	return err
}

func (r *studyRepo) CountQuestionnaireLines(ctx context.Context, studyID string) (int64, error) {
	return r.lines.CountDocuments(ctx, bson.M{"studyId": studyID})
}

func (r *studyRepo) InsertQuestionnaireLines(ctx context.Context, lines []model.QuestionnaireLine) error {
	if len(lines) == 0 {
		return nil
	}
	docs := make([]interface{}, len(lines))
	for i := range lines {
		docs[i] = lines[i]
	}
	_, err := r.lines.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	return err
}

func (r *studyRepo) GetQuestionnaireLines(ctx context.Context, studyID string) ([]model.QuestionnaireLine, error) {
	opts := options.Find().SetSort(bson.D{{Key: "displayOrder", Value: 1}})
	cursor, err := r.lines.Find(ctx, bson.M{"studyId": studyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var lines []model.QuestionnaireLine
	if err := cursor.All(ctx, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}
