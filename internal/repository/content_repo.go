package repository

import (
	"context"

	"studybuilder/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ContentRepo handles MongoDB operations for questions, modules and tags
type ContentRepo interface {
	GetQuestionsByIDs(ctx context.Context, ids []string) ([]model.Question, error)
	GetModulesByIDs(ctx context.Context, ids []string) ([]model.Module, error)
	GetTagsByIDs(ctx context.Context, ids []string) ([]model.Tag, error)

	UpsertQuestion(ctx context.Context, question *model.Question) error
	UpsertModule(ctx context.Context, module *model.Module) error
	UpsertTag(ctx context.Context, tag *model.Tag) error
}

type contentRepo struct {
	questions *mongo.Collection
	modules   *mongo.Collection
	tags      *mongo.Collection
}

// NewContentRepo creates a new content repository
func NewContentRepo(db *mongo.Database) ContentRepo {
	return &contentRepo{
		questions: db.Collection("questions"),
		modules:   db.Collection("modules"),
		tags:      db.Collection("tags"),
	}
}

func (r *contentRepo) GetQuestionsByIDs(ctx context.Context, ids []string) ([]model.Question, error) {
	var questions []model.Question
	if err := findByIDs(ctx, r.questions, ids, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *contentRepo) GetModulesByIDs(ctx context.Context, ids []string) ([]model.Module, error) {
	var modules []model.Module
	if err := findByIDs(ctx, r.modules, ids, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *contentRepo) GetTagsByIDs(ctx context.Context, ids []string) ([]model.Tag, error) {
	var tags []model.Tag
	if err := findByIDs(ctx, r.tags, ids, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *contentRepo) UpsertQuestion(ctx context.Context, question *model.Question) error {
	return upsertByID(ctx, r.questions, question.ID, question)
}

func (r *contentRepo) UpsertModule(ctx context.Context, module *model.Module) error {
	return upsertByID(ctx, r.modules, module.ID, module)
}

func (r *contentRepo) UpsertTag(ctx context.Context, tag *model.Tag) error {
	return upsertByID(ctx, r.tags, tag.ID, tag)
}

// findByIDs decodes every document whose _id is in ids, sorted by _id so
// callers see a stable order. An empty ids list matches nothing.
func findByIDs(ctx context.Context, coll *mongo.Collection, ids []string, out interface{}) error {
	if len(ids) == 0 {
		return nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

func upsertByID(ctx context.Context, coll *mongo.Collection, id string, doc interface{}) error {
	opts := options.Replace().SetUpsert(true)
	_, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, opts)
	return err
}
