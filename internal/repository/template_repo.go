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

// TemplateRepo handles MongoDB operations for templates and their lines
type TemplateRepo interface {
	Create(ctx context.Context, template *model.Template) (string, error)
	GetByID(ctx context.Context, id string) (*model.Template, error)
	GetLines(ctx context.Context, templateID string) ([]model.TemplateLine, error)
	ReplaceLines(ctx context.Context, templateID string, lines []model.TemplateLine) error
}

type templateRepo struct {
	templates *mongo.Collection
	lines     *mongo.Collection
}

// NewTemplateRepo creates a new template repository
func NewTemplateRepo(db *mongo.Database) TemplateRepo {
	return &templateRepo{
		templates: db.Collection("templates"),
		lines:     db.Collection("template_lines"),
	}
}

func (r *templateRepo) Create(ctx context.Context, template *model.Template) (string, error) {
	if template.ID == "" {
		template.ID = primitive.NewObjectID().Hex()
	}
	template.CreatedAt = time.Now()
	template.UpdatedAt = template.CreatedAt

	if _, err := r.templates.InsertOne(ctx, template); err != nil {
		return "", err
	}
	return template.ID, nil
}

func (r *templateRepo) GetByID(ctx context.Context, id string) (*model.Template, error) {
	var template model.Template
	err := r.templates.FindOne(ctx, bson.M{"_id": id}).Decode(&template)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *templateRepo) GetLines(ctx context.Context, templateID string) ([]model.TemplateLine, error) {
	opts := options.Find().SetSort(bson.D{{Key: "displayOrder", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.lines.Find(ctx, bson.M{"templateId": templateID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var lines []model.TemplateLine
	if err := cursor.All(ctx, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// ReplaceLines swaps the full line set of a template
func (r *templateRepo) ReplaceLines(ctx context.Context, templateID string, lines []model.TemplateLine) error {
	if _, err := r.lines.DeleteMany(ctx, bson.M{"templateId": templateID}); err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}

	docs := make([]interface{}, len(lines))
	for i := range lines {
		lines[i].TemplateID = templateID
		if lines[i].ID == "" {
			lines[i].ID = primitive.NewObjectID().Hex()
		}
		docs[i] = lines[i]
	}
	_, err := r.lines.InsertMany(ctx, docs)
	return err
}
