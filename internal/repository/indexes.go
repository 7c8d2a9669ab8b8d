package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type indexSpec struct {
	collection string
	keys       bson.D
	unique     bool
}

var indexes = []indexSpec{
	{"template_lines", bson.D{{Key: "templateId", Value: 1}, {Key: "displayOrder", Value: 1}}, false},
	{"dependency_rules", bson.D{{Key: "triggeringAnswerIds", Value: 1}}, false},
	{"dependency_rules", bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}, false},
	{"configuration_answers", bson.D{{Key: "configurationQuestionId", Value: 1}}, false},
	{"questionnaire_lines", bson.D{{Key: "studyId", Value: 1}, {Key: "displayOrder", Value: 1}}, true},
	{"questionnaire_lines", bson.D{{Key: "studyId", Value: 1}, {Key: "questionId", Value: 1}}, true},
	{"studies", bson.D{{Key: "ownerId", Value: 1}}, false},
}

// EnsureIndexes creates the indexes the repositories query by. Failures are
// logged, not returned: a missing index slows queries but never blocks startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) {
	for _, spec := range indexes {
		opts := options.Index().SetUnique(spec.unique)
		_, err := db.Collection(spec.collection).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: spec.keys, Options: opts})
		if err != nil {
			logger.Warn("failed to create index",
				zap.String("collection", spec.collection),
				zap.Error(err))
		}
	}
	logger.Info("indexes ensured", zap.Int("count", len(indexes)))
}
