package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"library/internal/repository"
)

// AuthorMongo looks authors up in their own collection.
type AuthorMongo struct {
	coll *mongo.Collection
}

// NewAuthorMongo creates an AuthorMongo over the given collection.
func NewAuthorMongo(coll *mongo.Collection) *AuthorMongo {
	return &AuthorMongo{coll: coll}
}

var _ repository.AuthorDirectory = (*AuthorMongo)(nil)

// Exists reports whether an author document with the given _id is present.
func (a *AuthorMongo) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := a.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
