package mongodb

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"library/internal/model"
	"library/internal/repository"
)

// bookDocument is the stored shape of a book. Records written by other tools may lack
// any of the fields or store them with other BSON types (a numeric year, a string _id),
// so every field is decoded raw and rendered as text.
type bookDocument struct {
	ID            bson.RawValue `bson:"_id"`
	Title         bson.RawValue `bson:"title"`
	PublishedYear bson.RawValue `bson:"published_year"`
	Author        bson.RawValue `bson:"author"`
}

// newBookDocument is what Create inserts; the driver adds _id.
type newBookDocument struct {
	Title         string             `bson:"title"`
	PublishedYear string             `bson:"published_year"`
	Author        primitive.ObjectID `bson:"author"`
}

func (d bookDocument) toModel() model.Book {
	return model.Book{
		ID:            rawString(d.ID),
		Title:         rawField(d.Title, model.DefaultTitle),
		PublishedYear: rawField(d.PublishedYear, model.DefaultPublishedYear),
		Author:        rawField(d.Author, model.DefaultAuthor),
	}
}

// rawField renders v, or def when the key is missing or null.
func rawField(v bson.RawValue, def string) string {
	switch v.Type {
	case bsontype.Type(0), bsontype.Null, bsontype.Undefined:
		return def
	}
	return rawString(v)
}

func rawString(v bson.RawValue) string {
	switch v.Type {
	case bsontype.Type(0), bsontype.Null, bsontype.Undefined:
		return ""
	case bsontype.ObjectID:
		return v.ObjectID().Hex()
	case bsontype.String:
		return v.StringValue()
	case bsontype.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case bsontype.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case bsontype.Double:
		return strconv.FormatFloat(v.Double(), 'f', -1, 64)
	case bsontype.Boolean:
		return strconv.FormatBool(v.Boolean())
	default:
		return v.String()
	}
}

// BookMongo is a MongoDB implementation of repository.BookRepository.
type BookMongo struct {
	coll *mongo.Collection
}

// NewBookMongo creates a new BookMongo repository over the given collection.
func NewBookMongo(coll *mongo.Collection) *BookMongo {
	return &BookMongo{coll: coll}
}

var _ repository.BookRepository = (*BookMongo)(nil)

// Create inserts a new document and returns the stored record.
func (r *BookMongo) Create(ctx context.Context, book *model.Book) (*model.Book, error) {
	author, err := model.ParseID(book.Author)
	if err != nil {
		return nil, fmt.Errorf("author id: %w", err)
	}

	res, err := r.coll.InsertOne(ctx, newBookDocument{
		Title:         book.Title,
		PublishedYear: book.PublishedYear,
		Author:        author,
	})
	if err != nil {
		return nil, err
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return &model.Book{
		ID:            oid.Hex(),
		Title:         book.Title,
		PublishedYear: book.PublishedYear,
		Author:        author.Hex(),
	}, nil
}

// FindByID fetches a single document by its ID.
func (r *BookMongo) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Book, error) {
	var doc bookDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNoDocuments
		}
		return nil, err
	}
	b := doc.toModel()
	return &b, nil
}

// List streams every document from a fresh cursor in natural order.
func (r *BookMongo) List(ctx context.Context) iter.Seq2[model.Book, error] {
	return func(yield func(model.Book, error) bool) {
		cur, err := r.coll.Find(ctx, bson.D{})
		if err != nil {
			yield(model.Book{}, err)
			return
		}
		defer cur.Close(ctx)

		for cur.Next(ctx) {
			var doc bookDocument
			if err := cur.Decode(&doc); err != nil {
				yield(model.Book{}, err)
				return
			}
			if !yield(doc.toModel(), nil) {
				return
			}
		}
		if err := cur.Err(); err != nil {
			yield(model.Book{}, err)
		}
	}
}

// Count counts documents whose _id equals id.
func (r *BookMongo) Count(ctx context.Context, id primitive.ObjectID) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"_id": id})
}

// UpdateTitle applies a $set on title only.
func (r *BookMongo) UpdateTitle(ctx context.Context, id primitive.ObjectID, title string) (int64, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"title": title}},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// Delete removes at most one document by ID.
func (r *BookMongo) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Ping checks the primary is reachable.
func (r *BookMongo) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}
