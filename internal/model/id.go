package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseID parses a 24-character hex identifier.
func ParseID(s string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(s)
}

// NewID returns a freshly generated identifier in hex form.
func NewID() string {
	return primitive.NewObjectID().Hex()
}
