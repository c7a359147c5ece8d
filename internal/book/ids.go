package book

import (
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDCodec knows the identifier shape of one storage engine. Canonical
// never touches storage.
type IDCodec interface {
	// Canonical returns the canonical wire form of id, or false when id
	// is not a well-formed identifier for the engine.
	Canonical(id string) (string, bool)
}

// UUIDCodec accepts identifiers of the SQL backends.
type UUIDCodec struct{}

func (UUIDCodec) Canonical(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// ObjectIDCodec accepts 24-character hex MongoDB ObjectIDs.
type ObjectIDCodec struct{}

func (ObjectIDCodec) Canonical(id string) (string, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", false
	}
	return oid.Hex(), true
}
