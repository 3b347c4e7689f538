package shared

import (
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidIdentifier indicates a path or body identifier that is not in canonical form
type ErrInvalidIdentifier struct {
	Field string
	Value string
}

func (e ErrInvalidIdentifier) Error() string {
	return "invalid " + e.Field + ": " + e.Value
}

// Is matches any ErrInvalidIdentifier when the target carries no field
func (e ErrInvalidIdentifier) Is(target error) bool {
	t, ok := target.(ErrInvalidIdentifier)
	if !ok {
		return false
	}
	if t.Field == "" {
		return true
	}
	return e.Field == t.Field
}

// ParseObjectID decodes a 24-character hex store identifier
func ParseObjectID(field, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidIdentifier{Field: field, Value: raw}
	}
	return id, nil
}

// ParseUUID decodes a transaction identifier
func ParseUUID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidIdentifier{Field: field, Value: raw}
	}
	return id, nil
}
