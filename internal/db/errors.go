package db

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	errNilCollection        = errors.New("mongo collection is nil")
)

// uniqueIndexPrefix prefixes every unique index name so the violated field
// can be recovered from a duplicate key error.
const uniqueIndexPrefix = "uniq_"

// DuplicateKeyError reports a unique index violation.
type DuplicateKeyError struct {
	Collection string
	Field      string
	Err        error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s in %s", e.Field, e.Collection)
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

// translateWriteError converts driver duplicate key errors into
// *DuplicateKeyError and passes everything else through.
func translateWriteError(collection string, err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return &DuplicateKeyError{Collection: collection, Field: duplicateField(err), Err: err}
	}
	return err
}

// duplicateField extracts the field from "... index: uniq_email dup key: ...".
func duplicateField(err error) string {
	msg := err.Error()
	i := strings.Index(msg, "index: ")
	if i < 0 {
		return ""
	}
	rest := strings.Fields(msg[i+len("index: "):])
	if len(rest) == 0 {
		return ""
	}
	return strings.TrimPrefix(rest[0], uniqueIndexPrefix)
}

// translateFindError maps a missing document to ErrNotFound.
func translateFindError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
