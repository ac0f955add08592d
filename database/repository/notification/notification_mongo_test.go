package notificationRepo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestDuplicateIndexes(t *testing.T) {
	dupErr := mongo.BulkWriteException{WriteErrors: []mongo.BulkWriteError{
		{WriteError: mongo.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key"}},
		{WriteError: mongo.WriteError{Index: 2, Code: 11000, Message: "E11000 duplicate key"}},
	}}
	dup, ok := duplicateIndexes(dupErr)
	assert.True(t, ok)
	assert.Equal(t, map[int]bool{0: true, 2: true}, dup)

	mixed := mongo.BulkWriteException{WriteErrors: []mongo.BulkWriteError{
		{WriteError: mongo.WriteError{Index: 0, Code: 11000}},
		{WriteError: mongo.WriteError{Index: 1, Code: 121, Message: "document failed validation"}},
	}}
	_, ok = duplicateIndexes(mixed)
	assert.False(t, ok)

	_, ok = duplicateIndexes(mongo.BulkWriteException{
		WriteConcernError: &mongo.WriteConcernError{Code: 64},
	})
	assert.False(t, ok)

	_, ok = duplicateIndexes(errors.New("connection reset"))
	assert.False(t, ok)
}
