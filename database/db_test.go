package database

import (
	"errors"
	"testing"

	"cityportal/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, TranslateError(nil, "x"))

	err := TranslateError(mongo.ErrNoDocuments, "failed to fetch appeal %s", "a1")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Contains(t, err.Error(), "a1")

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, TranslateError(dup, "insert"), models.ErrAlreadyExists)

	other := errors.New("socket closed")
	assert.ErrorIs(t, TranslateError(other, "insert"), other)
}

func TestRegex_QuotesInput(t *testing.T) {
	r := Regex(" a.b* ")
	assert.Equal(t, `a\.b\*`, r["$regex"])
	assert.Equal(t, "i", r["$options"])
}

func TestLocalizedMatch(t *testing.T) {
	or := LocalizedMatch("park", "title", "body")
	assert.Len(t, or, 4)
	assert.Equal(t, bson.M{"title.en": Regex("park")}, or[0])
	assert.Equal(t, bson.M{"body.ru": Regex("park")}, or[3])
}
