package documentRepo

import (
	"testing"

	"cityportal/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestVisibilityScope(t *testing.T) {
	assert.Equal(t, bson.M{"visibility": models.VisibilityPublic}, visibilityScope("", false))

	resident := visibilityScope("u1", false)
	assert.Equal(t, bson.A{
		bson.M{"visibility": models.VisibilityPublic},
		bson.M{"ownerId": "u1"},
	}, resident["$or"])

	staff := visibilityScope("e1", true)
	assert.Equal(t, bson.A{
		bson.M{"visibility": bson.M{"$ne": models.VisibilityPrivate}},
		bson.M{"appealId": bson.M{"$nin": bson.A{nil, ""}}},
		bson.M{"ownerId": "e1"},
	}, staff["$or"])
}

func TestBuildFilter_CombinesScope(t *testing.T) {
	f := buildFilter(models.DocumentFilter{Category: "permits", AppealID: "a1", ViewerID: "u1"})
	and, ok := f["$and"].(bson.A)
	assert.True(t, ok)
	assert.Len(t, and, 3)
	assert.Contains(t, and, bson.M{"appealId": "a1"})
}
