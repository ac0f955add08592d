package analyticsRepo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCountByPipeline(t *testing.T) {
	p := countByPipeline("status", nil)
	assert.Len(t, p, 3)
	assert.Equal(t, "$match", p[0][0].Key)
	assert.Equal(t, bson.M{}, p[0][0].Value)
	group := p[1][0].Value.(bson.M)
	assert.Equal(t, "$status", group["_id"])
}

func TestMonthlyPipeline_DoesNotMutateMatch(t *testing.T) {
	match := bson.M{"submittedBy": "u1"}
	since := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)

	p := monthlyPipeline(match, since)
	m := p[0][0].Value.(bson.M)
	assert.Equal(t, "u1", m["submittedBy"])
	assert.Equal(t, bson.M{"$gte": since}, m["createdAt"])
	assert.NotContains(t, match, "createdAt")
}

func TestResolutionPipeline(t *testing.T) {
	p := resolutionPipeline()
	assert.Len(t, p, 2)
	assert.Equal(t, bson.M{"resolvedAt": bson.M{"$ne": nil}}, p[0][0].Value)
}
