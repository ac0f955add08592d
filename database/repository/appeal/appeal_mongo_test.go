package appealRepo

import (
	"testing"

	"cityportal/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, buildFilter(models.AppealFilter{}))

	f := buildFilter(models.AppealFilter{
		Status:      models.AppealNew,
		Category:    models.CategoryTransport,
		SubmittedBy: "u1",
		Search:      "bus",
	})
	assert.Equal(t, models.AppealNew, f["status"])
	assert.Equal(t, models.CategoryTransport, f["category"])
	assert.Equal(t, "u1", f["submittedBy"])
	assert.NotContains(t, f, "priority")
	assert.Len(t, f["$or"], 4)
}
