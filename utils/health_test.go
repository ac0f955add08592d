package utils

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stringsReader(s string) *strings.Reader { return strings.NewReader(s) }

func TestRunHealthChecks(t *testing.T) {
	status := RunHealthChecks(context.Background(), map[string]HealthCheck{
		"mongo": func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("down") },
	})

	assert.False(t, status.Healthy)
	assert.True(t, status.Checks["mongo"])
	assert.False(t, status.Checks["redis"])
	assert.Equal(t, status, GetHealthStatus())
}

func TestRunHealthChecks_AllHealthy(t *testing.T) {
	status := RunHealthChecks(context.Background(), map[string]HealthCheck{
		"mongo": func(context.Context) error { return nil },
	})
	assert.True(t, status.Healthy)
	assert.False(t, status.CheckedAt.IsZero())
}
