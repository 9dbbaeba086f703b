package log

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithCorrelationID(t *testing.T) {
	ctx, id := WithCorrelationID(context.Background())

	assert.NotEmpty(t, id)
	assert.Equal(t, id, GetCorrelationID(ctx))
	assert.Empty(t, GetCorrelationID(context.Background()))
}

func TestIsRelevantDevField(t *testing.T) {
	assert.True(t, isRelevantDevField("run_id"))
	assert.True(t, isRelevantDevField("product_id"))
	assert.True(t, isRelevantDevField("customers_total"))
	assert.False(t, isRelevantDevField("user_agent"))
}

func TestWithFields_DevelopmentFiltersNoise(t *testing.T) {
	t.Setenv("APP_ENV", "dev")

	base := &logger{entry: L.(*logger).entry}
	filtered := base.WithFields(Fields{"user_agent": "curl"})

	assert.Same(t, base, filtered)
}
