package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCache(t *testing.T) {
	before := testutil.ToFloat64(CacheRequestsTotal.WithLabelValues("question_set", CacheHit))

	ObserveCache("question_set", CacheHit)
	ObserveCache("question_set", CacheHit)

	after := testutil.ToFloat64(CacheRequestsTotal.WithLabelValues("question_set", CacheHit))
	assert.Equal(t, before+2, after)
}
