package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobKindDefaultPriority(t *testing.T) {
	t.Run("deletes outrank reindexes outrank indexes", func(t *testing.T) {
		assert.Greater(t, JobDelete.DefaultPriority(), JobReindex.DefaultPriority())
		assert.Greater(t, JobReindex.DefaultPriority(), JobIndex.DefaultPriority())
	})

	t.Run("expected values", func(t *testing.T) {
		assert.Equal(t, 100, JobDelete.DefaultPriority())
		assert.Equal(t, 50, JobReindex.DefaultPriority())
		assert.Equal(t, 0, JobIndex.DefaultPriority())
	})
}

func TestJobKindIsValid(t *testing.T) {
	valid := []JobKind{JobIndex, JobReindex, JobDelete}
	for _, k := range valid {
		assert.True(t, k.IsValid(), "kind %q should be valid", k)
	}
	assert.False(t, JobKind("compact").IsValid())
	assert.False(t, JobKind("").IsValid())
}

func TestJobExhausted(t *testing.T) {
	j := &Job{Attempts: 2, MaxAttempts: 3}
	assert.False(t, j.Exhausted())

	j.Attempts = 3
	assert.True(t, j.Exhausted())
}

func TestQueueStatsTotal(t *testing.T) {
	s := QueueStats{Pending: 3, Processing: 1, Completed: 10, Failed: 2}
	assert.Equal(t, 16, s.Total())
}
