package reindex

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Reports(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 4, 2)

	tracker.Start()
	tracker.Record(false)
	assert.Empty(t, buf.String(), "no report before the interval")

	tracker.Record(true)
	assert.Contains(t, buf.String(), "Reindexed: 2/4 (50.0%), 1 failed")

	tracker.Record(false)
	tracker.Record(false)
	tracker.Finish()
	assert.Contains(t, buf.String(), "Reindexed: 4/4 (100.0%), 1 failed")
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))

	done, failed := tracker.Counts()
	assert.Equal(t, 4, done)
	assert.Equal(t, 1, failed)
}

func TestProgressTracker_CapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 2, 10)
	tracker.Start()

	for i := 0; i < 5; i++ {
		tracker.Record(false)
	}
	done, _ := tracker.Counts()
	assert.Equal(t, 2, done)
}

func TestProgressTracker_IgnoresBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 2, 1)

	tracker.Record(true)
	tracker.Finish()

	done, failed := tracker.Counts()
	assert.Equal(t, 0, done)
	assert.Equal(t, 0, failed)
	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
}

func TestProgressTracker_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)
	tracker.Start()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tracker.Record(i%10 == 0)
		}(i)
	}
	wg.Wait()

	done, failed := tracker.Counts()
	assert.Equal(t, 100, done)
	assert.Equal(t, 10, failed)
}
