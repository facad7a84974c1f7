//go:build !integration

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/terralab/landcover-cli/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:     "abc12345-6789-0000-0000-000000000000",
			Scene:  "LC09_L2SP_044034",
			Status: model.RunStatusComplete,
			Result: &model.RunResult{
				TrainingRecords:  412,
				TrainingAccuracy: 0.973,
				DurationSecs:     18.4,
			},
			CreatedAt: now,
			UpdatedAt: now.Add(20 * time.Second),
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Scene:     "LC09_L2SP_044035",
			Status:    model.RunStatusRunning,
			CreatedAt: now.Add(-1 * time.Hour),
			UpdatedAt: now.Add(-30 * time.Minute),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "SCENE")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "LC09_L2SP_044034")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "412")
	assert.Contains(t, output, "97.3%")
	assert.Contains(t, output, "LC09_L2SP_044035")
	assert.Contains(t, output, "running")
	assert.Contains(t, output, "2026-03-10 09:15")
	assert.Contains(t, output, "abc12345")
}

func TestComputeRunStats(t *testing.T) {
	runs := []model.Run{
		{Status: model.RunStatusComplete, Result: &model.RunResult{DurationSecs: 10, TrainingAccuracy: 0.9}},
		{Status: model.RunStatusComplete, Result: &model.RunResult{DurationSecs: 30, TrainingAccuracy: 1.0}},
		{Status: model.RunStatusFailed},
		{Status: model.RunStatusRunning},
	}

	s := computeRunStats(runs)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Complete)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Running)
	assert.InDelta(t, 20.0, s.AvgDurSecs, 1e-9)
	assert.InDelta(t, 0.95, s.AvgAccuracy, 1e-9)
}

func TestComputeRunStats_Empty(t *testing.T) {
	s := computeRunStats(nil)
	assert.Equal(t, 0, s.Total)
	assert.Zero(t, s.AvgDurSecs)
	assert.Zero(t, s.AvgAccuracy)
}

func TestFormatRunStats(t *testing.T) {
	var buf bytes.Buffer
	formatRunStats(&buf, runStats{Total: 5, Complete: 3, Failed: 1, Running: 1, AvgDurSecs: 12.5, AvgAccuracy: 0.88})

	output := buf.String()
	assert.Contains(t, output, "Total runs:")
	assert.Contains(t, output, "5")
	assert.Contains(t, output, "12.5s")
	assert.Contains(t, output, "88.0%")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789-0000-0000-000000000000"))
	assert.Equal(t, "short", truncateID("short"))
}
