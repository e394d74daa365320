//go:build !integration

package main

import (
	"testing"
	"time"

	"storeOptimizer/business/optimization"
	"storeOptimizer/pkg/config"

	"github.com/stretchr/testify/assert"
)

func TestOptimizerConfig_ZeroKeepsDefaults(t *testing.T) {
	got := optimizerConfig(config.OptimizerConfig{NarrativeEnabled: true})
	assert.Equal(t, optimization.DefaultConfig(), got)
}

func TestOptimizerConfig_Overrides(t *testing.T) {
	got := optimizerConfig(config.OptimizerConfig{
		FlowWindowDays:      7,
		BottleneckThreshold: 2,
		MaxPathLength:       1,
		MinSupport:          0.05,
		StrongLift:          1.8,
		MaxRevenueDeltaPct:  40,
		JoinTimeout:         time.Second,
		DefaultMaxChanges:   5,
	})

	def := optimization.DefaultConfig()
	assert.Equal(t, 7, got.Flow.WindowDays)
	assert.Equal(t, 2.0, got.Flow.BottleneckThreshold)
	assert.Equal(t, def.Flow.MaxPathLength, got.Flow.MaxPathLength, "a path cap of one is ignored")
	assert.Equal(t, 0.05, got.Association.MinSupport)
	assert.Equal(t, 1.8, got.Association.StrongLift)
	assert.Equal(t, 40.0, got.Impact.MaxRevenueDeltaPct)
	assert.Equal(t, time.Second, got.JoinTimeout)
	assert.Equal(t, 5, got.DefaultMaxChanges)
	assert.False(t, got.NarrativeEnabled)
}
