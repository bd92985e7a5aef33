// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"testing"

	"github.com/strobe-lab/loomstim/internal/stimulus"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// ConstantSpeedModel builds the canonical 120-frame test approach: a 50 cm
// attacker closing at 500 cm/s from 1000 cm, viewed at 20 cm on a 60 fps
// display.
func ConstantSpeedModel(t *testing.T) *stimulus.ConstantSpeedModel {
	t.Helper()
	m, err := stimulus.NewConstantSpeedModel(stimulus.ConstantSpeedParams{
		ScreenDistance:   20,
		FrameRate:        60,
		Speed:            500,
		AttackerDiameter: 50,
		StartDistance:    1000,
	})
	if err != nil {
		t.Fatalf("failed to build model: %v", err)
	}
	return m
}
