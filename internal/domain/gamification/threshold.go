// Package gamification contains the XP and level domain model.
package gamification

import (
	"github.com/wikiboard/backend/internal/domain/shared"
)

// DefaultThresholds is the cumulative XP required for each level.
// Index 0 is level 1 and must always be 0 so that any non-negative
// XP maps to at least level 1.
var DefaultThresholds = []int64{0, 100, 300, 600, 1000, 1500, 2200, 3000, 4000, 5000}

// ThresholdTable maps cumulative XP totals to levels. The table is
// immutable after construction; consumers receive it by injection.
type ThresholdTable struct {
	thresholds []int64
}

// NewThresholdTable creates a threshold table from cumulative XP values.
// The first entry must be 0 and entries must be strictly ascending.
func NewThresholdTable(thresholds []int64) (ThresholdTable, error) {
	if len(thresholds) == 0 {
		return ThresholdTable{}, shared.NewDomainError("INVALID_INPUT", "threshold table must not be empty")
	}
	if thresholds[0] != 0 {
		return ThresholdTable{}, shared.NewDomainError("INVALID_INPUT", "threshold table must start at 0")
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			return ThresholdTable{}, shared.NewDomainError("INVALID_INPUT", "threshold table must be strictly ascending")
		}
	}

	owned := make([]int64, len(thresholds))
	copy(owned, thresholds)
	return ThresholdTable{thresholds: owned}, nil
}

// MustNewThresholdTable is like NewThresholdTable but panics on invalid input.
// Intended for wiring static tables at startup.
func MustNewThresholdTable(thresholds []int64) ThresholdTable {
	table, err := NewThresholdTable(thresholds)
	if err != nil {
		panic(err)
	}
	return table
}

// DefaultThresholdTable returns the table built from DefaultThresholds.
func DefaultThresholdTable() ThresholdTable {
	return MustNewThresholdTable(DefaultThresholds)
}

// MaxLevel returns the highest attainable level.
func (t ThresholdTable) MaxLevel() int {
	return len(t.thresholds)
}

// Thresholds returns a copy of the cumulative XP values.
func (t ThresholdTable) Thresholds() []int64 {
	out := make([]int64, len(t.thresholds))
	copy(out, t.thresholds)
	return out
}

// ThresholdForLevel returns the cumulative XP required to reach the given
// level, or false when the level is out of range.
func (t ThresholdTable) ThresholdForLevel(level int) (int64, bool) {
	if level < 1 || level > len(t.thresholds) {
		return 0, false
	}
	return t.thresholds[level-1], true
}

// LevelOf returns the level for a cumulative XP total. The scan runs from
// the highest entry down and stops at the first threshold the total meets.
// XP beyond the last entry stays at the maximum level; XP itself is not capped.
func (t ThresholdTable) LevelOf(xp int64) int {
	for i := len(t.thresholds) - 1; i >= 0; i-- {
		if xp >= t.thresholds[i] {
			return i + 1
		}
	}
	return 1
}

// XPToNext returns the XP still needed to reach the next level.
// The second return value is false at the maximum level.
func (t ThresholdTable) XPToNext(xp int64) (int64, bool) {
	level := t.LevelOf(xp)
	if level >= len(t.thresholds) {
		return 0, false
	}
	return t.thresholds[level] - xp, true
}

// ProgressToNext returns how far through the current level band the XP
// total is, as a fraction in [0, 1]. At the maximum level it returns 1.
func (t ThresholdTable) ProgressToNext(xp int64) float64 {
	level := t.LevelOf(xp)
	if level >= len(t.thresholds) {
		return 1
	}
	lower := t.thresholds[level-1]
	upper := t.thresholds[level]
	return float64(xp-lower) / float64(upper-lower)
}

// Adjust applies a signed XP delta to a cumulative total. The result is
// clamped at zero and the new level is derived from the clamped value.
// Adjust is pure: no I/O, no clock, no randomness.
func (t ThresholdTable) Adjust(currentXP, delta int64) (newXP int64, newLevel int) {
	newXP = currentXP + delta
	if newXP < 0 {
		newXP = 0
	}
	return newXP, t.LevelOf(newXP)
}
