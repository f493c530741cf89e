// Package dice provides the core randomness abstraction for the Emberfell
// combat engine. Every random draw the engine makes — initiative rolls, hit
// checks, status chances, loot — goes through a single Source so that whole
// combat episodes are replayable from a seed.
package dice

// Source is the randomness provider for the combat engine.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int

	// Float64 returns a random float64 in [0, 1).
	Float64() float64
}

// RollD20 returns a uniform random int in [1, 20].
//
// Precondition: src must be non-nil.
func RollD20(src Source) int {
	return src.Intn(20) + 1
}

// RollRange returns a uniform random int in [min, max].
//
// Precondition: min <= max; src must be non-nil.
func RollRange(src Source, min, max int) int {
	if min >= max {
		return min
	}
	return min + src.Intn(max-min+1)
}

// RollSpread returns value scaled by a uniform random factor in [low, high).
// The result is truncated to int.
//
// Precondition: low <= high; src must be non-nil.
func RollSpread(src Source, value int, low, high float64) int {
	factor := low + src.Float64()*(high-low)
	return int(float64(value) * factor)
}
