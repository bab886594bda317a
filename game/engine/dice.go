package engine

import (
	"math/rand/v2"
	"time"
)

// Rand is the randomness the engine draws from. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// NewRand returns a PCG-backed source. A zero seed is derived from the clock.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// RollDice draws a value in [1,6] and a direction according to the rules
func RollDice(rng Rand, rules *Rules) DiceResult {
	value := DiceMin + rng.IntN(DiceMax-DiceMin+1)

	direction := Forward
	if rules.DirectionModel == Probabilistic && rng.Float64() >= rules.ForwardProbability {
		direction = Backward
	}

	return DiceResult{Value: value, Direction: direction}
}
