package engine

import (
	"strconv"
	"strings"
)

// FormatPath renders a node sequence as "[1 -> 2 -> 3]"
func FormatPath(path []int) string {
	parts := make([]string, len(path))
	for i, n := range path {
		parts[i] = strconv.Itoa(n)
	}
	return "[" + strings.Join(parts, " -> ") + "]"
}

// PrimesUpTo lists the primes in [MinNode, n]
func PrimesUpTo(n int) []int {
	var primes []int
	for i := MinNode; i <= n; i++ {
		if IsPrime(i) {
			primes = append(primes, i)
		}
	}
	return primes
}

// Occupancy groups player ids by the node they stand on
func Occupancy(players []PlayerSnapshot) map[int][]string {
	cells := make(map[int][]string)
	for _, p := range players {
		cells[p.Position] = append(cells[p.Position], p.ID)
	}
	return cells
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func insertAt(xs []int, i, x int) []int {
	xs = append(xs, 0)
	copy(xs[i+1:], xs[i:])
	xs[i] = x
	return xs
}
