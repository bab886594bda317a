package engine

import (
	"fmt"
)

// BoardGraph is the traversal topology of one game: the 64-node chain,
// optional prime bonus edges and the random links merged on top.
type BoardGraph struct {
	adj   [][]Edge // indexed by node, insertion ordered
	links []RandomLink
}

// NewBaseGraph builds the default chain i<->i+1. With primeBonus, every prime
// node p also gets symmetric edges to p±s (s in 2..6) weighted by s.
func NewBaseGraph(primeBonus bool) *BoardGraph {
	g := &BoardGraph{adj: make([][]Edge, GoalNode+1)}

	for i := MinNode; i < GoalNode; i++ {
		g.addEdge(i, i+1, 1, ChainEdge)
		g.addEdge(i+1, i, 1, ChainEdge)
	}

	if primeBonus {
		for p := MinNode; p <= GoalNode; p++ {
			if !IsPrime(p) {
				continue
			}
			for step := MinBonusStep; step <= MaxBonusStep; step++ {
				if p+step <= GoalNode {
					g.addEdge(p, p+step, step, PrimeEdge)
					g.addEdge(p+step, p, step, PrimeEdge)
				}
				if p-step >= MinNode {
					g.addEdge(p, p-step, step, PrimeEdge)
					g.addEdge(p-step, p, step, PrimeEdge)
				}
			}
		}
	}

	return g
}

// BuildBoard creates a fresh board for the given rules, drawing exactly
// LinkCount random links.
func BuildBoard(rules *Rules, rng Rand) (*BoardGraph, error) {
	g := NewBaseGraph(rules.PrimeBonusEdges)

	links, err := GenerateRandomLinks(rng, rules.Shortcuts, LinkCount)
	if err != nil {
		return nil, err
	}

	for _, l := range links {
		g.AddLink(l, rules.Shortcuts.Bidirectional)
	}
	return g, nil
}

// GenerateRandomLinks samples count distinct links inside the constraint band.
// Orientation follows draw order: the first node drawn is From.
func GenerateRandomLinks(rng Rand, c ShortcutConstraints, count int) ([]RandomLink, error) {
	maxAttempts := c.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	span := c.MaxNode - c.MinNode + 1
	if span < 2 {
		return nil, fmt.Errorf("%w: node band %d..%d is too narrow", ErrLinkGenerationExhausted, c.MinNode, c.MaxNode)
	}

	type pair struct{ lo, hi int }
	used := make(map[pair]bool, count)
	links := make([]RandomLink, 0, count)

	attempts := 0
	for len(links) < count {
		if attempts >= maxAttempts {
			return nil, fmt.Errorf("%w: found %d of %d links after %d attempts",
				ErrLinkGenerationExhausted, len(links), count, attempts)
		}
		attempts++

		a := c.MinNode + rng.IntN(span)
		b := c.MinNode + rng.IntN(span)
		if !c.Accepts(a, b) {
			continue
		}

		key := pair{min(a, b), max(a, b)}
		if used[key] {
			continue
		}
		used[key] = true
		links = append(links, RandomLink{From: a, To: b, IsLadder: b > a})
	}

	return links, nil
}

// AddLink merges a random link into the adjacency as a weight-1 edge
func (g *BoardGraph) AddLink(l RandomLink, bidirectional bool) {
	g.links = append(g.links, l)
	g.addEdge(l.From, l.To, 1, LinkEdge)
	if bidirectional {
		g.addEdge(l.To, l.From, 1, LinkEdge)
	}
}

// addEdge inserts a directed edge. A duplicate keeps its insertion slot and the
// lower weight; links override the kind so shortcuts stay identifiable.
func (g *BoardGraph) addEdge(from, to, weight int, kind EdgeKind) {
	if !inRange(from) || !inRange(to) || from == to {
		return
	}
	for i := range g.adj[from] {
		e := &g.adj[from][i]
		if e.To != to {
			continue
		}
		if weight < e.Weight {
			e.Weight = weight
		}
		if kind == LinkEdge {
			e.Kind = LinkEdge
		}
		return
	}
	g.adj[from] = append(g.adj[from], Edge{From: from, To: to, Weight: weight, Kind: kind})
}

// Neighbors returns the outgoing edges of n in insertion order
func (g *BoardGraph) Neighbors(n int) []Edge {
	if !inRange(n) {
		return nil
	}
	return g.adj[n]
}

// HasEdge reports whether a directed edge a->b exists
func (g *BoardGraph) HasEdge(a, b int) bool {
	_, ok := g.Weight(a, b)
	return ok
}

// Weight returns the weight of the directed edge a->b
func (g *BoardGraph) Weight(a, b int) (int, bool) {
	for _, e := range g.Neighbors(a) {
		if e.To == b {
			return e.Weight, true
		}
	}
	return 0, false
}

// Links returns a copy of the random links in generation order
func (g *BoardGraph) Links() []RandomLink {
	out := make([]RandomLink, len(g.links))
	copy(out, g.links)
	return out
}

// LinkFrom returns the first link departing from n
func (g *BoardGraph) LinkFrom(n int) (RandomLink, bool) {
	for _, l := range g.links {
		if l.From == n {
			return l, true
		}
	}
	return RandomLink{}, false
}

// LinkBetween returns the link running exactly from a to b
func (g *BoardGraph) LinkBetween(a, b int) (RandomLink, bool) {
	for _, l := range g.links {
		if l.From == a && l.To == b {
			return l, true
		}
	}
	return RandomLink{}, false
}

// Edges returns every directed edge, grouped by source node
func (g *BoardGraph) Edges() []Edge {
	var out []Edge
	for n := MinNode; n <= GoalNode; n++ {
		out = append(out, g.adj[n]...)
	}
	return out
}

// Snapshot copies the graph for rendering
func (g *BoardGraph) Snapshot() BoardSnapshot {
	return BoardSnapshot{
		Nodes: GoalNode,
		Edges: g.Edges(),
		Links: g.Links(),
	}
}

// IsPrime reports whether n is a prime number
func IsPrime(n int) bool {
	if n <= 1 {
		return false
	}
	if n <= 3 {
		return true
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}
	for i := 5; i*i <= n; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}

func inRange(n int) bool {
	return n >= MinNode && n <= GoalNode
}
