package engine

import "math"

// PathFinder computes a route between two nodes of a board
type PathFinder func(g *BoardGraph, start, target int) []int

// FinderFor returns the path finder for a path mode
func FinderFor(mode PathMode) PathFinder {
	if mode == WeightedPath {
		return WeightedShortestPath
	}
	return ShortestPath
}

// ShortestPath finds a minimum edge count path with BFS. Neighbors are explored
// in insertion order, so ties resolve the same way for the same graph.
// It returns [start] when start == target and nil when target is unreachable.
func ShortestPath(g *BoardGraph, start, target int) []int {
	if !inRange(start) || !inRange(target) {
		return nil
	}
	if start == target {
		return []int{start}
	}

	visited := make([]bool, GoalNode+1)
	parent := make([]int, GoalNode+1)
	for i := range parent {
		parent[i] = -1
	}

	queue := []int{start}
	visited[start] = true

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		for _, e := range g.Neighbors(u) {
			v := e.To
			if visited[v] {
				continue
			}
			visited[v] = true
			parent[v] = u
			if v == target {
				return reconstruct(parent, start, target)
			}
			queue = append(queue, v)
		}
	}
	return nil
}

// WeightedShortestPath runs Dijkstra over the weighted adjacency. The unsettled
// node with the lowest tentative distance is picked by a linear scan, lowest
// node id first on ties.
func WeightedShortestPath(g *BoardGraph, start, target int) []int {
	if !inRange(start) || !inRange(target) {
		return nil
	}
	if start == target {
		return []int{start}
	}

	dist := make([]int, GoalNode+1)
	prev := make([]int, GoalNode+1)
	settled := make([]bool, GoalNode+1)
	for i := range dist {
		dist[i] = math.MaxInt
		prev[i] = -1
	}
	dist[start] = 0

	for {
		u := -1
		best := math.MaxInt
		for n := MinNode; n <= GoalNode; n++ {
			if !settled[n] && dist[n] < best {
				best = dist[n]
				u = n
			}
		}
		if u == -1 {
			break
		}
		settled[u] = true
		if u == target {
			break
		}

		for _, e := range g.Neighbors(u) {
			if settled[e.To] {
				continue
			}
			if nd := dist[u] + e.Weight; nd < dist[e.To] {
				dist[e.To] = nd
				prev[e.To] = u
			}
		}
	}

	if dist[target] == math.MaxInt {
		return nil
	}
	return reconstruct(prev, start, target)
}

// PathLength sums edge weights along path. It reports false when two
// consecutive nodes are not connected.
func PathLength(g *BoardGraph, path []int) (int, bool) {
	total := 0
	for i := 1; i < len(path); i++ {
		w, ok := g.Weight(path[i-1], path[i])
		if !ok {
			return 0, false
		}
		total += w
	}
	return total, true
}

func reconstruct(parent []int, start, target int) []int {
	var rev []int
	for cur := target; cur != -1; cur = parent[cur] {
		rev = append(rev, cur)
		if cur == start {
			break
		}
	}
	if len(rev) == 0 || rev[len(rev)-1] != start {
		return nil
	}

	path := make([]int, len(rev))
	for i, n := range rev {
		path[len(rev)-1-i] = n
	}
	return path
}
