package session

import "github.com/roach88/francagen/internal/ir"

// FindCycles returns every dependency cycle among the stored declarations of
// s. Self-edges and edges to names that were never stored are ignored.
//
// The algorithm:
//  1. Restrict the graph to stored names, in registry order
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with more than one member as a cycle path
//
// Traversal follows registry order and edge insertion order, so the result
// is deterministic for a given session.
func FindCycles(s *Session) [][]ir.DeclName {
	graph := storedGraph(s)
	nodes := s.Registry.Names()

	var cycles [][]ir.DeclName
	for _, scc := range tarjanSCC(nodes, graph) {
		if len(scc) > 1 {
			cycles = append(cycles, reconstructCyclePath(scc, graph))
		}
	}
	return cycles
}

// dependencyGraph maps referencer -> stored names it depends on.
type dependencyGraph map[ir.DeclName][]ir.DeclName

func storedGraph(s *Session) dependencyGraph {
	graph := make(dependencyGraph, s.Registry.Len())
	for _, name := range s.Registry.Names() {
		var deps []ir.DeclName
		for _, dep := range s.Graph.Dependencies(name) {
			if dep != name && s.Registry.Contains(dep) {
				deps = append(deps, dep)
			}
		}
		graph[name] = deps
	}
	return graph
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Single-node SCCs are returned too; callers decide what counts as a cycle.
func tarjanSCC(nodes []ir.DeclName, graph dependencyGraph) [][]ir.DeclName {
	var (
		index   = 0
		stack   []ir.DeclName
		indices = make(map[ir.DeclName]int)
		lowlink = make(map[ir.DeclName]int)
		onStack = make(map[ir.DeclName]bool)
		sccs    [][]ir.DeclName
	)

	var strongConnect func(ir.DeclName)
	strongConnect = func(v ir.DeclName) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack into an SCC
		if lowlink[v] == indices[v] {
			var scc []ir.DeclName
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// reconstructCyclePath follows edges inside an SCC from its last-popped
// member (the SCC root) until it returns to the start.
func reconstructCyclePath(scc []ir.DeclName, graph dependencyGraph) []ir.DeclName {
	inSCC := make(map[ir.DeclName]bool, len(scc))
	for _, n := range scc {
		inSCC[n] = true
	}

	start := scc[len(scc)-1]
	current := start
	path := []ir.DeclName{current}
	visited := make(map[ir.DeclName]bool)

	for {
		visited[current] = true

		var next ir.DeclName
		found := false
		for _, neighbor := range graph[current] {
			if inSCC[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				found = true
				break
			}
		}
		if !found {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
