package services

import "sort"

// semanticGroups merges entities by embedding proximity, falling back to
// co-occurrence for entities without embeddings.
func semanticGroups(in clusterInput, scorer *SimilarityScorer, floor float64) []group {
	n := len(in.entities)
	sim := newMatrix(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := scorer.SemanticAffinity(in.features[i], in.features[j])
			sim[i][j], sim[j][i] = v, v
		}
	}
	return agglomerate(sim, floor)
}

// structuralGroups returns the connected components of the graph restricted
// to the input entities and edges with confidence >= minConfidence.
func structuralGroups(in clusterInput) []group {
	n := len(in.entities)
	adj := make([]map[int]bool, n)
	for i := range adj {
		adj[i] = make(map[int]bool)
	}
	for _, r := range in.snap.Relationships() {
		if r.Confidence < in.minConfidence {
			continue
		}
		a, okA := in.index[r.SourceID]
		b, okB := in.index[r.TargetID]
		if !okA || !okB {
			continue
		}
		adj[a][b] = true
		adj[b][a] = true
	}

	seen := make([]bool, n)
	var groups []group
	for start := 0; start < n; start++ {
		if seen[start] {
			continue
		}
		seen[start] = true
		members := []int{start}
		for q := 0; q < len(members); q++ {
			for _, nb := range sortedKeys(adj[members[q]]) {
				if !seen[nb] {
					seen[nb] = true
					members = append(members, nb)
				}
			}
		}
		sort.Ints(members)

		g := group{members: members, centrality: make(map[int]float64, len(members))}
		links := 0
		for _, m := range members {
			g.centrality[m] = float64(len(adj[m]))
			links += len(adj[m])
		}
		if k := len(members); k > 1 {
			// links counts each undirected pair twice
			g.cohesion = clamp01(float64(links) / float64(k*(k-1)))
		}
		groups = append(groups, g)
	}
	return groups
}

// hybridGroups blends semantic affinity with the strongest direct edge
// between two entities and merges on the blended matrix.
func hybridGroups(in clusterInput, scorer *SimilarityScorer, floor, semanticWeight float64) []group {
	n := len(in.entities)
	structural := newMatrix(n)
	for _, r := range in.snap.Relationships() {
		if r.Confidence < in.minConfidence {
			continue
		}
		a, okA := in.index[r.SourceID]
		b, okB := in.index[r.TargetID]
		if !okA || !okB {
			continue
		}
		if r.Confidence > structural[a][b] {
			structural[a][b], structural[b][a] = r.Confidence, r.Confidence
		}
	}

	sim := newMatrix(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := semanticWeight*scorer.SemanticAffinity(in.features[i], in.features[j]) +
				(1-semanticWeight)*structural[i][j]
			sim[i][j], sim[j][i] = v, v
		}
	}
	return agglomerate(sim, floor)
}

// agglomerate performs average-linkage agglomerative clustering, merging the
// most similar pair of groups until no pair links at or above floor. Ties
// resolve to the lowest indexes so the result is deterministic.
func agglomerate(sim [][]float64, floor float64) []group {
	n := len(sim)
	members := make([][]int, n)
	active := make([]bool, n)
	sums := newMatrix(n)
	for i := 0; i < n; i++ {
		members[i] = []int{i}
		active[i] = true
		copy(sums[i], sim[i])
	}

	for {
		bestA, bestB, best := -1, -1, -1.0
		for a := 0; a < n; a++ {
			if !active[a] {
				continue
			}
			for b := a + 1; b < n; b++ {
				if !active[b] {
					continue
				}
				link := sums[a][b] / float64(len(members[a])*len(members[b]))
				if link > best {
					bestA, bestB, best = a, b, link
				}
			}
		}
		if bestA < 0 || best < floor {
			break
		}

		members[bestA] = append(members[bestA], members[bestB]...)
		active[bestB] = false
		for c := 0; c < n; c++ {
			if active[c] && c != bestA {
				sums[bestA][c] += sums[bestB][c]
				sums[c][bestA] = sums[bestA][c]
			}
		}
	}

	var groups []group
	for i := 0; i < n; i++ {
		if !active[i] {
			continue
		}
		m := append([]int(nil), members[i]...)
		sort.Ints(m)
		groups = append(groups, scoreGroup(m, sim))
	}
	return groups
}

// scoreGroup computes the average pairwise similarity of a group and each
// member's average similarity to the others.
func scoreGroup(members []int, sim [][]float64) group {
	g := group{members: members, centrality: make(map[int]float64, len(members))}
	k := len(members)
	if k < 2 {
		return g
	}
	total := 0.0
	for _, a := range members {
		row := 0.0
		for _, b := range members {
			if a != b {
				row += sim[a][b]
			}
		}
		g.centrality[a] = row / float64(k-1)
		total += row
	}
	g.cohesion = clamp01(total / float64(k*(k-1)))
	return g
}

func newMatrix(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

func sortedKeys(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
