// Package mincut implements a randomized minimum-cut estimator using
// Karger-style edge contraction. Repeated independent contraction runs
// each collapse the graph to two vertex groups; the smallest cut seen
// across runs is reported. The estimate is Monte Carlo: the true
// minimum cut is a lower bound on the best observed value, and more
// iterations can only improve the best-so-far.
package mincut

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/copyleftdev/KERF/internal/engine"
)

// ID is the registry identifier of this algorithm.
const ID = "mincut"

const (
	defaultIterations = 40
	minIterations     = 1
	maxIterations     = 1000
)

// Rand supplies uniform random selection. Substituting a deterministic
// source makes contraction outcomes reproducible in tests.
type Rand interface {
	// Intn returns a uniform value in [0, n). n must be positive.
	Intn(n int) int
}

type processRand struct{}

func (processRand) Intn(n int) int { return rand.Intn(n) }

// Graph is the parsed input: a vertex list in first-seen order and the
// original edge list. Edges keep their original endpoints; contraction
// works on a copy.
type Graph struct {
	Vertices []string
	Edges    [][2]string
}

// Algorithm implements engine.Algorithm. The zero value is not usable;
// construct with New or NewWithRand.
type Algorithm struct {
	rng Rand
}

// New returns a min-cut algorithm drawing from the process-wide
// pseudo-random generator. No seeding contract: results are not
// reproducible across runs.
func New() *Algorithm {
	return &Algorithm{rng: processRand{}}
}

// NewWithRand returns a min-cut algorithm drawing from the given
// source.
func NewWithRand(rng Rand) *Algorithm {
	return &Algorithm{rng: rng}
}

// Metadata implements engine.Algorithm.
func (a *Algorithm) Metadata() engine.Metadata {
	minIter := float64(minIterations)
	maxIter := float64(maxIterations)
	return engine.Metadata{
		ID:          ID,
		Name:        "Minimum Cut (randomized contraction)",
		Description: "Estimates the minimum cut of an undirected graph by repeated random edge contraction.",
		InputHelp: "An object with a required non-empty \"edges\" array. Each edge is either a " +
			"two-element array [from, to] or an object with from/source/u and to/target/v fields. " +
			"An optional \"vertices\" array seeds the vertex set; endpoints not listed are appended.",
		ExampleInput: map[string]interface{}{
			"vertices": []interface{}{"A", "B", "C", "D"},
			"edges": []interface{}{
				[]interface{}{"A", "B"},
				[]interface{}{"A", "C"},
				[]interface{}{"B", "C"},
				[]interface{}{"B", "D"},
				[]interface{}{"C", "D"},
			},
		},
		Options: []engine.OptionDefinition{
			{
				Key:         "iterations",
				Label:       "Iterations",
				Kind:        engine.KindInteger,
				Description: "Number of independent contraction runs. When omitted, scales with the square of the vertex count.",
				Default:     defaultIterations,
				Min:         &minIter,
				Max:         &maxIter,
			},
		},
	}
}

// ParseInput implements engine.Algorithm. It accepts a JSON-like object
// and normalizes it into a *Graph, stringifying all endpoints and
// deduplicating vertices while preserving first-seen order.
func (a *Algorithm) ParseInput(raw interface{}) (interface{}, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, engine.NewClientError("input must be an object with an \"edges\" array")
	}

	rawEdges, ok := obj["edges"].([]interface{})
	if !ok || len(rawEdges) == 0 {
		return nil, engine.NewClientError("input requires a non-empty \"edges\" array")
	}

	g := &Graph{}
	seen := make(map[string]bool)
	addVertex := func(v string) {
		if !seen[v] {
			seen[v] = true
			g.Vertices = append(g.Vertices, v)
		}
	}

	if rawVertices, ok := obj["vertices"].([]interface{}); ok {
		for _, v := range rawVertices {
			addVertex(stringify(v))
		}
	}

	for i, rawEdge := range rawEdges {
		from, to, err := destructureEdge(rawEdge)
		if err != nil {
			return nil, engine.NewClientError("edge %d: %v", i, err)
		}
		addVertex(from)
		addVertex(to)
		g.Edges = append(g.Edges, [2]string{from, to})
	}

	if len(g.Vertices) < 2 {
		return nil, engine.NewClientError("graph needs at least two distinct vertices, got %d", len(g.Vertices))
	}

	return g, nil
}

// destructureEdge extracts the two endpoints of an edge given either as
// a two-element sequence or as an object with from/source/u and
// to/target/v aliases.
func destructureEdge(raw interface{}) (from, to string, err error) {
	switch edge := raw.(type) {
	case []interface{}:
		if len(edge) != 2 {
			return "", "", fmt.Errorf("expected two endpoints, got %d", len(edge))
		}
		return stringify(edge[0]), stringify(edge[1]), nil
	case map[string]interface{}:
		f, okF := firstOf(edge, "from", "source", "u")
		t, okT := firstOf(edge, "to", "target", "v")
		if !okF || !okT {
			return "", "", fmt.Errorf("object edge needs from/source/u and to/target/v")
		}
		return stringify(f), stringify(t), nil
	}
	return "", "", fmt.Errorf("expected [from, to] array or endpoint object")
}

func firstOf(obj map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}

// Execute implements engine.Algorithm. It runs the configured number of
// independent contraction runs and reports the smallest cut observed,
// ties broken by first-found.
func (a *Algorithm) Execute(ctx context.Context, input interface{}, opts engine.Options) (*engine.Result, error) {
	g, ok := input.(*Graph)
	if !ok {
		return nil, engine.NewInternalError("execute called with unparsed input").WithComponent(ID)
	}

	iterations := opts.Int("iterations")
	if opts.WasDefaulted("iterations") {
		// No explicit iteration count: scale with graph size.
		iterations = clamp(len(g.Vertices)*len(g.Vertices), minIterations, maxIterations)
	}

	bestCut := -1
	bestIteration := 0
	var bestParts [2][]string
	cuts := make([]float64, 0, iterations)
	trace := make([]map[string]interface{}, 0, iterations)

	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cut, parts := a.contract(g)
		cuts = append(cuts, float64(cut))
		trace = append(trace, map[string]interface{}{
			"iteration": i,
			"cutSize":   cut,
		})
		if bestCut < 0 || cut < bestCut {
			bestCut = cut
			bestIteration = i
			bestParts = parts
		}
	}

	// StdDev needs at least two samples; report 0 for a single run so
	// diagnostics stay JSON-encodable.
	stddev := 0.0
	if len(cuts) > 1 {
		stddev = stat.StdDev(cuts, nil)
	}

	return &engine.Result{
		Output: map[string]interface{}{
			"minCut":     bestCut,
			"partitions": []interface{}{bestParts[0], bestParts[1]},
		},
		Summary: fmt.Sprintf("Estimated minimum cut of %d after %d contraction runs.", bestCut, iterations),
		Diagnostics: map[string]interface{}{
			"iterations":    iterations,
			"bestIteration": bestIteration,
			"trace":         trace,
			"meanCut":       stat.Mean(cuts, nil),
			"stddevCut":     stddev,
		},
	}, nil
}

// contract performs one independent contraction run. It maintains a map
// from representative label to the original vertices it has absorbed
// and a working copy of the edge list whose endpoints are always
// current labels. Runs until two groups remain or edges are exhausted.
func (a *Algorithm) contract(g *Graph) (int, [2][]string) {
	groups := make(map[string][]string, len(g.Vertices))
	for _, v := range g.Vertices {
		groups[v] = []string{v}
	}

	working := make([][2]string, len(g.Edges))
	copy(working, g.Edges)

	step := 0
	for len(groups) > 2 && len(working) > 0 {
		idx := a.rng.Intn(len(working))
		edge := working[idx]
		if edge[0] == edge[1] {
			// Self-loop left over from a previous merge; discard.
			working = append(working[:idx], working[idx+1:]...)
			continue
		}

		merged := append(append([]string{}, groups[edge[0]]...), groups[edge[1]]...)
		label := mergeLabel(merged, step)
		step++

		delete(groups, edge[0])
		delete(groups, edge[1])
		groups[label] = merged

		// Rewrite endpoints that referenced either old representative
		// and drop edges that became self-loops.
		kept := working[:0]
		for _, e := range working {
			if e[0] == edge[0] || e[0] == edge[1] {
				e[0] = label
			}
			if e[1] == edge[0] || e[1] == edge[1] {
				e[1] = label
			}
			if e[0] != e[1] {
				kept = append(kept, e)
			}
		}
		working = kept
	}

	if len(groups) != 2 {
		// Degenerate outcome (disconnected or fully collapsed input):
		// defined as cut 0 with every vertex on one side.
		all := make([]string, len(g.Vertices))
		copy(all, g.Vertices)
		return 0, [2][]string{all, {}}
	}

	// Resolve final membership, then recount the cut against the
	// original edge list; the surviving working edges have already
	// deduplicated parallel edges and undercount.
	labelOf := make(map[string]string, len(g.Vertices))
	for label, members := range groups {
		for _, v := range members {
			labelOf[v] = label
		}
	}

	cut := 0
	for _, e := range g.Edges {
		if labelOf[e[0]] != labelOf[e[1]] {
			cut++
		}
	}

	return cut, splitPartitions(g.Vertices, labelOf)
}

// mergeLabel derives a unique representative label from the sorted
// union of absorbed vertices plus the run's step counter.
func mergeLabel(members []string, step int) string {
	sorted := make([]string, len(members))
	copy(sorted, members)
	sort.Strings(sorted)
	return strings.Join(sorted, "+") + "#" + strconv.Itoa(step)
}

// splitPartitions orders the two final groups deterministically: the
// group containing the earliest first-seen vertex comes first, and each
// partition lists its vertices in original first-seen order.
func splitPartitions(vertices []string, labelOf map[string]string) [2][]string {
	firstLabel := labelOf[vertices[0]]
	var parts [2][]string
	for _, v := range vertices {
		if labelOf[v] == firstLabel {
			parts[0] = append(parts[0], v)
		} else {
			parts[1] = append(parts[1], v)
		}
	}
	return parts
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
