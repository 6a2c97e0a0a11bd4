// Copyright 2026 The Quickplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package graphs provides a graph container: named nodes, optionally
// directed and weighted edges, and a deterministic layout.
//
// A Graph exposes two tabular views. The node table (the Graph's own
// container view) has one row per node with its laid-out position and
// degree; the edge table has two rows per edge, one per endpoint, for
// drawing segments grouped by edge. Both are ordinary frames, so every
// plot kind that works on tables works on them.
package graphs

import (
	"fmt"
	"math"

	"github.com/aclements/go-gg/table"
	"github.com/quickplot/quickplot/container/ggtable"
	"github.com/quickplot/quickplot/core"
	"gonum.org/v1/gonum/floats"
)

// An Option configures a new Graph.
type Option func(*Graph)

// Directed makes edges one-way. It only affects Degree accounting and
// what Edges reports; layout treats every edge as a spring either way.
func Directed() Option { return func(g *Graph) { g.directed = true } }

// Weighted makes AddEdge record weights. Unweighted graphs store
// weight 1 for every edge.
func Weighted() Option { return func(g *Graph) { g.weighted = true } }

// An Edge is one recorded edge.
type Edge struct {
	From, To string
	Weight   float64
}

// A Graph is a mutable graph. It implements core.Tabular and
// core.Slicer through its node table. Not safe for concurrent
// mutation.
type Graph struct {
	directed bool
	weighted bool

	ids   []string
	idx   map[string]int
	edges []Edge

	// Cached derived state, cleared on mutation.
	pos   [][2]float64
	nodes *ggtable.Frame
}

// New returns an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{idx: make(map[string]int)}
	for _, o := range opts {
		o(g)
	}
	return g
}

// AddNode adds a node and reports whether it was new.
func (g *Graph) AddNode(id string) bool {
	if _, ok := g.idx[id]; ok {
		return false
	}
	g.idx[id] = len(g.ids)
	g.ids = append(g.ids, id)
	g.invalidate()
	return true
}

// AddEdge adds an edge, adding missing endpoints first. On unweighted
// graphs the weight argument is ignored.
func (g *Graph) AddEdge(from, to string, weight float64) error {
	if from == "" || to == "" {
		return fmt.Errorf("graphs: empty node id in edge %q -> %q", from, to)
	}
	if !g.weighted {
		weight = 1
	}
	g.AddNode(from)
	g.AddNode(to)
	g.edges = append(g.edges, Edge{from, to, weight})
	g.invalidate()
	return nil
}

func (g *Graph) invalidate() {
	g.pos = nil
	g.nodes = nil
}

// Nodes returns the node ids in insertion order.
func (g *Graph) Nodes() []string { return append([]string(nil), g.ids...) }

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []Edge { return append([]Edge(nil), g.edges...) }

// Directed reports whether the graph was created with Directed.
func (g *Graph) Directed() bool { return g.directed }

// Degree returns the number of edges incident to id, counting both
// directions on directed graphs.
func (g *Graph) Degree(id string) int {
	n := 0
	for _, e := range g.edges {
		if e.From == id {
			n++
		}
		if e.To == id && e.From != e.To {
			n++
		}
	}
	return n
}

// layoutIters is the fixed iteration count of the force pass. Layout
// is fully deterministic: positions seed on a circle in node order and
// no randomness enters the relaxation.
const layoutIters = 60

// Layout returns one position per node in insertion order, computed by
// Fruchterman-Reingold relaxation in the unit square. The result is
// cached until the graph changes.
func (g *Graph) Layout() [][2]float64 {
	if g.pos != nil {
		return g.pos
	}
	n := len(g.ids)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range g.ids {
		a := 2 * math.Pi * float64(i) / float64(max(n, 1))
		xs[i], ys[i] = 0.5+0.4*math.Cos(a), 0.5+0.4*math.Sin(a)
	}

	k := math.Sqrt(1 / float64(max(n, 1)))
	dx := make([]float64, n)
	dy := make([]float64, n)
	for iter := 0; iter < layoutIters; iter++ {
		for i := range dx {
			dx[i], dy[i] = 0, 0
		}
		// Repulsion between every pair.
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				ex, ey := xs[i]-xs[j], ys[i]-ys[j]
				d := math.Hypot(ex, ey)
				if d < 1e-9 {
					ex, ey, d = 1e-4, 0, 1e-4
				}
				f := k * k / d / d
				dx[i] += ex * f
				dy[i] += ey * f
				dx[j] -= ex * f
				dy[j] -= ey * f
			}
		}
		// Attraction along edges.
		for _, e := range g.edges {
			i, j := g.idx[e.From], g.idx[e.To]
			if i == j {
				continue
			}
			ex, ey := xs[i]-xs[j], ys[i]-ys[j]
			d := math.Hypot(ex, ey)
			if d < 1e-9 {
				continue
			}
			f := d / k * e.Weight
			dx[i] -= ex / d * f
			dy[i] -= ey / d * f
			dx[j] += ex / d * f
			dy[j] += ey / d * f
		}
		// Cap each step by the cooling temperature.
		t := 0.1 * (1 - float64(iter)/layoutIters)
		for i := range dx {
			d := math.Hypot(dx[i], dy[i])
			if d > t {
				dx[i] *= t / d
				dy[i] *= t / d
			}
		}
		floats.Add(xs, dx)
		floats.Add(ys, dy)
	}

	g.pos = make([][2]float64, n)
	for i := range g.pos {
		g.pos[i] = [2]float64{xs[i], ys[i]}
	}
	return g.pos
}

// NodeTable returns the node view: one row per node with columns node,
// x, y, and degree.
func (g *Graph) NodeTable() (*ggtable.Frame, error) {
	if g.nodes != nil {
		return g.nodes, nil
	}
	pos := g.Layout()
	xs := make([]float64, len(g.ids))
	ys := make([]float64, len(g.ids))
	deg := make([]int, len(g.ids))
	for i, id := range g.ids {
		xs[i], ys[i] = pos[i][0], pos[i][1]
		deg[i] = g.Degree(id)
	}
	tab := new(table.Builder).
		Add("node", append([]string(nil), g.ids...)).
		Add("x", xs).
		Add("y", ys).
		Add("degree", deg).
		Done()
	f, err := ggtable.New(tab)
	if err != nil {
		return nil, err
	}
	g.nodes = f
	return f, nil
}

// EdgeTable returns the edge view: two rows per edge, one per
// endpoint, with columns edge, node, x, y, and weight. Drawing it as
// lines grouped by edge renders the graph's links.
func (g *Graph) EdgeTable() (*ggtable.Frame, error) {
	pos := g.Layout()
	n := 2 * len(g.edges)
	num := make([]int, 0, n)
	node := make([]string, 0, n)
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	w := make([]float64, 0, n)
	for i, e := range g.edges {
		for _, id := range []string{e.From, e.To} {
			p := pos[g.idx[id]]
			num = append(num, i)
			node = append(node, id)
			xs = append(xs, p[0])
			ys = append(ys, p[1])
			w = append(w, e.Weight)
		}
	}
	tab := new(table.Builder).
		Add("edge", num).
		Add("node", node).
		Add("x", xs).
		Add("y", ys).
		Add("weight", w).
		Done()
	return ggtable.New(tab)
}

// Schema implements core.Container via the node table. Node tables
// declare no index columns, so plain x/y calls over them produce no
// widgets.
func (g *Graph) Schema() core.Schema {
	f, err := g.NodeTable()
	if err != nil {
		return nil
	}
	return f.Schema()
}

// Len implements core.Tabular.
func (g *Graph) Len() int { return len(g.ids) }

// Column implements core.Tabular via the node table.
func (g *Graph) Column(name string) (any, error) {
	f, err := g.NodeTable()
	if err != nil {
		return nil, err
	}
	return f.Column(name)
}

// Slice implements core.Slicer via the node table. The result is a
// plain frame, not a Graph.
func (g *Graph) Slice(field string, value any) (core.Container, error) {
	f, err := g.NodeTable()
	if err != nil {
		return nil, err
	}
	return f.Slice(field, value)
}
