package carve

import "image"

// memo is a dense float cache keyed by grid coordinate. It is never updated in
// place after the grid changes; owners clear it wholesale instead.
type memo struct {
	stride int
	vals   []float64
	set    []bool
}

// reset drops every entry and sizes the memo for a width×height grid.
func (m *memo) reset(width, height int) {
	n := width * height
	if cap(m.vals) >= n {
		m.vals = m.vals[:n]
		m.set = m.set[:n]
		clear(m.set)
	} else {
		m.vals = make([]float64, n)
		m.set = make([]bool, n)
	}
	m.stride = width
}

func (m *memo) index(p image.Point) (int, bool) {
	if p.X < 0 || p.Y < 0 || p.X >= m.stride {
		return 0, false
	}
	i := p.Y*m.stride + p.X
	return i, i < len(m.vals)
}

func (m *memo) get(p image.Point) (float64, bool) {
	i, ok := m.index(p)
	if !ok || !m.set[i] {
		return 0, false
	}
	return m.vals[i], true
}

func (m *memo) put(p image.Point, v float64) {
	i, ok := m.index(p)
	if !ok {
		return
	}
	m.vals[i] = v
	m.set[i] = true
}
