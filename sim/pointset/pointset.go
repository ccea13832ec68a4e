// Package pointset holds the live points of a run.
//
// A Set keeps insertion order and that order survives removals: every
// "first N" query walks points in the order they were spawned.
package pointset

import "spherecull/geom"

// ID identifies a point for its whole life. IDs start at 1.
type ID uint32

// Visual is the presentation state handed to renderers.
type Visual uint8

const (
	VisualDefault Visual = iota
	VisualCandidate
	VisualCenter
)

func (v Visual) String() string {
	switch v {
	case VisualCandidate:
		return "candidate"
	case VisualCenter:
		return "center"
	default:
		return "default"
	}
}

// Point is a positioned point with a visited flag.
type Point struct {
	ID      ID
	Pos     geom.Vec3
	Visited bool
	Visual  Visual
}

// Set is an ordered collection of points addressed by ID.
type Set struct {
	points []Point
	index  map[ID]int
	nextID ID
}

// New allocates an empty set with room for capacity points.
func New(capacity int) *Set {
	if capacity < 0 {
		capacity = 0
	}
	return &Set{
		points: make([]Point, 0, capacity),
		index:  make(map[ID]int, capacity),
	}
}

// Add appends a point at pos and returns its id.
func (s *Set) Add(pos geom.Vec3) ID {
	s.nextID++
	id := s.nextID
	s.index[id] = len(s.points)
	s.points = append(s.points, Point{ID: id, Pos: pos})
	return id
}

func (s *Set) Len() int { return len(s.points) }

// Points returns the live points in iteration order.
//
// The slice aliases the set's storage and is only valid until the next
// mutation. Callers must not modify it.
func (s *Set) Points() []Point { return s.points }

// Get returns the point with the given id.
func (s *Set) Get(id ID) (Point, bool) {
	i, ok := s.index[id]
	if !ok {
		return Point{}, false
	}
	return s.points[i], true
}

// Prefix copies up to n live points in iteration order.
func (s *Set) Prefix(n int) []Point {
	if n > len(s.points) {
		n = len(s.points)
	}
	if n <= 0 {
		return nil
	}
	out := make([]Point, n)
	copy(out, s.points[:n])
	return out
}

// FirstUnvisited returns up to n ids of unvisited points in iteration order.
func (s *Set) FirstUnvisited(n int) []ID {
	if n <= 0 {
		return nil
	}
	out := make([]ID, 0, n)
	for i := range s.points {
		if s.points[i].Visited {
			continue
		}
		out = append(out, s.points[i].ID)
		if len(out) == n {
			break
		}
	}
	return out
}

// SetVisited updates the visited flag of id. Unknown ids are ignored.
func (s *Set) SetVisited(id ID, visited bool) {
	if i, ok := s.index[id]; ok {
		s.points[i].Visited = visited
	}
}

// SetVisual updates the visual state of id. Unknown ids are ignored.
func (s *Set) SetVisual(id ID, v Visual) {
	if i, ok := s.index[id]; ok {
		s.points[i].Visual = v
	}
}

// ResetVisited clears the visited flag on every point.
func (s *Set) ResetVisited() {
	for i := range s.points {
		s.points[i].Visited = false
	}
}

// Remove drops the given ids and returns how many were present.
// Remaining points keep their relative order.
func (s *Set) Remove(ids ...ID) int {
	if len(ids) == 0 {
		return 0
	}
	drop := make(map[ID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.index[id]; ok {
			drop[id] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return 0
	}

	kept := s.points[:0]
	for _, p := range s.points {
		if _, gone := drop[p.ID]; gone {
			delete(s.index, p.ID)
			continue
		}
		s.index[p.ID] = len(kept)
		kept = append(kept, p)
	}
	clear(s.points[len(kept):])
	s.points = kept
	return len(drop)
}

// Clear removes every point. IDs keep counting up.
func (s *Set) Clear() {
	clear(s.points)
	s.points = s.points[:0]
	clear(s.index)
}
