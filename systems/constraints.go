package systems

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/zackthomas1/particle-game/components"
)

// ConstraintKind identifies the variant held by a Constraint.
type ConstraintKind uint8

const (
	ConstraintSelfCollision ConstraintKind = iota // two particles kept 2*radius apart
	ConstraintBoundary                            // one particle kept inside a wall
	ConstraintDistance                            // declared, not solved
)

// String returns the constraint kind name.
func (k ConstraintKind) String() string {
	switch k {
	case ConstraintSelfCollision:
		return "self_collision"
	case ConstraintBoundary:
		return "boundary"
	case ConstraintDistance:
		return "distance"
	default:
		return "unknown"
	}
}

// Constraint is a tagged union over the solver's constraint types.
// Participants[:N] are pool slot indices and must name live particles when
// the constraint is projected.
type Constraint struct {
	Kind         ConstraintKind
	Participants [2]int
	N            int

	// Boundary payload: inward surface normal and the point where the
	// particle's motion ray entered the inset wall plane.
	Normal r2.Vec
	Entry  r2.Vec

	// Distance payload.
	RestLength float64
}

// SelfCollision builds a pair constraint between slots i and j.
func SelfCollision(i, j int) Constraint {
	return Constraint{Kind: ConstraintSelfCollision, Participants: [2]int{i, j}, N: 2}
}

// Boundary builds a wall constraint for slot i.
func Boundary(i int, normal, entry r2.Vec) Constraint {
	return Constraint{Kind: ConstraintBoundary, Participants: [2]int{i, 0}, N: 1, Normal: normal, Entry: entry}
}

// Distance builds a distance constraint between slots i and j.
func Distance(i, j int, rest float64) Constraint {
	return Constraint{Kind: ConstraintDistance, Participants: [2]int{i, j}, N: 2, RestLength: rest}
}

// wall is one side of the boundary box, inset by the particle radius.
type wall struct {
	normal r2.Vec // points into the box
	plane  r2.Vec // a point on the inset plane; only the normal axis is used
}

// crossed reports whether p is strictly on the outside of the inset plane.
func (w wall) crossed(p r2.Vec) bool {
	return r2.Dot(r2.Sub(p, w.plane), w.normal) < 0
}

// entryPoint intersects the ray p + t*v with the plane:
// t = ((Q-P)·n) / (v·n). A ray parallel to the plane has no intersection,
// so p is projected onto the plane instead.
func (w wall) entryPoint(p, v r2.Vec) r2.Vec {
	depth := r2.Dot(r2.Sub(w.plane, p), w.normal)
	vn := r2.Dot(v, w.normal)
	if vn != 0 {
		e := r2.Add(p, r2.Scale(depth/vn, v))
		if finite(e) {
			return e
		}
	}
	return r2.Add(p, r2.Scale(depth, w.normal))
}

// Solver holds the constraint list and projects it Gauss-Seidel style: one
// sequential pass in insertion order, each projection seeing the positions
// left by the previous one.
type Solver struct {
	constraints []Constraint
	radius      float64

	log            *slog.Logger
	warnedDistance bool
}

// NewSolver creates a solver for particles of the given radius.
func NewSolver(radius float64, log *slog.Logger) *Solver {
	if log == nil {
		log = slog.Default()
	}
	return &Solver{radius: radius, log: log}
}

// Len returns the number of constraints currently held.
func (s *Solver) Len() int { return len(s.constraints) }

// Constraints returns the held constraints. The slice aliases solver storage.
func (s *Solver) Constraints() []Constraint { return s.constraints }

// Add appends a constraint.
func (s *Solver) Add(c Constraint) {
	s.constraints = append(s.constraints, c)
}

// GenerateStats counts the constraints produced by one generate call.
type GenerateStats struct {
	Boundary      int
	SelfCollision int
}

// Total returns the number of constraints generated.
func (g GenerateStats) Total() int { return g.Boundary + g.SelfCollision }

// generate appends boundary and self-collision constraints for the current
// predicted positions. The hash must have been filled from those positions.
// reach is the largest distance any particle moved this sub-step; the wall
// strips are widened outward by it so fast particles are still found.
func (s *Solver) generate(pool *Pool, hash *SpatialHash, box components.Boundary, reach float64) GenerateStats {
	var stats GenerateStats
	if pool.Len() == 0 {
		return stats
	}

	r := s.radius
	band := 2 * r
	out := band + reach
	positions := pool.positions
	velocities := pool.velocities

	walls := [4]struct {
		w                      wall
		xMin, xMax, yMin, yMax float64
	}{
		{wall{r2.Vec{X: 1}, r2.Vec{X: box.Left + r}}, box.Left - out, box.Left + band, box.Top - out, box.Bottom + out},
		{wall{r2.Vec{X: -1}, r2.Vec{X: box.Right - r}}, box.Right - band, box.Right + out, box.Top - out, box.Bottom + out},
		{wall{r2.Vec{Y: 1}, r2.Vec{Y: box.Top + r}}, box.Left - out, box.Right + out, box.Top - out, box.Top + band},
		{wall{r2.Vec{Y: -1}, r2.Vec{Y: box.Bottom - r}}, box.Left - out, box.Right + out, box.Bottom - band, box.Bottom + out},
	}

	for _, side := range walls {
		hash.QueryRange(side.xMin, side.xMax, side.yMin, side.yMax)
		for _, i := range hash.Results() {
			p := positions[i]
			if !side.w.crossed(p) {
				continue
			}
			s.Add(Boundary(i, side.w.normal, side.w.entryPoint(p, velocities[i])))
			stats.Boundary++
		}
	}

	minDistSq := band * band
	for i := 0; i < pool.Len(); i++ {
		pi := positions[i]
		hash.QueryPoint(pi, band)
		for _, j := range hash.Results() {
			if j <= i {
				continue
			}
			if r2.Norm2(r2.Sub(positions[j], pi)) < minDistSq {
				s.Add(SelfCollision(i, j))
				stats.SelfCollision++
			}
		}
	}
	return stats
}

// project runs one pass over every held constraint in insertion order.
func (s *Solver) project(pool *Pool) {
	for k := range s.constraints {
		c := &s.constraints[k]
		switch c.Kind {
		case ConstraintSelfCollision:
			s.projectSelfCollision(c, pool)
		case ConstraintBoundary:
			s.projectBoundary(c, pool)
		case ConstraintDistance:
			s.projectDistance(c, pool)
		default:
			s.log.Error("unknown constraint kind", "kind", c.Kind)
		}
	}
}

// trim drops every constraint past the first n.
func (s *Solver) trim(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(s.constraints) {
		s.constraints = s.constraints[:n]
	}
}

// remap follows a swap-remove: constraints naming the removed slot are
// dropped, and those naming the moved slot are renumbered to its new slot.
func (s *Solver) remap(removed, moved int) {
	kept := s.constraints[:0]
	for _, c := range s.constraints {
		live := true
		for k := range c.N {
			switch c.Participants[k] {
			case removed:
				live = false
			case moved:
				c.Participants[k] = removed
			}
			if !live {
				break
			}
		}
		if live {
			kept = append(kept, c)
		}
	}
	s.constraints = kept
}

// valid checks the participant count and that every participant is live.
func (s *Solver) valid(c *Constraint, want int, pool *Pool) bool {
	if c.N != want {
		s.log.Error("wrong participant count for constraint", "kind", c.Kind, "participants", c.N, "want", want)
		return false
	}
	for _, i := range c.Participants[:c.N] {
		if i < 0 || i >= pool.Len() {
			s.log.Error("constraint participant is not a live particle", "kind", c.Kind, "index", i, "active", pool.Len())
			return false
		}
	}
	return true
}

// projectSelfCollision moves a pair apart to the rest length 2*radius:
// C = |pj - pi| - rest, λ = C / (wi + wj), Δpi = λ·wi·n, Δpj = -λ·wj·n.
// Coincident particles are separated along +x.
func (s *Solver) projectSelfCollision(c *Constraint, pool *Pool) {
	if !s.valid(c, 2, pool) {
		return
	}
	i, j := c.Participants[0], c.Participants[1]
	pi, pj := pool.positions[i], pool.positions[j]

	sep := r2.Sub(pj, pi)
	dist := r2.Norm(sep)
	grad := normalize(sep)
	if dist == 0 {
		grad = r2.Vec{X: 1}
	}

	wi, wj := 1/pool.masses[i], 1/pool.masses[j]
	lambda := (dist - 2*s.radius) / (wi + wj)

	pool.positions[i] = r2.Add(pi, r2.Scale(lambda*wi, grad))
	pool.positions[j] = r2.Sub(pj, r2.Scale(lambda*wj, grad))
}

// projectBoundary removes the penetration along the wall normal:
// Δp = -n((p - entry)·n).
func (s *Solver) projectBoundary(c *Constraint, pool *Pool) {
	if !s.valid(c, 1, pool) {
		return
	}
	i := c.Participants[0]
	p := pool.positions[i]
	depth := r2.Dot(r2.Sub(p, c.Entry), c.Normal)
	pool.positions[i] = r2.Sub(p, r2.Scale(depth, c.Normal))
}

// projectDistance is not implemented and leaves positions untouched.
func (s *Solver) projectDistance(c *Constraint, pool *Pool) {
	if !s.warnedDistance {
		s.log.Warn("distance constraint projection not implemented, skipping")
		s.warnedDistance = true
	}
	s.valid(c, 2, pool)
}
