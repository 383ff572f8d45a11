package systems

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultGravity is the downward acceleration used by NewGravity callers that
// have no configured value (world units per second squared, y down).
const DefaultGravity = 9.8

// ForceKind identifies the variant held by a Force.
type ForceKind uint8

const (
	ForceDirectional ForceKind = iota // constant vector, scaled by 1/mass
	ForcePoint                        // pull toward (or push from) a position, scaled by 1/mass
	ForceGravity                      // constant (0, g), independent of mass
	ForceDrag                         // viscous drag, -k*v/mass
)

// String returns the force kind name.
func (k ForceKind) String() string {
	switch k {
	case ForceDirectional:
		return "directional"
	case ForcePoint:
		return "point"
	case ForceGravity:
		return "gravity"
	case ForceDrag:
		return "drag"
	default:
		return "unknown"
	}
}

// Force is a tagged union over the fixed set of force generators.
// Only the fields relevant to Kind are read.
type Force struct {
	Kind ForceKind

	// Position anchors the force in the world. Point forces pull toward it;
	// the other kinds only use it as a debug marker.
	Position r2.Vec

	// Direction is the directional force vector.
	Direction r2.Vec

	// Strength is the point force coefficient (negative repels), the gravity
	// acceleration, or the drag coefficient.
	Strength float64
}

// NewDirectional creates a constant directional force.
func NewDirectional(direction r2.Vec, anchor r2.Vec) Force {
	return Force{Kind: ForceDirectional, Direction: direction, Position: anchor}
}

// NewPoint creates a point attractor at position. Negative strength repels.
func NewPoint(position r2.Vec, strength float64) Force {
	return Force{Kind: ForcePoint, Position: position, Strength: strength}
}

// NewGravity creates a uniform downward gravity of g.
func NewGravity(g float64, anchor r2.Vec) Force {
	return Force{Kind: ForceGravity, Strength: g, Position: anchor}
}

// NewDrag creates a viscous drag with coefficient k.
func NewDrag(k float64, anchor r2.Vec) Force {
	return Force{Kind: ForceDrag, Strength: k, Position: anchor}
}

// DrawPosition returns where a debug marker for the force should be drawn.
func (f Force) DrawPosition() r2.Vec {
	return f.Position
}

// computeAcceleration sums the acceleration every force applies to a
// particle. mass must be positive.
func computeAcceleration(position, velocity r2.Vec, mass float64, forces []Force) r2.Vec {
	var acc r2.Vec
	invMass := 1 / mass

	for i := range forces {
		f := &forces[i]
		switch f.Kind {
		case ForceDirectional:
			acc = r2.Add(acc, r2.Scale(invMass, f.Direction))
		case ForcePoint:
			dir := normalize(r2.Sub(f.Position, position))
			acc = r2.Add(acc, r2.Scale(invMass*f.Strength, dir))
		case ForceGravity:
			acc.Y += f.Strength
		case ForceDrag:
			acc = r2.Sub(acc, r2.Scale(invMass*f.Strength, velocity))
		}
	}
	return acc
}
