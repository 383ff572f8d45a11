package systems

import (
	"bytes"
	"image/color"
	"log/slog"
	"math/rand"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/zackthomas1/particle-game/components"
)

// captureLog returns a logger writing text records into the returned buffer.
func captureLog() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(h), &buf
}

// still is a particle that neither moves, ages meaningfully nor changes mass.
func still() components.SpawnProps {
	return components.SpawnProps{
		Variance:   0,
		Lifetime:   1000,
		BirthMass:  1,
		DeathMass:  1,
		BirthColor: color.RGBA{R: 255, A: 255},
		DeathColor: color.RGBA{B: 255, A: 255},
	}
}

func moving(v r2.Vec) components.SpawnProps {
	p := still()
	p.Velocity = v
	return p
}

func box(left, right, top, bottom float64) components.Boundary {
	return components.Boundary{Left: left, Right: right, Top: top, Bottom: bottom}
}

// newTestSystem builds a system with radius 4 over the given box.
func newTestSystem(t *testing.T, b components.Boundary, capacity, substeps int) (*ParticleSystem, *bytes.Buffer) {
	t.Helper()
	log, buf := captureLog()
	s := NewParticleSystem(Settings{
		MaxParticles:  capacity,
		Radius:        4,
		EmitterRadius: 10,
		Substeps:      substeps,
		Seed:          7,
	}, b, WithLogger(log), WithRand(rand.New(rand.NewSource(7))))
	return s, buf
}

// generateOnce runs the integrate, fill and generate phases of one sub-step
// without projecting, and returns what was generated.
func generateOnce(s *ParticleSystem, h float64) GenerateStats {
	reach := s.integrate(h)
	s.hash.Clear()
	s.hash.Fill(s.pool.Positions())
	return s.solver.generate(s.pool, s.hash, s.boundary, reach)
}

func countLines(buf *bytes.Buffer, substr string) int {
	n := 0
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}
