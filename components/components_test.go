package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpawnerBudget(t *testing.T) {
	s := Spawner{Rate: 10}

	// 10/s at 0.25s per frame owes 2.5 particles per frame.
	assert.Equal(t, 2, s.Budget(0.25))
	assert.InDelta(t, 0.5, s.Accum, 1e-9)
	assert.Equal(t, 3, s.Budget(0.25))
	assert.InDelta(t, 0, s.Accum, 1e-9)
}

func TestSpawnerBudgetAccumulatesFractions(t *testing.T) {
	s := Spawner{Rate: 1}
	total := 0
	for range 100 {
		total += s.Budget(0.1)
	}
	assert.InDelta(t, 10, total, 1)
}

func TestSpawnerBudgetIdle(t *testing.T) {
	tests := []struct {
		name string
		s    Spawner
		dt   float64
	}{
		{"paused", Spawner{Rate: 100, Paused: true}, 1},
		{"zero rate", Spawner{}, 1},
		{"negative rate", Spawner{Rate: -5}, 1},
		{"zero dt", Spawner{Rate: 100}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 0, tt.s.Budget(tt.dt))
			assert.Zero(t, tt.s.Accum)
		})
	}
}

func TestBoundary(t *testing.T) {
	b := Boundary{Left: -10, Right: 30, Top: 0, Bottom: 20}
	assert.Equal(t, 40.0, b.Width())
	assert.Equal(t, 20.0, b.Height())
	assert.Equal(t, 10.0, b.Center().X)
	assert.Equal(t, 10.0, b.Center().Y)
	assert.True(t, b.Valid())

	assert.False(t, Boundary{}.Valid())
	assert.False(t, Boundary{Left: 5, Right: 1, Top: 0, Bottom: 1}.Valid())
}

func TestDefaultSpawnProps(t *testing.T) {
	p := DefaultSpawnProps()
	assert.Equal(t, 10.0, p.Lifetime)
	assert.Greater(t, p.BirthMass, p.DeathMass)
	assert.Equal(t, uint8(255), p.BirthColor.A)
	assert.Equal(t, uint8(0), p.DeathColor.A)
}
