package systems

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func randomPositions(n int, seed int64, span float64) []r2.Vec {
	rng := rand.New(rand.NewSource(seed))
	out := make([]r2.Vec, n)
	for i := range out {
		out[i] = r2.Vec{X: (rng.Float64()*2 - 1) * span, Y: (rng.Float64()*2 - 1) * span}
	}
	return out
}

func sorted(xs []int) []int {
	out := append([]int(nil), xs...)
	sort.Ints(out)
	return out
}

func TestHashCoordsInRange(t *testing.T) {
	coords := []int64{0, 1, -1, 7, -13, 1 << 20, -(1 << 20), math.MaxInt32, math.MinInt32, math.MaxInt64, math.MinInt64}
	for _, size := range []int{1, 2, 17, 2000} {
		for _, x := range coords {
			for _, y := range coords {
				b := hashCoords(x, y, size)
				assert.GreaterOrEqual(t, b, 0)
				assert.Less(t, b, size)
			}
		}
	}
}

func TestHashCoordsDeterministic(t *testing.T) {
	assert.Equal(t, hashCoords(3, -4, 97), hashCoords(3, -4, 97))
	// (0, 0) always lands in bucket 0.
	assert.Equal(t, 0, hashCoords(0, 0, 97))
}

func TestCellCoordFloorsNegatives(t *testing.T) {
	assert.Equal(t, int64(0), cellCoord(0, 8))
	assert.Equal(t, int64(0), cellCoord(7.99, 8))
	assert.Equal(t, int64(1), cellCoord(8, 8))
	assert.Equal(t, int64(-1), cellCoord(-0.01, 8))
	assert.Equal(t, int64(-1), cellCoord(-8, 8))
	assert.Equal(t, int64(-2), cellCoord(-8.01, 8))
}

func TestSpatialHashBucketsEveryIndexOnce(t *testing.T) {
	log, _ := captureLog()
	positions := randomPositions(300, 11, 200)
	h := NewSpatialHash(8, 300, log)
	h.Fill(positions)

	seen := make([]int, len(positions))
	for b := 0; b < h.TableSize(); b++ {
		for _, i := range h.Bucket(b) {
			seen[i]++
			assert.Equal(t, b, h.BucketOf(positions[i]), "index %d in wrong bucket", i)
		}
	}
	for i, n := range seen {
		assert.Equal(t, 1, n, "index %d bucketed %d times", i, n)
	}
}

func TestSpatialHashRefillIsDeterministic(t *testing.T) {
	log, _ := captureLog()
	positions := randomPositions(150, 5, 100)
	h := NewSpatialHash(8, 150, log)

	h.Fill(positions)
	first := append([]int(nil), h.dense[:h.filled]...)
	starts := append([]int(nil), h.cellStart...)

	h.Clear()
	h.Fill(positions)
	assert.Equal(t, first, h.dense[:h.filled])
	assert.Equal(t, starts, h.cellStart)
}

func TestSpatialHashFillWithoutClearWarns(t *testing.T) {
	log, buf := captureLog()
	positions := randomPositions(20, 1, 50)
	h := NewSpatialHash(8, 20, log)

	h.Fill(positions)
	h.Fill(positions)
	assert.Contains(t, buf.String(), "without clear")

	total := 0
	for b := 0; b < h.TableSize(); b++ {
		total += len(h.Bucket(b))
	}
	assert.Equal(t, len(positions), total, "a dirty refill must not double count")
}

func TestSpatialHashFillTooManyPositions(t *testing.T) {
	log, buf := captureLog()
	h := NewSpatialHash(8, 4, log)
	h.Fill(randomPositions(5, 1, 10))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Equal(t, 0, h.QueryRange(-100, 100, -100, 100))
}

func TestSpatialHashQueryInvertedRange(t *testing.T) {
	log, buf := captureLog()
	h := NewSpatialHash(8, 10, log)
	h.Fill([]r2.Vec{{X: 1, Y: 1}})

	assert.Equal(t, 0, h.QueryRange(10, 0, 0, 10))
	assert.Empty(t, h.Results())
	assert.Equal(t, 0, h.QueryRange(0, 10, 10, 0))
	assert.Empty(t, h.Results())
	assert.Equal(t, 2, countLines(buf, "level=WARN"))
}

func TestSpatialHashQueryEmpty(t *testing.T) {
	log, _ := captureLog()
	h := NewSpatialHash(8, 10, log)
	assert.Equal(t, 0, h.QueryPoint(r2.Vec{}, 16))
	assert.Empty(t, h.Results())
}

func TestSpatialHashQueryRepeatable(t *testing.T) {
	log, _ := captureLog()
	positions := randomPositions(200, 3, 100)
	h := NewSpatialHash(8, 200, log)
	h.Fill(positions)

	n := h.QueryRange(-20, 20, -10, 30)
	first := append([]int(nil), h.Results()...)
	require.Equal(t, n, len(first))

	h.QueryPoint(r2.Vec{X: 80, Y: 80}, 8)
	h.QueryRange(-20, 20, -10, 30)
	assert.Equal(t, first, h.Results())
}

// Every particle inside the query square must be reported; extras are allowed.
func TestSpatialHashQueryIsSuperset(t *testing.T) {
	log, _ := captureLog()
	positions := randomPositions(400, 17, 120)
	h := NewSpatialHash(8, 400, log)
	h.Fill(positions)

	centres := []r2.Vec{{}, {X: 50, Y: -30}, {X: -119, Y: 119}, {X: 33.3, Y: 7.7}}
	for _, c := range centres {
		for _, rng := range []float64{0, 4, 8, 25} {
			h.QueryPoint(c, rng)
			found := map[int]bool{}
			for _, i := range h.Results() {
				assert.False(t, found[i], "index %d reported twice", i)
				found[i] = true
			}
			for i, p := range positions {
				if math.Abs(p.X-c.X) <= rng && math.Abs(p.Y-c.Y) <= rng {
					assert.True(t, found[i], "index %d at %v missing from query at %v±%v", i, p, c, rng)
				}
			}
		}
	}
}

func TestSpatialHashQueryAliasedBucketsReportedOnce(t *testing.T) {
	log, _ := captureLog()
	// Two buckets for many cells: nearly every cell aliases.
	h := NewSpatialHash(1, 2, log)
	positions := []r2.Vec{{X: 0.5, Y: 0.5}}
	h.Fill(positions)

	n := h.QueryRange(0, 0.9, 0, 0.9)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int{0}, h.Results())

	// Large boxes take the whole-table path.
	n = h.QueryRange(-50, 50, -50, 50)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int{0}, sorted(h.Results()))
}

func TestSpatialHashClear(t *testing.T) {
	log, _ := captureLog()
	h := NewSpatialHash(8, 10, log)
	h.Fill(randomPositions(10, 2, 30))
	h.QueryRange(-30, 30, -30, 30)

	h.Clear()
	assert.Empty(t, h.Results())
	for b := 0; b < h.TableSize(); b++ {
		assert.Empty(t, h.Bucket(b))
	}
	assert.Equal(t, 0, h.QueryRange(-30, 30, -30, 30))
}
