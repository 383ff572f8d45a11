// Package systems implements the particle simulation core: the particle pool,
// the spatial hash, the force field, the constraint solver and the particle
// system that drives them once per frame.
package systems

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Primes used to decorrelate cell coordinate bits before folding them into
// the bucket table.
const (
	hashPrimeX int64 = 92837111
	hashPrimeY int64 = 689287499
)

// SpatialHash buckets particle indices by grid cell using a counting sort.
//
// Distinct cells may share a bucket, so every query returns a superset of the
// particles near the query area and callers must re-check exact geometry.
// The bucket count is fixed at construction and the dense index array holds
// at most tableSize entries, which ties the table to the pool capacity.
type SpatialHash struct {
	spacing   float64
	tableSize int

	cellCount []int
	cellStart []int
	dense     []int
	filled    int
	clean     bool

	// Query scratch. visited marks buckets already appended during the
	// current query so an aliased bucket is not reported twice.
	results []int
	visited []uint32
	stamp   uint32

	log *slog.Logger
}

// NewSpatialHash creates a hash with the given cell size and bucket count.
func NewSpatialHash(spacing float64, tableSize int, log *slog.Logger) *SpatialHash {
	if tableSize < 1 {
		tableSize = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &SpatialHash{
		spacing:   spacing,
		tableSize: tableSize,
		cellCount: make([]int, tableSize),
		cellStart: make([]int, tableSize),
		dense:     make([]int, tableSize),
		clean:     true,
		results:   make([]int, 0, tableSize),
		visited:   make([]uint32, tableSize),
		log:       log,
	}
}

// Spacing returns the cell size.
func (h *SpatialHash) Spacing() float64 { return h.spacing }

// TableSize returns the bucket count.
func (h *SpatialHash) TableSize() int { return h.tableSize }

// Clear empties every bucket and the query buffer.
func (h *SpatialHash) Clear() {
	clear(h.cellCount)
	clear(h.cellStart)
	clear(h.dense)
	h.filled = 0
	h.results = h.results[:0]
	h.clean = true
}

// Fill buckets the indices of positions. The hash must be clean; a dirty
// hash is cleared with a warning first.
//
// Pass 1 counts particles per bucket. Pass 2 turns the counts into running
// sums, so cellStart[b] is one past the end of bucket b. Pass 3 walks the
// particles again, decrementing cellStart[b] and writing each index at the
// new value; when it finishes cellStart[b] is the start of bucket b.
func (h *SpatialHash) Fill(positions []r2.Vec) {
	if !h.clean {
		h.log.Warn("spatial hash filled without clear, clearing")
		h.Clear()
	}
	if len(positions) > len(h.dense) {
		h.log.Error("spatial hash smaller than particle count", "particles", len(positions), "table_size", h.tableSize)
		return
	}
	h.clean = false

	for _, p := range positions {
		b := h.BucketOf(p)
		if b < 0 || b >= h.tableSize {
			h.log.Error("spatial hash bucket out of range", "bucket", b, "table_size", h.tableSize)
			return
		}
		h.cellCount[b]++
	}

	sum := 0
	for b := 0; b < h.tableSize; b++ {
		sum += h.cellCount[b]
		h.cellStart[b] = sum
	}

	for i, p := range positions {
		b := h.BucketOf(p)
		h.cellStart[b]--
		h.dense[h.cellStart[b]] = i
	}
	h.filled = len(positions)
}

// BucketOf returns the bucket a world position maps to.
func (h *SpatialHash) BucketOf(p r2.Vec) int {
	return hashCoords(cellCoord(p.X, h.spacing), cellCoord(p.Y, h.spacing), h.tableSize)
}

// Bucket returns the indices stored in bucket b. The slice aliases the dense
// array and is valid until the next Clear or Fill.
func (h *SpatialHash) Bucket(b int) []int {
	if b < 0 || b >= h.tableSize {
		h.log.Error("spatial hash bucket out of range", "bucket", b, "table_size", h.tableSize)
		return nil
	}
	start := h.cellStart[b]
	return h.dense[start : start+h.cellCount[b]]
}

// QueryRange collects the indices in every bucket touched by the rectangle
// and returns how many were found. An inverted range logs a warning and
// yields no results.
func (h *SpatialHash) QueryRange(xMin, xMax, yMin, yMax float64) int {
	h.results = h.results[:0]

	if xMin > xMax {
		h.log.Warn("spatial hash query: x max is less than x min", "x_min", xMin, "x_max", xMax)
		return 0
	}
	if yMin > yMax {
		h.log.Warn("spatial hash query: y max is less than y min", "y_min", yMin, "y_max", yMax)
		return 0
	}
	if h.filled == 0 {
		return 0
	}

	x0, x1 := cellCoord(xMin, h.spacing), cellCoord(xMax, h.spacing)
	y0, y1 := cellCoord(yMin, h.spacing), cellCoord(yMax, h.spacing)

	// A box with at least as many cells as buckets touches every bucket at
	// worst, so hand back everything instead of walking the cells.
	if cells := float64(x1-x0+1) * float64(y1-y0+1); cells >= float64(h.tableSize) {
		h.results = append(h.results, h.dense[:h.filled]...)
		return len(h.results)
	}

	h.nextStamp()
	for xi := x0; xi <= x1; xi++ {
		for yi := y0; yi <= y1; yi++ {
			b := hashCoords(xi, yi, h.tableSize)
			if h.visited[b] == h.stamp {
				continue
			}
			h.visited[b] = h.stamp

			start := h.cellStart[b]
			end := start + h.cellCount[b]
			h.results = append(h.results, h.dense[start:end]...)
		}
	}
	return len(h.results)
}

// QueryPoint queries the square of half-width rng centred on p.
func (h *SpatialHash) QueryPoint(p r2.Vec, rng float64) int {
	return h.QueryRange(p.X-rng, p.X+rng, p.Y-rng, p.Y+rng)
}

// Results returns the indices found by the last query. The slice is reused
// by the next query.
func (h *SpatialHash) Results() []int { return h.results }

func (h *SpatialHash) nextStamp() {
	h.stamp++
	if h.stamp == 0 {
		clear(h.visited)
		h.stamp = 1
	}
}

// cellCoord returns the integer grid coordinate containing v.
func cellCoord(v, spacing float64) int64 {
	return int64(math.Floor(v / spacing))
}

// hashCoords folds a cell coordinate into [0, tableSize). Multiplication
// wraps in 64 bits.
func hashCoords(xi, yi int64, tableSize int) int {
	h := (xi * hashPrimeX) ^ (yi * hashPrimeY)
	if h < 0 {
		h = -h
	}
	if h < 0 { // math.MinInt64
		h = 0
	}
	return int(h % int64(tableSize))
}
