package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPoolSaturated   BookmarkType = "pool_saturated"
	BookmarkCollisionSpike  BookmarkType = "collision_spike"
	BookmarkPopulationCrash BookmarkType = "population_crash"
	BookmarkSteadyState     BookmarkType = "steady_state"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `json:"type" csv:"type"`
	Tick        int32        `json:"tick" csv:"tick"`
	Description string       `json:"description" csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector watches successive stats windows for notable moments.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	saturated    bool // previous window was saturated
	recentPeak   int  // peak active count since the last crash
	steadyWindow int  // consecutive windows with a stable population
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkPoolSaturated(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkCollisionSpike(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkPopulationCrash(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)

	if b := bd.checkSteadyState(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if stats.Active > bd.recentPeak {
		bd.recentPeak = stats.Active
	}
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n of the most recent windows, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	count := bd.historyIdx
	if bd.historyFull {
		count = bd.historySize
	}
	n = min(n, count)
	out := make([]WindowStats, n)
	for i := range n {
		idx := (bd.historyIdx - n + i + bd.historySize) % bd.historySize
		out[i] = bd.history[idx]
	}
	return out
}

// checkPoolSaturated fires on the first window in which emits were refused.
func (bd *BookmarkDetector) checkPoolSaturated(stats WindowStats) *Bookmark {
	was := bd.saturated
	bd.saturated = stats.Rejected > 0
	if !bd.saturated || was {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkPoolSaturated,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Pool full at %d/%d, %d emits refused", stats.Active, stats.Capacity, stats.Rejected),
	}
}

// checkCollisionSpike fires when constraints per tick exceed twice the
// rolling average.
func (bd *BookmarkDetector) checkCollisionSpike(stats WindowStats) *Bookmark {
	history := bd.recent(bd.historySize)
	if len(history) < 3 {
		return nil
	}

	rates := make([]float64, len(history))
	for i, h := range history {
		rates[i] = h.ConstraintsPerTick
	}
	avg := stat.Mean(rates, nil)
	if avg <= 0 {
		return nil
	}

	if stats.ConstraintsPerTick > avg*2 && stats.ConstraintsPerTick >= 10 {
		return &Bookmark{
			Type:        BookmarkCollisionSpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Constraints per tick %.1f is %.1fx average (%.1f)", stats.ConstraintsPerTick, stats.ConstraintsPerTick/avg, avg),
		}
	}
	return nil
}

// checkPopulationCrash fires when the active count drops more than 30% from
// its recent peak.
func (bd *BookmarkDetector) checkPopulationCrash(stats WindowStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}

	drop := 1 - float64(stats.Active)/float64(bd.recentPeak)
	if drop > 0.30 && stats.Active < bd.recentPeak-10 {
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.Active
		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population fell %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Active),
		}
	}
	return nil
}

// checkSteadyState fires once after five consecutive windows whose last four
// active counts vary by less than 20%.
func (bd *BookmarkDetector) checkSteadyState(stats WindowStats) *Bookmark {
	if stats.Active < 10 {
		bd.steadyWindow = 0
		return nil
	}

	history := bd.recent(4)
	if len(history) < 4 {
		return nil
	}

	counts := make([]float64, len(history))
	for i, h := range history {
		counts[i] = float64(h.Active)
	}
	mean, variance := stat.MeanVariance(counts, nil)

	// CV^2 < 0.04 means CV < 0.2
	if mean > 0 && variance/(mean*mean) < 0.04 {
		bd.steadyWindow++
	} else {
		bd.steadyWindow = 0
	}

	if bd.steadyWindow == 5 {
		return &Bookmark{
			Type:        BookmarkSteadyState,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population steady near %.0f over 5+ windows", mean),
		}
	}
	return nil
}
