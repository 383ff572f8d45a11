package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_PoolSaturated(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if hasBookmark(bd.Check(WindowStats{Active: 50, Capacity: 100}), BookmarkPoolSaturated) {
		t.Fatal("no rejects should not be saturated")
	}

	full := WindowStats{WindowEndTick: 600, Active: 100, Capacity: 100, Rejected: 12}
	if !hasBookmark(bd.Check(full), BookmarkPoolSaturated) {
		t.Error("expected pool_saturated bookmark")
	}

	// Still saturated: no repeat until the pool drains.
	if hasBookmark(bd.Check(full), BookmarkPoolSaturated) {
		t.Error("pool_saturated should fire once per saturation")
	}
	bd.Check(WindowStats{Active: 80, Capacity: 100})
	if !hasBookmark(bd.Check(full), BookmarkPoolSaturated) {
		t.Error("expected pool_saturated again after draining")
	}
}

func TestBookmarkDetector_CollisionSpike(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 600), Active: 100, ConstraintsPerTick: 20})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 3000, Active: 100, ConstraintsPerTick: 80})
	if !hasBookmark(bookmarks, BookmarkCollisionSpike) {
		t.Error("expected collision_spike bookmark")
	}
}

func TestBookmarkDetector_CollisionSpikeNeedsHistory(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(WindowStats{ConstraintsPerTick: 20})

	if hasBookmark(bd.Check(WindowStats{ConstraintsPerTick: 200}), BookmarkCollisionSpike) {
		t.Error("collision_spike should need at least three windows of history")
	}
}

func TestBookmarkDetector_PopulationCrash(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 3; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 600), Active: 100})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 1800, Active: 50})
	if !hasBookmark(bookmarks, BookmarkPopulationCrash) {
		t.Error("expected population_crash bookmark")
	}

	// The peak resets after a crash.
	if hasBookmark(bd.Check(WindowStats{WindowEndTick: 2400, Active: 45}), BookmarkPopulationCrash) {
		t.Error("population_crash should not repeat against the old peak")
	}
}

func TestBookmarkDetector_SmallDropIgnored(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(WindowStats{Active: 20})

	// 40% drop but fewer than 10 particles.
	if hasBookmark(bd.Check(WindowStats{Active: 12}), BookmarkPopulationCrash) {
		t.Error("small absolute drop should not be a crash")
	}
}

func TestBookmarkDetector_SteadyState(t *testing.T) {
	bd := NewBookmarkDetector(10)

	fired := 0
	for i := 0; i < 12; i++ {
		bookmarks := bd.Check(WindowStats{WindowEndTick: int32(i * 600), Active: 200 + i%3})
		if hasBookmark(bookmarks, BookmarkSteadyState) {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("steady_state fired %d times, want 1", fired)
	}
}

func TestBookmarkDetector_NoSteadyStateWhenSparse(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 12; i++ {
		if hasBookmark(bd.Check(WindowStats{Active: 5}), BookmarkSteadyState) {
			t.Fatal("steady_state should need at least 10 particles")
		}
	}
}

func TestBookmarkDetector_RecentOrder(t *testing.T) {
	bd := NewBookmarkDetector(5)
	for i := 1; i <= 7; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i)})
	}
	got := bd.recent(3)
	if len(got) != 3 || got[0].WindowEndTick != 5 || got[2].WindowEndTick != 7 {
		t.Errorf("recent(3) = %v, want ticks 5..7", got)
	}
}
