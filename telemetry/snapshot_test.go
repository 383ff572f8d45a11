package telemetry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:  SnapshotVersion,
		RNGSeed:  42,
		Tick:     1000,
		Boundary: [4]float64{0, 0, 800, 450},
		Radius:   4,
		Capacity: 2000,
		Forces: []ForceState{
			{Kind: "gravity", Position: [2]float64{400, 225}, Strength: 9.8},
			{Kind: "point", Position: [2]float64{100, 100}, Strength: -400},
		},
		Particles: []ParticleState{
			{X: 150, Y: 250, VelX: 0.5, VelY: -0.3, Mass: 7.5, Lifespan: 2, Lifetime: 10, Color: [4]uint8{230, 41, 55, 255}},
			{X: 160, Y: 250, Mass: 1, Lifetime: 5},
		},
		Bookmark: &Bookmark{
			Type:        BookmarkCollisionSpike,
			Tick:        1000,
			Description: "Test bookmark",
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.RNGSeed != snapshot.RNGSeed {
		t.Errorf("RNGSeed mismatch: got %d, want %d", loaded.RNGSeed, snapshot.RNGSeed)
	}
	if loaded.Tick != snapshot.Tick {
		t.Errorf("Tick mismatch: got %d, want %d", loaded.Tick, snapshot.Tick)
	}
	if loaded.Boundary != snapshot.Boundary {
		t.Errorf("Boundary mismatch: got %v, want %v", loaded.Boundary, snapshot.Boundary)
	}
	if len(loaded.Particles) != 2 {
		t.Fatalf("Particles count mismatch: got %d, want 2", len(loaded.Particles))
	}
	if loaded.Particles[0] != snapshot.Particles[0] {
		t.Errorf("Particle mismatch: got %+v, want %+v", loaded.Particles[0], snapshot.Particles[0])
	}
	if len(loaded.Forces) != 2 || loaded.Forces[1].Strength != -400 {
		t.Errorf("Forces mismatch: got %+v", loaded.Forces)
	}
	if loaded.Bookmark == nil {
		t.Error("Bookmark not loaded")
	} else if loaded.Bookmark.Type != snapshot.Bookmark.Type {
		t.Errorf("Bookmark type mismatch: got %s, want %s", loaded.Bookmark.Type, snapshot.Bookmark.Type)
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version: SnapshotVersion,
		Tick:    5000,
		Bookmark: &Bookmark{
			Type: BookmarkPopulationCrash,
			Tick: 5000,
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected := filepath.Join(tmpDir, "snapshot_5000_population_crash.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}

	path, err = SaveSnapshot(&Snapshot{Version: SnapshotVersion, Tick: 3000}, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected = filepath.Join(tmpDir, "snapshot_3000.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}
}

func TestLoadSnapshotRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected error for unknown version")
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
