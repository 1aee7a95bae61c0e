package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/bluewater/physics"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	size := physics.Size{X: 6, Y: 6, Z: 6}
	cloud, err := physics.New(size, 20, physics.LatticeGenerator(size, 2), nil, physics.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if err := cloud.Update(mgl32.Vec3{0, -9.8, 0}, 0.01, false); err != nil {
			t.Fatal(err)
		}
	}

	snapshot := NewSnapshot(cloud, 42)
	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if filepath.Base(path) != "snapshot_5.json" {
		t.Errorf("unexpected filename: %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded.RNGSeed != 42 || loaded.Step != 5 {
		t.Errorf("seed/step = %d/%d, want 42/5", loaded.RNGSeed, loaded.Step)
	}
	if loaded.GridSize() != size {
		t.Errorf("GridSize = %v, want %v", loaded.GridSize(), size)
	}

	// Restoring reproduces the particle array exactly.
	restored, err := physics.New(loaded.GridSize(), len(loaded.Particles), loaded.Generator(), nil, physics.DefaultParams())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	orig := cloud.Particles()
	for i, p := range restored.Particles() {
		if p != orig[i] {
			t.Fatalf("particle %d = %v, want %v", i, p, orig[i])
		}
	}
}

func TestLoadSnapshot_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadSnapshot(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(bad); err == nil {
		t.Error("expected error for malformed json")
	}

	future := filepath.Join(dir, "future.json")
	if err := os.WriteFile(future, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(future); err == nil {
		t.Error("expected error for unknown version")
	}
}
