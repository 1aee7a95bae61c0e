package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/bluewater/physics"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete cloud state for replay.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	GridWidth  int `json:"grid_width"`
	GridHeight int `json:"grid_height"`
	GridDepth  int `json:"grid_depth"`

	Step uint64 `json:"step"`

	Particles []ParticleState `json:"particles"`
}

// ParticleState holds one particle's state.
type ParticleState struct {
	Position [3]float32 `json:"p"`
	Delta    [3]float32 `json:"d"`
}

// NewSnapshot captures the cloud's current state.
func NewSnapshot(cloud *physics.Cloud, seed int64) *Snapshot {
	size := cloud.GridSize()
	particles := cloud.Particles()

	s := &Snapshot{
		Version:    SnapshotVersion,
		RNGSeed:    seed,
		GridWidth:  size.X,
		GridHeight: size.Y,
		GridDepth:  size.Z,
		Step:       cloud.Steps(),
		Particles:  make([]ParticleState, len(particles)),
	}
	for i, p := range particles {
		s.Particles[i] = ParticleState{Position: p.Position, Delta: p.Delta}
	}
	return s
}

// GridSize returns the grid extent the snapshot was taken from.
func (s *Snapshot) GridSize() physics.Size {
	return physics.Size{X: s.GridWidth, Y: s.GridHeight, Z: s.GridDepth}
}

// Generator replays the captured particles into a new cloud.
func (s *Snapshot) Generator() physics.Generator {
	particles := make([]physics.Particle, len(s.Particles))
	for i, p := range s.Particles {
		particles[i] = physics.Particle{
			Position: mgl32.Vec3(p.Position),
			Delta:    mgl32.Vec3(p.Delta),
		}
	}
	return physics.SliceGenerator(particles)
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", snapshot.Step))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snapshot.Version)
	}
	return &snapshot, nil
}
