package index

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// snapshotVersion guards against loading snapshots written by an
// incompatible layout.
const snapshotVersion = 1

// snapshot is the serialized form of an index. Vectors are stored at full
// float64 precision so a loaded index ranks bit-identically to the index
// that produced the snapshot.
type snapshot struct {
	Version       int      `json:"version"`
	EmotionKeys   []string `json:"emotion_keys"`
	NarrativeKeys []string `json:"narrative_keys"`
	Entries       []entry  `json:"entries"`
}

// Save writes the index snapshot. The write goes through a temp file and
// rename so readers never observe a partial snapshot.
func (idx *Index) Save(path string) error {
	data, err := json.Marshal(snapshot{
		Version:       snapshotVersion,
		EmotionKeys:   idx.emotionKeys,
		NarrativeKeys: idx.narrativeKeys,
		Entries:       idx.entries,
	})
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating snapshot directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("publishing snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot back into a ready-to-search index.
func Load(path string, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}

	idx := &Index{
		emotionKeys:   snap.EmotionKeys,
		narrativeKeys: snap.NarrativeKeys,
		entries:       snap.Entries,
		logger:        logger,
	}
	indexedCandidates.Set(float64(len(idx.entries)))
	return idx, nil
}
