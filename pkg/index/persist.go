package index

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/orneryd/newsvec/pkg/article"
)

// indexFormatVersion is written into saved index artifacts. A file with a
// different version is not loaded; the caller rebuilds.
const indexFormatVersion = 1

const (
	kindFlat = "flat"
	kindIVF  = "ivf"
)

// indexSnapshot is the serializable form of either index structure.
// IVF lists are stored as per-position assignments and rebuilt on load.
type indexSnapshot struct {
	FormatVersion int         `msgpack:"format_version"`
	Kind          string      `msgpack:"kind"`
	Dimensions    int         `msgpack:"dimensions"`
	Vectors       [][]float32 `msgpack:"vectors"`
	Centroids     [][]float32 `msgpack:"centroids,omitempty"`
	Assignments   []int32     `msgpack:"assignments,omitempty"`
}

// Store persists an index and its positional article id array as two
// co-located artifacts: a msgpack index snapshot and a JSON array of
// hex-encoded ids.
type Store struct {
	// IndexPath is the index snapshot artifact.
	IndexPath string
	// IDsPath is the id array artifact.
	IDsPath string
}

// Save writes both artifacts. Each is written to a temporary path first and
// committed by rename, ids last. A crash between the two renames leaves a
// fresh index next to a stale id array; Load rejects that pair as absent.
func (s *Store) Save(idx Index, ids []primitive.ObjectID) error {
	if idx.Len() != len(ids) {
		return fmt.Errorf("index has %d vectors but id array has %d entries", idx.Len(), len(ids))
	}
	snap, err := snapshotOf(idx)
	if err != nil {
		return err
	}

	indexBytes, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode index snapshot: %w", err)
	}
	idsBytes, err := json.Marshal(article.IDsToHex(ids))
	if err != nil {
		return fmt.Errorf("encode id array: %w", err)
	}

	if err := commitFile(s.IndexPath, indexBytes); err != nil {
		return fmt.Errorf("write index artifact: %w", err)
	}
	if err := commitFile(s.IDsPath, idsBytes); err != nil {
		return fmt.Errorf("write id array artifact: %w", err)
	}
	return nil
}

// Load reads both artifacts back. It returns (nil, nil, nil), absent rather
// than an error, when either artifact is missing, the format version is
// unknown, the id array is unreadable, or the pair's lengths disagree. Corrupt
// state is never trusted; the caller rebuilds. Errors are reserved for real
// I/O faults.
func (s *Store) Load() (Index, []primitive.ObjectID, error) {
	indexBytes, err := os.ReadFile(s.IndexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read index artifact: %w", err)
	}
	idsBytes, err := os.ReadFile(s.IDsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read id array artifact: %w", err)
	}

	var snap indexSnapshot
	if err := msgpack.Unmarshal(indexBytes, &snap); err != nil {
		log.Printf("[index] discarding undecodable index artifact %s: %v", s.IndexPath, err)
		return nil, nil, nil
	}
	if snap.FormatVersion != indexFormatVersion {
		log.Printf("[index] discarding index artifact %s: format version %d, want %d",
			s.IndexPath, snap.FormatVersion, indexFormatVersion)
		return nil, nil, nil
	}

	var hexIDs []string
	if err := json.Unmarshal(idsBytes, &hexIDs); err != nil {
		log.Printf("[index] discarding undecodable id array %s: %v", s.IDsPath, err)
		return nil, nil, nil
	}
	ids, err := article.IDsFromHex(hexIDs)
	if err != nil {
		log.Printf("[index] discarding id array %s with malformed id: %v", s.IDsPath, err)
		return nil, nil, nil
	}

	idx, err := indexFromSnapshot(&snap)
	if err != nil {
		log.Printf("[index] discarding inconsistent index artifact %s: %v", s.IndexPath, err)
		return nil, nil, nil
	}
	if idx.Len() != len(ids) {
		log.Printf("[index] artifact mismatch: index has %d vectors, id array has %d; rebuilding",
			idx.Len(), len(ids))
		return nil, nil, nil
	}
	return idx, ids, nil
}

func snapshotOf(idx Index) (*indexSnapshot, error) {
	switch v := idx.(type) {
	case *Flat:
		return &indexSnapshot{
			FormatVersion: indexFormatVersion,
			Kind:          kindFlat,
			Dimensions:    v.dim,
			Vectors:       v.vectors,
		}, nil
	case *IVFFlat:
		assignments := make([]int32, len(v.vectors))
		for c, list := range v.lists {
			for _, pos := range list {
				assignments[pos] = int32(c)
			}
		}
		return &indexSnapshot{
			FormatVersion: indexFormatVersion,
			Kind:          kindIVF,
			Dimensions:    v.dim,
			Vectors:       v.vectors,
			Centroids:     v.centroids,
			Assignments:   assignments,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported index type %T", idx)
	}
}

func indexFromSnapshot(snap *indexSnapshot) (Index, error) {
	if snap.Dimensions <= 0 || len(snap.Vectors) == 0 {
		return nil, fmt.Errorf("empty snapshot")
	}
	for i, vec := range snap.Vectors {
		if len(vec) != snap.Dimensions {
			return nil, fmt.Errorf("vector %d has %d dimensions, want %d", i, len(vec), snap.Dimensions)
		}
	}
	switch snap.Kind {
	case kindFlat:
		return newFlat(snap.Dimensions, snap.Vectors), nil
	case kindIVF:
		if len(snap.Centroids) == 0 || len(snap.Assignments) != len(snap.Vectors) {
			return nil, fmt.Errorf("ivf snapshot missing centroids or assignments")
		}
		lists := make([][]int32, len(snap.Centroids))
		for pos, c := range snap.Assignments {
			if c < 0 || int(c) >= len(snap.Centroids) {
				return nil, fmt.Errorf("assignment %d references centroid %d of %d", pos, c, len(snap.Centroids))
			}
			lists[c] = append(lists[c], int32(pos))
		}
		return &IVFFlat{
			dim:       snap.Dimensions,
			nlist:     len(snap.Centroids),
			nprobe:    nprobeFor(len(snap.Centroids)),
			vectors:   snap.Vectors,
			centroids: snap.Centroids,
			lists:     lists,
		}, nil
	default:
		return nil, fmt.Errorf("unknown index kind %q", snap.Kind)
	}
}

// commitFile writes data to a temporary file in path's directory, syncs it,
// and renames it into place.
func commitFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
