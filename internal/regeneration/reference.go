package regeneration

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"voiceregen/internal/services"
)

// Reference reasons reported in logs.
const (
	ReasonLargeEnough = "original_large_enough"
	ReasonRandom      = "random_sibling"
	ReasonLargest     = "largest_in_directory"
	ReasonFallback    = "original_fallback"
)

// Reference is the clip chosen to clone the voice from.
type Reference struct {
	Path     string
	Size     int64
	Original bool
	Reason   string
}

// ReferenceSelector chooses reference clips by size. Short clips clone
// poorly, so small originals are swapped for a larger line from the same
// speaker directory.
type ReferenceSelector struct {
	thresholdBytes int64
	minBytes       int64
	rng            *rand.Rand
}

// NewReferenceSelector returns a selector using the given KB thresholds. A
// zero seed seeds the sibling pick from the clock.
func NewReferenceSelector(thresholdKB, minKB int64, seed uint64) *ReferenceSelector {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &ReferenceSelector{
		thresholdBytes: thresholdKB * 1024,
		minBytes:       minKB * 1024,
		rng:            rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

type wavFile struct {
	path string
	size int64
}

// Select picks the reference for the WAV at original:
//   - the original itself when it is at least the threshold size;
//   - otherwise a uniformly random sibling WAV of at least the minimum size;
//   - otherwise the largest WAV in the directory;
//   - otherwise the original.
//
// A missing original with no sibling WAVs is services.ErrNotFound.
func (s *ReferenceSelector) Select(original string) (Reference, error) {
	origSize := int64(-1)
	if info, err := os.Stat(original); err == nil && info.Mode().IsRegular() {
		origSize = info.Size()
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Reference{}, fmt.Errorf("stat reference: %w", err)
	}
	if origSize >= s.thresholdBytes {
		return Reference{Path: original, Size: origSize, Original: true, Reason: ReasonLargeEnough}, nil
	}

	siblings, err := listWavs(filepath.Dir(original), filepath.Base(original))
	if err != nil {
		return Reference{}, err
	}

	var candidates []wavFile
	for _, w := range siblings {
		if w.size >= s.minBytes {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) > 0 {
		pick := candidates[s.rng.IntN(len(candidates))]
		return Reference{Path: pick.path, Size: pick.size, Reason: ReasonRandom}, nil
	}

	var largest *wavFile
	for i := range siblings {
		if largest == nil || siblings[i].size > largest.size {
			largest = &siblings[i]
		}
	}
	switch {
	case largest != nil && largest.size > origSize:
		return Reference{Path: largest.path, Size: largest.size, Reason: ReasonLargest}, nil
	case origSize >= 0:
		return Reference{Path: original, Size: origSize, Original: true, Reason: ReasonFallback}, nil
	default:
		return Reference{}, services.Wrap(services.ErrNotFound, "regenerate", "select reference",
			fmt.Sprintf("No reference audio for %s; rerun the select stage", filepath.Base(original)), nil)
	}
}

func listWavs(dir, exclude string) ([]wavFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list reference directory: %w", err)
	}
	var out []wavFile
	for _, entry := range entries {
		name := entry.Name()
		if name == exclude || !strings.HasSuffix(name, ".wav") || !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, wavFile{path: filepath.Join(dir, name), size: info.Size()})
	}
	return out, nil
}
