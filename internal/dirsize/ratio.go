package dirsize

import (
	"fmt"
	"maps"
	"slices"
)

// Ratios maps a lowercased extension (with leading dot) to an estimated
// compression ratio in (0, 1]. Extensions not in the table map to 1.
type Ratios map[string]float64

// DefaultRatios returns the built-in compression estimates.
// Formats that are already compressed are not listed and map to 1.
func DefaultRatios() Ratios {
	return Ratios{
		".txt":  0.5,
		".log":  0.2,
		".csv":  0.3,
		".tsv":  0.3,
		".json": 0.25,
		".xml":  0.25,
		".yaml": 0.35,
		".yml":  0.35,
		".html": 0.3,
		".htm":  0.3,
		".css":  0.3,
		".js":   0.35,
		".md":   0.45,
		".svg":  0.4,
		".sql":  0.3,
		".go":   0.35,
		".py":   0.35,
		".c":    0.35,
		".h":    0.35,
		".java": 0.35,
		".bmp":  0.6,
		".tif":  0.7,
		".tiff": 0.7,
		".wav":  0.8,
		".tar":  0.6,
		".iso":  0.9,
		".doc":  0.6,
		".xls":  0.6,
		".db":   0.6,
	}
}

// Ratio returns the compression estimate for ext. Unknown extensions map to 1.
func (r Ratios) Ratio(ext string) float64 {
	if ratio, ok := r[normalizeExt(ext)]; ok {
		return ratio
	}

	return 1
}

// Merge returns a copy of r with the entries of other applied on top.
// Keys of other are normalized.
func (r Ratios) Merge(other map[string]float64) Ratios {
	merged := maps.Clone(r)
	if merged == nil {
		merged = make(Ratios, len(other))
	}

	for ext, ratio := range other {
		merged[normalizeExt(ext)] = ratio
	}

	return merged
}

// Validate checks that every ratio lies in (0, 1].
func (r Ratios) Validate() error {
	for _, ext := range slices.Sorted(maps.Keys(r)) {
		if ratio := r[ext]; ratio <= 0 || ratio > 1 {
			return fmt.Errorf("ratio for %q must be in (0, 1], got %v", ext, ratio)
		}
	}

	return nil
}

// adjustedSize applies ratio to size, truncating toward zero.
func adjustedSize(size int64, ratio float64) int64 {
	return int64(float64(size) * ratio)
}
