package analytics

import (
	"github.com/sgrant/omnitrace/internal/event"
	"github.com/sgrant/omnitrace/internal/segment"
)

// HeatmapBin is one bin of the mental-load heatmap. Intensity is 0-1.
type HeatmapBin struct {
	Timestamp int64   `json:"timestamp"` // bin center, ms
	Intensity float64 `json:"intensity"`
}

// Category weights for heatmap intensity.
const (
	weightFocus       = 0.9 // work/study, high mental load
	weightDistraction = 0.6
	weightRest        = 0.1
	weightDefault     = 0.3
)

// GenerateHeatmap divides [startTime, endTime) into binCount equal bins and
// scores each by the category-weighted overlap of derived segments, clamped
// to [0,1], then applies one 1:2:1 smoothing pass that leaves the first and
// last bins untouched. Always returns exactly binCount bins.
func GenerateHeatmap(events []event.Event, startTime, endTime int64, binCount int) []HeatmapBin {
	segments := segment.Derive(events)
	binDuration := float64(endTime-startTime) / float64(binCount)
	bins := make([]HeatmapBin, 0, binCount)

	for i := 0; i < binCount; i++ {
		binStart := float64(startTime) + float64(i)*binDuration
		binEnd := binStart + binDuration
		binCenter := binStart + binDuration/2

		intensity := 0.0
		for _, s := range segments {
			if float64(s.StartTime) >= binEnd || float64(s.EndTime) <= binStart {
				continue
			}
			overlapStart := max(float64(s.StartTime), binStart)
			overlapEnd := min(float64(s.EndTime), binEnd)
			overlapRatio := (overlapEnd - overlapStart) / binDuration
			intensity += categoryWeight(s.Category) * overlapRatio
		}
		if intensity > 1 {
			intensity = 1
		}

		bins = append(bins, HeatmapBin{
			Timestamp: int64(binCenter),
			Intensity: intensity,
		})
	}

	return smoothBins(bins)
}

func categoryWeight(c event.Category) float64 {
	switch c {
	case event.CategoryWork, event.CategoryStudy:
		return weightFocus
	case event.CategoryDistraction:
		return weightDistraction
	case event.CategoryRest:
		return weightRest
	default:
		return weightDefault
	}
}

// smoothBins applies a single 3-point pass to avoid sudden jumps.
func smoothBins(bins []HeatmapBin) []HeatmapBin {
	if len(bins) < 3 {
		return bins
	}

	smoothed := make([]HeatmapBin, len(bins))
	for i := range bins {
		if i == 0 || i == len(bins)-1 {
			smoothed[i] = bins[i]
			continue
		}
		smoothed[i] = HeatmapBin{
			Timestamp: bins[i].Timestamp,
			Intensity: (bins[i-1].Intensity + bins[i].Intensity*2 + bins[i+1].Intensity) / 4,
		}
	}
	return smoothed
}
