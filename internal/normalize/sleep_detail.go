package normalize

import (
	"sort"
	"strconv"
	"withings-mcp/internal/models"
	"withings-mcp/internal/units"
)

// MaxHRSamples bounds the heart-rate series returned with sleep details.
const MaxHRSamples = 100

type Phase struct {
	Time        string `json:"time"`
	State       string `json:"state"`
	DurationMin int    `json:"duration_min"`
}

type HRSample struct {
	Time string `json:"time"`
	BPM  int    `json:"bpm"`
}

// SleepDetailSummary is empty when there were no phases at all; the heart
// rate statistics appear only when at least one sample was recorded.
type SleepDetailSummary struct {
	TotalPhases *int `json:"total_phases,omitempty"`
	AvgHR       *int `json:"avg_hr,omitempty"`
	MinHR       *int `json:"min_hr,omitempty"`
	MaxHR       *int `json:"max_hr,omitempty"`
}

type SleepDetail struct {
	Phases    []Phase            `json:"phases"`
	HRSamples []HRSample         `json:"hr_samples"`
	Summary   SleepDetailSummary `json:"summary"`
}

func SleepState(state *int) string {
	if state == nil {
		return "unknown"
	}
	if name, ok := SleepStates[*state]; ok {
		return name
	}
	return "unknown"
}

// SleepDetails lists every phase and merges the per-phase heart-rate maps
// into one time-ordered series, evenly downsampled to MaxHRSamples.
func SleepDetails(body models.SleepDetailBody) SleepDetail {
	detail := SleepDetail{Phases: []Phase{}, HRSamples: []HRSample{}}
	if len(body.Series) == 0 {
		return detail
	}

	// Later phases win on duplicate timestamps.
	merged := make(map[int64]int)
	for _, p := range body.Series {
		detail.Phases = append(detail.Phases, Phase{
			Time:        localTime(p.StartDate).Format("15:04"),
			State:       SleepState(p.State),
			DurationMin: int((p.EndDate - p.StartDate) / 60),
		})
		for key, bpm := range p.HR {
			ts, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				continue
			}
			v, err := bpm.Float64()
			if err != nil {
				continue
			}
			merged[ts] = units.RoundInt(v)
		}
	}

	total := len(detail.Phases)
	detail.Summary.TotalPhases = &total

	if len(merged) == 0 {
		return detail
	}

	stamps := make([]int64, 0, len(merged))
	for ts := range merged {
		stamps = append(stamps, ts)
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })

	samples := make([]HRSample, 0, len(stamps))
	sum, lo, hi := 0, merged[stamps[0]], merged[stamps[0]]
	for _, ts := range stamps {
		bpm := merged[ts]
		samples = append(samples, HRSample{Time: localTime(ts).Format("15:04"), BPM: bpm})
		sum += bpm
		lo = min(lo, bpm)
		hi = max(hi, bpm)
	}

	avg := units.RoundInt(float64(sum) / float64(len(samples)))
	detail.Summary.AvgHR = &avg
	detail.Summary.MinHR = &lo
	detail.Summary.MaxHR = &hi
	detail.HRSamples = Downsample(samples, MaxHRSamples)

	return detail
}

// Downsample picks limit evenly spaced items, starting with the first.
func Downsample[T any](items []T, limit int) []T {
	n := len(items)
	if n <= limit {
		return items
	}
	step := float64(n) / float64(limit)
	out := make([]T, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, items[int(float64(i)*step)])
	}
	return out
}
