package normalize

import (
	"sort"
	"strconv"
	"withings-mcp/internal/models"
	"withings-mcp/internal/units"

	json "github.com/goccy/go-json"
)

// DailyThreshold is the number of distinct hours above which intraday heart
// rate is aggregated per day instead of per hour.
const DailyThreshold = 24

type HourBucket struct {
	Hour    string `json:"hour"`
	Avg     int    `json:"avg"`
	Min     int    `json:"min"`
	Max     int    `json:"max"`
	Samples int    `json:"samples"`
}

type DayBucket struct {
	Date string `json:"date"`
	Avg  int    `json:"avg"`
	Min  int    `json:"min"`
	Max  int    `json:"max"`
}

// HeartRate carries either Hourly or Daily buckets, never both.
type HeartRate struct {
	MinHR        int
	MaxHR        int
	AvgHR        int
	TotalSamples int
	Hourly       []HourBucket
	Daily        []DayBucket
}

func (h HeartRate) IsDaily() bool {
	return h.Daily != nil
}

func (h HeartRate) MarshalJSON() ([]byte, error) {
	type stats struct {
		MinHR        int `json:"min_hr"`
		MaxHR        int `json:"max_hr"`
		AvgHR        int `json:"avg_hr"`
		TotalSamples int `json:"total_samples"`
	}
	s := stats{h.MinHR, h.MaxHR, h.AvgHR, h.TotalSamples}
	if h.IsDaily() {
		return json.Marshal(struct {
			stats
			Daily []DayBucket `json:"daily"`
		}{s, h.Daily})
	}
	hourly := h.Hourly
	if hourly == nil {
		hourly = []HourBucket{}
	}
	return json.Marshal(struct {
		stats
		Hourly []HourBucket `json:"hourly"`
	}{s, hourly})
}

type bucket struct {
	sum, lo, hi, n int
}

func (b *bucket) add(v int) {
	if b.n == 0 || v < b.lo {
		b.lo = v
	}
	if b.n == 0 || v > b.hi {
		b.hi = v
	}
	b.sum += v
	b.n++
}

func (b *bucket) avg() int {
	return units.RoundInt(float64(b.sum) / float64(b.n))
}

// HeartRateSeries aggregates intraday samples. Samples without a heart_rate
// value are ignored.
func HeartRateSeries(body models.HeartRateBody) HeartRate {
	type slot struct {
		date string
		hour string
	}

	overall := bucket{}
	slots := make(map[slot]struct{})
	hours := make(map[string]*bucket)
	days := make(map[string]*bucket)

	for key, sample := range body.Samples() {
		ts, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		raw, ok := sample.Float("heart_rate")
		if !ok {
			continue
		}
		bpm := units.RoundInt(raw)
		t := localTime(ts)
		s := slot{date: t.Format("2006-01-02"), hour: t.Format("15") + ":00"}

		overall.add(bpm)
		slots[s] = struct{}{}
		if hours[s.hour] == nil {
			hours[s.hour] = &bucket{}
		}
		hours[s.hour].add(bpm)
		if days[s.date] == nil {
			days[s.date] = &bucket{}
		}
		days[s.date].add(bpm)
	}

	if overall.n == 0 {
		return HeartRate{Hourly: []HourBucket{}}
	}

	hr := HeartRate{
		MinHR:        overall.lo,
		MaxHR:        overall.hi,
		AvgHR:        overall.avg(),
		TotalSamples: overall.n,
	}

	if len(slots) > DailyThreshold {
		hr.Daily = make([]DayBucket, 0, len(days))
		for date, b := range days {
			hr.Daily = append(hr.Daily, DayBucket{Date: date, Avg: b.avg(), Min: b.lo, Max: b.hi})
		}
		sort.Slice(hr.Daily, func(i, j int) bool { return hr.Daily[i].Date < hr.Daily[j].Date })
		return hr
	}

	hr.Hourly = make([]HourBucket, 0, len(hours))
	for hour, b := range hours {
		hr.Hourly = append(hr.Hourly, HourBucket{Hour: hour, Avg: b.avg(), Min: b.lo, Max: b.hi, Samples: b.n})
	}
	sort.Slice(hr.Hourly, func(i, j int) bool { return hr.Hourly[i].Hour < hr.Hourly[j].Hour })
	return hr
}
