// Package timeseries builds time-aligned input tables from sparse,
// independently-timed signal schedules.
package timeseries

import (
	"sort"

	"github.com/xiaot623/fmuweb/domain"
)

// timeEqualTol is the absolute tolerance under which two timestamps are
// treated as the same point on the merged axis.
const timeEqualTol = 1e-15

// Merge converts a set of named schedules into one sample table whose
// time axis is the sorted union of all distinct timestamps, filling every
// signal by zero-order hold.
//
// Rules:
//   - nil table (no error) when there are no schedules or none has samples;
//   - each schedule is stable-sorted by time, so for duplicate timestamps
//     within one schedule the last occurrence wins;
//   - a union timestamp before a signal's first sample holds that signal's
//     first value (extended backward, never zero);
//   - a signal with no samples at all is filled with zeros;
//   - duplicate signal names are rejected.
//
// The result is deterministic and independent of schedule ordering.
func Merge(schedules []domain.NamedSchedule) (*domain.SampleTable, error) {
	if len(schedules) == 0 {
		return nil, nil
	}

	sorted := make(map[string][]domain.Sample, len(schedules))
	var allTimes []float64
	for _, sched := range schedules {
		if _, dup := sorted[sched.Name]; dup {
			return nil, domain.InvalidInputf("duplicate input signal %q", sched.Name)
		}
		samples := make([]domain.Sample, len(sched.Samples))
		copy(samples, sched.Samples)
		sort.SliceStable(samples, func(i, j int) bool {
			return samples[i].Time < samples[j].Time
		})
		sorted[sched.Name] = samples
		for _, s := range samples {
			allTimes = append(allTimes, s.Time)
		}
	}

	if len(allTimes) == 0 {
		return nil, nil
	}

	times := unionTimes(allTimes)

	table := &domain.SampleTable{
		Times:   times,
		Columns: make(map[string][]float64, len(sorted)),
	}
	for name, samples := range sorted {
		table.Columns[name] = holdColumn(times, samples)
	}
	return table, nil
}

// unionTimes sorts ts and collapses entries within timeEqualTol of their
// predecessor, keeping the first representative of each cluster.
func unionTimes(ts []float64) []float64 {
	sort.Float64s(ts)
	union := ts[:1]
	for _, t := range ts[1:] {
		if t-union[len(union)-1] > timeEqualTol {
			union = append(union, t)
		}
	}
	out := make([]float64, len(union))
	copy(out, union)
	return out
}

// holdColumn fills one signal over the union axis by zero-order hold,
// advancing a cursor through the time-sorted samples. Starting the held
// value at the first sample extends it backward over any earlier union
// timestamps; the cursor passes through every sample at a tied timestamp,
// so the last duplicate wins.
func holdColumn(times []float64, samples []domain.Sample) []float64 {
	col := make([]float64, len(times))
	if len(samples) == 0 {
		return col // explicit zero fallback for an empty signal
	}

	idx := 0
	last := samples[0].Value
	for i, t := range times {
		for idx+1 < len(samples) && samples[idx+1].Time <= t+timeEqualTol {
			idx++
			last = samples[idx].Value
		}
		col[i] = last
	}
	return col
}
