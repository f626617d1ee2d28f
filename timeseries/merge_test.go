package timeseries_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/fmuweb/domain"
	"github.com/xiaot623/fmuweb/timeseries"
)

func sched(name string, pairs ...[2]float64) domain.NamedSchedule {
	ns := domain.NamedSchedule{Name: name}
	for _, p := range pairs {
		ns.Samples = append(ns.Samples, domain.Sample{Time: p[0], Value: p[1]})
	}
	return ns
}

func TestMergeEmpty(t *testing.T) {
	table, err := timeseries.Merge(nil)
	assert.NoError(t, err)
	assert.Nil(t, table)

	table, err = timeseries.Merge([]domain.NamedSchedule{})
	assert.NoError(t, err)
	assert.Nil(t, table)

	// Schedules present but none carries a sample.
	table, err = timeseries.Merge([]domain.NamedSchedule{sched("a"), sched("b")})
	assert.NoError(t, err)
	assert.Nil(t, table)
}

func TestMergeZeroOrderHold(t *testing.T) {
	table, err := timeseries.Merge([]domain.NamedSchedule{
		sched("u1", [2]float64{0, 1}, [2]float64{2, 5}),
		sched("u2", [2]float64{1, 9}),
	})
	require.NoError(t, err)
	require.NotNil(t, table)

	assert.Equal(t, []float64{0, 1, 2}, table.Times)
	// u1 holds 1 until its next sample at t=2.
	assert.Equal(t, []float64{1, 1, 5}, table.Columns["u1"])
	// u2's first value extends backward to t=0, then holds forward.
	assert.Equal(t, []float64{9, 9, 9}, table.Columns["u2"])
}

func TestMergeBackwardHoldIsFirstValueNotZero(t *testing.T) {
	table, err := timeseries.Merge([]domain.NamedSchedule{
		sched("early", [2]float64{0, 3}),
		sched("late", [2]float64{5, 7}),
	})
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 5}, table.Times)
	assert.Equal(t, []float64{7, 7}, table.Columns["late"])
}

func TestMergeEmptySignalYieldsZeros(t *testing.T) {
	table, err := timeseries.Merge([]domain.NamedSchedule{
		sched("active", [2]float64{0, 3}, [2]float64{4, 6}),
		sched("silent"),
	})
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 4}, table.Times)
	assert.Equal(t, []float64{0, 0}, table.Columns["silent"])
	assert.Equal(t, []float64{3, 6}, table.Columns["active"])
}

func TestMergeUnsortedInput(t *testing.T) {
	table, err := timeseries.Merge([]domain.NamedSchedule{
		sched("u", [2]float64{2, 20}, [2]float64{0, 1}, [2]float64{1, 10}),
	})
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 1, 2}, table.Times)
	assert.Equal(t, []float64{1, 10, 20}, table.Columns["u"])
}

func TestMergeDuplicateTimestampLastWins(t *testing.T) {
	// Two samples at t=1 in one schedule: the later occurrence in the
	// (stable-sorted) input wins.
	table, err := timeseries.Merge([]domain.NamedSchedule{
		sched("u", [2]float64{0, 1}, [2]float64{1, 5}, [2]float64{1, 8}, [2]float64{2, 2}),
	})
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 1, 2}, table.Times)
	assert.Equal(t, []float64{1, 8, 2}, table.Columns["u"])
}

func TestMergeTimestampTolerance(t *testing.T) {
	table, err := timeseries.Merge([]domain.NamedSchedule{
		sched("a", [2]float64{1, 1}),
		sched("b", [2]float64{1 + 1e-16, 2}),
	})
	require.NoError(t, err)

	// Within 1e-15 the two timestamps collapse to one axis point.
	assert.Len(t, table.Times, 1)
	assert.Equal(t, []float64{1}, table.Columns["a"])
	assert.Equal(t, []float64{2}, table.Columns["b"])
}

func TestMergeCommutative(t *testing.T) {
	a := sched("a", [2]float64{0, 1}, [2]float64{3, 4})
	b := sched("b", [2]float64{1, 9})
	c := sched("c")

	orders := [][]domain.NamedSchedule{
		{a, b, c},
		{c, b, a},
		{b, c, a},
	}

	first, err := timeseries.Merge(orders[0])
	require.NoError(t, err)
	for _, order := range orders[1:] {
		got, err := timeseries.Merge(order)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestMergeDuplicateSignalRejected(t *testing.T) {
	_, err := timeseries.Merge([]domain.NamedSchedule{
		sched("u", [2]float64{0, 1}),
		sched("u", [2]float64{1, 2}),
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
}

func TestScheduleDecodeCoercesStrings(t *testing.T) {
	var schedules []domain.NamedSchedule
	err := json.Unmarshal([]byte(`[["u", [["0", "1.5"], [2, 3]]]]`), &schedules)
	require.NoError(t, err)

	table, err := timeseries.Merge(schedules)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2}, table.Times)
	assert.Equal(t, []float64{1.5, 3}, table.Columns["u"])
}

func TestScheduleDecodeRejectsNonNumeric(t *testing.T) {
	var schedules []domain.NamedSchedule
	err := json.Unmarshal([]byte(`[["u", [["zero", 1]]]]`), &schedules)
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
}
