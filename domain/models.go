// Package domain defines the core domain models for the FMU web service.
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ArtifactRole identifies the lifecycle role of a stored artifact.
type ArtifactRole string

const (
	// RolePrimary is the uploaded model package (the FMU).
	RolePrimary ArtifactRole = "primary"
	// RoleAuxiliary is an optional bulk input file (CSV).
	RoleAuxiliary ArtifactRole = "auxiliary"
	// RoleResult is a generated simulation output.
	RoleResult ArtifactRole = "result"
)

// Artifact is an immutable named blob addressed by an opaque token.
// Writers never mutate Data in place; replacing an artifact issues a
// fresh token.
type Artifact struct {
	Token string       `json:"token"`
	Name  string       `json:"name"`
	Role  ArtifactRole `json:"role"`
	Data  []byte       `json:"-"`
}

// Number is a float64 that also accepts string-typed numeric JSON input
// ("1.5" and 1.5 decode identically). Non-numeric strings are rejected.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*n = Number(v)
		return nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return InvalidInputf("non-numeric value %q", v)
		}
		*n = Number(f)
		return nil
	default:
		return InvalidInputf("expected number, got %T", raw)
	}
}

// Sample is one (time, value) point of an input schedule.
type Sample struct {
	Time  float64
	Value float64
}

// UnmarshalJSON decodes a sample from its wire form, a two-element array
// [t, v] where both entries may be numbers or numeric strings.
func (s *Sample) UnmarshalJSON(data []byte) error {
	var pair []Number
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return InvalidInputf("sample must be a [time, value] pair, got %d element(s)", len(pair))
	}
	s.Time = float64(pair[0])
	s.Value = float64(pair[1])
	return nil
}

// MarshalJSON encodes a sample back to its [t, v] wire form.
func (s Sample) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{s.Time, s.Value})
}

// NamedSchedule is a sparse, independently-timed input schedule for a
// single signal. Samples are not required to arrive sorted or deduplicated.
type NamedSchedule struct {
	Name    string
	Samples []Sample
}

// UnmarshalJSON decodes a schedule from its wire form,
// ["signal", [[t, v], ...]].
func (ns *NamedSchedule) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 2 {
		return InvalidInputf("input schedule must be a [name, samples] pair, got %d element(s)", len(parts))
	}
	if err := json.Unmarshal(parts[0], &ns.Name); err != nil {
		return InvalidInputf("input schedule name must be a string")
	}
	return json.Unmarshal(parts[1], &ns.Samples)
}

// MarshalJSON encodes a schedule back to ["signal", [[t, v], ...]].
func (ns NamedSchedule) MarshalJSON() ([]byte, error) {
	samples := ns.Samples
	if samples == nil {
		samples = []Sample{}
	}
	return json.Marshal([2]any{ns.Name, samples})
}

// SampleTable is a time-aligned table produced by merging schedules.
// Times is strictly increasing; every column has exactly one value per
// entry in Times. Immutable once built.
type SampleTable struct {
	Times   []float64
	Columns map[string][]float64
}

// Signals returns the signal names present in the table.
func (t *SampleTable) Signals() []string {
	names := make([]string, 0, len(t.Columns))
	for name := range t.Columns {
		names = append(names, name)
	}
	return names
}

// RunConfig carries one simulation request. Solver and numerical options
// are forwarded opaquely to the engine; nil pointer fields are omitted.
type RunConfig struct {
	FMU               *string         `json:"fmu"`
	FMIType           *string         `json:"fmi_type"`
	StartTime         *Number         `json:"start_time,omitempty"`
	StopTime          *Number         `json:"stop_time,omitempty"`
	OutputInterval    *Number         `json:"output_interval,omitempty"`
	StepSize          *Number         `json:"step_size,omitempty"`
	Solver            *string         `json:"solver,omitempty"`
	RelativeTolerance *Number         `json:"relative_tolerance,omitempty"`
	RecordEvents      *bool           `json:"record_events,omitempty"`
	StartValues       map[string]any  `json:"start_values,omitempty"`
	Inputs            []NamedSchedule `json:"inputs,omitempty"`
	InputFile         *string         `json:"input_file,omitempty"`
	Outputs           []string        `json:"outputs,omitempty"`
	Validate          *bool           `json:"validate,omitempty"`
	Timeout           *Number         `json:"timeout,omitempty"`
	DebugLogging      *bool           `json:"debug_logging,omitempty"`
	Visible           *bool           `json:"visible,omitempty"`
	SetStopTime       *bool           `json:"set_stop_time,omitempty"`
	OutputCSV         *string         `json:"output_csv,omitempty"`
	RemotePlatform    *string         `json:"remote_platform,omitempty"`
}

// ResultTable is the tabular output returned by the simulation engine.
type ResultTable struct {
	Columns []string             `json:"columns"`
	Rows    []map[string]float64 `json:"rows"`
}

// RunSummary is returned to the client after a successful run: a preview
// of the result table plus the token of the stored CSV artifact.
type RunSummary struct {
	Columns   []string             `json:"columns"`
	Rows      []map[string]float64 `json:"rows"`
	CSVToken  string               `json:"csv"`
	Logs      []string             `json:"logs"`
	TotalRows int                  `json:"total_rows"`
}

// ClearReport lists what a session clear removed and any per-item
// deletion failures. Failures never abort the remaining deletions.
type ClearReport struct {
	Removed []string `json:"removed"`
	Errors  []string `json:"errors"`
}

func (r ClearReport) String() string {
	return fmt.Sprintf("removed %d file(s), %d error(s)", len(r.Removed), len(r.Errors))
}
