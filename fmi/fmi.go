// Package fmi defines the contracts of the two external collaborators
// (the model metadata provider and the simulation engine) and the
// configuration-template logic built on top of the model metadata.
package fmi

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xiaot623/fmuweb/domain"
)

// Causality values declared by model variables.
const (
	CausalityParameter   = "parameter"
	CausalityInput       = "input"
	CausalityOutput      = "output"
	CausalityIndependent = "independent"
)

// Variable is one declared model variable.
type Variable struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Causality   string `json:"causality"`
	Variability string `json:"variability,omitempty"`
	Start       any    `json:"start"`
	Description string `json:"description,omitempty"`
}

// Experiment carries the model's declared default experiment.
type Experiment struct {
	StartTime *float64 `json:"start_time,omitempty"`
	StopTime  *float64 `json:"stop_time,omitempty"`
	Tolerance *float64 `json:"tolerance,omitempty"`
}

// ModelDescription is the metadata extracted from a model package.
type ModelDescription struct {
	FMIVersion            string      `json:"fmi_version"`
	ModelName             string      `json:"model_name"`
	Description           string      `json:"description"`
	GenerationTool        string      `json:"generation_tool"`
	GenerationDateAndTime string      `json:"generation_date_and_time"`
	CoSimulation          bool        `json:"co_simulation"`
	ModelExchange         bool        `json:"model_exchange"`
	DefaultExperiment     *Experiment `json:"default_experiment,omitempty"`
	Variables             []Variable  `json:"variables"`
	SupportedPlatforms    []string    `json:"supported_platforms"`
}

// Inspector extracts metadata from a model package on disk. The actual
// parsing is performed by an external collaborator.
type Inspector interface {
	Inspect(ctx context.Context, modelPath string) (*ModelDescription, error)
	// Validate returns non-fatal findings about the model package.
	Validate(ctx context.Context, modelPath string) ([]string, error)
}

// LogSink receives diagnostic log lines emitted during a simulation.
type LogSink func(line string)

// SimulateRequest is the input to one engine invocation. Options are
// forwarded opaquely; exactly one of Input and InputFilePath may be set.
type SimulateRequest struct {
	ModelPath     string
	Options       domain.RunConfig
	Input         *domain.SampleTable
	InputFilePath string
}

// Engine runs a simulation. The call blocks until the engine finishes;
// the only timeout is the one forwarded inside the options.
type Engine interface {
	// Platform reports the platform the engine executes models on.
	Platform(ctx context.Context) (string, error)
	Simulate(ctx context.Context, req SimulateRequest, sink LogSink) (*domain.ResultTable, error)
}

// CanSimulate checks the model's declared platforms against the host
// platform. An empty declaration is treated as unknown-but-allowed (the
// engine gets the final say). When the check fails, the returned lines
// describe the mismatch for the diagnostic log.
func CanSimulate(supported []string, host string) (bool, []string) {
	if len(supported) == 0 {
		return true, nil
	}
	for _, p := range supported {
		if p == host {
			return true, nil
		}
	}
	return false, []string{
		fmt.Sprintf("FMU platforms: %s", strings.Join(supported, ", ")),
		fmt.Sprintf("Host platform: %s", host),
	}
}

// startFloat coerces a declared start value to float64. Model metadata
// frequently carries starts as strings.
func startFloat(start any) (float64, bool) {
	switch v := start.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
