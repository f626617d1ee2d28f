package fmi

import (
	"strings"

	"github.com/xiaot623/fmuweb/domain"
)

// VariableGroups splits declared variables by causality. Duplicate names
// are dropped, first occurrence kept.
type VariableGroups struct {
	Parameters  []Variable `json:"parameters"`
	Inputs      []Variable `json:"inputs"`
	Outputs     []Variable `json:"outputs"`
	Independent []Variable `json:"independent"`
}

// Provides reports which execution modes the model package supports.
type Provides struct {
	CoSimulation  bool `json:"coSimulation"`
	ModelExchange bool `json:"modelExchange"`
}

// Info is the human-oriented model summary shown by the UI.
type Info struct {
	FMIVersion            string `json:"fmiVersion"`
	ModelName             string `json:"modelName"`
	Description           string `json:"description"`
	GenerationTool        string `json:"generationTool"`
	GenerationDateAndTime string `json:"generationDateAndTime"`
	SupportedPlatforms    string `json:"supportedPlatforms"`
}

// Template is the run-configuration template derived from an uploaded
// model: a ready-to-edit RunConfig plus the metadata that produced it.
type Template struct {
	Config             domain.RunConfig `json:"config"`
	Variables          VariableGroups   `json:"variables"`
	FMIVersion         string           `json:"fmiVersion"`
	Provides           Provides         `json:"provides"`
	Platform           string           `json:"platform"`
	SupportedPlatforms []string         `json:"supported_platforms"`
	Info               Info             `json:"info"`
}

// Template generation defaults, matching the declared-experiment
// fallbacks the UI expects.
const (
	defaultStopAfter      = 10.0
	defaultTolerance      = 1e-5
	defaultOutputInterval = 0.01
	defaultTimeoutSeconds = 60
)

// GroupVariables buckets variables by causality, dropping duplicates.
func GroupVariables(vars []Variable) VariableGroups {
	groups := VariableGroups{
		Parameters:  []Variable{},
		Inputs:      []Variable{},
		Outputs:     []Variable{},
		Independent: []Variable{},
	}
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		if seen[v.Name] {
			continue
		}
		seen[v.Name] = true
		switch v.Causality {
		case CausalityParameter:
			groups.Parameters = append(groups.Parameters, v)
		case CausalityInput:
			groups.Inputs = append(groups.Inputs, v)
		case CausalityOutput:
			groups.Outputs = append(groups.Outputs, v)
		case CausalityIndependent:
			groups.Independent = append(groups.Independent, v)
		}
	}
	return groups
}

// BuildTemplate derives a run-configuration template from a model
// description and the engine's host platform. Every declared parameter
// appears in start_values under its declared name (value null when no
// start is declared); every declared input gets a seed schedule holding
// its start value from t=0.
func BuildTemplate(md *ModelDescription, hostPlatform string) *Template {
	startTime := 0.0
	stopTime := startTime + defaultStopAfter
	relTol := defaultTolerance
	if exp := md.DefaultExperiment; exp != nil {
		if exp.StartTime != nil {
			startTime = *exp.StartTime
		}
		if exp.StopTime != nil {
			stopTime = *exp.StopTime
		} else {
			stopTime = startTime + defaultStopAfter
		}
		if exp.Tolerance != nil {
			relTol = *exp.Tolerance
		}
	}

	groups := GroupVariables(md.Variables)

	startValues := make(map[string]any, len(groups.Parameters))
	for _, p := range groups.Parameters {
		startValues[p.Name] = p.Start
	}

	var inputs []domain.NamedSchedule
	for _, in := range groups.Inputs {
		sched := domain.NamedSchedule{Name: in.Name, Samples: []domain.Sample{}}
		if f, ok := startFloat(in.Start); ok && in.Start != nil {
			sched.Samples = append(sched.Samples, domain.Sample{Time: 0, Value: f})
		}
		inputs = append(inputs, sched)
	}

	outputs := make([]string, 0, len(groups.Outputs))
	for _, out := range groups.Outputs {
		outputs = append(outputs, out.Name)
	}

	var solver *string
	if md.ModelExchange {
		s := "CVode"
		solver = &s
	}

	cfg := domain.RunConfig{
		FMU:               nil, // the artifact token travels separately
		FMIType:           nil,
		StartTime:         numPtr(startTime),
		StopTime:          numPtr(stopTime),
		OutputInterval:    numPtr(defaultOutputInterval),
		Solver:            solver,
		RelativeTolerance: numPtr(relTol),
		RecordEvents:      boolPtr(true),
		StartValues:       startValues,
		Inputs:            inputs,
		Outputs:           outputs,
		Validate:          boolPtr(true),
		Timeout:           numPtr(defaultTimeoutSeconds),
		DebugLogging:      boolPtr(true),
		Visible:           boolPtr(false),
		SetStopTime:       boolPtr(true),
		OutputCSV:         strPtr("result.csv"),
	}

	return &Template{
		Config:     cfg,
		Variables:  groups,
		FMIVersion: md.FMIVersion,
		Provides: Provides{
			CoSimulation:  md.CoSimulation,
			ModelExchange: md.ModelExchange,
		},
		Platform:           hostPlatform,
		SupportedPlatforms: md.SupportedPlatforms,
		Info: Info{
			FMIVersion:            md.FMIVersion,
			ModelName:             orUnknown(md.ModelName),
			Description:           orDefault(md.Description, "No description available"),
			GenerationTool:        orUnknown(md.GenerationTool),
			GenerationDateAndTime: orUnknown(md.GenerationDateAndTime),
			SupportedPlatforms:    orDefault(strings.Join(md.SupportedPlatforms, ", "), "unknown"),
		},
	}
}

func numPtr(f float64) *domain.Number {
	n := domain.Number(f)
	return &n
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func orUnknown(s string) string { return orDefault(s, "Unknown") }

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
