// Package service composes the artifact store, the time-series merger,
// and the external simulation engine into the run workflow.
package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xiaot623/fmuweb/domain"
	"github.com/xiaot623/fmuweb/fmi"
	"github.com/xiaot623/fmuweb/store"
	"github.com/xiaot623/fmuweb/store/runlog"
	"github.com/xiaot623/fmuweb/timeseries"
)

// Runner orchestrates one simulation run: it resolves the active
// artifacts, builds the input table, invokes the engine, and stores the
// produced result as a new artifact.
type Runner struct {
	store     store.ArtifactStore
	engine    fmi.Engine
	inspector fmi.Inspector
	history   *runlog.Log // optional
}

// NewRunner wires a Runner. history may be nil to disable run recording.
func NewRunner(s store.ArtifactStore, engine fmi.Engine, inspector fmi.Inspector, history *runlog.Log) *Runner {
	return &Runner{store: s, engine: engine, inspector: inspector, history: history}
}

// Run executes one simulation per the given config and returns the
// result preview plus the token of the stored result CSV. On any failure
// no result artifact is written and the error carries the diagnostic log
// accumulated so far. Failed runs are never retried here; the caller
// must resubmit.
func (r *Runner) Run(ctx context.Context, cfg domain.RunConfig) (*domain.RunSummary, error) {
	started := time.Now()
	runID := "run_" + uuid.New().String()[:8]

	primary, err := r.store.Primary()
	if err != nil {
		return nil, domain.NotFoundf("FMU not found. Upload first.")
	}

	summary, err := r.execute(ctx, runID, primary, cfg)
	r.record(ctx, runID, primary.Name, started, err)
	return summary, err
}

func (r *Runner) execute(ctx context.Context, runID string, primary *domain.Artifact, cfg domain.RunConfig) (*domain.RunSummary, error) {
	var logs []string
	sink := func(line string) { logs = append(logs, line) }

	// Engine input is either the pre-uploaded bulk file or the merged
	// schedule table, never both. An auxiliary token must resolve before
	// the engine is invoked.
	var aux *domain.Artifact
	var table *domain.SampleTable
	if cfg.InputFile != nil && *cfg.InputFile != "" {
		var err error
		aux, err = r.store.Get(*cfg.InputFile)
		if err != nil {
			return nil, domain.NotFoundf("Input file not found. Upload again.")
		}
	} else {
		var err error
		table, err = timeseries.Merge(cfg.Inputs)
		if err != nil {
			return nil, err
		}
	}

	// The engine works on files: materialize the session artifacts into
	// a temp dir that lives exactly as long as the call.
	tmpDir, err := os.MkdirTemp("", "fmuweb-run-")
	if err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	modelPath := filepath.Join(tmpDir, filepath.Base(primary.Name))
	if err := os.WriteFile(modelPath, primary.Data, 0o644); err != nil {
		return nil, fmt.Errorf("write model file: %w", err)
	}

	inputPath := ""
	if aux != nil {
		inputPath = filepath.Join(tmpDir, filepath.Base(aux.Name))
		if err := os.WriteFile(inputPath, aux.Data, 0o644); err != nil {
			return nil, fmt.Errorf("write input file: %w", err)
		}
	}

	if cfg.Validate == nil || *cfg.Validate {
		problems, err := r.inspector.Validate(ctx, modelPath)
		if err != nil {
			logrus.WithError(err).Warn("model validation unavailable")
		}
		logs = append(logs, problems...)
	}

	// Pre-flight: fail with an explicit error instead of letting the
	// engine die opaquely on a platform mismatch.
	md, err := r.inspector.Inspect(ctx, modelPath)
	if err != nil {
		return nil, domain.EngineFailure(fmt.Errorf("failed to read model description: %w", err), logs)
	}
	host, err := r.engine.Platform(ctx)
	if err != nil {
		return nil, domain.EngineFailure(fmt.Errorf("failed to determine engine platform: %w", err), logs)
	}
	if ok, platformLogs := fmi.CanSimulate(md.SupportedPlatforms, host); !ok {
		logs = append(logs, platformLogs...)
		return nil, domain.PlatformUnsupportedf(logs,
			"FMU does not support the current platform (%s).", host)
	}

	result, err := r.engine.Simulate(ctx, fmi.SimulateRequest{
		ModelPath:     modelPath,
		Options:       cfg,
		Input:         table,
		InputFilePath: inputPath,
	}, sink)
	if err != nil {
		return nil, domain.EngineFailure(err, logs)
	}

	csvBytes, err := encodeCSV(result)
	if err != nil {
		return nil, domain.EngineFailure(fmt.Errorf("failed to encode result: %w", err), logs)
	}
	csvName := fmt.Sprintf("result_%s.csv", time.Now().Format("20060102_150405"))
	token, err := r.store.PutResult(csvName, csvBytes)
	if err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"run":  runID,
		"rows": len(result.Rows),
	}).Info("simulation finished")

	return &domain.RunSummary{
		Columns:   result.Columns,
		Rows:      result.Rows,
		CSVToken:  token,
		Logs:      logs,
		TotalRows: len(result.Rows),
	}, nil
}

// record appends the run to the history log, best-effort.
func (r *Runner) record(ctx context.Context, runID, modelName string, started time.Time, runErr error) {
	if r.history == nil {
		return
	}
	entry := runlog.Entry{
		RunID:      runID,
		ModelName:  modelName,
		Status:     "ok",
		DurationMS: time.Since(started).Milliseconds(),
		StartedAt:  started,
	}
	if runErr != nil {
		entry.Status = "failed"
		entry.Error = runErr.Error()
	}
	if err := r.history.Record(ctx, entry); err != nil {
		logrus.WithError(err).Warn("failed to record run history")
	}
}

// encodeCSV renders the result table with columns in engine order.
func encodeCSV(result *domain.ResultTable) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(result.Columns); err != nil {
		return nil, err
	}
	row := make([]string, len(result.Columns))
	for _, values := range result.Rows {
		for i, col := range result.Columns {
			row[i] = strconv.FormatFloat(values[col], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
