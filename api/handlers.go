// Package api exposes the HTTP surface: model upload, bulk input upload,
// run, download, and session clearing.
package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/xiaot623/fmuweb/domain"
	"github.com/xiaot623/fmuweb/fmi"
	"github.com/xiaot623/fmuweb/service"
	"github.com/xiaot623/fmuweb/store"
)

// Handler bundles the request handlers and their collaborators.
type Handler struct {
	store     store.ArtifactStore
	runner    *service.Runner
	engine    fmi.Engine
	inspector fmi.Inspector
}

// NewHandler creates a Handler.
func NewHandler(s store.ArtifactStore, runner *service.Runner, engine fmi.Engine, inspector fmi.Inspector) *Handler {
	return &Handler{store: s, runner: runner, engine: engine, inspector: inspector}
}

// RegisterRoutes registers the API routes on e.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/upload-fmu", h.UploadFMU)
	e.POST("/api/upload-input", h.UploadInput)
	e.POST("/api/run", h.Run)
	e.GET("/api/download", h.Download)
	e.POST("/api/clear-session", h.ClearSession)
}

// errorJSON maps a classified error to an HTTP response carrying the
// error kind, message, and accumulated diagnostic log.
func errorJSON(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch domain.KindOf(err) {
	case domain.KindInvalidInput, domain.KindPlatformUnsupported:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	}
	body := map[string]any{
		"ok":    false,
		"error": err.Error(),
	}
	if kind := domain.KindOf(err); kind != "" {
		body["kind"] = kind
	}
	if logs := domain.LogsOf(err); len(logs) > 0 {
		body["logs"] = logs
	}
	return c.JSON(status, body)
}

// readUpload pulls the multipart "file" part, enforcing the extension
// whitelist and rejecting empty uploads.
func readUpload(c echo.Context, ext string) (name string, data []byte, err error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, domain.InvalidInputf("No file")
	}
	if fh.Filename == "" {
		return "", nil, domain.InvalidInputf("No file selected")
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ext) {
		return "", nil, domain.InvalidInputf("Only %s files allowed", ext)
	}

	f, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err = io.ReadAll(f)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return "", nil, domain.InvalidInputf("Empty %s file", ext)
	}
	return fh.Filename, data, nil
}

// UploadFMU stores a new model package as the session primary and
// returns the run-configuration template derived from it. Uploading a
// model implicitly starts a new logical session.
func (h *Handler) UploadFMU(c echo.Context) error {
	if strings.EqualFold(c.FormValue("clearFirst"), "true") {
		report := h.store.Clear()
		logrus.Debugf("cleared previous session before upload: %s", report)
	}

	name, data, err := readUpload(c, ".fmu")
	if err != nil {
		return errorJSON(c, err)
	}

	token, err := h.store.PutPrimary(name, data)
	if err != nil {
		return errorJSON(c, err)
	}

	// The inspector works on files: give it a short-lived copy.
	tmpDir, err := os.MkdirTemp("", "fmuweb-upload-")
	if err != nil {
		return errorJSON(c, err)
	}
	defer os.RemoveAll(tmpDir)

	modelPath := filepath.Join(tmpDir, filepath.Base(name))
	if err := os.WriteFile(modelPath, data, 0o644); err != nil {
		return errorJSON(c, err)
	}

	ctx := c.Request().Context()
	md, err := h.inspector.Inspect(ctx, modelPath)
	if err != nil {
		return errorJSON(c, domain.EngineFailure(fmt.Errorf("failed to read model description: %w", err), nil))
	}
	platform, err := h.engine.Platform(ctx)
	if err != nil {
		logrus.WithError(err).Warn("engine platform unavailable")
	}
	tmpl := fmi.BuildTemplate(md, platform)

	return c.JSON(http.StatusOK, map[string]any{
		"ok":       true,
		"template": tmpl,
		"fmuPath":  token,
	})
}

// UploadInput stores a bulk tabular input file as the session auxiliary.
func (h *Handler) UploadInput(c echo.Context) error {
	name, data, err := readUpload(c, ".csv")
	if err != nil {
		return errorJSON(c, err)
	}

	token, err := h.store.PutAuxiliary(name, data)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "path": token})
}

// Run executes one simulation and returns the result preview plus the
// token of the stored result CSV.
func (h *Handler) Run(c echo.Context) error {
	var cfg domain.RunConfig
	if err := c.Bind(&cfg); err != nil {
		return errorJSON(c, domain.InvalidInputf("invalid run config: %v", err))
	}

	summary, err := h.runner.Run(c.Request().Context(), cfg)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"ok":         true,
		"columns":    summary.Columns,
		"rows":       summary.Rows,
		"csv":        summary.CSVToken,
		"logs":       summary.Logs,
		"total_rows": summary.TotalRows,
	})
}

// Download streams a stored artifact as an attachment.
func (h *Handler) Download(c echo.Context) error {
	token := c.QueryParam("path")
	if token == "" {
		return errorJSON(c, domain.NotFoundf("File not found"))
	}

	artifact, err := h.store.Get(token)
	if err != nil {
		return errorJSON(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, artifact.Name))
	return c.Blob(http.StatusOK, "text/csv", artifact.Data)
}

// ClearSession removes every artifact in the session and reports the
// outcome per item.
func (h *Handler) ClearSession(c echo.Context) error {
	report := h.store.Clear()
	return c.JSON(http.StatusOK, map[string]any{
		"ok":      true,
		"message": fmt.Sprintf("Cleared %d file(s)", len(report.Removed)),
		"removed": report.Removed,
		"errors":  report.Errors,
	})
}
