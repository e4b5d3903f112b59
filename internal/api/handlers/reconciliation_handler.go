package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"reconciliation-service/internal/api/responses"
	"reconciliation-service/internal/config"
	"reconciliation-service/internal/core/recon"
	"reconciliation-service/internal/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReconciliationHandler handles the API requests for trial balance
// reconciliation.
type ReconciliationHandler struct {
	service  recon.Service
	defaults *config.Config
}

// NewReconciliationHandler creates a new reconciliation handler.
func NewReconciliationHandler(service recon.Service, defaults *config.Config) *ReconciliationHandler {
	return &ReconciliationHandler{
		service:  service,
		defaults: defaults,
	}
}

// paramsFromForm assembles reconciliation params from the multipart form,
// applying the configured defaults for threshold and start row.
func (h *ReconciliationHandler) paramsFromForm(c *gin.Context) (recon.Params, error) {
	p := recon.Params{
		ToUpdateSheet:  strings.TrimSpace(c.PostForm("toUpdateSheet")),
		ReferenceSheet: strings.TrimSpace(c.PostForm("referenceSheet")),
		ToUpdateColumns: recon.ColumnSet{
			Name:        columnFromForm(c, "toUpdateNameColumn", "A"),
			CurrentYear: columnFromForm(c, "toUpdateCurrentYearColumn", "B"),
			PriorYear:   columnFromForm(c, "toUpdatePriorYearColumn", "C"),
		},
		ReferenceColumns: recon.ColumnSet{
			Name:        columnFromForm(c, "referenceNameColumn", "A"),
			CurrentYear: columnFromForm(c, "referenceCurrentYearColumn", "B"),
			PriorYear:   columnFromForm(c, "referencePriorYearColumn", "C"),
		},
		Threshold: h.defaults.FuzzyThreshold,
		StartRow:  h.defaults.StartRow,
	}

	if v := strings.TrimSpace(c.PostForm("threshold")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("threshold must be an integer, got %q", v)
		}
		p.Threshold = n
	}
	if v := strings.TrimSpace(c.PostForm("startRow")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("startRow must be an integer, got %q", v)
		}
		p.StartRow = n
	}
	return p, nil
}

func columnFromForm(c *gin.Context, key, fallback string) string {
	v := strings.ToUpper(strings.TrimSpace(c.PostForm(key)))
	if v == "" {
		return fallback
	}
	return v
}

// HandlePlan reconciles the two sheets and returns the plan as JSON without
// modifying the workbook.
func (h *ReconciliationHandler) HandlePlan(c *gin.Context) {
	workbook, cleanup, ok := openWorkbookUpload(c, ".xlsx", ".xls")
	if !ok {
		return
	}
	defer cleanup()

	params, err := h.paramsFromForm(c)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.service.Plan(workbook, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	responses.Success(c, report, fmt.Sprintf(
		"Matched %d of %d accounts, %d new accounts found",
		report.MatchCount, report.ToUpdateCount, len(report.Plan.Inserts)))
}

// HandleApply reconciles the two sheets, applies the plan to the to-update
// sheet and returns the updated workbook as an attachment.
func (h *ReconciliationHandler) HandleApply(c *gin.Context) {
	workbook, cleanup, ok := openWorkbookUpload(c, ".xlsx")
	if !ok {
		return
	}
	defer cleanup()

	params, err := h.paramsFromForm(c)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	report, updated, err := h.service.Apply(workbook, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	responses.Logger().Info("reconciliation applied",
		zap.String("to_update_sheet", report.ToUpdateSheet),
		zap.String("reference_sheet", report.ReferenceSheet),
		zap.Int("updates", report.Apply.UpdatesApplied),
		zap.Int("inserts", report.Apply.InsertsApplied),
		zap.Bool("verified", report.Apply.Verification.Verified))

	fileName := fmt.Sprintf("Reconciled_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, xlsxContentType, updated)
}

// HandleInspect previews the sheets of an uploaded workbook with suggested
// column roles.
func (h *ReconciliationHandler) HandleInspect(c *gin.Context) {
	workbook, cleanup, ok := openWorkbookUpload(c, ".xlsx", ".xls")
	if !ok {
		return
	}
	defer cleanup()

	maxColumns := h.defaults.MaxColumnsToCheck
	if v := strings.TrimSpace(c.PostForm("maxColumns")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			responses.Error(c, http.StatusBadRequest, fmt.Sprintf("maxColumns must be an integer, got %q", v))
			return
		}
		maxColumns = n
	}

	structure, err := h.service.Inspect(workbook, maxColumns)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	responses.Success(c, structure, fmt.Sprintf("Inspected %d sheets", len(structure.Sheets)))
}

// openWorkbookUpload validates and opens the multipart workbook upload.
// On failure it writes the error response and returns ok=false.
func openWorkbookUpload(c *gin.Context, allowedExts ...string) (multipart.File, func(), bool) {
	fileHeader, err := c.FormFile("workbookFile")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Workbook file (.xls, .xlsx) not found or invalid")
		return nil, nil, false
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	allowed := false
	for _, a := range allowedExts {
		if ext == a {
			allowed = true
			break
		}
	}
	if !allowed {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf(
			"Unsupported workbook extension %s (expected %s)", ext, strings.Join(allowedExts, ", ")))
		return nil, nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Could not open the uploaded workbook")
		return nil, nil, false
	}
	return file, func() { file.Close() }, true
}

// respondServiceError maps engine errors onto HTTP statuses: configuration
// and extraction problems are the caller's to fix, anything else is ours.
func respondServiceError(c *gin.Context, err error) {
	var confErr *domain.ConfigurationError
	var extErr *domain.ExtractionError
	switch {
	case errors.As(err, &confErr):
		responses.Error(c, http.StatusBadRequest, "Invalid reconciliation configuration", err.Error())
	case errors.As(err, &extErr):
		responses.Error(c, http.StatusUnprocessableEntity, "Nothing to reconcile", err.Error())
	default:
		responses.Error(c, http.StatusInternalServerError, "Failed to process the workbook", err.Error())
	}
}
