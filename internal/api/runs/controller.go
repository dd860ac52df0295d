package runs

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/hbomb79/smartmedia/internal/database"
	"github.com/hbomb79/smartmedia/internal/extract"
	"github.com/hbomb79/smartmedia/pkg/logger"
	"github.com/labstack/echo/v4"
)

type (
	// ResultDto is the response returned after a run
	// of the extraction scheduler completes.
	ResultDto struct {
		RunID          uuid.UUID         `json:"run_id"`
		CandidateCount int               `json:"candidate_count"`
		SuccessCount   int               `json:"success_count"`
		FailCount      int               `json:"fail_count"`
		DuplicateCount int               `json:"duplicate_count"`
		FailedFiles    map[string]string `json:"failed_files"`
		Halted         bool              `json:"halted"`
		ElapsedSeconds float64           `json:"elapsed_seconds"`
	}

	ReconcileDto struct {
		Removed map[string]string `json:"removed"`
	}

	Service interface {
		RunExtraction(ctx context.Context) (*extract.Result, error)
		Reconcile(ctx context.Context) (*extract.ReconcileResult, error)
	}

	Controller struct {
		service Service
	}
)

var controllerLogger = logger.Get("RunsController")

func New(service Service) *Controller {
	return &Controller{service: service}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.POST("/extraction/", controller.extract)
	eg.POST("/reconciliation/", controller.reconcile)
}

// extract performs a single extraction run, blocking until the run
// is complete. If another run is in progress, a 409 is returned.
func (controller *Controller) extract(ec echo.Context) error {
	result, err := controller.service.RunExtraction(ec.Request().Context())
	if err != nil {
		return runError("extraction", err)
	}

	return ec.JSON(http.StatusOK, NewDto(result))
}

func (controller *Controller) reconcile(ec echo.Context) error {
	result, err := controller.service.Reconcile(ec.Request().Context())
	if err != nil {
		return runError("reconciliation", err)
	}

	return ec.JSON(http.StatusOK, &ReconcileDto{Removed: result.Removed})
}

func runError(label string, err error) error {
	if errors.Is(err, database.ErrLockHeld) {
		return echo.NewHTTPError(http.StatusConflict, "Another "+label+" is already in progress")
	}

	controllerLogger.Errorf("Manually triggered %s failed: %s\n", label, err)
	return echo.NewHTTPError(http.StatusInternalServerError)
}

func NewDto(result *extract.Result) *ResultDto {
	failed := result.FailedHashes
	if failed == nil {
		failed = make(map[string]string)
	}

	return &ResultDto{
		RunID:          result.RunID,
		CandidateCount: result.CandidateCount,
		SuccessCount:   result.SuccessCount,
		FailCount:      result.FailCount,
		DuplicateCount: result.DuplicateCount,
		FailedFiles:    failed,
		Halted:         result.Halted,
		ElapsedSeconds: result.Elapsed.Seconds(),
	}
}
