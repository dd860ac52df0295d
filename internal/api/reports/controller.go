package reports

import (
	"context"
	"errors"
	"net/http"

	"github.com/hbomb79/smartmedia/internal/api/prices"
	"github.com/hbomb79/smartmedia/internal/cost"
	"github.com/hbomb79/smartmedia/internal/metadata"
	"github.com/labstack/echo/v4"
)

type (
	Service interface {
		DefaultRegion() string
		Report(ctx context.Context, region string) (*cost.Summary, error)
		EstimateFile(ctx context.Context, region string, contentHash string) (*cost.FileEstimate, error)
	}

	Controller struct {
		service Service
	}
)

func New(service Service) *Controller {
	return &Controller{service: service}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.GET("/", controller.summary)
	eg.GET("/files/:hash/", controller.file)
}

// summary returns the cost summary of all extracted media. The region
// may be overridden using the 'region' query parameter.
func (controller *Controller) summary(ec echo.Context) error {
	region := controller.region(ec)
	summary, err := controller.service.Report(ec.Request().Context(), region)
	if err != nil {
		return prices.PricingError(region, err)
	}

	return ec.JSON(http.StatusOK, summary)
}

func (controller *Controller) file(ec echo.Context) error {
	region := controller.region(ec)
	estimate, err := controller.service.EstimateFile(ec.Request().Context(), region, ec.Param("hash"))
	if err != nil {
		if errors.Is(err, metadata.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "No metadata has been extracted for this content")
		}

		return prices.PricingError(region, err)
	}

	return ec.JSON(http.StatusOK, estimate)
}

func (controller *Controller) region(ec echo.Context) string {
	if region := ec.QueryParam("region"); region != "" {
		return region
	}

	return controller.service.DefaultRegion()
}
