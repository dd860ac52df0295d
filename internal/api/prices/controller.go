package prices

import (
	"context"
	"errors"
	"net/http"

	"github.com/hbomb79/smartmedia/internal/cost"
	"github.com/hbomb79/smartmedia/internal/pricing"
	"github.com/hbomb79/smartmedia/pkg/logger"
	"github.com/labstack/echo/v4"
)

type (
	// LocationPricingDto is the per-minute pricing of a single service. A
	// nil price means the category is unpriced in the region.
	LocationPricingDto struct {
		Variant  pricing.Variant               `json:"variant"`
		Location string                        `json:"location"`
		Prices   map[pricing.Category]*float64 `json:"prices"`
	}

	PricingDto struct {
		Region   string                `json:"region"`
		Services []*LocationPricingDto `json:"services"`
	}

	Service interface {
		Regions() []string
		GetPricing(ctx context.Context, region string) (*cost.Pricing, error)
	}

	Controller struct {
		service Service
	}
)

var controllerLogger = logger.Get("PricingController")

func New(service Service) *Controller {
	return &Controller{service: service}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.GET("/", controller.listRegions)
	eg.GET("/:region/", controller.get)
}

func (controller *Controller) listRegions(ec echo.Context) error {
	return ec.JSON(http.StatusOK, controller.service.Regions())
}

// get fetches the live pricing of every enabled service for the region
// given in the path.
func (controller *Controller) get(ec echo.Context) error {
	region := ec.Param("region")
	prices, err := controller.service.GetPricing(ec.Request().Context(), region)
	if err != nil {
		return PricingError(region, err)
	}

	return ec.JSON(http.StatusOK, NewDto(region, prices))
}

// PricingError converts an error from the pricing catalog in to
// an HTTP error suitable for returning to the client.
func PricingError(region string, err error) error {
	switch {
	case errors.Is(err, pricing.ErrUnknownRegion):
		return echo.NewHTTPError(http.StatusNotFound, "Region "+region+" is not known")
	case errors.Is(err, pricing.ErrCatalogUnavailable), errors.Is(err, pricing.ErrMalformedCatalogEntry):
		controllerLogger.Errorf("Pricing catalog failed for region %s: %s\n", region, err)
		return echo.NewHTTPError(http.StatusBadGateway, "Pricing catalog is unavailable")
	default:
		controllerLogger.Errorf("Failed to fetch pricing for region %s: %s\n", region, err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
}

func NewDto(region string, prices *cost.Pricing) *PricingDto {
	dto := &PricingDto{Region: region, Services: make([]*LocationPricingDto, 0, 3)}
	for _, lp := range []*pricing.LocationPricing{prices.Transcode, prices.Analysis, prices.Transcription} {
		if lp == nil {
			continue
		}

		dto.Services = append(dto.Services, &LocationPricingDto{
			Variant:  lp.Variant,
			Location: lp.Location,
			Prices:   lp.Prices(),
		})
	}

	return dto
}
