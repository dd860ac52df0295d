package api

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/hbomb79/smartmedia/internal/api/prices"
	"github.com/hbomb79/smartmedia/internal/api/reports"
	"github.com/hbomb79/smartmedia/internal/api/runs"
	"github.com/hbomb79/smartmedia/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var log = logger.Get("API")

const apiPrefix = "/api/smartmedia/v1"

type (
	RestConfig struct {
		HostAddr string `yaml:"host_address" env:"API_HOST_ADDR" env-default:"0.0.0.0:8080" validate:"hostname_port"`
	}

	controller interface {
		SetRoutes(*echo.Group)
	}

	// Service represents the union of all the controller service requirements
	Service interface {
		prices.Service
		reports.Service
		runs.Service
	}

	// The RestGateway is a thin-wrapper around the Echo HTTP router. It's sole responsibility
	// is to expose the pricing, reporting and run endpoints; all of the actual work
	// is delegated to the service provided.
	RestGateway struct {
		config            *RestConfig
		ec                *echo.Echo
		pricesController  controller
		reportsController controller
		runsController    controller
	}
)

// NewRestGateway constructs the Echo router and populates it with all the
// routes defined by the various controllers.
func NewRestGateway(config *RestConfig, service Service) *RestGateway {
	ec := echo.New()
	ec.OnAddRouteHandler = func(host string, route echo.Route, handler echo.HandlerFunc, middleware []echo.MiddlewareFunc) {
		log.Emit(logger.DEBUG, "Registered new route %s %s\n", route.Method, route.Path)
	}
	ec.HidePort = true
	ec.HideBanner = true

	gateway := &RestGateway{
		config:            config,
		ec:                ec,
		pricesController:  prices.New(service),
		reportsController: reports.New(service),
		runsController:    runs.New(service),
	}

	ec.Use(middleware.Logger())
	ec.Use(middleware.Recover())
	ec.Pre(middleware.AddTrailingSlash())

	gateway.pricesController.SetRoutes(ec.Group(apiPrefix + "/pricing"))
	gateway.reportsController.SetRoutes(ec.Group(apiPrefix + "/reports"))
	gateway.runsController.SetRoutes(ec.Group(apiPrefix + "/runs"))

	return gateway
}

// Handler exposes the underlying router, mostly for use in tests.
func (gateway *RestGateway) Handler() http.Handler { return gateway.ec }

func (gateway *RestGateway) Run(parentCtx context.Context) error {
	ctx, ctxCancel := context.WithCancelCause(parentCtx)
	wg := &sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Emit(logger.NEW, "Starting REST gateway on %s\n", gateway.config.HostAddr)
		if err := gateway.ec.Start(gateway.config.HostAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ctxCancel(err)
		}
	}()

	// Start thread to listen for context cancellation
	go func(ec *echo.Echo) {
		<-ctx.Done()
		ec.Close()
	}(gateway.ec)

	wg.Wait()

	// Return cancellation cause if any, otherwise nil as parent context
	// cancellation is not an error case we should report.
	if cause := context.Cause(ctx); cause != ctx.Err() {
		return cause
	}

	return nil
}
