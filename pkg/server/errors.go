package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"assetcat/pkg/asset"
	"assetcat/pkg/catalog"
	"assetcat/pkg/log"
	"assetcat/pkg/metrics"

	"github.com/labstack/echo/v4"
)

var (
	errFilterRequired = errors.New("at least one filter field is required")
	errIngestDisabled = errors.New("server-side ingest is disabled, set server.ingest_dir")
	errOutsideIngest  = errors.New("source is outside the ingest directory")
)

// errorStatus maps catalog errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, catalog.ErrConsistency):
		return http.StatusInternalServerError
	case errors.Is(err, catalog.ErrValidation),
		errors.Is(err, asset.ErrInvalidName),
		errors.Is(err, asset.ErrNotRegularFile),
		errors.Is(err, errFilterRequired):
		return http.StatusBadRequest
	case errors.Is(err, errIngestDisabled), errors.Is(err, errOutsideIngest):
		return http.StatusForbidden
	case errors.Is(err, asset.ErrNotFound), errors.Is(err, catalog.ErrAssetNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrSchemaConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error body. Server side failures are logged and
// reported with the generic message.
func respondError(ctx echo.Context, err error, message string, extra map[string]any) error {
	status := errorStatus(err)

	body := map[string]any{"error": err.Error()}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("uri", ctx.Request().RequestURI).Msg(message)
		body["error"] = message
	}
	for key, value := range extra {
		body[key] = value
	}

	return ctx.JSON(status, body)
}

// requestMetrics counts requests by method, route and status and observes their latency.
// Routes are the registered patterns, so ids do not become label values.
func requestMetrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		err := next(ctx)

		status := ctx.Response().Status
		if err != nil {
			status = http.StatusInternalServerError
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				status = httpErr.Code
			}
		}

		method, route := ctx.Request().Method, ctx.Path()
		metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}
