package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthInfo is the GET /healthz response.
type HealthInfo struct {
	Status  string      `json:"status"`
	Version string      `json:"version"`
	Assets  int64       `json:"assets"`
	NextID  int64       `json:"next_id"`
	Storage StorageInfo `json:"storage"`
}

// StorageInfo represents disk usage of the storage root.
type StorageInfo struct {
	Total          uint64 `json:"total"`
	Used           uint64 `json:"used"`
	Available      uint64 `json:"available"`
	AvailableHuman string `json:"available_human"`
}

// getHealth handles GET /healthz.
func (cs *CatalogServer) getHealth(ctx echo.Context) error {
	count, err := cs.store.Count()
	if err != nil {
		cs.logger.Error().Err(err).Msg("Health check failed")
		return ctx.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  "catalog database is not readable",
		})
	}

	nextID, err := cs.store.NextID()
	if err != nil {
		cs.logger.Error().Err(err).Msg("Health check failed")
		return ctx.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  "catalog database is not readable",
		})
	}

	storage, err := getStorageInfo(cs.store.Root())
	if err != nil {
		cs.logger.Warn().Err(err).Str("root_dir", cs.store.Root()).Msg("Failed to stat storage root")
	}

	return ctx.JSON(http.StatusOK, HealthInfo{
		Status:  "ok",
		Version: cs.version,
		Assets:  count,
		NextID:  nextID,
		Storage: storage,
	})
}
