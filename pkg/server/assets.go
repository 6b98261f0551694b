package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"assetcat/pkg/catalog"
	"assetcat/pkg/models"

	"github.com/labstack/echo/v4"
)

// listAssets handles GET /assets.
func (cs *CatalogServer) listAssets(ctx echo.Context) error {
	filter, err := queryFilter(ctx)
	if err != nil {
		return respondError(ctx, err, "failed to query assets", nil)
	}

	records, err := cs.store.GetFiles(filter)
	if err != nil {
		return respondError(ctx, err, "failed to query assets", nil)
	}
	if records == nil {
		records = []models.AssetRecord{}
	}

	return ctx.JSON(http.StatusOK, records)
}

func (cs *CatalogServer) lookup(ctx echo.Context) (*models.AssetRecord, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid file_id %q", catalog.ErrValidation, ctx.Param("id"))
	}
	return cs.store.GetFile(id)
}

// getAsset handles GET /assets/:id.
func (cs *CatalogServer) getAsset(ctx echo.Context) error {
	record, err := cs.lookup(ctx)
	if err != nil {
		return respondError(ctx, err, "failed to get asset", nil)
	}
	return ctx.JSON(http.StatusOK, record)
}

// downloadAsset handles GET /assets/:id/download.
func (cs *CatalogServer) downloadAsset(ctx echo.Context) error {
	record, err := cs.lookup(ctx)
	if err != nil {
		return respondError(ctx, err, "failed to download asset", nil)
	}

	filePath := cs.store.AssetPath(record)
	if _, err := os.Stat(filePath); err != nil {
		return respondError(ctx, fmt.Errorf("%w: %w", catalog.ErrConsistency, err), "asset file is missing from storage", nil)
	}

	cs.logger.Info().Int64("file_id", record.ID).Str("path", filePath).Msg("Serving asset download")
	return ctx.Attachment(filePath, record.Name)
}

type insertRequest struct {
	Source   string         `json:"source"`
	Metadata map[string]any `json:"metadata"`
}

// insertAsset handles POST /assets. The source path is read on the server host
// and must resolve below the ingest directory.
func (cs *CatalogServer) insertAsset(ctx echo.Context) error {
	var req insertRequest
	if err := ctx.Bind(&req); err != nil {
		return respondError(ctx, fmt.Errorf("%w: %w", catalog.ErrValidation, err), "failed to insert asset", nil)
	}
	if req.Source == "" {
		return respondError(ctx, fmt.Errorf("%w: source is required", catalog.ErrValidation), "failed to insert asset", nil)
	}

	source, err := cs.confineSource(req.Source)
	if err != nil {
		cs.logger.Warn().Err(err).Str("source", req.Source).Str("remote_ip", ctx.RealIP()).Msg("Rejected ingest source")
		return respondError(ctx, err, "failed to insert asset", nil)
	}

	md, err := catalog.MetadataFromMap(req.Metadata)
	if err != nil {
		return respondError(ctx, err, "failed to insert asset", nil)
	}

	if md.Name == "" {
		md.Name = filepath.Base(req.Source)
	}

	record, err := cs.store.InsertFile(source, md)
	if err != nil {
		return respondError(ctx, err, "failed to insert asset", nil)
	}

	return ctx.JSON(http.StatusCreated, record)
}

// updateAssets handles PATCH /assets with a change document body.
func (cs *CatalogServer) updateAssets(ctx echo.Context) error {
	filter, err := mutationFilter(ctx)
	if err != nil {
		return respondError(ctx, err, "failed to update assets", nil)
	}

	body, err := readBody(ctx)
	if err != nil {
		return respondError(ctx, err, "failed to update assets", nil)
	}

	changes, err := catalog.ParseChanges(body)
	if err != nil {
		return respondError(ctx, err, "failed to update assets", nil)
	}

	updated, err := cs.store.UpdateFiles(filter, changes)
	if err != nil {
		return respondError(ctx, err, "failed to update assets", map[string]any{"updated": updated})
	}

	return ctx.JSON(http.StatusOK, map[string]int{"updated": updated})
}

// retireAssets handles POST /assets/retire.
func (cs *CatalogServer) retireAssets(ctx echo.Context) error {
	filter, err := mutationFilter(ctx)
	if err != nil {
		return respondError(ctx, err, "failed to retire assets", nil)
	}

	retired, err := cs.store.RetireFiles(filter)
	if err != nil {
		return respondError(ctx, err, "failed to retire assets", map[string]any{"retired": retired})
	}

	return ctx.JSON(http.StatusOK, map[string]int{"retired": retired})
}
