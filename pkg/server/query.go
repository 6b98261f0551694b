package server

import (
	"fmt"
	"io"

	"assetcat/pkg/catalog"

	"github.com/labstack/echo/v4"
)

// queryFilter builds a catalog filter from the query string. Repeated keys use the first value.
func queryFilter(ctx echo.Context) (catalog.Filter, error) {
	params := ctx.QueryParams()
	values := make(map[string]string, len(params))
	for key := range params {
		values[key] = params.Get(key)
	}
	return catalog.ParseFilter(values)
}

// mutationFilter is queryFilter that refuses to match every row.
func mutationFilter(ctx echo.Context) (catalog.Filter, error) {
	filter, err := queryFilter(ctx)
	if err != nil {
		return catalog.Filter{}, err
	}
	if filter.Len() == 0 {
		return catalog.Filter{}, errFilterRequired
	}
	return filter, nil
}

const maxBodySize = 1 << 20

func readBody(ctx echo.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: unable to read request body: %w", catalog.ErrValidation, err)
	}
	return body, nil
}
