package client

import (
	"context"

	"github.com/matzehuels/treewalk/pkg/errors"
	"github.com/matzehuels/treewalk/pkg/tree"
)

// Source provides trees and search paths.
type Source interface {
	FetchTree(ctx context.Context) (tree.NodeList, error)
	SearchPath(ctx context.Context, value float64) ([]tree.NodeID, error)
}

// ParseSearchValue validates user input before any request is sent. Empty
// or non-numeric input is an INVALID_INPUT error.
func ParseSearchValue(raw string) (float64, error) {
	return errors.ParseSearchValue(raw)
}

// Search validates raw and asks src for the search path.
func Search(ctx context.Context, src Source, raw string) (float64, []tree.NodeID, error) {
	value, err := ParseSearchValue(raw)
	if err != nil {
		return 0, nil, err
	}
	path, err := src.SearchPath(ctx, value)
	if err != nil {
		return value, nil, err
	}
	return value, path, nil
}
