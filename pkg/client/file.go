package client

import (
	"context"

	"github.com/matzehuels/treewalk/pkg/errors"
	"github.com/matzehuels/treewalk/pkg/tree"
)

// FileSource serves a tree stored in a JSON file. Search paths are found
// by descending from the root, taking the left child (smaller value) or the
// right child (larger value) until the value matches or no child remains.
type FileSource struct {
	Path string
}

// FetchTree reads the file on every call, so edits show up on refresh.
func (f FileSource) FetchTree(ctx context.Context) (tree.NodeList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	nodes, err := tree.ReadNodesFile(f.Path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read tree file")
	}
	return nodes, nil
}

// SearchPath implements [Source].
func (f FileSource) SearchPath(ctx context.Context, value float64) ([]tree.NodeID, error) {
	nodes, err := f.FetchTree(ctx)
	if err != nil {
		return nil, err
	}
	return DescendPath(nodes, value)
}

// DescendPath returns the nodes visited by a binary search for value.
// Sentinel leaves are never part of the path.
func DescendPath(nodes tree.NodeList, value float64) ([]tree.NodeID, error) {
	h, err := tree.Stratify(nodes)
	if err != nil {
		return nil, err
	}

	target := tree.FloatID(value)
	var path []tree.NodeID
	i := h.Root()
	for i >= 0 {
		e := h.Entry(i)
		if e.Node.IsNil() {
			break
		}
		path = append(path, e.Node.Value)
		cmp := target.Compare(e.Node.Value)
		if cmp == 0 {
			break
		}
		next := -1
		for _, c := range e.Children {
			cv := h.Entry(c).Node.Value
			if (cmp < 0 && cv.Compare(e.Node.Value) < 0) || (cmp > 0 && cv.Compare(e.Node.Value) > 0) {
				next = c
				break
			}
		}
		i = next
	}
	return path, nil
}
