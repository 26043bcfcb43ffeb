package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// envelope covers the response shapes the tree service has used.
type envelope struct {
	Tree  NodeList `json:"tree"`
	Nodes NodeList `json:"nodes,omitempty"`
}

// ReadNodes decodes a node list from r.
//
// Three shapes are accepted:
//   - a bare array: [{"value": 50, ...}]
//   - {"tree": [...]}, as served by GET /tree
//   - {"nodes": [...]}
//
// ReadNodes only decodes; structural validation happens in [Stratify].
func ReadNodes(r io.Reader) (NodeList, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var nodes NodeList
		if err := json.Unmarshal(data, &nodes); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		return nodes, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if env.Tree != nil {
		return env.Tree, nil
	}
	return env.Nodes, nil
}

// ReadNodesFile reads a node list from the JSON file at path.
func ReadNodesFile(path string) (NodeList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadNodes(f)
}

// WriteNodes writes nodes as an indented {"tree": [...]} document.
func WriteNodes(w io.Writer, nodes NodeList) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(envelope{Tree: nodes}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
