package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NodeID identifies a node. It is the node's value in textual form.
type NodeID string

// String returns the identifier text.
func (id NodeID) String() string { return string(id) }

// Number returns the identifier as a float when it is numeric.
func (id NodeID) Number() (float64, bool) {
	v, err := strconv.ParseFloat(string(id), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Compare orders identifiers numerically when both are numbers and
// lexically otherwise. Numbers sort before non-numbers.
func (id NodeID) Compare(other NodeID) int {
	a, aok := id.Number()
	b, bok := other.Number()
	switch {
	case aok && bok:
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	case aok:
		return -1
	case bok:
		return 1
	}
	return strings.Compare(string(id), string(other))
}

// UnmarshalJSON accepts a JSON number or a JSON string.
func (id *NodeID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NodeID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("node id must be a number or string: %s", data)
	}
	*id = NumericID(n)
	return nil
}

// MarshalJSON writes numeric identifiers as JSON numbers and everything else
// as JSON strings.
func (id NodeID) MarshalJSON() ([]byte, error) {
	if _, ok := id.Number(); ok && isPlainNumber(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// NumericID normalises a JSON number into its canonical identifier.
func NumericID(n json.Number) NodeID {
	v, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return NodeID(n)
	}
	return NodeID(strconv.FormatFloat(v, 'f', -1, 64))
}

// FloatID returns the identifier for a numeric value.
func FloatID(v float64) NodeID { return NodeID(strconv.FormatFloat(v, 'f', -1, 64)) }

// IntID returns the identifier for an integer value.
func IntID(v int) NodeID { return NodeID(strconv.Itoa(v)) }

// isPlainNumber reports whether s is already a valid JSON number literal.
// ParseFloat accepts forms such as "Inf" or "0x1p-2" that JSON does not.
func isPlainNumber(s string) bool {
	return json.Valid([]byte(s)) && s != "" && (s[0] == '-' || (s[0] >= '0' && s[0] <= '9'))
}

// Node is one element of the flat collection served by the tree service.
type Node struct {
	Value  NodeID  `json:"value"`
	Color  string  `json:"color"`
	Parent *NodeID `json:"parent"`

	// Sentinel marks a nil leaf added by [AddNilLeaves].
	Sentinel bool `json:"sentinel,omitempty"`
}

// IsRoot reports whether the node has no parent.
func (n Node) IsRoot() bool { return n.Parent == nil }

// NodeList is the flat collection as received.
type NodeList []Node

// Root is a convenience constructor for a parentless node.
func Root(value NodeID, color string) Node {
	return Node{Value: value, Color: color}
}

// Child is a convenience constructor for a node with a parent.
func Child(value NodeID, color string, parent NodeID) Node {
	p := parent
	return Node{Value: value, Color: color, Parent: &p}
}

// Default node colors.
const (
	ColorBlack = "black"
	ColorRed   = "red"
	ColorNil   = "gray"
)
