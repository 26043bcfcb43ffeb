package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Keyer derives cache keys.
type Keyer interface {
	// TreeKey identifies the last tree fetched from a server.
	TreeKey(server string) string

	// PathKey identifies the search path for value in one specific tree,
	// named by the hash of its encoded nodes.
	PathKey(server, treeHash string, value float64) string
}

// DefaultKeyer builds "<kind>:<sha256 of the parts>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) TreeKey(server string) string {
	return "tree:" + Hash([]byte(strings.TrimRight(server, "/")))
}

func (DefaultKeyer) PathKey(server, treeHash string, value float64) string {
	parts := []string{strings.TrimRight(server, "/"), treeHash, strconv.FormatFloat(value, 'g', -1, 64)}
	return "path:" + Hash([]byte(strings.Join(parts, "\x00")))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
