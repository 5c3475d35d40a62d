package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Keyer builds cache keys.
type Keyer interface {
	// GraphKey identifies the graph built from a snapshot revision under a
	// visibility state.
	GraphKey(revision, visibility string) string

	// ArtifactKey identifies one rendering of a graph.
	ArtifactKey(graphKey string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change the output bytes.
type ArtifactKeyOpts struct {
	Format   string
	Detailed bool
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) GraphKey(revision, visibility string) string {
	return "graph:" + Hash(join(revision, visibility))
}

func (DefaultKeyer) ArtifactKey(graphKey string, opts ArtifactKeyOpts) string {
	return "artifact:" + Hash(join(graphKey, opts.Format, strconv.FormatBool(opts.Detailed)))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// join length-prefixes each part so ("ab", "c") and ("a", "bc") differ.
func join(parts ...string) []byte {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strconv.Itoa(len(p)))
		b.WriteByte(':')
		b.WriteString(p)
	}
	return []byte(b.String())
}

// scopedKeyer prefixes every key so that roots never share entries.
type scopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner so every key starts with "<scope>/". A nil
// inner uses [NewDefaultKeyer].
func NewScopedKeyer(inner Keyer, scope string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return scopedKeyer{inner: inner, prefix: scope + "/"}
}

func (k scopedKeyer) GraphKey(revision, visibility string) string {
	return k.prefix + k.inner.GraphKey(revision, visibility)
}

// ArtifactKey leaves an already scoped graph key alone.
func (k scopedKeyer) ArtifactKey(graphKey string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(strings.TrimPrefix(graphKey, k.prefix), opts)
}
