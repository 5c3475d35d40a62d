package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/datamapper/pkg/cache"
	"github.com/matzehuels/datamapper/pkg/diagram"
)

// Runner renders graphs through a cache.
//
// The Runner holds no per-render state. Multiple goroutines can share one.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL bounds artifact lifetime. NewRunner sets [cache.ArtifactTTL].
	TTL time.Duration
}

// Input is one graph to render together with the identity it is cached under.
type Input struct {
	Root     string
	Revision string
	// ViewKey is the visibility state's [visibility.State.Key].
	ViewKey string
	Graph   *diagram.Graph
	// Volatile marks a graph that may lag its revision. It is rendered but never cached.
	Volatile bool
}

// Result holds a rendered artifact.
type Result struct {
	Data     []byte
	Cached   bool
	Stats    diagram.Stats
	Duration time.Duration
}

// NewRunner creates a runner. A nil cache disables caching and a nil keyer
// uses [cache.NewDefaultKeyer].
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger, TTL: cache.ArtifactTTL}
}

// Execute renders in.Graph according to opts, consulting the cache first.
func (r *Runner) Execute(ctx context.Context, in Input, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()
	res := &Result{Stats: in.Graph.Stats()}

	compute := func() ([]byte, error) {
		return Render(ctx, in.Graph, in.Revision, opts)
	}

	var err error
	switch {
	case in.Volatile:
		res.Data, err = compute()
	case opts.Refresh:
		res.Data, err = compute()
		if err == nil {
			_ = r.Cache.Set(ctx, r.key(in, opts), res.Data, r.TTL)
		}
	default:
		res.Data, res.Cached, err = cache.Fetch(ctx, r.Cache, r.key(in, opts), opts.Format, r.TTL, compute)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", opts.Format, err)
	}
	res.Duration = time.Since(start)

	r.Logger.Debug("rendered",
		"root", in.Root,
		"format", opts.Format,
		"bytes", len(res.Data),
		"cached", res.Cached,
		"duration", res.Duration)
	return res, nil
}

func (r *Runner) key(in Input, opts Options) string {
	keyer := cache.NewScopedKeyer(r.Keyer, in.Root)
	return keyer.ArtifactKey(
		keyer.GraphKey(in.Revision, in.ViewKey),
		cache.ArtifactKeyOpts{Format: opts.Format, Detailed: opts.Detailed},
	)
}
