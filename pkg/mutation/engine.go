package mutation

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/datamapper/pkg/errors"
	"github.com/matzehuels/datamapper/pkg/fqn"
	"github.com/matzehuels/datamapper/pkg/observability"
	"github.com/matzehuels/datamapper/pkg/schema"
)

// Persister stores mapping edits and returns the resulting snapshot.
type Persister interface {
	ApplyModifications(ctx context.Context, mappings []schema.Mapping) (*schema.Snapshot, error)
	AddArrayElement(ctx context.Context, path string) (*schema.Snapshot, error)
}

// Operation names reported to observability hooks.
const (
	OpCreate     = "create"
	OpDelete     = "delete"
	OpAddElement = "add-element"
	OpExpression = "expression"
	OpReset      = "reset"
)

// Engine applies structural mapping edits.
type Engine struct {
	Persister Persister
	Logger    *log.Logger
}

// New returns an engine backed by p. A nil logger discards output.
func New(p Persister, logger *log.Logger) *Engine {
	return &Engine{Persister: p, Logger: logger}
}

// CreateMapping connects source (a rooted input path) to target (an output path).
func (e *Engine) CreateMapping(ctx context.Context, snap *schema.Snapshot, source, target string) (*schema.Snapshot, error) {
	return e.run(ctx, OpCreate, target, func() (*schema.Snapshot, error) {
		if err := checkTarget(snap, target); err != nil {
			return nil, err
		}
		if err := checkSource(snap, source); err != nil {
			return nil, err
		}
		expr := fqn.AccessExpr(source)
		ms, err := place(snap, target, schema.Mapping{
			Output:     target,
			Inputs:     []string{source},
			Expression: expr,
		}, func(m *schema.Mapping) error {
			for _, in := range m.Inputs {
				if fqn.Same(in, source) {
					return errors.Conflict("%s already maps %s", target, source)
				}
			}
			m.Inputs = append(m.Inputs, source)
			if hasLiteral(m.Expression) {
				m.Expression += " + " + expr
			} else {
				m.Expression = expr
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return e.persist(ctx, OpCreate, ms)
	})
}

// DeleteMapping removes every mapping at or below path.
func (e *Engine) DeleteMapping(ctx context.Context, snap *schema.Snapshot, path string) (*schema.Snapshot, error) {
	return e.run(ctx, OpDelete, path, func() (*schema.Snapshot, error) {
		ms, err := prune(snap, path)
		if err != nil {
			return nil, err
		}
		return e.persist(ctx, OpDelete, ms)
	})
}

// AddArrayElement appends an empty element to the array at path.
func (e *Engine) AddArrayElement(ctx context.Context, snap *schema.Snapshot, path string) (*schema.Snapshot, error) {
	return e.run(ctx, OpAddElement, path, func() (*schema.Snapshot, error) {
		if snap == nil {
			return nil, errors.Conflict("no snapshot loaded")
		}
		t, ok := fqn.LookupOutput(snap.Output, path)
		if !ok {
			return nil, errors.Conflict("output %s does not exist", path)
		}
		if t.Kind != schema.KindArray {
			return nil, errors.Conflict("output %s is a %s, not an array", path, t.Kind)
		}
		next, err := e.Persister.AddArrayElement(ctx, path)
		if err != nil {
			return nil, storeError(err, OpAddElement)
		}
		if next == nil {
			return nil, errors.New(errors.ErrCodeStore, "persister returned no snapshot for %s", OpAddElement)
		}
		return next, nil
	})
}

// UpdateExpression sets the expression of the mapping at output, creating it
// when absent. An empty expression deletes the mapping.
func (e *Engine) UpdateExpression(ctx context.Context, snap *schema.Snapshot, output, expr string) (*schema.Snapshot, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return e.DeleteMapping(ctx, snap, output)
	}
	return e.run(ctx, OpExpression, output, func() (*schema.Snapshot, error) {
		if err := checkTarget(snap, output); err != nil {
			return nil, err
		}
		ms, err := place(snap, output, schema.Mapping{Output: output, Expression: expr}, func(m *schema.Mapping) error {
			m.Expression = expr
			return nil
		})
		if err != nil {
			return nil, err
		}
		return e.persist(ctx, OpExpression, ms)
	})
}

// Reset removes every mapping.
func (e *Engine) Reset(ctx context.Context, snap *schema.Snapshot) (*schema.Snapshot, error) {
	return e.run(ctx, OpReset, "", func() (*schema.Snapshot, error) {
		if snap == nil {
			return nil, errors.Conflict("no snapshot loaded")
		}
		return e.persist(ctx, OpReset, []schema.Mapping{})
	})
}

func (e *Engine) run(ctx context.Context, op, target string, fn func() (*schema.Snapshot, error)) (*schema.Snapshot, error) {
	start := time.Now()
	observability.Mutation().OnMutationStart(ctx, op, target)
	next, err := fn()
	elapsed := time.Since(start)
	observability.Mutation().OnMutationComplete(ctx, op, target, elapsed, err)

	logger := e.logger()
	if err != nil {
		logger.Debug("mutation rejected", "op", op, "target", target, "err", err)
		return nil, err
	}
	logger.Debug("mutation applied", "op", op, "target", target, "revision", next.Revision, "elapsed", elapsed)
	return next, nil
}

func (e *Engine) persist(ctx context.Context, op string, ms []schema.Mapping) (*schema.Snapshot, error) {
	next, err := e.Persister.ApplyModifications(ctx, ms)
	if err != nil {
		return nil, storeError(err, op)
	}
	if next == nil {
		return nil, errors.New(errors.ErrCodeStore, "persister returned no snapshot for %s", op)
	}
	return next, nil
}

func (e *Engine) logger() *log.Logger {
	if e.Logger == nil {
		return log.New(io.Discard)
	}
	return e.Logger
}

func storeError(err error, op string) error {
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.Wrap(errors.ErrCodeStore, err, "persist %s", op)
}

func checkTarget(snap *schema.Snapshot, target string) error {
	if snap == nil {
		return errors.Conflict("no snapshot loaded")
	}
	if target == fqn.OutputRoot(snap.Output) {
		return nil
	}
	if _, err := fqn.Parse(target); err != nil {
		return err
	}
	if _, ok := fqn.LookupOutput(snap.Output, target); !ok {
		return errors.Conflict("output %s does not exist", target)
	}
	return nil
}

func checkSource(snap *schema.Snapshot, source string) error {
	if _, err := fqn.Parse(source); err != nil {
		return err
	}
	if snap.Input(fqn.Root(source)) == nil {
		return errors.Conflict("no input named %s", fqn.Root(source))
	}
	return nil
}

// hasLiteral reports whether expr carries a value worth composing onto.
func hasLiteral(expr string) bool {
	switch strings.TrimSpace(expr) {
	case "", schema.DefaultValue(schema.KindArray), schema.DefaultValue(schema.KindRecord):
		return false
	}
	return true
}
