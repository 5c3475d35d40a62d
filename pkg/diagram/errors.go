package diagram

import (
	"fmt"

	"github.com/matzehuels/datamapper/pkg/errors"
)

// ErrorKind classifies a per-node build failure for the presentation layer.
type ErrorKind string

// Error kinds.
const (
	ErrorInput  ErrorKind = "Input"
	ErrorOutput ErrorKind = "Output"
	ErrorOther  ErrorKind = "Other"
)

// NodeError is a failure absorbed while building one node.
type NodeError struct {
	NodeID string
	Kind   ErrorKind
	Err    error
}

func (e NodeError) Error() string {
	return fmt.Sprintf("%s node %s: %v", e.Kind, e.NodeID, e.Err)
}

func (e NodeError) Unwrap() error { return e.Err }

// Code returns the structured error code of the underlying failure.
func (e NodeError) Code() errors.Code { return errors.GetCode(e.Err) }

// classify maps a node variant to the error kind reported for it.
func classify(n Node) ErrorKind {
	switch n.(type) {
	case *InputNode, *PlaceholderNode:
		return ErrorInput
	case *OutputNode:
		return ErrorOutput
	case *IntermediateNode:
		return ErrorOther
	}
	return ErrorOther
}

// safely runs fn, turning a panic into a GRAPH_BUILD error.
func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeGraphBuild, "panic: %v", r)
		}
	}()
	return fn()
}
