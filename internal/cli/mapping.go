package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/datamapper/pkg/editor"
)

// editFunc applies one mutation to an open editor.
type editFunc func(ctx context.Context, ed *editor.Editor) error

// runEdit opens root, applies fn and reports the rebuilt graph.
func (c *CLI) runEdit(ctx context.Context, root, done string, fn editFunc) error {
	ed, closeStore, err := c.openEditor(ctx, root)
	if err != nil {
		return err
	}
	defer closeStore()

	prog := newProgress(c.Logger)
	if err := fn(ctx, ed); err != nil {
		return err
	}
	prog.done("Saved revision " + ed.Snapshot().Revision)

	g := ed.Graph()
	c.ui().success("%s", done)
	c.ui().stats(g.Stats(), false)
	c.ui().nodeErrors(g.Errors)
	return nil
}

// mapCommand creates the map command, which connects a source field to a target field.
func (c *CLI) mapCommand() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "map [source] [target]",
		Short: "Map an input field onto an output field",
		Long: `Map an input field onto an output field.

The source is rooted at an input name (input.address.city); the target is
relative to the output root (shipping.city). Targets inside arrays carry an
element index (items.0.qty); index N equal to the current element count
appends a new element. Mapping onto a field that already has a value joins
the expressions.`,
		Example: `  datamapper map input.fullName name --root orders
  datamapper map input.lines.qty items.0.qty --root orders`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, target := args[0], args[1]
			return c.runEdit(cmd.Context(), root, "Mapped "+source+" → "+target, func(ctx context.Context, ed *editor.Editor) error {
				return ed.CreateMapping(ctx, source, target)
			})
		},
	}
	addRootFlag(cmd, &root)
	return cmd
}

// unmapCommand creates the unmap command, which deletes a mapping subtree.
func (c *CLI) unmapCommand() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "unmap [path]",
		Short: "Delete the mapping at an output path and everything below it",
		Long: `Delete the mapping at an output path and everything below it.

Deleting an array element (items.1) renumbers the elements after it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			return c.runEdit(cmd.Context(), root, "Unmapped "+path, func(ctx context.Context, ed *editor.Editor) error {
				return ed.DeleteMapping(ctx, path)
			})
		},
	}
	addRootFlag(cmd, &root)
	return cmd
}

// setExprCommand creates the set-expr command, which replaces a mapping expression.
func (c *CLI) setExprCommand() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "set-expr [output] [expression]",
		Short: "Set the expression of an output field",
		Long: `Set the expression of an output field.

The mapping is created when missing. An empty expression deletes it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, expr := args[0], args[1]
			return c.runEdit(cmd.Context(), root, "Updated "+output, func(ctx context.Context, ed *editor.Editor) error {
				return ed.UpdateExpression(ctx, output, expr)
			})
		},
	}
	addRootFlag(cmd, &root)
	return cmd
}

// addElementCommand creates the add-element command for output arrays.
func (c *CLI) addElementCommand() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "add-element [path]",
		Short: "Append an empty element to an output array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			return c.runEdit(cmd.Context(), root, "Added element to "+path, func(ctx context.Context, ed *editor.Editor) error {
				return ed.AddArrayElement(ctx, path)
			})
		},
	}
	addRootFlag(cmd, &root)
	return cmd
}

// resetCommand creates the reset command, which removes every mapping of a root.
func (c *CLI) resetCommand() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove every mapping of a root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), root, "Cleared mappings of "+root, func(ctx context.Context, ed *editor.Editor) error {
				return ed.Reset(ctx)
			})
		},
	}
	addRootFlag(cmd, &root)
	return cmd
}
