package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/datamapper/pkg/schema"
	"github.com/matzehuels/datamapper/pkg/store"
)

// importCommand creates the import command, which stores a snapshot file under a root.
func (c *CLI) importCommand() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "import [snapshot.json]",
		Short: "Import a schema and mapping snapshot into a root",
		Long: `Import a schema and mapping snapshot into a root.

The snapshot is validated, its mapping diagnostics are recomputed and it is
stored under --root, replacing whatever the root held before.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd.Context(), args[0], root)
		},
	}
	addRootFlag(cmd, &root)
	return cmd
}

func (c *CLI) runImport(ctx context.Context, path, root string) error {
	snap, err := schema.ReadSnapshotFile(path)
	if err != nil {
		return err
	}

	s, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := store.NewPersister(s, root)
	if err != nil {
		return err
	}
	saved, err := p.Replace(ctx, snap)
	if err != nil {
		return err
	}

	ui := c.ui()
	ui.success("Imported %s into %s", path, StyleHighlight.Render(root))
	ui.field("Revision", saved.Revision)
	ui.field("Inputs", fmt.Sprint(len(saved.Inputs)))
	ui.field("Mappings", fmt.Sprint(len(saved.Mappings)))
	ui.hint("Render it", fmt.Sprintf("%s render --root %s", appName, root))
	return nil
}

// exportCommand creates the export command, which writes a root's snapshot as JSON.
func (c *CLI) exportCommand() *cobra.Command {
	var root, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a root's snapshot as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), root, output)
		},
	}
	addRootFlag(cmd, &root)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (c *CLI) runExport(ctx context.Context, root, output string) error {
	s, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	snap, err := s.Load(ctx, root)
	if err != nil {
		return err
	}
	if output == "" {
		return schema.WriteSnapshot(snap, c.out)
	}
	if err := schema.WriteSnapshotFile(snap, output); err != nil {
		return err
	}
	c.ui().success("Exported %s", root)
	c.ui().file(output)
	return nil
}

// rootsCommand creates the roots command, which lists stored roots.
func (c *CLI) rootsCommand() *cobra.Command {
	var remove string

	cmd := &cobra.Command{
		Use:   "roots",
		Short: "List stored mapping roots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if remove != "" {
				if err := s.Delete(ctx, remove); err != nil {
					return err
				}
				c.ui().success("Deleted %s", remove)
				return nil
			}

			roots, err := s.List(ctx)
			if err != nil {
				return err
			}
			if len(roots) == 0 {
				c.ui().info("No roots stored")
				c.ui().hint("Import one", appName+" import snapshot.json --root NAME")
				return nil
			}
			for _, r := range roots {
				fmt.Fprintln(c.out, r)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&remove, "delete", "", "delete the named root instead of listing")
	return cmd
}
