package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ivrflow/pkg/document"
	"github.com/matzehuels/ivrflow/pkg/editor"
	errs "github.com/matzehuels/ivrflow/pkg/errors"
	"github.com/matzehuels/ivrflow/pkg/flow"
	"github.com/matzehuels/ivrflow/pkg/store"
)

// editCommand opens the canvas editor on a flow file or a stored flow.
func (c *CLI) editCommand() *cobra.Command {
	var id, name string

	cmd := &cobra.Command{
		Use:   "edit [FILE]",
		Short: "Edit a flow on the terminal canvas",
		Long: `Edit a flow on the terminal canvas.

With FILE the flow is read from and saved back to that file; a missing file
starts a new flow. With --id the flow is loaded from and saved to the
configured store. Without either, a new flow is created and saved to the
store on the first ctrl+s.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				if id != "" {
					return errs.New(errs.ErrCodeInvalidInput, "use either FILE or --id, not both")
				}
				return c.editFile(ctx, args[0], name)
			}
			return c.withStore(ctx, func(st store.Store) error {
				meta := document.Meta{Name: name}
				g := flow.New()
				if id != "" {
					d, err := st.Load(ctx, id)
					if err != nil {
						return err
					}
					if g, err = document.Hydrate(d); err != nil {
						return err
					}
					meta = document.MetaOf(d)
					if name != "" {
						meta.Name = name
					}
				}
				return c.runEditor(ctx, g, meta, st)
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "stored flow id")
	cmd.Flags().StringVar(&name, "name", "", "flow name (overrides the stored name)")
	return cmd
}

func (c *CLI) editFile(ctx context.Context, path, name string) error {
	meta := document.Meta{Name: name}
	g := flow.New()

	d, err := readDocument(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if meta.Name == "" {
			meta.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
	case err != nil:
		return err
	default:
		if g, err = document.Hydrate(d); err != nil {
			return err
		}
		meta = document.MetaOf(d)
		if name != "" {
			meta.Name = name
		}
	}
	return c.runEditor(ctx, g, meta, fileSaver{path: path})
}

func (c *CLI) runEditor(ctx context.Context, g *flow.Graph, meta document.Meta, saver document.Saver) error {
	// The alternate screen owns the terminal, so editor debug output is dropped.
	ed := editor.New(g, c.Config.Viewport(), editor.WithLogger(newLogger(io.Discard, c.Config.Level())))
	m := newCanvasModel(ctx, ed, meta, saver)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if m.dirty {
		printWarning("Unsaved changes to %s were discarded", meta.Name)
	}
	return ctx.Err()
}

// fileSaver writes documents to a flow file, JSON or YAML by extension.
type fileSaver struct {
	path string
}

func (s fileSaver) Save(_ context.Context, d *document.Document) error {
	data, err := encodeDocument(d, formatOf(s.path))
	if err != nil {
		return err
	}
	return writeOutput(s.path, data)
}
