package cli

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ivrflow/pkg/document"
	errs "github.com/matzehuels/ivrflow/pkg/errors"
	"github.com/matzehuels/ivrflow/pkg/flow"
	"github.com/matzehuels/ivrflow/pkg/render"
	"github.com/matzehuels/ivrflow/pkg/render/nodelink"
	"github.com/matzehuels/ivrflow/pkg/store"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output      string // output file path; derived from the input when empty
	format      string // dot, svg or png
	id          string // stored flow to render instead of a file
	detailed    bool   // config summary under each label
	leftToRight bool   // horizontal layout
}

// renderCommand draws a flow with Graphviz.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: render.FormatSVG}

	cmd := &cobra.Command{
		Use:   "render [FILE]",
		Short: "Render a flow as a Graphviz diagram",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(render.Formats(), opts.format) {
				return errs.New(errs.ErrCodeUnsupported, "invalid format: %s (must be one of %s)",
					opts.format, strings.Join(render.Formats(), ", "))
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			if (input == "") == (opts.id == "") {
				return errs.New(errs.ErrCodeInvalidInput, "pass either a FILE or --id")
			}
			return c.runRender(cmd.Context(), input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with the format's extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: "+strings.Join(render.Formats(), ", "))
	cmd.Flags().StringVar(&opts.id, "id", "", "render a stored flow")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show a config summary on each node")
	cmd.Flags().BoolVar(&opts.leftToRight, "lr", false, "lay the flow out left to right")
	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	prog := newProgress(c.Logger)

	d, err := c.loadForRender(ctx, input, opts.id)
	if err != nil {
		return err
	}
	g, err := document.Hydrate(d, flow.WithLogger(c.Logger))
	if err != nil {
		return err
	}
	c.Logger.Infof("Loaded flow %q: %d nodes, %d connections", d.Name, g.NodeCount(), g.ConnectionCount())

	spin := newSpinnerWithContext(ctx, "Rendering "+d.Name+"...")
	spin.Start()
	data, err := render.Flow(ctx, g, opts.format, nodelink.Options{
		Detailed:    opts.detailed,
		LeftToRight: opts.leftToRight,
	})
	spin.Stop()
	if err != nil {
		return err
	}

	out := outputPath(opts.output, input, opts.id, opts.format)
	if err := writeOutput(out, data); err != nil {
		return err
	}
	prog.done("Rendered " + d.Name)
	printFile(out)
	return nil
}

func (c *CLI) loadForRender(ctx context.Context, input, id string) (*document.Document, error) {
	if input != "" {
		return readDocument(input)
	}
	var d *document.Document
	err := c.withStore(ctx, func(st store.Store) error {
		var err error
		d, err = st.Load(ctx, id)
		return err
	})
	return d, err
}

// outputPath derives the output file: an explicit output wins, otherwise the
// input (or stored id) with the format's extension.
func outputPath(output, input, id, format string) string {
	if output != "" {
		return output
	}
	base := id
	if input != "" && input != "-" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}
	if base == "" {
		base = "flow"
	}
	return base + "." + format
}
