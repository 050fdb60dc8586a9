package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ivrflow/pkg/document"
	errs "github.com/matzehuels/ivrflow/pkg/errors"
	"github.com/matzehuels/ivrflow/pkg/flow"
	"github.com/matzehuels/ivrflow/pkg/lookup"
)

// validateCommand checks flow files without storing them.
func (c *CLI) validateCommand() *cobra.Command {
	var (
		strict      bool
		checkBuyers bool
	)

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check flow files for structural and save-time errors",
		Long: `Check flow files for structural and save-time errors.

Errors (exit status 1):
  - the flow name is empty
  - the graph breaks an invariant (start node, ids, dangling connections)

Warnings:
  - unreachable nodes, dead ends, duplicate menu keys, bad pixel URLs
  - with --check-buyers, buyer ids unknown to the lookup directory`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var provider lookup.Provider
			if checkBuyers {
				p, err := c.Config.LookupProvider(c.noCache, c.Logger)
				if err != nil {
					return err
				}
				provider = p
			}

			failed := 0
			for _, path := range args {
				warnings, err := c.validateFile(cmd.Context(), path, provider)
				switch {
				case err != nil:
					failed++
					printError("%s: %s", path, errs.UserMessage(err))
				case len(warnings) > 0:
					printWarning("%s: %d warning(s)", path, len(warnings))
				default:
					printSuccess("%s", path)
				}
				for _, w := range warnings {
					printDetail("%s", w)
				}
				if strict && err == nil && len(warnings) > 0 {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) failed validation", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	cmd.Flags().BoolVar(&checkBuyers, "check-buyers", false, "verify buyer ids against the lookup directory")
	return cmd
}

// validateFile returns the lint warnings of path, or the first error that
// would stop the flow from being saved.
func (c *CLI) validateFile(ctx context.Context, path string, provider lookup.Provider) ([]flow.Warning, error) {
	d, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	g, err := document.Hydrate(d, flow.WithLogger(c.Logger))
	if err != nil {
		return nil, err
	}
	if _, err := document.Build(document.MetaOf(d), g); err != nil {
		return nil, err
	}

	warnings := flow.Lint(g)
	if provider != nil {
		for _, id := range flow.BuyerIDs(g) {
			if _, err := lookup.FindBuyer(ctx, provider, id); err != nil {
				if !errs.IsNotFound(err) {
					return nil, err
				}
				warnings = append(warnings, flow.Warning{Message: fmt.Sprintf("unknown buyer %q", id)})
			}
		}
	}
	c.Logger.Debug("validated", "path", path, "nodes", g.NodeCount(), "warnings", len(warnings))
	return warnings, nil
}
