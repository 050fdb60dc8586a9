package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ivrflow/pkg/document"
	"github.com/matzehuels/ivrflow/pkg/flow"
	"github.com/matzehuels/ivrflow/pkg/store"
)

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	st, err := c.Config.OpenStore(ctx, c.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			c.Logger.Warn("close store", "err", err)
		}
	}()
	return fn(st)
}

// newCommand creates a flow holding only the start node.
func (c *CLI) newCommand() *cobra.Command {
	var (
		output, description string
		campaign            int64
		save                bool
	)

	cmd := &cobra.Command{
		Use:   "new NAME",
		Short: "Create a new flow",
		Long: `Create a new flow holding only the start node.

The document is written to --output (JSON, or YAML for .yaml/.yml) or stdout.
With --save it is stored in the configured flow store instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta := document.Meta{Name: args[0], Description: description}
			if cmd.Flags().Changed("campaign") {
				meta.CampaignID = &campaign
			}
			g := flow.New(flow.WithLogger(c.Logger))

			if save {
				return c.withStore(cmd.Context(), func(st store.Store) error {
					d, err := document.Save(cmd.Context(), meta, g, st, logNotifier(c.Logger))
					if err != nil {
						return err
					}
					printSuccess("Created flow %s", StyleHighlight.Render(d.Name))
					printKeyValue("ID", d.ID)
					printNextStep("Edit it with", "ivrflow edit --id "+d.ID)
					return nil
				})
			}

			d, err := document.Build(meta, g)
			if err != nil {
				return err
			}
			data, err := encodeDocument(d, formatOf(output))
			if err != nil {
				return err
			}
			if err := writeOutput(output, data); err != nil {
				return err
			}
			if output != "" {
				printSuccess("Created flow %s", StyleHighlight.Render(d.Name))
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "flow description")
	cmd.Flags().Int64Var(&campaign, "campaign", 0, "campaign id to attach")
	cmd.Flags().BoolVar(&save, "save", false, "store the flow instead of printing it")
	return cmd
}

// exportCommand writes a stored flow to a file.
func (c *CLI) exportCommand() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Write a stored flow as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = formatOf(output)
			}
			return c.withStore(cmd.Context(), func(st store.Store) error {
				d, err := st.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				data, err := encodeDocument(d, format)
				if err != nil {
					return err
				}
				if err := writeOutput(output, data); err != nil {
					return err
				}
				if output != "" {
					printSuccess("Exported %s", StyleHighlight.Render(d.Name))
					printFile(output)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default from --output extension)")
	return cmd
}

// importCommand validates a flow file and stores it.
func (c *CLI) importCommand() *cobra.Command {
	var keepID bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Validate a flow file and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDocument(args[0])
			if err != nil {
				return err
			}
			g, err := document.Hydrate(d, flow.WithLogger(c.Logger))
			if err != nil {
				return err
			}
			meta := document.MetaOf(d)
			if !keepID {
				meta.ID = ""
			}
			return c.withStore(cmd.Context(), func(st store.Store) error {
				saved, err := document.Save(cmd.Context(), meta, g, st, logNotifier(c.Logger))
				if err != nil {
					return err
				}
				printKeyValue("ID", saved.ID)
				printStats(g.NodeCount(), g.ConnectionCount())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&keepID, "keep-id", false, "keep the id in the file, overwriting a stored flow with the same id")
	return cmd
}

// flowsCommand manages stored flows.
func (c *CLI) flowsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flows",
		Short: "List and delete stored flows",
	}
	cmd.AddCommand(c.flowsListCommand())
	cmd.AddCommand(c.flowsDeleteCommand())
	return cmd
}

func (c *CLI) flowsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored flows, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				list, err := st.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(list) == 0 {
					printInfo("No stored flows")
					return nil
				}
				fmt.Println(flowTable(list, time.Now()))
				return nil
			})
		},
	}
}

func (c *CLI) flowsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID...",
		Aliases: []string{"rm"},
		Short:   "Delete stored flows",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				for _, id := range args {
					if err := st.Delete(cmd.Context(), id); err != nil {
						return err
					}
					printSuccess("Deleted %s", id)
				}
				return nil
			})
		},
	}
}

// flowTable renders flow summaries as a bordered table.
func flowTable(list []store.Summary, now time.Time) string {
	rows := make([][]string, len(list))
	for i, s := range list {
		rows[i] = []string{s.ID, s.Name, s.Status, formatRelativeTime(s.UpdatedAt, now)}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Status", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 || col == 3 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		String()
}

// formatRelativeTime renders t relative to now, e.g. "5m ago".
func formatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
