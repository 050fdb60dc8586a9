package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/ivrflow/pkg/errors"
	"github.com/matzehuels/ivrflow/pkg/flow"
	"github.com/matzehuels/ivrflow/pkg/render/nodelink"
)

// typesCommand lists the node types a flow can contain.
func (c *CLI) typesCommand() *cobra.Command {
	var defaults string

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List node types and their defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			if defaults != "" {
				t := flow.NodeType(defaults)
				if !t.Valid() {
					return errs.New(errs.ErrCodeInvalidNodeType, "unknown node type %q", defaults)
				}
				m, err := flow.ConfigToMap(flow.DefaultConfig(t))
				if err != nil {
					return err
				}
				fmt.Println(typeStyle(t).Bold(true).Render(string(t)))
				for _, k := range slices.Sorted(maps.Keys(m)) {
					printKeyValue(k, fmt.Sprint(m[k]))
				}
				return nil
			}
			fmt.Println(typesTable())
			return nil
		},
	}

	cmd.Flags().StringVar(&defaults, "defaults", "", "print the default config of one type")
	return cmd
}

// typesTable renders every addable node type with its default label and a
// summary of its default config.
func typesTable() string {
	types := flow.NodeTypes()
	rows := make([][]string, len(types))
	for i, t := range types {
		rows[i] = []string{string(t), flow.DefaultLabel(t), nodelink.Summary(flow.DefaultConfig(t))}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Type", "Default label", "Default config").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return typeStyle(types[row])
			default:
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
		}).
		String()
}
