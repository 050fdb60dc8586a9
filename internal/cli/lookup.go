package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ivrflow/pkg/lookup"
)

// lookupCommand prints the buyer and campaign directories.
func (c *CLI) lookupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Show the buyer and campaign directories",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "buyers",
		Short: "List buyers available to action and router nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.Config.LookupProvider(c.noCache, c.Logger)
			if err != nil {
				return err
			}
			spin := newSpinnerWithContext(cmd.Context(), "Fetching buyers...")
			spin.Start()
			buyers, err := p.Buyers(cmd.Context())
			spin.Stop()
			if err != nil {
				return err
			}
			if len(buyers) == 0 {
				printInfo("No buyers configured")
				return nil
			}
			fmt.Println(buyerTable(buyers))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "campaigns",
		Short: "List campaigns a flow can be attached to",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.Config.LookupProvider(c.noCache, c.Logger)
			if err != nil {
				return err
			}
			spin := newSpinnerWithContext(cmd.Context(), "Fetching campaigns...")
			spin.Start()
			campaigns, err := p.Campaigns(cmd.Context())
			spin.Stop()
			if err != nil {
				return err
			}
			if len(campaigns) == 0 {
				printInfo("No campaigns configured")
				return nil
			}
			rows := make([][]string, len(campaigns))
			for i, cp := range campaigns {
				rows[i] = []string{strconv.FormatInt(cp.ID, 10), cp.Name}
			}
			fmt.Println(simpleTable([]string{"ID", "Name"}, rows))
			return nil
		},
	})
	return cmd
}

func buyerTable(buyers []lookup.Buyer) string {
	rows := make([][]string, len(buyers))
	for i, b := range buyers {
		rows[i] = []string{b.ID, b.Name, b.Contact()}
	}
	return simpleTable([]string{"ID", "Name", "Contact"}, rows)
}

func simpleTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		String()
}
