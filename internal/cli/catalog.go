package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pidforge/pkg/catalog"
	pferrors "github.com/matzehuels/pidforge/pkg/errors"
)

// catalogCommand creates the catalog command for browsing definitions.
func (c *CLI) catalogCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "catalog [id]",
		Short: "List component definitions",
		Long: `List the component definitions of the configured catalog, or show one in detail.

The catalog is the built-in one unless catalog.source in the config file (or
PIDFORGE_CATALOG) names a TOML/JSON file or the base URL of a catalog API.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := c.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				if asJSON {
					return writeJSON(out, defs)
				}
				fmt.Fprintln(out, catalogTable(defs))
				return nil
			}

			def, ok := defs.Get(args[0])
			if !ok {
				return pferrors.New(pferrors.ErrCodeNotFound, "component %q is not in the catalog", args[0])
			}
			if asJSON {
				return writeJSON(out, def)
			}
			printDefinition(def)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the API representation")
	return cmd
}

// catalogTable renders defs as a bordered table in catalog order.
func catalogTable(defs *catalog.Catalog) string {
	rows := make([][]string, 0, defs.Len())
	for _, d := range defs.List() {
		ports := make([]string, len(d.Ports))
		for i, p := range d.Ports {
			ports[i] = p.Name
		}
		rows = append(rows, []string{
			d.ID,
			strings.TrimSpace(d.Icon + " " + d.Label()),
			d.Category,
			strings.Join(ports, ", "),
			fmt.Sprint(len(d.Parameters)),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Category", "Ports", "Params").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleHighlight
			case col == 4:
				return StyleNumber
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// printDefinition prints one definition with its parameters, ports and
// constraints.
func printDefinition(d *catalog.Definition) {
	fmt.Println(StyleTitle.Render(strings.TrimSpace(d.Icon + " " + d.Label())))
	printKeyValue("ID", d.ID)
	printKeyValue("Category", d.Category)

	if len(d.Parameters) > 0 {
		printNewline()
		fmt.Println(StyleTitle.Render("Parameters"))
		for _, p := range d.Parameters {
			line := fmt.Sprintf("%-16s %s", p.Name, p.FormatValue(p.Default))
			if p.Required {
				line += "  required"
			}
			if len(p.Options) > 0 {
				line += "  [" + strings.Join(p.Options, " | ") + "]"
			}
			printDetail("%s", line)
		}
	}

	if len(d.Ports) > 0 {
		printNewline()
		fmt.Println(StyleTitle.Render("Ports"))
		for _, p := range d.Ports {
			printDetail("%-16s %-10s %s", p.Name, p.Kind, p.Direction)
		}
	}

	if len(d.Constraints) > 0 {
		printNewline()
		fmt.Println(StyleTitle.Render("Constraints"))
		for _, s := range d.Constraints {
			printDetail("%s", s)
		}
	}
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
