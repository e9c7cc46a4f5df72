package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pidforge/pkg/document"
	"github.com/matzehuels/pidforge/pkg/store"
)

// schematicCommand creates the schematic management command.
func (c *CLI) schematicCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schematic",
		Aliases: []string{"schematics"},
		Short:   "Manage stored schematics",
		Long: `Manage schematics in the configured store backend (store.backend in the
config file or PIDFORGE_STORE: file, memory, redis or mongo).`,
	}

	cmd.AddCommand(c.schematicListCommand())
	cmd.AddCommand(c.schematicShowCommand())
	cmd.AddCommand(c.schematicImportCommand())
	cmd.AddCommand(c.schematicExportCommand())
	cmd.AddCommand(c.schematicDeleteCommand())

	return cmd
}

// schematicListCommand creates the "schematic list" subcommand.
func (c *CLI) schematicListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored schematics, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			summaries, err := st.List(ctx)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				printInfo("No schematics stored")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), summaryTable(summaries, time.Now()))
			return nil
		},
	}
}

// schematicShowCommand creates the "schematic show" subcommand.
func (c *CLI) schematicShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored schematic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.readDocument(cmd.Context(), args[0], true)
			if err != nil {
				return err
			}
			printDocument(doc)
			return nil
		},
	}
}

// schematicImportCommand creates the "schematic import" subcommand.
func (c *CLI) schematicImportCommand() *cobra.Command {
	var fresh bool

	cmd := &cobra.Command{
		Use:   "import <schematic.json>",
		Short: "Validate a schematic file and save it to the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			defs, err := c.loadCatalog(ctx)
			if err != nil {
				return err
			}
			doc, err := c.readDocument(ctx, args[0], false)
			if err != nil {
				return err
			}
			if err := doc.Validate(defs); err != nil {
				return err
			}
			if n := doc.PruneEmptyGroups(); n > 0 {
				loggerFromContext(ctx).Debugf("Dropped %d empty groups", n)
			}
			if fresh {
				doc.ID = ""
			}

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Save(ctx, &doc); err != nil {
				return err
			}
			printSuccess("Saved %s", StyleHighlight.Render(doc.ID))
			printSchematicStats(doc)
			printNextStep("Edit it", appName+" edit --stored "+doc.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fresh, "new", false, "save under a new id instead of the file's id")
	return cmd
}

// schematicExportCommand creates the "schematic export" subcommand.
func (c *CLI) schematicExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a stored schematic as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.readDocument(cmd.Context(), args[0], true)
			if err != nil {
				return err
			}
			if output == "" {
				return document.Write(doc, cmd.OutOrStdout())
			}
			if err := document.WriteFile(doc, output); err != nil {
				return err
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// schematicDeleteCommand creates the "schematic delete" subcommand.
func (c *CLI) schematicDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete stored schematics",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			for _, id := range args {
				if err := st.Delete(ctx, id); err != nil {
					return err
				}
				printSuccess("Deleted %s", id)
			}
			return nil
		},
	}
}

// summaryTable renders stored schematic summaries as a table.
func summaryTable(summaries []store.Summary, now time.Time) string {
	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		name := s.Name
		if name == "" {
			name = "—"
		}
		rows[i] = []string{s.ID, name, fmt.Sprint(s.Components), formatRelativeTime(s.UpdatedAt, now)}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Components", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 2:
				return StyleNumber
			case col == 3:
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// printDocument prints a schematic's header and its components.
func printDocument(doc document.Document) {
	title := doc.Name
	if title == "" {
		title = "Untitled schematic"
	}
	fmt.Println(StyleTitle.Render(title))
	printKeyValue("ID", doc.ID)
	if !doc.UpdatedAt.IsZero() {
		printKeyValue("Updated", doc.UpdatedAt.Local().Format(time.DateTime))
	}
	printSchematicStats(doc)

	if len(doc.Components) == 0 {
		return
	}
	printNewline()
	groups := make(map[string]string, len(doc.Groups))
	for _, g := range doc.Groups {
		groups[g.ID] = g.Name
	}
	for _, comp := range doc.Components {
		line := fmt.Sprintf("%-36s %-18s (%g, %g)", comp.ID, comp.Type, comp.Position.X, comp.Position.Y)
		if name, ok := groups[comp.GroupID]; ok {
			line += "  " + name
		}
		printDetail("%s", line)
	}
}

// formatRelativeTime formats t relative to now for listings.
func formatRelativeTime(t, now time.Time) string {
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
