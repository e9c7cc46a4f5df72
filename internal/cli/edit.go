package cli

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pidforge/pkg/document"
	"github.com/matzehuels/pidforge/pkg/editor"
	"github.com/matzehuels/pidforge/pkg/store"
)

// editCanvas is the canvas the terminal editor mounts so exports work.
const (
	editCanvasWidth  = 1600
	editCanvasHeight = 1200
)

// editCommand creates the edit command that runs the terminal editor.
func (c *CLI) editCommand() *cobra.Command {
	var stored string

	cmd := &cobra.Command{
		Use:   "edit [schematic.json]",
		Short: "Edit a schematic in the terminal",
		Long: `Edit a schematic interactively.

With a file argument the schematic is read from that file (when it exists)
and saved back to it. With --stored it is opened from the configured store.
Without either a new schematic is started and saved to the store.

The cursor stands in for the mouse: move it with the arrow keys, press and
release with space. Pressing on an output port and releasing on a compatible
input port wires them; pressing on a component and releasing elsewhere moves
it, together with its group.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return c.runEdit(cmd.Context(), path, stored)
		},
	}

	cmd.Flags().StringVar(&stored, "stored", "", "open a stored schematic by id")
	return cmd
}

// runEdit prepares a surface and its save target, then runs the editor
// until the user quits.
func (c *CLI) runEdit(ctx context.Context, path, stored string) error {
	logger := loggerFromContext(ctx)

	defs, err := c.loadCatalog(ctx)
	if err != nil {
		return err
	}
	s := editor.New(defs, editor.WithLogger(logger))
	if err := s.Mount(editCanvasWidth, editCanvasHeight); err != nil {
		return err
	}

	var save SaveFunc
	if path != "" && stored == "" {
		if err := openFile(s, path); err != nil {
			return err
		}
		save = fileSaver(path)
	} else {
		st, err := c.openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if stored != "" {
			if err := s.Open(ctx, st, stored); err != nil {
				return err
			}
		}
		save = storeSaver(ctx, st)
	}

	// The editor owns the terminal; keep log lines from tearing the view.
	level := c.Logger.GetLevel()
	c.SetLogLevel(LogError)
	defer c.SetLogLevel(level)

	final, err := tea.NewProgram(NewEditorModel(s, save), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(EditorModel); ok && m.Dirty() {
		printWarning("Quit with unsaved changes")
	}
	return nil
}

// openFile loads path into s. A missing file starts an empty schematic.
func openFile(s *editor.Surface, path string) error {
	doc, err := document.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.LoadDocument(doc)
}

// fileSaver writes the surface to path.
func fileSaver(path string) SaveFunc {
	return func(s *editor.Surface) (string, error) {
		if err := document.WriteFile(s.Document(), path); err != nil {
			return "", err
		}
		return path, nil
	}
}

// storeSaver saves the surface to st.
func storeSaver(ctx context.Context, st store.Store) SaveFunc {
	return func(s *editor.Surface) (string, error) {
		return s.Save(ctx, st)
	}
}
