package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pidforge/pkg/diagram"
	"github.com/matzehuels/pidforge/pkg/document"
	"github.com/matzehuels/pidforge/pkg/render"
	"github.com/matzehuels/pidforge/pkg/render/topology"
)

const (
	formatPNG      = "png"      // cropped raster export
	formatSVG      = "svg"      // vector drawing of the committed diagram
	formatDOT      = "dot"      // graphviz source of the component topology
	formatTopology = "topology" // graphviz-rendered topology SVG
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file (single format) or base path (several)
	formats  []string // output formats, see validFormats
	detailed bool     // list parameter values in topology nodes
	stored   bool     // treat the argument as a stored schematic id
}

// renderCommand creates the render command. Output paths are derived from
// the input unless -o is given.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <schematic.json | id>",
		Short: "Render a schematic to PNG, SVG or a topology graph",
		Long: `Render a schematic document.

The document is checked against the catalog before rendering. Formats:
  png       cropped raster export, 2x scale
  svg       vector drawing
  dot       graphviz source of the component topology
  topology  topology rendered to SVG by graphviz

Use "-" to read the document from stdin, or --stored to render a schematic
from the configured store by id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): png (default), svg, dot, topology (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show parameter values in the topology")
	cmd.Flags().BoolVar(&opts.stored, "stored", false, "load the schematic from the store by id")

	return cmd
}

// parseFormats parses the --format flag. If empty, defaults to ["png"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatPNG}
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}

// validFormats maps each output format to its file suffix.
var validFormats = map[string]string{
	formatPNG:      ".png",
	formatSVG:      ".svg",
	formatDOT:      ".dot",
	formatTopology: "_topology.svg",
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	if len(formats) == 0 {
		return fmt.Errorf("no output format given")
	}
	for _, f := range formats {
		if _, ok := validFormats[f]; !ok {
			return fmt.Errorf("invalid format: %s (must be 'png', 'svg', 'dot' or 'topology')", f)
		}
	}
	return nil
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input. If output carries
// a known extension, that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return "schematic"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	switch ext := filepath.Ext(output); ext {
	case ".png", ".svg", ".dot":
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns where format is written.
func outputPath(input, format string, opts *renderOpts) string {
	if opts.output != "" && len(opts.formats) == 1 {
		return opts.output
	}
	return basePath(opts.output, input) + validFormats[format]
}

// runRender loads and validates the document, then writes every requested
// format.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	defs, err := c.loadCatalog(ctx)
	if err != nil {
		return err
	}
	doc, err := c.readDocument(ctx, input, opts.stored)
	if err != nil {
		return err
	}
	d, err := doc.ToDiagram(defs)
	if err != nil {
		return err
	}
	logger.Infof("Loaded schematic: %d components, %d connections", d.Len(), len(d.Connections()))

	for _, format := range opts.formats {
		data, err := renderDiagram(ctx, d, format, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
		path := outputPath(input, format, opts)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debugf("Generated %s: %d bytes", format, len(data))
		printFile(path)
	}
	printSchematicStats(doc)
	return nil
}

// renderDiagram dispatches to the renderer for format.
func renderDiagram(ctx context.Context, d *diagram.Diagram, format string, opts *renderOpts) ([]byte, error) {
	logger := loggerFromContext(ctx)

	switch format {
	case formatPNG:
		logger.Info("Rendering PNG")
		return render.ExportDiagram(d)
	case formatSVG:
		logger.Info("Rendering SVG")
		return render.RenderSVG(d, render.Committed{}), nil
	case formatDOT:
		return []byte(topology.ToDOT(d, topology.Options{Detailed: opts.detailed})), nil
	case formatTopology:
		logger.Info("Rendering topology with graphviz")
		return topology.RenderSVG(topology.ToDOT(d, topology.Options{Detailed: opts.detailed}))
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// readDocument loads a schematic from a file, stdin ("-") or the store.
func (c *CLI) readDocument(ctx context.Context, ref string, stored bool) (document.Document, error) {
	if stored {
		st, err := c.openStore(ctx)
		if err != nil {
			return document.Document{}, err
		}
		defer st.Close()
		return st.Load(ctx, ref)
	}
	if ref == "-" {
		return document.Read(os.Stdin)
	}
	return document.ReadFile(ref)
}
