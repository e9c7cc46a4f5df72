package editor

import (
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pidforge/pkg/catalog"
	"github.com/matzehuels/pidforge/pkg/diagram"
	pferrors "github.com/matzehuels/pidforge/pkg/errors"
	"github.com/matzehuels/pidforge/pkg/geometry"
	"github.com/matzehuels/pidforge/pkg/gesture"
	"github.com/matzehuels/pidforge/pkg/render"
)

// Surface binds a diagram to selection, gesture and rendering state.
type Surface struct {
	defs     *catalog.Catalog
	d        *diagram.Diagram
	sel      diagram.Selection
	matcher  gesture.Matcher
	mover    gesture.Mover
	renderer *render.Renderer
	logger   *log.Logger
	now      func() time.Time
	name     string
	docID    string
}

// Option configures a Surface.
type Option func(*Surface)

// WithLogger sets the logger used for gesture and command events.
func WithLogger(l *log.Logger) Option {
	return func(s *Surface) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDiagram makes the surface edit d instead of a fresh diagram.
func WithDiagram(d *diagram.Diagram) Option {
	return func(s *Surface) {
		if d != nil {
			s.d = d
		}
	}
}

// WithClock sets the clock used to name exports.
func WithClock(now func() time.Time) Option {
	return func(s *Surface) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a surface over an empty diagram that places definitions
// from defs.
func New(defs *catalog.Catalog, opts ...Option) *Surface {
	s := &Surface{
		defs:     defs,
		renderer: render.New(),
		logger:   log.New(io.Discard),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.d == nil {
		s.d = diagram.New()
	}
	return s
}

// Diagram returns the edited diagram.
func (s *Surface) Diagram() *diagram.Diagram { return s.d }

// Catalog returns the definitions available for Drop.
func (s *Surface) Catalog() *catalog.Catalog { return s.defs }

// Selection returns the selected instance ids in selection order.
func (s *Surface) Selection() []string { return s.sel.IDs() }

// Select replaces the selection.
func (s *Surface) Select(ids ...string) {
	s.sel.Select(ids...)
	s.sel.Prune(s.d)
}

// Drop places a new instance of definition defID with its top-left corner
// at p and selects it.
func (s *Surface) Drop(defID string, p geometry.Point) (*diagram.Instance, error) {
	def, ok := s.defs.Get(defID)
	if !ok {
		return nil, pferrors.New(pferrors.ErrCodeNotFound, "unknown component type %q", defID)
	}
	in, err := s.d.AddComponent(def, p.X, p.Y)
	if err != nil {
		return nil, err
	}
	s.sel.Select(in.ID)
	s.logger.Debug("placed component", "type", defID, "id", in.ID, "x", p.X, "y", p.Y)
	return in, nil
}

// Mount sizes the on-screen canvas. Frame and Export fail until it is called.
func (s *Surface) Mount(width, height int) error {
	return s.renderer.Mount(width, height)
}

// Frame paints the diagram with live gesture and selection state.
func (s *Surface) Frame() (image.Image, error) {
	return s.renderer.Frame(s.d, s.view())
}

// SVG renders the diagram with live gesture and selection state as SVG.
func (s *Surface) SVG() []byte {
	return render.RenderSVG(s.d, s.view())
}

// Export rasterizes the committed diagram and returns the PNG bytes with a
// timestamped file name.
func (s *Surface) Export() ([]byte, string, error) {
	data, err := s.renderer.Export(s.d)
	if err != nil {
		s.logger.Warn("export failed", "err", pferrors.UserMessage(err))
		return nil, "", err
	}
	name := render.ExportFilename(s.now())
	s.logger.Info("exported diagram", "file", name, "bytes", len(data))
	return data, name, nil
}

// Name returns the schematic name used when saving.
func (s *Surface) Name() string { return s.name }

// SetName sets the schematic name used when saving.
func (s *Surface) SetName(name string) error {
	if err := pferrors.ValidateName(name); err != nil {
		return err
	}
	s.name = name
	return nil
}

func (s *Surface) view() render.View { return surfaceView{s} }

// surfaceView exposes the transient state of a Surface to the renderer.
type surfaceView struct{ s *Surface }

func (v surfaceView) Position(in *diagram.Instance) geometry.Point {
	return v.s.mover.Position(in)
}

func (v surfaceView) ConnectionPoints(d *diagram.Diagram, c *diagram.Connection) []geometry.Point {
	return v.s.mover.ConnectionPoints(d, c)
}

func (v surfaceView) Draft() (gesture.Draft, bool) { return v.s.matcher.Draft() }
func (v surfaceView) Selected(id string) bool      { return v.s.sel.Contains(id) }

func (v surfaceView) Eligible(ep diagram.Endpoint, p catalog.Port) bool {
	return v.s.matcher.Eligible(ep, p)
}
