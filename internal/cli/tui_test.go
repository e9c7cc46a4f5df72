package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/pidforge/pkg/catalog"
	"github.com/matzehuels/pidforge/pkg/editor"
	"github.com/matzehuels/pidforge/pkg/geometry"
)

// keys feeds named keys to m. Unnamed strings are typed as runes.
func keys(t *testing.T, m EditorModel, names ...string) EditorModel {
	t.Helper()
	special := map[string]tea.KeyType{
		"enter":     tea.KeyEnter,
		"esc":       tea.KeyEsc,
		"tab":       tea.KeyTab,
		"shift+tab": tea.KeyShiftTab,
		"backspace": tea.KeyBackspace,
		"up":        tea.KeyUp,
		"down":      tea.KeyDown,
		"left":      tea.KeyLeft,
		"right":     tea.KeyRight,
	}
	for _, name := range names {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
		if kt, ok := special[name]; ok {
			msg = tea.KeyMsg{Type: kt}
		}
		next, _ := m.Update(msg)
		m = next.(EditorModel)
	}
	return m
}

func repeat(name string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = name
	}
	return out
}

// newEditor places a tank at (100,150) and a pump at (300,200) through
// the palette.
func newEditor(t *testing.T) EditorModel {
	t.Helper()
	s := editor.New(catalog.Default(), editor.WithClock(func() time.Time {
		return time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	}))
	if err := s.Mount(800, 600); err != nil {
		t.Fatal(err)
	}
	m := NewEditorModel(s, nil)
	m.ExportDir = t.TempDir()

	m.Cursor = geometry.Pt(100, 150)
	m = keys(t, m, "a")
	m = keys(t, m, "tab", "tab")
	m.Cursor = geometry.Pt(300, 200)
	m = keys(t, m, "a")

	if n := s.Diagram().Len(); n != 2 {
		t.Fatalf("placed %d components, want 2", n)
	}
	return m
}

func instance(t *testing.T, m EditorModel, defID string) string {
	t.Helper()
	for _, in := range m.Surface.Diagram().Components() {
		if in.Definition.ID == defID {
			return in.ID
		}
	}
	t.Fatalf("no %s placed", defID)
	return ""
}

func TestEditorWire(t *testing.T) {
	m := newEditor(t)

	// Press on the tank outlet, walk to the pump suction and release.
	m.Cursor = geometry.Pt(200, 190)
	m = keys(t, m, "enter")
	if !m.Surface.Connecting() {
		t.Fatal("press on an output port did not start a connection")
	}
	m = keys(t, m, repeat("right", 10)...)
	m = keys(t, m, repeat("down", 3)...)
	m = keys(t, m, "enter")

	conns := m.Surface.Diagram().Connections()
	if len(conns) != 1 {
		t.Fatalf("connections = %d, want 1", len(conns))
	}
	if conns[0].From.Port != "outlet" || conns[0].To.Port != "suction" {
		t.Errorf("wired %s -> %s", conns[0].From.Port, conns[0].To.Port)
	}
	if msg, isErr := m.Status(); isErr || !strings.HasPrefix(msg, "Connected pipe") {
		t.Errorf("status = %q (error %v)", msg, isErr)
	}
	if !m.Dirty() {
		t.Error("wiring did not mark the schematic modified")
	}
}

func TestEditorReleaseOffTarget(t *testing.T) {
	m := newEditor(t)
	m.Cursor = geometry.Pt(200, 190)
	m = keys(t, m, "enter", "down", "down", "enter")

	if n := len(m.Surface.Diagram().Connections()); n != 0 {
		t.Errorf("connections = %d, want 0", n)
	}
	if m.Surface.Connecting() || m.Pressed {
		t.Error("draft survived the release")
	}
}

func TestEditorDrag(t *testing.T) {
	m := newEditor(t)
	pump := instance(t, m, "pump")

	m.Cursor = geometry.Pt(350, 210)
	m = keys(t, m, "enter")
	m = keys(t, m, repeat("right", 5)...)
	if pos, _ := m.Surface.Effective(pump); pos != geometry.Pt(350, 200) {
		t.Errorf("effective position mid-drag = %v", pos)
	}
	in, _ := m.Surface.Diagram().Component(pump)
	if in.Position != geometry.Pt(300, 200) {
		t.Errorf("committed position moved mid-drag: %v", in.Position)
	}

	m = keys(t, m, "enter")
	in, _ = m.Surface.Diagram().Component(pump)
	if in.Position != geometry.Pt(350, 200) {
		t.Errorf("position after drag = %v, want (350,200)", in.Position)
	}
}

func TestEditorGroupAndNudge(t *testing.T) {
	m := newEditor(t)
	tank, pump := instance(t, m, "tank"), instance(t, m, "pump")

	m.Cursor = geometry.Pt(150, 160)
	m = keys(t, m, "m")
	if got := m.Surface.Selection(); len(got) != 2 {
		t.Fatalf("selection = %v, want both", got)
	}

	m = keys(t, m, "g")
	if msg, isErr := m.Status(); isErr || !strings.HasPrefix(msg, "Grouped 2 components") {
		t.Fatalf("status = %q", msg)
	}

	m.Surface.Select(tank)
	m = keys(t, m, "L", "J")
	for id, want := range map[string]geometry.Point{tank: geometry.Pt(110, 160), pump: geometry.Pt(310, 210)} {
		if in, _ := m.Surface.Diagram().Component(id); in.Position != want {
			t.Errorf("%s at %v, want %v", in.Definition.ID, in.Position, want)
		}
	}

	m.Surface.Select(tank, pump)
	m = keys(t, m, "u")
	if n := len(m.Surface.Diagram().Groups()); n != 0 {
		t.Errorf("groups after ungroup = %d, want 0", n)
	}
}

func TestEditorGroupPrecondition(t *testing.T) {
	m := newEditor(t)
	m = keys(t, m, "g")
	msg, isErr := m.Status()
	if !isErr || msg == "" {
		t.Errorf("grouping one component: status = %q (error %v)", msg, isErr)
	}
	if n := len(m.Surface.Diagram().Groups()); n != 0 {
		t.Errorf("groups = %d, want 0", n)
	}
}

func TestEditorEmptyCatalog(t *testing.T) {
	defs, err := catalog.New()
	if err != nil {
		t.Fatal(err)
	}
	s := editor.New(defs)
	if err := s.Mount(800, 600); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"tab", "shift+tab", "a"} {
		t.Run(key, func(t *testing.T) {
			m := keys(t, NewEditorModel(s, nil), key)
			msg, isErr := m.Status()
			if !isErr || msg != "the catalog is empty" {
				t.Errorf("status = %q (error %v)", msg, isErr)
			}
			if m.Palette != 0 {
				t.Errorf("Palette = %d, want 0", m.Palette)
			}
			if n := s.Diagram().Len(); n != 0 {
				t.Errorf("placed %d components", n)
			}
		})
	}
}

func TestEditorProperties(t *testing.T) {
	m := newEditor(t)
	tank := instance(t, m, "tank")
	m.Surface.Select(tank)

	m = keys(t, m, "p", "a", "b", "c", "enter")
	if msg, isErr := m.Status(); !isErr || !strings.Contains(msg, "number") {
		t.Errorf("non-numeric volume: status = %q (error %v)", msg, isErr)
	}

	m = keys(t, m, "backspace", "backspace", "backspace", "7", "5", "enter")
	props, err := m.Surface.Properties(tank)
	if err != nil {
		t.Fatal(err)
	}
	if got := props.Values[0].Display; got != "75 m³" {
		t.Errorf("volume = %q, want %q", got, "75 m³")
	}

	// Down to material, which only accepts its options.
	m = keys(t, m, "down", "down", "down", "g", "o", "l", "d", "enter")
	if _, isErr := m.Status(); !isErr {
		t.Error("material outside its options accepted")
	}
	m = keys(t, m, "esc")
	if m.mode != modeNormal {
		t.Error("esc did not leave property mode")
	}
}

func TestEditorPropertiesNeedSingleSelection(t *testing.T) {
	m := newEditor(t)
	m.Surface.Select()
	m = keys(t, m, "p")
	if m.mode != modeNormal {
		t.Error("property mode entered without a selection")
	}
}

func TestEditorDeleteAndClear(t *testing.T) {
	m := newEditor(t)

	m = keys(t, m, "x")
	if n := m.Surface.Diagram().Len(); n != 1 {
		t.Errorf("after delete: %d components, want 1", n)
	}

	m = keys(t, m, "C", "n")
	if n := m.Surface.Diagram().Len(); n != 1 {
		t.Error("clear ran without confirmation")
	}
	m = keys(t, m, "C", "y")
	if n := m.Surface.Diagram().Len(); n != 0 {
		t.Errorf("after confirmed clear: %d components", n)
	}
}

func TestEditorRename(t *testing.T) {
	m := newEditor(t)
	m = keys(t, m, "n", "F", "e", "e", "d", "enter")
	if got := m.Surface.Name(); got != "Feed" {
		t.Errorf("name = %q, want Feed", got)
	}
	if !strings.Contains(m.View(), "Feed") {
		t.Error("view does not show the name")
	}
}

func TestEditorSave(t *testing.T) {
	m := newEditor(t)
	m = keys(t, m, "s")
	if _, isErr := m.Status(); !isErr {
		t.Error("save without a target reported success")
	}

	path := filepath.Join(t.TempDir(), "plant.json")
	m.save = fileSaver(path)
	m = keys(t, m, "s")
	if msg, isErr := m.Status(); isErr || msg != "Saved "+path {
		t.Errorf("status = %q", msg)
	}
	if m.Dirty() {
		t.Error("still dirty after save")
	}

	reopened := editor.New(catalog.Default())
	if err := openFile(reopened, path); err != nil {
		t.Fatalf("openFile: %v", err)
	}
	if n := reopened.Diagram().Len(); n != 2 {
		t.Errorf("reopened %d components, want 2", n)
	}

	failing := func(*editor.Surface) (string, error) { return "", errors.New("disk full") }
	m.save = failing
	m = keys(t, m, "s")
	if msg, isErr := m.Status(); !isErr || msg != "disk full" {
		t.Errorf("failed save status = %q (error %v)", msg, isErr)
	}
}

func TestOpenFileMissing(t *testing.T) {
	s := editor.New(catalog.Default())
	if err := openFile(s, filepath.Join(t.TempDir(), "new.json")); err != nil {
		t.Errorf("missing file: %v", err)
	}
}

func TestEditorExport(t *testing.T) {
	m := newEditor(t)
	m = keys(t, m, "e")
	want := filepath.Join(m.ExportDir, "pid-diagram-2026-10-19T08-30-00.png")
	if msg, isErr := m.Status(); isErr || msg != "Exported "+want {
		t.Errorf("status = %q", msg)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("export not written: %v", err)
	}
}

func TestEditorView(t *testing.T) {
	m := newEditor(t)
	m.Cursor = geometry.Pt(200, 190)
	view := m.View()
	for _, want := range []string{"Untitled schematic", "Storage Tank", "port outlet (pipe out)", "Pump"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q", want)
		}
	}
}
