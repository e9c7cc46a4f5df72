package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/pidforge/pkg/catalog"
	"github.com/matzehuels/pidforge/pkg/editor"
	pferrors "github.com/matzehuels/pidforge/pkg/errors"
	"github.com/matzehuels/pidforge/pkg/geometry"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	cursorStep = 10 // arrow keys; every port sits on this grid when components do
	fineStep   = 1  // shift+arrows
	nudgeStep  = 10 // H/J/K/L
)

// editMode is what keystrokes currently mean.
type editMode int

const (
	modeNormal editMode = iota
	modeProperty
	modeRename
	modeConfirmClear
)

// =============================================================================
// EditorModel - Interactive schematic editor
// =============================================================================

// SaveFunc persists the surface and returns where it went.
type SaveFunc func(s *editor.Surface) (string, error)

// EditorModel is the bubbletea model of the terminal editor. A keyboard
// cursor in diagram coordinates stands in for the pointer: space or enter
// presses and releases it, so dragging from a port to another port wires
// them and dragging a body moves it.
type EditorModel struct {
	Surface   *editor.Surface
	Cursor    geometry.Point
	Pressed   bool
	Palette   int
	ExportDir string

	save   SaveFunc
	mode   editMode
	input  string
	param  int
	status string
	isErr  bool
	dirty  bool
}

// NewEditorModel creates an editor model over s. save may be nil when the
// schematic cannot be saved.
func NewEditorModel(s *editor.Surface, save SaveFunc) EditorModel {
	return EditorModel{
		Surface:   s,
		Cursor:    geometry.Pt(100, 100),
		ExportDir: ".",
		save:      save,
	}
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if key.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeProperty:
		return m.updateProperty(key), nil
	case modeRename:
		return m.updateRename(key), nil
	case modeConfirmClear:
		return m.updateConfirmClear(key), nil
	}
	return m.updateNormal(key)
}

func (m EditorModel) updateNormal(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.Surface
	m.status, m.isErr = "", false

	switch key.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(0, -cursorStep)
	case "down", "j":
		m.moveCursor(0, cursorStep)
	case "left", "h":
		m.moveCursor(-cursorStep, 0)
	case "right", "l":
		m.moveCursor(cursorStep, 0)
	case "shift+up":
		m.moveCursor(0, -fineStep)
	case "shift+down":
		m.moveCursor(0, fineStep)
	case "shift+left":
		m.moveCursor(-fineStep, 0)
	case "shift+right":
		m.moveCursor(fineStep, 0)
	case " ", "enter":
		m.togglePress()
	case "m":
		m.release()
		s.PointerDown(m.Cursor, true)
		_, _ = s.PointerUp(m.Cursor)
	case "esc":
		s.CancelGesture()
		m.Pressed = false
	case "tab", "shift+tab", "a":
		n := s.Catalog().Len()
		if n == 0 {
			m.report(pferrors.New(pferrors.ErrCodePrecondition, "the catalog is empty"), "")
			break
		}
		if k := key.String(); k != "a" {
			step := 1
			if k == "shift+tab" {
				step = n - 1
			}
			m.Palette = (m.Palette + step) % n
			break
		}
		m.release()
		def := s.Catalog().List()[m.Palette]
		in, err := s.Drop(def.ID, m.Cursor)
		if err != nil {
			m.report(err, "")
			break
		}
		m.changed(nil, "Placed %s %s", def.Label(), shortID(in.ID))
	case "g":
		g, err := s.GroupSelection()
		if err != nil {
			m.report(err, "")
			break
		}
		m.changed(nil, "Grouped %s as %s", pluralize(len(s.Diagram().MemberIDs(g.ID)), "component"), g.Name)
	case "u":
		m.changed(s.UngroupSelection(), "Ungrouped selection")
	case "x", "delete":
		n := len(s.Selection())
		m.changed(s.DeleteSelection(), "Deleted %s", pluralize(n, "component"))
	case "H":
		m.nudge(-nudgeStep, 0)
	case "J":
		m.nudge(0, nudgeStep)
	case "K":
		m.nudge(0, -nudgeStep)
	case "L":
		m.nudge(nudgeStep, 0)
	case "C":
		if s.Diagram().Len() > 0 {
			m.mode = modeConfirmClear
		}
	case "p":
		if _, ok := s.SelectedProperties(); !ok {
			m.report(pferrors.New(pferrors.ErrCodePrecondition, "select exactly one component to edit its properties"), "")
			break
		}
		m.mode, m.param, m.input = modeProperty, 0, ""
	case "n":
		m.mode, m.input = modeRename, s.Name()
	case "s":
		m.doSave()
	case "e":
		m.doExport()
	}
	return m, nil
}

// moveCursor moves the virtual pointer, feeding an active gesture.
func (m *EditorModel) moveCursor(dx, dy float64) {
	m.Cursor = m.Cursor.Add(geometry.Pt(dx, dy))
	if m.Pressed {
		m.Surface.PointerMove(m.Cursor)
	}
}

// nudge moves the selection by one nudge step.
func (m *EditorModel) nudge(dx, dy float64) {
	if len(m.Surface.Selection()) == 0 {
		return
	}
	m.changed(m.Surface.Nudge(geometry.Pt(dx, dy)), "")
}

// togglePress presses the pointer, or releases it when already pressed.
func (m *EditorModel) togglePress() {
	if !m.Pressed {
		m.Surface.PointerDown(m.Cursor, false)
		m.Pressed = true
		return
	}
	m.release()
}

// release lifts a held pointer at the cursor and reports the outcome.
func (m *EditorModel) release() {
	if !m.Pressed {
		return
	}
	s := m.Surface
	connecting, dragging := s.Connecting(), s.Dragging()
	m.Pressed = false
	conn, err := s.PointerUp(m.Cursor)
	switch {
	case err != nil:
		m.report(err, "")
	case conn != nil:
		m.changed(nil, "Connected %s %s.%s → %s.%s", conn.Kind,
			shortID(conn.From.Component), conn.From.Port, shortID(conn.To.Component), conn.To.Port)
	case connecting:
		m.status = "No compatible port under the cursor"
	case dragging:
		m.dirty = true
	}
}

func (m EditorModel) updateProperty(key tea.KeyMsg) EditorModel {
	props, ok := m.Surface.SelectedProperties()
	if !ok || len(props.Values) == 0 {
		m.mode = modeNormal
		return m
	}
	m.param = min(m.param, len(props.Values)-1)

	switch key.String() {
	case "esc":
		m.mode = modeNormal
	case "up":
		m.param = (m.param + len(props.Values) - 1) % len(props.Values)
		m.input = ""
	case "down", "tab":
		m.param = (m.param + 1) % len(props.Values)
		m.input = ""
	case "backspace":
		m.input = dropLastRune(m.input)
	case "enter":
		p := props.Values[m.param]
		if err := m.Surface.SetProperty(props.ID, p.Name, m.input); err != nil {
			m.report(err, "")
			return m
		}
		m.changed(nil, "Set %s", p.Name)
		m.input = ""
	default:
		m.input = appendKey(m.input, key)
	}
	return m
}

func (m EditorModel) updateRename(key tea.KeyMsg) EditorModel {
	switch key.String() {
	case "esc":
		m.mode = modeNormal
	case "backspace":
		m.input = dropLastRune(m.input)
	case "enter":
		if err := m.Surface.SetName(m.input); err != nil {
			m.report(err, "")
			return m
		}
		m.mode = modeNormal
		m.changed(nil, "Renamed to %s", m.input)
	default:
		m.input = appendKey(m.input, key)
	}
	return m
}

func (m EditorModel) updateConfirmClear(key tea.KeyMsg) EditorModel {
	m.mode = modeNormal
	if key.String() != "y" {
		m.status, m.isErr = "Clear cancelled", false
		return m
	}
	m.changed(m.Surface.Clear(true), "Cleared the diagram")
	return m
}

func (m *EditorModel) doSave() {
	if m.save == nil {
		m.report(pferrors.New(pferrors.ErrCodePrecondition, "this schematic has nowhere to be saved"), "")
		return
	}
	where, err := m.save(m.Surface)
	if err != nil {
		m.report(err, "")
		return
	}
	m.dirty = false
	m.report(nil, "Saved %s", where)
}

func (m *EditorModel) doExport() {
	data, name, err := m.Surface.Export()
	if err != nil {
		m.report(err, "")
		return
	}
	path := filepath.Join(m.ExportDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		m.report(pferrors.Wrap(pferrors.ErrCodeStorage, err, "write %s", path), "")
		return
	}
	m.report(nil, "Exported %s", path)
}

// report shows err as a notice, or the formatted success message.
func (m *EditorModel) report(err error, format string, args ...any) {
	if err != nil {
		m.status, m.isErr = pferrors.UserMessage(err), true
		return
	}
	m.isErr = false
	if format != "" {
		m.status = fmt.Sprintf(format, args...)
	}
}

// changed reports the outcome of a mutation and marks the schematic as
// modified when it succeeded.
func (m *EditorModel) changed(err error, format string, args ...any) {
	m.report(err, format, args...)
	if err == nil {
		m.dirty = true
	}
}

// Dirty reports whether the schematic changed since it was last saved.
func (m EditorModel) Dirty() bool { return m.dirty }

// Status returns the last notice and whether it reports a failure.
func (m EditorModel) Status() (string, bool) { return m.status, m.isErr }

func (m EditorModel) View() string {
	var b strings.Builder
	s := m.Surface

	title := s.Name()
	if title == "" {
		title = "Untitled schematic"
	}
	if m.dirty {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(m.helpLine()))
	b.WriteString("\n\n")

	b.WriteString(m.paletteLine())
	b.WriteString("\n")
	b.WriteString(m.cursorLine())
	b.WriteString("\n\n")

	if s.Diagram().Len() == 0 {
		b.WriteString(listDimStyle.Render("  Empty diagram. Pick a component with tab and place it with a."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.componentTable())
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  %s · %s",
			pluralize(len(s.Diagram().Connections()), "connection"),
			pluralize(len(s.Diagram().Groups()), "group"))))
		b.WriteString("\n")
	}

	if props, ok := s.SelectedProperties(); ok {
		b.WriteString("\n")
		b.WriteString(m.propertyPanel(props))
	}

	switch {
	case m.mode == modeRename:
		b.WriteString("\n" + StyleHighlight.Render("Name: ") + m.input + "▏\n")
	case m.mode == modeConfirmClear:
		b.WriteString("\n" + StyleWarning.Render("Remove every component? y/N") + "\n")
	case m.status != "" && m.isErr:
		b.WriteString("\n" + styleIconError.Render(iconError) + " " + m.status + "\n")
	case m.status != "":
		b.WriteString("\n" + styleIconSuccess.Render(iconSuccess) + " " + m.status + "\n")
	}
	return b.String()
}

func (m EditorModel) helpLine() string {
	switch m.mode {
	case modeProperty:
		return "↑/↓ parameter  type a value  ⏎ apply  esc done"
	case modeRename:
		return "type a name  ⏎ apply  esc cancel"
	}
	return "arrows move  space press/release  m multi-select  tab/a pick/place  g/u group/ungroup  x delete  HJKL nudge  p props  n name  s save  e export  C clear  q quit"
}

func (m EditorModel) paletteLine() string {
	defs := m.Surface.Catalog().List()
	parts := make([]string, len(defs))
	for i, d := range defs {
		label := strings.TrimSpace(d.Icon + " " + d.Label())
		if i == m.Palette {
			parts[i] = listSelectedStyle.Render("[" + label + "]")
		} else {
			parts[i] = listNormalStyle.Render(" " + label + " ")
		}
	}
	return "  " + strings.Join(parts, " ")
}

func (m EditorModel) cursorLine() string {
	s := m.Surface
	line := fmt.Sprintf("  cursor (%g, %g)", m.Cursor.X, m.Cursor.Y)

	hit := s.HitTest(m.Cursor)
	if !hit.Canvas() {
		in, _ := s.Diagram().Component(hit.Component)
		line += "  over " + in.Definition.Label() + " " + shortID(in.ID)
		if hit.Port != "" {
			if p, ok := in.Definition.Port(hit.Port); ok {
				line += fmt.Sprintf(" port %s (%s %s)", p.Name, p.Kind, p.Direction)
			}
		}
	}

	switch {
	case s.Connecting():
		line += "  " + StyleHighlight.Render("connecting")
	case s.Dragging():
		line += "  " + StyleHighlight.Render("dragging")
	case m.Pressed:
		line += "  " + StyleHighlight.Render("pressed")
	}
	return line
}

func (m EditorModel) componentTable() string {
	s := m.Surface
	selected := make(map[string]bool)
	for _, id := range s.Selection() {
		selected[id] = true
	}

	groupNames := make(map[string]string)
	for _, g := range s.Diagram().Groups() {
		groupNames[g.ID] = g.Name
	}

	ins := s.Diagram().Components()
	rows := make([][]string, len(ins))
	for i, in := range ins {
		marker := "  "
		if selected[in.ID] {
			marker = "▸ "
		}
		pos, _ := s.Effective(in.ID)
		group := groupNames[in.GroupID]
		if group == "" {
			group = "—"
		}
		rows[i] = []string{marker, shortID(in.ID), in.Definition.Label(), fmt.Sprintf("%g, %g", pos.X, pos.Y), group}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Type", "Position", "Group").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < len(ins) && selected[ins[row].ID] {
				return listSelectedStyle
			}
			if col == 4 {
				return listDimStyle
			}
			return listNormalStyle
		}).
		Render()
}

func (m EditorModel) propertyPanel(props editor.Properties) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(props.Definition.Label() + " " + shortID(props.ID)))
	b.WriteString("\n")
	for i, v := range props.Values {
		cursor := "  "
		if m.mode == modeProperty && i == m.param {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-16s %s", cursor, v.Name, v.Display)
		if m.mode == modeProperty && i == m.param {
			line += "  " + StyleHighlight.Render("← "+m.input+"▏")
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		if hint := parameterHint(v.Parameter); hint != "" {
			b.WriteString(listDimStyle.Render("  " + hint))
		}
		b.WriteString("\n")
	}
	for _, c := range props.Constraints {
		b.WriteString(listDimStyle.Render("  · " + c))
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// parameterHint describes what a parameter accepts.
func parameterHint(p catalog.Parameter) string {
	var hints []string
	if len(p.Options) > 0 {
		hints = append(hints, strings.Join(p.Options, " | "))
	} else if p.Numeric() {
		hints = append(hints, "number")
	}
	if p.Required {
		hints = append(hints, "required")
	}
	return strings.Join(hints, ", ")
}

// shortID abbreviates a generated id for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// appendKey appends the text typed by key to s.
func appendKey(s string, key tea.KeyMsg) string {
	switch key.Type {
	case tea.KeyRunes:
		return s + string(key.Runes)
	case tea.KeySpace:
		return s + " "
	}
	return s
}

func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}
