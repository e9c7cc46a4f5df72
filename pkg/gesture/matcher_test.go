package gesture

import (
	"reflect"
	"testing"

	"github.com/matzehuels/pidforge/pkg/catalog"
	"github.com/matzehuels/pidforge/pkg/diagram"
	"github.com/matzehuels/pidforge/pkg/geometry"
)

func place(t *testing.T, d *diagram.Diagram, defID string, x, y float64) *diagram.Instance {
	t.Helper()
	def, ok := catalog.Default().Get(defID)
	if !ok {
		t.Fatalf("definition %q missing", defID)
	}
	in, err := d.AddComponent(def, x, y)
	if err != nil {
		t.Fatal(err)
	}
	return in
}

func TestCanConnect(t *testing.T) {
	directions := []catalog.Direction{catalog.DirectionIn, catalog.DirectionOut, catalog.DirectionBidirectional}
	for _, fk := range catalog.Kinds {
		for _, tk := range catalog.Kinds {
			for _, fd := range directions {
				for _, td := range directions {
					from := catalog.Port{Name: "a", Kind: fk, Direction: fd}
					to := catalog.Port{Name: "b", Kind: tk, Direction: td}
					want := (fd == catalog.DirectionOut || fd == catalog.DirectionBidirectional) &&
						(td == catalog.DirectionIn || td == catalog.DirectionBidirectional) &&
						fk == tk
					if got := CanConnect(from, to); got != want {
						t.Errorf("CanConnect(%v %v -> %v %v) = %v, want %v", fk, fd, tk, td, got, want)
					}
				}
			}
		}
	}
}

func TestMatcherConnect(t *testing.T) {
	d := diagram.New()
	a := place(t, d, "tank", 100, 150)
	b := place(t, d, "pump", 300, 200)

	var m Matcher
	if !m.Begin(d, a.ID, "outlet") {
		t.Fatal("Begin(outlet) rejected")
	}
	draft, _ := m.Draft()
	if draft.Kind != catalog.KindPipe || draft.Origin != geometry.Pt(200, 190) {
		t.Errorf("draft = %+v", draft)
	}
	m.Track(geometry.Pt(250, 210))
	if draft, _ := m.Draft(); draft.Cursor != geometry.Pt(250, 210) {
		t.Errorf("Cursor = %v", draft.Cursor)
	}

	c, ok := m.Complete(d, b.ID, "suction")
	if !ok {
		t.Fatal("Complete(suction) rejected")
	}
	if c.Kind != catalog.KindPipe {
		t.Errorf("Kind = %v", c.Kind)
	}
	want := []geometry.Point{geometry.Pt(200, 190), geometry.Pt(300, 220)}
	if !reflect.DeepEqual(c.Points, want) {
		t.Errorf("Points = %v, want %v", c.Points, want)
	}
	if len(d.Connections()) != 1 {
		t.Errorf("connections = %d, want 1", len(d.Connections()))
	}
	if m.Active() {
		t.Error("draft survived Complete")
	}
}

func TestMatcherRejects(t *testing.T) {
	tests := []struct {
		name      string
		beginComp string
		beginPort string
		endComp   string
		endPort   string
		wantBegin bool
	}{
		{"kind mismatch", "tank", "outlet", "valve", "control_signal", true},
		{"target is an output", "tank", "outlet", "pump", "discharge", true},
		{"unknown target port", "tank", "outlet", "pump", "nozzle", true},
		{"own endpoint", "tank", "outlet", "tank", "outlet", true},
		{"begin on input port", "pump", "suction", "tank", "inlet", false},
		{"begin on unknown port", "tank", "drain", "pump", "suction", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := diagram.New()
			ids := map[string]string{
				"tank":  place(t, d, "tank", 100, 150).ID,
				"pump":  place(t, d, "pump", 300, 200).ID,
				"valve": place(t, d, "control_valve", 500, 200).ID,
			}

			var m Matcher
			if got := m.Begin(d, ids[tt.beginComp], tt.beginPort); got != tt.wantBegin {
				t.Fatalf("Begin = %v, want %v", got, tt.wantBegin)
			}
			if _, ok := m.Complete(d, ids[tt.endComp], tt.endPort); ok {
				t.Error("Complete should reject")
			}
			if n := len(d.Connections()); n != 0 {
				t.Errorf("connections = %d, want 0", n)
			}
			if m.Active() {
				t.Error("draft survived rejection")
			}
		})
	}
}

func TestMatcherBidirectional(t *testing.T) {
	def := &catalog.Definition{ID: "header", Ports: []catalog.Port{
		{Name: "a", Kind: catalog.KindPipe, Direction: catalog.DirectionBidirectional},
		{Name: "b", Kind: catalog.KindPipe, Direction: catalog.DirectionBidirectional},
	}}
	d := diagram.New()
	x, _ := d.AddComponent(def, 0, 0)
	y, _ := d.AddComponent(def, 300, 0)

	var m Matcher
	if !m.Begin(d, x.ID, "b") {
		t.Fatal("bidirectional port should start a draft")
	}
	if _, ok := m.Complete(d, y.ID, "a"); !ok {
		t.Error("bidirectional port should accept a draft")
	}
}

func TestMatcherRejectsSelfWire(t *testing.T) {
	def := &catalog.Definition{ID: "header", Ports: []catalog.Port{
		{Name: "a", Kind: catalog.KindPipe, Direction: catalog.DirectionBidirectional},
		{Name: "b", Kind: catalog.KindPipe, Direction: catalog.DirectionBidirectional},
	}}

	tests := []struct {
		name string
		port string
		want bool
	}{
		{"same port", "b", false},
		{"sibling port", "a", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := diagram.New()
			x, _ := d.AddComponent(def, 0, 0)

			var m Matcher
			if !m.Begin(d, x.ID, "b") {
				t.Fatal("Begin rejected a bidirectional port")
			}
			if got := m.Eligible(diagram.Endpoint{Component: x.ID, Port: tt.port}, def.Ports[0]); got != tt.want {
				t.Errorf("Eligible = %v, want %v", got, tt.want)
			}
			if _, ok := m.Complete(d, x.ID, tt.port); ok != tt.want {
				t.Errorf("Complete = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestMatcherCancel(t *testing.T) {
	d := diagram.New()
	a := place(t, d, "tank", 0, 0)
	b := place(t, d, "pump", 300, 0)

	var m Matcher
	m.Begin(d, a.ID, "outlet")
	m.Cancel()
	if m.Active() {
		t.Error("Cancel left a draft")
	}
	if _, ok := m.Complete(d, b.ID, "suction"); ok {
		t.Error("Complete without draft should reject")
	}
	if len(d.Connections()) != 0 {
		t.Error("cancelled draft created a connection")
	}
}

func TestMatcherBeginReplacesDraft(t *testing.T) {
	d := diagram.New()
	a := place(t, d, "tank", 0, 0)
	lc := place(t, d, "level_controller", 0, 200)

	var m Matcher
	m.Begin(d, a.ID, "outlet")
	m.Begin(d, lc.ID, "output")
	draft, _ := m.Draft()
	if draft.From.Component != lc.ID || draft.Kind != catalog.KindSignal {
		t.Errorf("draft = %+v", draft)
	}

	m.Begin(d, a.ID, "inlet")
	if m.Active() {
		t.Error("rejected Begin should still discard the previous draft")
	}
}

func TestMatcherEligible(t *testing.T) {
	d := diagram.New()
	a := place(t, d, "tank", 0, 0)
	v := place(t, d, "control_valve", 300, 0)
	tank, _ := catalog.Default().Get("tank")
	valve, _ := catalog.Default().Get("control_valve")
	port := func(def *catalog.Definition, name string) catalog.Port {
		p, _ := def.Port(name)
		return p
	}

	var m Matcher
	if m.Eligible(diagram.Endpoint{Component: v.ID, Port: "inlet"}, port(valve, "inlet")) {
		t.Error("no draft, nothing is eligible")
	}
	m.Begin(d, a.ID, "outlet")

	tests := []struct {
		ep   diagram.Endpoint
		p    catalog.Port
		want bool
	}{
		{diagram.Endpoint{Component: v.ID, Port: "inlet"}, port(valve, "inlet"), true},
		{diagram.Endpoint{Component: v.ID, Port: "outlet"}, port(valve, "outlet"), false},
		{diagram.Endpoint{Component: v.ID, Port: "control_signal"}, port(valve, "control_signal"), false},
		{diagram.Endpoint{Component: a.ID, Port: "inlet"}, port(tank, "inlet"), true},
		{diagram.Endpoint{Component: a.ID, Port: "outlet"}, port(tank, "outlet"), false},
	}
	for _, tt := range tests {
		if got := m.Eligible(tt.ep, tt.p); got != tt.want {
			t.Errorf("Eligible(%s) = %v, want %v", tt.ep.Port, got, tt.want)
		}
	}
}
