package diagram

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/matzehuels/pidforge/pkg/catalog"
	pferrors "github.com/matzehuels/pidforge/pkg/errors"
	"github.com/matzehuels/pidforge/pkg/geometry"
)

// seqIDs returns an id generator yielding id1, id2, ...
func seqIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id%d", n)
	})
}

func def(t *testing.T, id string) *catalog.Definition {
	t.Helper()
	d, ok := catalog.Default().Get(id)
	if !ok {
		t.Fatalf("definition %q missing", id)
	}
	return d
}

func place(t *testing.T, d *Diagram, defID string, x, y float64) *Instance {
	t.Helper()
	in, err := d.AddComponent(def(t, defID), x, y)
	if err != nil {
		t.Fatalf("AddComponent(%s): %v", defID, err)
	}
	return in
}

func TestAddComponent(t *testing.T) {
	d := New()
	a := place(t, d, "tank", 100, 150)
	b := place(t, d, "tank", 100, 150)

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("ids not unique: %q %q", a.ID, b.ID)
	}
	if a.Position != geometry.Pt(100, 150) {
		t.Errorf("Position = %v", a.Position)
	}
	if a.GroupID != "" || len(a.Params) != 0 {
		t.Errorf("new instance has group %q params %v", a.GroupID, a.Params)
	}
	if a.Definition != def(t, "tank") {
		t.Error("instance should reference the catalog definition")
	}
	if _, err := d.AddComponent(nil, 0, 0); !pferrors.Is(err, pferrors.ErrCodeInvalidInput) {
		t.Errorf("AddComponent(nil) = %v", err)
	}
}

func TestUpdateComponentEmptyPatch(t *testing.T) {
	d := New()
	in := place(t, d, "pump", 10, 20)
	_ = d.SetParameter(in.ID, "head", 12.0)
	before := *in
	beforeParams := fmt.Sprint(in.Params)

	if err := d.UpdateComponent(in.ID, Patch{}); err != nil {
		t.Fatalf("UpdateComponent: %v", err)
	}
	if !reflect.DeepEqual(before, *in) || fmt.Sprint(in.Params) != beforeParams {
		t.Errorf("empty patch changed instance: %+v -> %+v", before, *in)
	}
}

func TestUpdateComponent(t *testing.T) {
	d := New()
	a := place(t, d, "pump", 0, 0)
	b := place(t, d, "tank", 50, 50)

	pos := geometry.Pt(7, 8)
	err := d.UpdateComponent(a.ID, Patch{Position: &pos, Params: map[string]any{"head": 30.0}})
	if err != nil {
		t.Fatal(err)
	}
	if a.Position != pos || a.Params["head"] != 30.0 {
		t.Errorf("a = %+v", a)
	}
	if b.Position != geometry.Pt(50, 50) {
		t.Errorf("unrelated instance moved to %v", b.Position)
	}

	missing := "nope"
	if err := d.UpdateComponent(a.ID, Patch{Position: &geometry.Point{}, GroupID: &missing}); !pferrors.Is(err, pferrors.ErrCodeNotFound) {
		t.Errorf("unknown group err = %v", err)
	}
	if a.Position != pos {
		t.Error("rejected patch was partially applied")
	}
	if err := d.UpdateComponent("ghost", Patch{Position: &pos}); !pferrors.Is(err, pferrors.ErrCodeNotFound) {
		t.Errorf("unknown id err = %v", err)
	}
}

func TestSetParameterDoesNotValidate(t *testing.T) {
	d := New()
	in := place(t, d, "tank", 0, 0)
	if err := d.SetParameter(in.ID, "material", "cardboard"); err != nil {
		t.Fatalf("SetParameter: %v", err)
	}
	if got := in.Value("material"); got != "cardboard" {
		t.Errorf("Value(material) = %v", got)
	}
	if got := in.Value("volume"); got != nil {
		t.Errorf("Value(volume) = %v, want nil default", got)
	}
}

func TestInstanceValueDefault(t *testing.T) {
	d := New()
	in := place(t, d, "pump", 0, 0)
	if got := in.Value("efficiency"); got != float64(75) {
		t.Errorf("Value(efficiency) = %v", got)
	}
}

func TestAddConnection(t *testing.T) {
	d := New()
	a := place(t, d, "tank", 100, 150)
	b := place(t, d, "pump", 300, 200)
	v := place(t, d, "control_valve", 500, 100)

	tests := []struct {
		name     string
		from, to Endpoint
		wantCode pferrors.Code
	}{
		{"pipe out to pipe in", Endpoint{a.ID, "outlet"}, Endpoint{b.ID, "suction"}, ""},
		{"kind mismatch", Endpoint{a.ID, "outlet"}, Endpoint{v.ID, "control_signal"}, pferrors.ErrCodeInvalidInput},
		{"source is an input", Endpoint{b.ID, "suction"}, Endpoint{a.ID, "inlet"}, pferrors.ErrCodeInvalidInput},
		{"target is an output", Endpoint{a.ID, "outlet"}, Endpoint{b.ID, "discharge"}, pferrors.ErrCodeInvalidInput},
		{"unknown port", Endpoint{a.ID, "drain"}, Endpoint{b.ID, "suction"}, pferrors.ErrCodeNotFound},
		{"unknown component", Endpoint{a.ID, "outlet"}, Endpoint{"ghost", "suction"}, pferrors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := len(d.Connections())
			c, err := d.AddConnection(Connection{From: tt.from, To: tt.to})
			if tt.wantCode != "" {
				if !pferrors.Is(err, tt.wantCode) {
					t.Errorf("err = %v, want %s", err, tt.wantCode)
				}
				if len(d.Connections()) != n {
					t.Error("rejected connection was stored")
				}
				return
			}
			if err != nil {
				t.Fatalf("AddConnection: %v", err)
			}
			if c.Kind != catalog.KindPipe {
				t.Errorf("Kind = %v", c.Kind)
			}
			want := []geometry.Point{geometry.Pt(200, 190), geometry.Pt(300, 220)}
			if !reflect.DeepEqual(c.Points, want) {
				t.Errorf("Points = %v, want %v", c.Points, want)
			}
		})
	}
}

func TestAddConnectionRejectsSelfWire(t *testing.T) {
	def := &catalog.Definition{ID: "header", Ports: []catalog.Port{
		{Name: "nozzle", Kind: catalog.KindPipe, Direction: catalog.DirectionBidirectional},
	}}
	d := New()
	x, _ := d.AddComponent(def, 0, 0)

	_, err := d.AddConnection(Connection{From: Endpoint{x.ID, "nozzle"}, To: Endpoint{x.ID, "nozzle"}})
	if !pferrors.Is(err, pferrors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
	if n := len(d.Connections()); n != 0 {
		t.Errorf("connections = %d, want 0", n)
	}
}

func TestAddConnectionAllowsDuplicates(t *testing.T) {
	d := New()
	a := place(t, d, "tank", 0, 0)
	b := place(t, d, "pump", 200, 0)
	wire := Connection{From: Endpoint{a.ID, "outlet"}, To: Endpoint{b.ID, "suction"}}

	c1, err1 := d.AddConnection(wire)
	c2, err2 := d.AddConnection(wire)
	if err1 != nil || err2 != nil {
		t.Fatalf("AddConnection: %v, %v", err1, err2)
	}
	if c1.ID == c2.ID || len(d.Connections()) != 2 {
		t.Errorf("want two distinct wires, got %d", len(d.Connections()))
	}
}

func TestUpdateConnection(t *testing.T) {
	d := New()
	a := place(t, d, "tank", 0, 0)
	b := place(t, d, "pump", 200, 0)
	c, _ := d.AddConnection(Connection{From: Endpoint{a.ID, "outlet"}, To: Endpoint{b.ID, "suction"}})
	orig := c.Points

	if err := d.UpdateConnection(c.ID, ConnectionPatch{}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c.Points, orig) {
		t.Error("empty patch changed points")
	}
	pts := []geometry.Point{geometry.Pt(1, 1), geometry.Pt(2, 2)}
	_ = d.UpdateConnection(c.ID, ConnectionPatch{Points: pts})
	pts[0] = geometry.Pt(9, 9)
	if c.Points[0] != geometry.Pt(1, 1) {
		t.Error("UpdateConnection must copy points")
	}
	if err := d.UpdateConnection("ghost", ConnectionPatch{Points: pts}); !pferrors.Is(err, pferrors.ErrCodeNotFound) {
		t.Errorf("unknown id err = %v", err)
	}
}

func TestRemoveComponentCascades(t *testing.T) {
	d := New()
	a := place(t, d, "tank", 0, 0)
	b := place(t, d, "pump", 200, 0)
	c := place(t, d, "tank", 400, 0)
	_, _ = d.AddConnection(Connection{From: Endpoint{a.ID, "outlet"}, To: Endpoint{b.ID, "suction"}})
	keep, _ := d.AddConnection(Connection{From: Endpoint{b.ID, "discharge"}, To: Endpoint{c.ID, "inlet"}})
	g, _ := d.CreateGroup([]string{a.ID, c.ID})

	if err := d.RemoveComponent(a.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := d.Component(a.ID); ok {
		t.Error("instance still present")
	}
	conns := d.Connections()
	if len(conns) != 1 || conns[0].ID != keep.ID {
		t.Errorf("connections after remove = %v", conns)
	}
	if _, ok := d.Group(g.ID); !ok {
		t.Error("group with a remaining member was pruned")
	}

	_ = d.RemoveComponent(c.ID)
	if _, ok := d.Group(g.ID); ok {
		t.Error("empty group not pruned")
	}
	if err := d.RemoveComponent("ghost"); !pferrors.Is(err, pferrors.ErrCodeNotFound) {
		t.Errorf("unknown id err = %v", err)
	}
}

func TestRemoveConnection(t *testing.T) {
	d := New()
	a := place(t, d, "tank", 0, 0)
	b := place(t, d, "pump", 200, 0)
	c, _ := d.AddConnection(Connection{From: Endpoint{a.ID, "outlet"}, To: Endpoint{b.ID, "suction"}})

	if err := d.RemoveConnection(c.ID); err != nil {
		t.Fatal(err)
	}
	if len(d.Connections()) != 0 {
		t.Error("connection not removed")
	}
	if err := d.RemoveConnection(c.ID); !pferrors.Is(err, pferrors.ErrCodeNotFound) {
		t.Errorf("second remove err = %v", err)
	}
}

func TestRemoveAll(t *testing.T) {
	d := New()
	a := place(t, d, "tank", 0, 0)
	b := place(t, d, "pump", 200, 0)
	_, _ = d.AddConnection(Connection{From: Endpoint{a.ID, "outlet"}, To: Endpoint{b.ID, "suction"}})
	_, _ = d.CreateGroup([]string{a.ID, b.ID})

	d.RemoveAll()
	if d.Len() != 0 || len(d.Connections()) != 0 || len(d.Groups()) != 0 {
		t.Errorf("RemoveAll left %d components, %d connections, %d groups",
			d.Len(), len(d.Connections()), len(d.Groups()))
	}
	if !d.Extent().Empty() {
		t.Error("Extent of empty diagram should be empty")
	}
}

func TestConnectionsOf(t *testing.T) {
	d := New()
	a := place(t, d, "tank", 0, 0)
	b := place(t, d, "pump", 200, 0)
	c := place(t, d, "tank", 400, 0)
	ab, _ := d.AddConnection(Connection{From: Endpoint{a.ID, "outlet"}, To: Endpoint{b.ID, "suction"}})
	bc, _ := d.AddConnection(Connection{From: Endpoint{b.ID, "discharge"}, To: Endpoint{c.ID, "inlet"}})

	tests := []struct {
		ids  []string
		want []*Connection
	}{
		{[]string{a.ID}, []*Connection{ab}},
		{[]string{b.ID}, []*Connection{ab, bc}},
		{[]string{a.ID, c.ID}, []*Connection{ab, bc}},
		{nil, nil},
	}
	for _, tt := range tests {
		if got := d.ConnectionsOf(tt.ids...); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ConnectionsOf(%v) = %v, want %v", tt.ids, got, tt.want)
		}
	}
}

func ExampleDiagram_AddConnection() {
	defs := catalog.Default()
	tank, _ := defs.Get("tank")
	pump, _ := defs.Get("pump")

	d := New()
	a, _ := d.AddComponent(tank, 100, 150)
	b, _ := d.AddComponent(pump, 300, 200)
	c, _ := d.AddConnection(Connection{
		From: Endpoint{Component: a.ID, Port: "outlet"},
		To:   Endpoint{Component: b.ID, Port: "suction"},
	})
	fmt.Println(c.Kind, c.Points)
	// Output: pipe [{200 190} {300 220}]
}
