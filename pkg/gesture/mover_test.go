package gesture

import (
	"reflect"
	"sync"
	"testing"

	"github.com/matzehuels/pidforge/pkg/diagram"
	"github.com/matzehuels/pidforge/pkg/geometry"
	"github.com/matzehuels/pidforge/pkg/observability"
)

func connect(t *testing.T, d *diagram.Diagram, from, fromPort, to, toPort string) *diagram.Connection {
	t.Helper()
	c, err := d.AddConnection(diagram.Connection{
		From: diagram.Endpoint{Component: from, Port: fromPort},
		To:   diagram.Endpoint{Component: to, Port: toPort},
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func clonePoints(cs []*diagram.Connection) map[string][]geometry.Point {
	out := make(map[string][]geometry.Point, len(cs))
	for _, c := range cs {
		out[c.ID] = append([]geometry.Point(nil), c.Points...)
	}
	return out
}

func TestMoverSingle(t *testing.T) {
	d := diagram.New()
	a := place(t, d, "tank", 0, 0)
	b := place(t, d, "pump", 300, 0)
	c := place(t, d, "tank", 600, 0)
	x := place(t, d, "level_controller", 0, 300)
	y := place(t, d, "control_valve", 300, 300)
	ab := connect(t, d, a.ID, "outlet", b.ID, "suction")
	bc := connect(t, d, b.ID, "discharge", c.ID, "inlet")
	xy := connect(t, d, x.ID, "output", y.ID, "control_signal")
	before := clonePoints(d.Connections())

	var m Mover
	if !m.Start(d, b.ID, geometry.Pt(350, 40)) {
		t.Fatal("Start rejected")
	}
	m.Move(geometry.Pt(380, 50))

	// Live display follows the cursor, committed state does not.
	if p, _ := m.Effective(b.ID); p != geometry.Pt(30, 10).Add(geometry.Pt(300, 0)) {
		t.Errorf("Effective = %v", p)
	}
	if b.Position != geometry.Pt(300, 0) {
		t.Error("position committed mid-gesture")
	}
	if !reflect.DeepEqual(ab.Points, before[ab.ID]) {
		t.Error("connection points committed mid-gesture")
	}
	live := m.ConnectionPoints(d, ab)
	if live[0] != before[ab.ID][0] || live[1] != before[ab.ID][1].Add(geometry.Pt(30, 10)) {
		t.Errorf("live points = %v", live)
	}

	moved, err := m.End(geometry.Pt(400, 60))
	if err != nil {
		t.Fatal(err)
	}
	delta := geometry.Pt(50, 20)
	if !reflect.DeepEqual(moved, []string{b.ID}) {
		t.Errorf("moved = %v", moved)
	}
	if b.Position != geometry.Pt(300, 0).Add(delta) {
		t.Errorf("b.Position = %v", b.Position)
	}
	if a.Position != geometry.Pt(0, 0) || c.Position != geometry.Pt(600, 0) {
		t.Error("ungrouped move displaced another instance")
	}

	// Far endpoints stay put, near endpoints move by delta.
	if ab.Points[0] != before[ab.ID][0] || ab.Points[1] != before[ab.ID][1].Add(delta) {
		t.Errorf("ab = %v, before %v", ab.Points, before[ab.ID])
	}
	if bc.Points[0] != before[bc.ID][0].Add(delta) || bc.Points[1] != before[bc.ID][1] {
		t.Errorf("bc = %v, before %v", bc.Points, before[bc.ID])
	}
	if !reflect.DeepEqual(xy.Points, before[xy.ID]) {
		t.Error("unrelated connection was rerouted")
	}
	if m.Active() {
		t.Error("mover still active after End")
	}
}

func TestMoverGroup(t *testing.T) {
	d := diagram.New()
	p := place(t, d, "pump", 300, 200)
	c := place(t, d, "level_controller", 300, 400)
	other := place(t, d, "tank", 0, 0)
	if _, err := d.CreateGroup([]string{p.ID, c.ID}); err != nil {
		t.Fatal(err)
	}
	wire := connect(t, d, other.ID, "outlet", p.ID, "suction")
	offset := c.Position.Sub(p.Position)

	var m Mover
	grab := geometry.Pt(350, 230)
	m.Start(d, p.ID, grab)
	m.Move(grab.Add(geometry.Pt(50, 20)))

	if got, _ := m.Effective(c.ID); got != geometry.Pt(350, 420) {
		t.Errorf("sibling effective = %v, want (350,420)", got)
	}
	if got := m.Position(other); got != other.Position {
		t.Errorf("non-member effective = %v", got)
	}
	if c.Position != geometry.Pt(300, 400) {
		t.Error("sibling committed mid-gesture")
	}

	if _, err := m.End(grab.Add(geometry.Pt(50, 20))); err != nil {
		t.Fatal(err)
	}
	if p.Position != geometry.Pt(350, 220) || c.Position != geometry.Pt(350, 420) {
		t.Errorf("after commit p=%v c=%v", p.Position, c.Position)
	}
	if got := c.Position.Sub(p.Position); got != offset {
		t.Errorf("relative offset %v, want %v", got, offset)
	}
	if other.Position != geometry.Pt(0, 0) {
		t.Error("non-member moved")
	}
	suction, _ := d.PortPosition(wire.To)
	if wire.Points[1] != suction {
		t.Errorf("wire end %v, port at %v", wire.Points[1], suction)
	}
}

func TestMoverZeroDelta(t *testing.T) {
	d := diagram.New()
	a := place(t, d, "tank", 10, 10)

	var m Mover
	m.Start(d, a.ID, geometry.Pt(20, 20))
	m.Move(geometry.Pt(90, 90))
	moved, err := m.End(geometry.Pt(20, 20))
	if err != nil || moved != nil {
		t.Errorf("End = %v, %v", moved, err)
	}
	if a.Position != geometry.Pt(10, 10) {
		t.Errorf("Position = %v", a.Position)
	}
}

func TestMoverCancel(t *testing.T) {
	d := diagram.New()
	a := place(t, d, "tank", 10, 10)

	var m Mover
	if m.Start(d, "ghost", geometry.Point{}) {
		t.Error("Start(unknown) accepted")
	}
	m.Start(d, a.ID, geometry.Point{})
	m.Move(geometry.Pt(5, 5))
	m.Cancel()
	if m.Active() || m.Moving(a.ID) {
		t.Error("Cancel left state behind")
	}
	if moved, _ := m.End(geometry.Pt(40, 40)); moved != nil {
		t.Error("End after Cancel committed")
	}
	if a.Position != geometry.Pt(10, 10) {
		t.Errorf("Position = %v", a.Position)
	}
}

type recordingHooks struct {
	observability.NoopEditorHooks
	mu      sync.Mutex
	starts  []string
	commits []bool
}

func (r *recordingHooks) OnGestureStart(g string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts = append(r.starts, g)
}

func (r *recordingHooks) OnGestureEnd(_ string, committed bool, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits = append(r.commits, committed)
}

func TestGestureHooks(t *testing.T) {
	rec := &recordingHooks{}
	observability.SetEditorHooks(rec)
	t.Cleanup(observability.Reset)

	d := diagram.New()
	a := place(t, d, "tank", 0, 0)
	b := place(t, d, "pump", 300, 0)

	var mv Mover
	mv.Start(d, a.ID, geometry.Point{})
	_, _ = mv.End(geometry.Pt(10, 0))

	var mt Matcher
	mt.Begin(d, a.ID, "outlet")
	mt.Complete(d, b.ID, "discharge")

	if !reflect.DeepEqual(rec.starts, []string{observability.GestureDrag, observability.GestureConnect}) {
		t.Errorf("starts = %v", rec.starts)
	}
	if !reflect.DeepEqual(rec.commits, []bool{true, false}) {
		t.Errorf("commits = %v", rec.commits)
	}
}
