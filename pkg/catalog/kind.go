package catalog

import "fmt"

// Kind is the compatibility category of a port or connection.
// Only ports of equal kind may be wired together.
type Kind int

const (
	KindPipe Kind = iota
	KindSignal
	KindElectrical
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{KindPipe, KindSignal, KindElectrical}

var kindNames = [...]string{
	KindPipe:       "pipe",
	KindSignal:     "signal",
	KindElectrical: "electrical",
}

// String returns the lower-case kind name used in catalog files.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool { return k >= 0 && int(k) < len(kindNames) }

// ParseKind parses a kind name ("pipe", "signal", "electrical").
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown port kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid port kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Direction says whether a port may originate, terminate, or both.
type Direction int

const (
	DirectionIn Direction = iota
	DirectionOut
	DirectionBidirectional
)

var directionNames = [...]string{
	DirectionIn:            "in",
	DirectionOut:           "out",
	DirectionBidirectional: "bidirectional",
}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

// Valid reports whether d is one of the declared directions.
func (d Direction) Valid() bool { return d >= 0 && int(d) < len(directionNames) }

// CanSource reports whether a connection may start at a port with this direction.
func (d Direction) CanSource() bool { return d == DirectionOut || d == DirectionBidirectional }

// CanSink reports whether a connection may end at a port with this direction.
func (d Direction) CanSink() bool { return d == DirectionIn || d == DirectionBidirectional }

// ParseDirection parses "in", "out" or "bidirectional".
func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if name == s {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown port direction %q", s)
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid port direction %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// CanConnect reports whether a connection may run from port from to port to:
// from must be able to source, to must be able to sink, and kinds must match.
func CanConnect(from, to Port) bool {
	return from.Direction.CanSource() && to.Direction.CanSink() && from.Kind == to.Kind
}
