package document

import (
	"time"

	"github.com/matzehuels/pidforge/pkg/geometry"
)

// Version is the current document format version.
const Version = 1

// Document is the serialization format for a diagram.
type Document struct {
	ID          string       `json:"id,omitempty" bson:"_id,omitempty"`
	Version     int          `json:"version" bson:"version"`
	Name        string       `json:"name,omitempty" bson:"name,omitempty"`
	Components  []Component  `json:"components" bson:"components"`
	Connections []Connection `json:"connections" bson:"connections"`
	Groups      []Group      `json:"groups" bson:"groups"`
	UpdatedAt   time.Time    `json:"updated_at,omitzero" bson:"updated_at,omitempty"`
}

// Component is a placed instance of a catalog definition.
type Component struct {
	ID         string         `json:"id" bson:"id"`
	Type       string         `json:"type" bson:"type"` // catalog definition id
	Position   geometry.Point `json:"position" bson:"position"`
	Parameters map[string]any `json:"parameters,omitempty" bson:"parameters,omitempty"`
	GroupID    string         `json:"group_id,omitempty" bson:"group_id,omitempty"`
}

// Endpoint names one port of one component.
type Endpoint struct {
	Component string `json:"component" bson:"component"`
	Port      string `json:"port" bson:"port"`
}

// Connection is a wire between two endpoints.
type Connection struct {
	ID     string           `json:"id" bson:"id"`
	From   Endpoint         `json:"from" bson:"from"`
	To     Endpoint         `json:"to" bson:"to"`
	Kind   string           `json:"kind" bson:"kind"`
	Points []geometry.Point `json:"points,omitempty" bson:"points,omitempty"`
}

// Group is a named cluster. Membership is recorded on components.
type Group struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}
