package models

// Entry is one named member of a status vocabulary. Both the geo and the
// offload vocabularies share this shape.
type Entry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Axis selects which vocabulary an operation targets.
type Axis string

const (
	AxisGeo     Axis = "geo"
	AxisOffload Axis = "offload"
)
