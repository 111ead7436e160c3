package models

import "time"

// Card is the registry projection for one physical medium. GeoStatus,
// OffloadStatus, Usage and LastOperation are derived from the operation
// ledger and are written only by the transition engine.
type Card struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Birth         *time.Time `json:"birth,omitempty"`
	Quarantine    bool       `json:"quarantine"`
	GeoStatus     string     `json:"geo_status"`
	OffloadStatus string     `json:"offload_status,omitempty"`
	Capacity      int        `json:"capacity"`
	Brand         string     `json:"brand,omitempty"`
	Type          string     `json:"type,omitempty"`
	Usage         int        `json:"usage"`
	LastOperation *time.Time `json:"last_operation,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CreateRequest carries the admin card-creation form.
type CreateRequest struct {
	Name          string     `json:"name"`
	Birth         *time.Time `json:"birth,omitempty"`
	Quarantine    bool       `json:"quarantine"`
	GeoStatus     string     `json:"geo_status,omitempty"`
	OffloadStatus string     `json:"offload_status,omitempty"`
	Capacity      int        `json:"capacity"`
	Brand         string     `json:"brand,omitempty"`
	Type          string     `json:"type,omitempty"`
}
