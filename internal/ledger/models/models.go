package models

import "cardtrack/pkg/domain"

// Operation is one executed transition in the ledger. Immutable once
// written: cancellation moves it to the canceled ledger rather than
// editing it in place.
type Operation struct {
	ID            int64            `json:"id"`
	Actor         string           `json:"actor"`
	CardName      string           `json:"card_name"`
	GeoStatus     string           `json:"geo_status"`
	OffloadStatus string           `json:"offload_status,omitempty"`
	Timestamp     domain.Timestamp `json:"timestamp"`
}

// CanceledOperation is a copy of an Operation moved out of the live ledger,
// plus the actor who canceled it. Append-only; never replayed back.
type CanceledOperation struct {
	Operation
	CanceledBy string `json:"canceled_by"`
}

// MoveRequest describes one requested transition. An empty status on either
// axis carries the card's current value forward.
type MoveRequest struct {
	CardName      string `json:"card_name"`
	GeoStatus     string `json:"geo_status,omitempty"`
	OffloadStatus string `json:"offload_status,omitempty"`
}

// OverrideRequest is the administrative direct-edit path. It replaces every
// mutable card field and still goes through the ledger so the projection
// never silently diverges from history.
type OverrideRequest struct {
	CardName      string `json:"card_name"`
	GeoStatus     string `json:"geo_status"`
	OffloadStatus string `json:"offload_status"`
	Quarantine    bool   `json:"quarantine"`
	Capacity      int    `json:"capacity"`
	Brand         string `json:"brand"`
	Type          string `json:"type"`
}
