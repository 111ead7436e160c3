package domain

// StatusUnknown is the geo status a card falls back to when no ledger
// entry supports a known location.
const StatusUnknown = "UNKNOWN"

// OffloadNotStarted is the initial offload status for new cards.
const OffloadNotStarted = "Not Started"
