package domain

// LevelAdmin is the permission level required for catalog and account
// administration.
const LevelAdmin = 48

// Actor is the authenticated user performing an operation. Ledger
// entries record the name as plain text.
type Actor struct {
	Name  string
	Level int
}

// Can reports whether the actor meets the required permission level.
func (a Actor) Can(required int) bool {
	return a.Level >= required
}
