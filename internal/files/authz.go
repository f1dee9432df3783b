package files

// Access is the capability a caller holds over a file.
type Access int

const (
	AccessDenied Access = iota
	AccessOwner
	AccessAdmin
	AccessPublic
)

// Caller identifies the requesting principal. A zero Caller is an
// anonymous visitor.
type Caller struct {
	UserID string
	Admin  bool
}

// Authorize decides the caller's capability over a file. Full/original
// payload access requires Owner or Admin. Public delivery paths grant
// AccessPublic without calling this; reachability through a visible
// post or share is enforced by those callers.
func Authorize(caller Caller, f File) Access {
	if caller.UserID != "" && caller.UserID == f.UserID {
		return AccessOwner
	}
	if caller.Admin {
		return AccessAdmin
	}
	return AccessDenied
}
