package models

// Session identifies the authenticated caller for operations that need
// identity or role. It is passed explicitly into each such operation;
// authentication itself happens upstream of this service.
type Session struct {
	UserID    string `json:"user_id"`
	CreatorID string `json:"creator_id"`
	Role      string `json:"role"`
}

// IsAdmin reports whether the session carries the admin role
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
