package models

// User is the display identity of an account, as resolved by the user directory.
// Account management itself lives outside this service.
type User struct {
	// ID is the opaque user identifier used as caller identity.
	ID string

	// DisplayName is shown in human-readable messages such as reminder results.
	DisplayName string

	// WalletAddress is the user's receiving address.
	WalletAddress string

	// CreatedAt is the Unix timestamp when the user was first seen.
	CreatedAt int64
}

// Name returns the display name, falling back to the ID.
func (u *User) Name() string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.ID
}
