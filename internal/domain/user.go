package domain

const (
	// UserIDLength is the number of decimal digits in a generated user id.
	UserIDLength = 10

	MinUsernameLength = 3
	MaxUsernameLength = 20
	MinPasswordLength = 8
	MaxPasswordLength = 30

	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
)

// User represents an account of the system.
// PasswordHash is only populated by store lookups that ask for it.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    string
}

// Sanitized returns a copy of the user without credential material.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:        u.ID,
		Username:  u.Username,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

// UserPatch is a partial update. Nil fields are left untouched.
// Password carries plaintext on the way in and a hash on the way to the store.
type UserPatch struct {
	Username *string
	Password *string
	IsAdmin  *bool
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Password == nil && p.IsAdmin == nil
}

// TouchesAdmin reports whether the patch sets the admin flag.
func (p UserPatch) TouchesAdmin() bool {
	return p.IsAdmin != nil
}
