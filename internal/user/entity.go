// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/ayavrik/yamdb-final/internal/access"
)

type User struct {
	ID        string    `db:"id"`
	Username  string    `db:"username"`
	Email     string    `db:"email"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Bio       string    `db:"bio"`
	Role      string    `db:"role"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == string(access.RoleAdmin)
}

// HasPlainRole reports whether the user holds the unprivileged role; the
// self-profile role guard only applies to these accounts.
func (u *User) HasPlainRole() bool {
	return u.Role == string(access.RoleUser)
}
