// AngelaMos | 2026
// dto.go

package user

type CreateUserRequest struct {
	Username  string `json:"username"   validate:"required,min=1,max=255"`
	Email     string `json:"email"      validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"omitempty,max=150"`
	LastName  string `json:"last_name"  validate:"omitempty,max=150"`
	Bio       string `json:"bio"        validate:"omitempty,max=500"`
	Role      string `json:"role"       validate:"omitempty,oneof=user moderator admin"`
}

// UpdateUserRequest is a partial update; absent fields stay untouched.
// Role passes validation here and is policed by the service, because the
// self-profile guard drops it silently instead of rejecting.
type UpdateUserRequest struct {
	Username  *string `json:"username,omitempty"   validate:"omitempty,min=1,max=255"`
	Email     *string `json:"email,omitempty"      validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name,omitempty"  validate:"omitempty,max=150"`
	Bio       *string `json:"bio,omitempty"        validate:"omitempty,max=500"`
	Role      *string `json:"role,omitempty"       validate:"omitempty,oneof=user moderator admin"`
}

type UserResponse struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(&u))
	}
	return responses
}
