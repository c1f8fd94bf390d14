package user

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
	RoleTalent Role = "talent"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleClient, RoleTalent:
		return true
	}
	return false
}

type User struct {
	Id        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type TalentProfile struct {
	UserId          string `json:"userId"`
	FullName        string `json:"fullName"`
	ExperienceBadge string `json:"experienceBadge"`
	ResumeUrl       string `json:"resumeUrl,omitempty"`
}

type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	FullName        string `json:"fullName" validate:"required"`
	Role            Role   `json:"role" validate:"required,oneof=client talent"`
	ExperienceBadge string `json:"experienceBadge,omitempty" validate:"omitempty,oneof=Specialist 'Pro Talent' 'Expert Talent'"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
