package domain

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string    `json:"id" bson:"id"`
	Email        string    `json:"email" bson:"email"`
	FullName     string    `json:"full_name" bson:"full_name"`
	Role         Role      `json:"role" bson:"role"`
	PasswordHash string    `json:"-" bson:"password"`
	IsActive     bool      `json:"is_active" bson:"is_active"`
	Phone        *string   `json:"phone,omitempty" bson:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}
