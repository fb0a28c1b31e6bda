package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Роли участников API.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	MemberID             int    `json:"member_id"` // ID участника кооператива
	Role                 string `json:"role"`      // Роль: member или admin
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}
