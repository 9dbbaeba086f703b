package domain

import "github.com/golang-jwt/jwt/v5"

const RoleAdmin = "admin"

// Claims são as informações carregadas no token de operação
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
