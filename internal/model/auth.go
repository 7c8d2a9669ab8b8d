package model

import "github.com/golang-jwt/jwt/v5"

// AuthorClaims are JWT claims for study authors
type AuthorClaims struct {
	AuthorID string `json:"authorId"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for author login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token    string `json:"token"`
	AuthorID string `json:"authorId"`
}
