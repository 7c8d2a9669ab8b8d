package service

import (
	"errors"
	"time"

	"studybuilder/internal/config"
	"studybuilder/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService handles author authentication
type AuthService struct {
	username  string
	password  string
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(cfg config.AuthConfig) *AuthService {
	return &AuthService{
		username:  cfg.Username,
		password:  cfg.Password,
		jwtSecret: []byte(cfg.JWTSecret),
		tokenTTL:  12 * time.Hour,
	}
}

// Login validates credentials and returns a signed author token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.username || password != s.password {
		return nil, ErrInvalidCredentials
	}

	authorID := AuthorID(username)
	tokenString, err := s.IssueToken(authorID)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:    tokenString,
		AuthorID: authorID,
	}, nil
}

// AuthorID is the stable identity behind a username; studies are owned by it
// across logins
func AuthorID(username string) string {
	return "author_" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(username)).String()
}

// IssueToken signs a token for an author
func (s *AuthService) IssueToken(authorID string) (string, error) {
	now := time.Now()
	claims := &model.AuthorClaims{
		AuthorID: authorID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates an author JWT and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*model.AuthorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.AuthorClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.AuthorClaims)
	if !ok || !token.Valid || claims.AuthorID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
