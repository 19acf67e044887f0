package services

import (
	"errors"
	"fmt"
	"time"

	"storerating/internal/models"
	"storerating/internal/repositories"
	"storerating/pkg/logger"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by LoginUser for an unknown email or a wrong password.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)

// Claims is the identity carried by a session token.
type Claims struct {
	UserID string
	Name   string
	Email  string
	Role   models.Role
}

// AuthService handles accounts, credentials and session tokens.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	log       *logger.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, log *logger.Logger) *AuthService {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       log.Named("auth"),
	}
}

// RegisterUser creates a self-registered account. Self registration always
// yields the plain user role.
func (s *AuthService) RegisterUser(user *models.User) error {
	user.Role = models.RoleUser
	return s.CreateUser(user)
}

// CreateUser hashes user.Password and stores the account. The email must not
// be taken yet.
func (s *AuthService) CreateUser(user *models.User) error {
	if !user.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", models.ErrInvalidInput, user.Role)
	}
	if existing, err := s.userRepo.GetByEmail(user.Email); err == nil && existing != nil {
		return fmt.Errorf("email '%s' already registered: %w", user.Email, models.ErrConflict)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	if err := s.userRepo.Create(user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user created")
	return nil
}

// LoginUser checks the credentials and returns a signed token with the user.
func (s *AuthService) LoginUser(email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return "", nil, fmt.Errorf("failed to look up user: %w", err)
		}
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// IssueToken signs a session token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a session token.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token: %v", models.ErrUnauthorized, err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", models.ErrUnauthorized)
	}

	claims := &Claims{}
	claims.UserID, _ = mc["user_id"].(string)
	claims.Name, _ = mc["name"].(string)
	claims.Email, _ = mc["email"].(string)
	role, _ := mc["role"].(string)
	claims.Role = models.Role(role)
	if claims.UserID == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: token is missing identity claims", models.ErrUnauthorized)
	}
	return claims, nil
}
