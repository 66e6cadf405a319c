package auth

import (
	"errors"
	"fmt"
	"time"

	"mesob/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/jinzhu/gorm"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when login fails
var ErrInvalidCredentials = errors.New("invalid email or password")

// Claims carries the JWT payload for an authenticated user
type Claims struct {
	UserID uint   `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// Service issues and validates bearer tokens and manages user accounts
type Service struct {
	db       *gorm.DB
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates a new auth service
func NewService(db *gorm.DB, secret string, tokenTTL time.Duration) *Service {
	return &Service{db: db, secret: []byte(secret), tokenTTL: tokenTTL}
}

// CreateUser registers a user with a bcrypt-hashed password
func (s *Service) CreateUser(email, fullName, role, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}
	if role == "" {
		role = string(models.RoleStaff)
	}
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		FullName:     fullName,
		Role:         role,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and returns a signed token with the user
func (s *Service) Login(email, password string) (string, *models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(&user)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// IssueToken signs a JWT for the user with the configured TTL
func (s *Service) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenTTL).Unix(),
			Subject:   user.Email,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken validates a token string and returns its claims
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// ListUsers returns all user accounts
func (s *Service) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("email").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns one user account
func (s *Service) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
