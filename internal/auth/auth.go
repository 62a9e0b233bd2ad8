package auth

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoPasswordSet      = errors.New("no password has been set")
	ErrPasswordRequired   = errors.New("password is required")
	ErrInvalidToken       = errors.New("invalid token")
)

// Service handles single-user password auth and JWT session tokens.
type Service struct {
	db        *sql.DB
	jwtSecret []byte
	tokenTTL  time.Duration
}

// Claims represents JWT claims.
type Claims struct {
	jwt.RegisteredClaims
}

// NewService creates a new auth service. An empty secret gets replaced
// with a random one, which invalidates sessions across restarts.
func NewService(db *sql.DB, jwtSecret string, tokenTTLHours int) (*Service, error) {
	secret := []byte(jwtSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
	}

	if tokenTTLHours <= 0 {
		tokenTTLHours = 24
	}

	return &Service{
		db:        db,
		jwtSecret: secret,
		tokenTTL:  time.Duration(tokenTTLHours) * time.Hour,
	}, nil
}

// SetPassword sets or updates the authentication password.
func (s *Service) SetPassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO auth (id, password_hash, updated_at)
		VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			password_hash = excluded.password_hash,
			updated_at = CURRENT_TIMESTAMP
	`, string(hash))
	if err != nil {
		return fmt.Errorf("failed to save password: %w", err)
	}
	return nil
}

// ValidatePassword checks if the provided password is correct.
func (s *Service) ValidatePassword(password string) error {
	var hash string
	err := s.db.QueryRow("SELECT password_hash FROM auth WHERE id = 1").Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoPasswordSet
		}
		return fmt.Errorf("failed to get password: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// IsPasswordSet returns true if a password has been configured.
func (s *Service) IsPasswordSet() bool {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM auth WHERE id = 1").Scan(&count)
	return err == nil && count > 0
}

// GenerateToken creates a new JWT session token.
func (s *Service) GenerateToken() (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "shelfmark",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
