package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"mosaic/internal/config"
)

// Session roles. Admin implies user-level access; guest is issued only
// through GuestSession.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
	RoleGuest = "guest"
)

var (
	// ErrInvalidCredentials covers unknown users and wrong passwords alike.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrGuestDisabled is returned when guest sessions are not configured.
	ErrGuestDisabled = errors.New("auth: guest access disabled")
	// ErrInvalidToken covers missing, malformed, and expired tokens.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Claims is the JWT payload mosaic signs.
type Claims struct {
	Role   string `json:"role"`
	Filter string `json:"filter,omitempty"`
	jwt.RegisteredClaims
}

// Session is the result of a successful login, shaped for the login
// response body.
type Session struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Filter    string `json:"filter"`
	ExpiresIn int64  `json:"expiresIn"`
}

// Identity is a verified token's subject.
type Identity struct {
	Username string
	Role     string
	Filter   string
}

// Admin reports whether the identity carries the admin role.
func (id *Identity) Admin() bool {
	return id != nil && id.Role == RoleAdmin
}

// Service authenticates users and signs session tokens.
type Service struct {
	secret []byte
	ttl    time.Duration
	users  map[string]config.User
	guest  config.Guest
}

// NewService builds the auth service from config.
func NewService(cfg *config.Config) *Service {
	return &Service{
		secret: []byte(cfg.Auth.Secret),
		ttl:    time.Duration(cfg.Auth.TokenTTLHours) * time.Hour,
		users:  cfg.Auth.Users,
		guest:  cfg.Auth.Guest,
	}
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// GuestEnabled reports whether GuestSession can succeed.
func (s *Service) GuestEnabled() bool {
	return s.guest.Enabled
}

// Login verifies the password for a configured account and issues a token.
func (s *Service) Login(username, password string) (*Session, error) {
	user, ok := s.users[username]
	if !ok {
		// Burn a comparison so unknown users time like wrong passwords.
		passwordsEqual("", password)
		return nil, ErrInvalidCredentials
	}
	if !passwordsEqual(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(username, user.Role, user.Filter)
}

// GuestSession issues an anonymous token carrying the guest filter.
func (s *Service) GuestSession() (*Session, error) {
	if !s.guest.Enabled {
		return nil, ErrGuestDisabled
	}
	return s.issue("guest", RoleGuest, s.guest.Filter)
}

// Verify parses and validates a signed token.
func (s *Service) Verify(token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{
		Username: claims.Subject,
		Role:     claims.Role,
		Filter:   claims.Filter,
	}, nil
}

func (s *Service) issue(subject, role, filter string) (*Session, error) {
	now := time.Now()
	claims := &Claims{
		Role:   role,
		Filter: filter,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{
		Token:     signed,
		Username:  subject,
		Role:      role,
		Filter:    filter,
		ExpiresIn: int64(s.ttl.Seconds()),
	}, nil
}

func passwordsEqual(want, got string) bool {
	// Hashing first hides the length of the configured password.
	wantSum := sha256.Sum256([]byte(want))
	gotSum := sha256.Sum256([]byte(got))
	return subtle.ConstantTimeCompare(wantSum[:], gotSum[:]) == 1
}
