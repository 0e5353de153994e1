package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/webiot/signage-admin-core/internal/auth/entity"
	authrepo "github.com/webiot/signage-admin-core/internal/auth/repo"
)

// TokenTTL is how long an issued session token stays valid. There is no
// refresh mechanism; expiry forces a new login.
const TokenTTL = 2 * time.Hour

var (
	ErrEmailNotFound  = errors.New("email not found")
	ErrBadPassword    = errors.New("incorrect password")
	ErrEmailTaken     = errors.New("email already registered")
	ErrTokenRejected  = errors.New("token rejected")
	ErrInvalidPayload = errors.New("invalid payload")
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// UserStore is the slice of the user repository the service depends on.
type UserStore interface {
	Create(ctx context.Context, u *entity.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, email, hash string) error
}

// HistoryStore records and serves login events.
type HistoryStore interface {
	Append(ctx context.Context, userID int64, displayName, role string) error
	List(ctx context.Context) ([]entity.LoginHistory, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// Claims embeds identity and role into the session token.
type Claims struct {
	UserID    int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// DisplayName mirrors entity.User.DisplayName for token-derived credentials.
func (c *Claims) DisplayName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Service orchestrates registration, login and session token lifecycle.
type Service struct {
	users   UserStore
	history HistoryStore
	hasher  PasswordHasher
	secret  []byte
}

// NewService constructs a Service. Nil stores are built from db using the
// sqlx repositories; tests pass fakes instead.
func NewService(db *sqlx.DB, users UserStore, history HistoryStore, hasher PasswordHasher, secret []byte) *Service {
	if users == nil {
		users = authrepo.NewUserRepo(db)
	}
	if history == nil {
		history = authrepo.NewLoginHistoryRepo(db)
	}
	if hasher == nil {
		hasher = BcryptHasher{Cost: 10}
	}
	return &Service{users: users, history: history, hasher: hasher, secret: secret}
}

// NormalizeEmail lowercases and trims an email before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterInput is the validated registration payload.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
	NIDN      string
	NIM       string
}

// Register validates and creates a new account. Email uniqueness is a
// check-then-insert; the UNIQUE constraint catches the race.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.Email = NormalizeEmail(in.Email)
	if in.FirstName == "" || in.Email == "" {
		return nil, ErrInvalidPayload
	}
	if len(in.Password) < 6 {
		return nil, ErrInvalidPayload
	}
	switch in.Role {
	case entity.RoleAdmin, entity.RoleStaff:
	case entity.RoleDosen:
		if strings.TrimSpace(in.NIDN) == "" {
			return nil, ErrInvalidPayload
		}
	case entity.RoleMahasiswa:
		if strings.TrimSpace(in.NIM) == "" {
			return nil, ErrInvalidPayload
		}
	default:
		return nil, ErrInvalidPayload
	}

	exists, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{
		FirstName:    in.FirstName,
		LastName:     strings.TrimSpace(in.LastName),
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
	}
	if in.Role == entity.RoleDosen {
		nidn := strings.TrimSpace(in.NIDN)
		u.NIDN = &nidn
	}
	if in.Role == entity.RoleMahasiswa {
		nim := strings.TrimSpace(in.NIM)
		u.NIM = &nim
	}
	if _, err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login authenticates by email and password. On success it records a
// login-history entry and returns a signed session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *entity.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, ErrInvalidPayload
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, ErrEmailNotFound
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return "", nil, ErrBadPassword
	}

	token, err := s.IssueToken(u)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	if err := s.history.Append(ctx, u.ID, u.DisplayName(), u.Role); err != nil {
		return "", nil, fmt.Errorf("record login: %w", err)
	}
	return token, u, nil
}

// IssueToken signs an HS256 session token valid for TokenTTL.
func (s *Service) IssueToken(u *entity.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// ValidateToken verifies signature and expiry. Any failure collapses into
// ErrTokenRejected; callers respond 401 without distinguishing further.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrTokenRejected
	}
	return claims, nil
}

// GetProfile loads the account for the given user id.
func (s *Service) GetProfile(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEmailNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// ProfileUpdate carries the fields an account holder may change.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	NIDN      *string
	NIM       *string
	// Picture, when non-nil, is the stored filename of a newly uploaded photo.
	Picture *string
}

// UpdateProfile applies the update and returns the refreshed user row along
// with the previous photo filename so the caller can delete the old file
// after the new one is durably in place.
func (s *Service) UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) (*entity.User, string, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrEmailNotFound
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}
	oldPicture := ""
	if u.ProfilePicture != nil {
		oldPicture = *u.ProfilePicture
	}
	if strings.TrimSpace(upd.FirstName) != "" {
		u.FirstName = strings.TrimSpace(upd.FirstName)
	}
	u.LastName = strings.TrimSpace(upd.LastName)
	if upd.NIDN != nil {
		u.NIDN = upd.NIDN
	}
	if upd.NIM != nil {
		u.NIM = upd.NIM
	}
	if upd.Picture != nil {
		u.ProfilePicture = upd.Picture
	} else {
		// stored value unchanged, nothing to clean up
		oldPicture = ""
	}
	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return nil, "", fmt.Errorf("update profile: %w", err)
	}
	return u, oldPicture, nil
}

// LoginHistory returns recorded logins, newest first.
func (s *Service) LoginHistory(ctx context.Context) ([]entity.LoginHistory, error) {
	return s.history.List(ctx)
}

// DeleteLoginHistory removes one entry. Deleting an absent id returns
// ErrEmailNotFound-style not-found so the handler can answer 404.
func (s *Service) DeleteLoginHistory(ctx context.Context, id int64) error {
	n, err := s.history.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	if n == 0 {
		return ErrHistoryNotFound
	}
	return nil
}

var ErrHistoryNotFound = errors.New("login history entry not found")

// Users exposes the user store for collaborators (the OTP flow needs email
// lookup and password rewrite without owning its own user repository).
func (s *Service) Users() UserStore { return s.users }

// Hasher exposes the configured password hasher.
func (s *Service) Hasher() PasswordHasher { return s.hasher }
