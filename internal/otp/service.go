package otp

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/webiot/signage-admin-core/internal/auth"
	"github.com/webiot/signage-admin-core/internal/mailer"
	"github.com/webiot/signage-admin-core/internal/metrics"
)

// TTL is how long an issued code stays valid.
const TTL = 5 * time.Minute

var (
	ErrEmailNotFound = errors.New("email not found")
	ErrInvalidCode   = errors.New("invalid or expired code")
)

// Service drives the forgot-password flow: issue a code, verify it, reset
// the password. Verification does not consume the code; only a reset does.
type Service struct {
	store  Store
	users  auth.UserStore
	hasher auth.PasswordHasher
	sender mailer.Sender
	now    func() time.Time
}

func NewService(store Store, users auth.UserStore, hasher auth.PasswordHasher, sender mailer.Sender) *Service {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Service{store: store, users: users, hasher: hasher, sender: sender, now: time.Now}
}

// generateCode returns a uniformly random 6-digit code with leading zeros.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Request issues a new code for the email and dispatches it by mail. A new
// request overwrites any prior record for the same email, invalidating the
// older code. A mail-send failure fails the whole operation.
func (s *Service) Request(ctx context.Context, email string) error {
	email = auth.NormalizeEmail(email)
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEmailNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	code, err := generateCode()
	if err != nil {
		return err
	}
	s.store.Put(Record{Email: email, Code: code, ExpiresAt: s.now().Add(TTL)})
	metrics.OTPIssued.Inc()
	if err := s.sender.SendOTP(email, code); err != nil {
		return fmt.Errorf("dispatch otp: %w", err)
	}
	return nil
}

// Verify checks the submitted code against the most recently issued record.
// The record stays in place on success; it is deleted only by Reset.
func (s *Service) Verify(email, code string) error {
	email = auth.NormalizeEmail(email)
	rec, ok := s.store.Get(email)
	if !ok || rec.Code != code {
		return ErrInvalidCode
	}
	return nil
}

// Reset rewrites the password hash and deletes the OTP record. It does not
// re-check the code here; the two-step flow relies on the client calling
// Verify first.
func (s *Service) Reset(ctx context.Context, email, newPassword string) error {
	email = auth.NormalizeEmail(email)
	if len(newPassword) < 6 {
		return auth.ErrInvalidPayload
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, email, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.store.Delete(email)
	return nil
}
