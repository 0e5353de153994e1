package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/webiot/signage-admin-core/internal/auth/entity"
)

type fakeUsers struct {
	byEmail map[string]*entity.User
	nextID  int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*entity.User{}, nextID: 1}
}

func (f *fakeUsers) Create(ctx context.Context, u *entity.User) (int64, error) {
	u.ID = f.nextID
	f.nextID++
	f.byEmail[u.Email] = u
	return u.ID, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, u *entity.User) error {
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUsers) UpdatePassword(ctx context.Context, email, hash string) error {
	if u, ok := f.byEmail[email]; ok {
		u.PasswordHash = hash
	}
	return nil
}

type fakeHistory struct {
	rows   []entity.LoginHistory
	nextID int64
}

func (f *fakeHistory) Append(ctx context.Context, userID int64, displayName, role string) error {
	f.nextID++
	f.rows = append(f.rows, entity.LoginHistory{
		ID: f.nextID, UserID: userID, DisplayName: displayName, Role: role, LoginAt: time.Now(),
	})
	return nil
}

func (f *fakeHistory) List(ctx context.Context) ([]entity.LoginHistory, error) {
	return f.rows, nil
}

func (f *fakeHistory) Delete(ctx context.Context, id int64) (int64, error) {
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, error) { return "hashed:" + pw, nil }
func (plainHasher) Verify(hash, pw string) bool    { return hash == "hashed:"+pw }

func newTestService() (*Service, *fakeUsers, *fakeHistory) {
	users := newFakeUsers()
	history := &fakeHistory{}
	svc := NewService(nil, users, history, plainHasher{}, []byte("test-secret"))
	return svc, users, history
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"missing first name", RegisterInput{Email: "a@b.id", Password: "secret1", Role: "staff"}, ErrInvalidPayload},
		{"short password", RegisterInput{FirstName: "A", Email: "a@b.id", Password: "abc", Role: "staff"}, ErrInvalidPayload},
		{"unknown role", RegisterInput{FirstName: "A", Email: "a@b.id", Password: "secret1", Role: "guest"}, ErrInvalidPayload},
		{"dosen without nidn", RegisterInput{FirstName: "A", Email: "a@b.id", Password: "secret1", Role: "dosen"}, ErrInvalidPayload},
		{"mahasiswa without nim", RegisterInput{FirstName: "A", Email: "a@b.id", Password: "secret1", Role: "mahasiswa"}, ErrInvalidPayload},
		{"staff ok", RegisterInput{FirstName: "A", Email: "a@b.id", Password: "secret1", Role: "staff"}, nil},
		{"mahasiswa with nim ok", RegisterInput{FirstName: "A", Email: "m@b.id", Password: "secret1", Role: "mahasiswa", NIM: "2101234"}, nil},
	}
	svc, _, _ := newTestService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, users, _ := newTestService()
	u, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Yusri", Email: "  Yusri@Kampus.AC.ID ", Password: "secret1", Role: "staff",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "yusri@kampus.ac.id" {
		t.Fatalf("email not normalized: %q", u.Email)
	}
	// a second registration differing only by case is rejected
	_, err = svc.Register(context.Background(), RegisterInput{
		FirstName: "Yusri", Email: "YUSRI@kampus.ac.id", Password: "secret1", Role: "staff",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
	if len(users.byEmail) != 1 {
		t.Fatalf("expected a single stored user, got %d", len(users.byEmail))
	}
}

func TestLogin(t *testing.T) {
	svc, _, history := newTestService()
	if _, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Admin", LastName: "IoT", Email: "admin@kampus.ac.id", Password: "secret1", Role: "admin",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "nobody@kampus.ac.id", "secret1"); !errors.Is(err, ErrEmailNotFound) {
		t.Fatalf("want ErrEmailNotFound, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "admin@kampus.ac.id", "wrong"); !errors.Is(err, ErrBadPassword) {
		t.Fatalf("want ErrBadPassword, got %v", err)
	}

	token, u, err := svc.Login(context.Background(), "Admin@Kampus.ac.id", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.Role != "admin" {
		t.Fatalf("unexpected role %q", u.Role)
	}
	if len(history.rows) != 1 || history.rows[0].DisplayName != "Admin IoT" {
		t.Fatalf("login must record a history entry, got %+v", history.rows)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != u.ID || claims.Role != "admin" || claims.FirstName != "Admin" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	until := time.Until(claims.ExpiresAt.Time)
	if until < TokenTTL-time.Minute || until > TokenTTL {
		t.Fatalf("token expiry not ~2h: %v", until)
	}
}

func TestValidateTokenRejected(t *testing.T) {
	svc, _, _ := newTestService()

	expired := Claims{
		UserID: 1, FirstName: "A", Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-3 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expiredToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expired).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expired).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", expiredToken},
		{"wrong signature", wrongKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.ValidateToken(tt.token); !errors.Is(err, ErrTokenRejected) {
				t.Fatalf("want ErrTokenRejected, got %v", err)
			}
		})
	}
}

func TestDeleteLoginHistoryTwice(t *testing.T) {
	svc, _, history := newTestService()
	_ = history.Append(context.Background(), 1, "Admin", "admin")
	id := history.rows[0].ID

	if err := svc.DeleteLoginHistory(context.Background(), id); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.DeleteLoginHistory(context.Background(), id); !errors.Is(err, ErrHistoryNotFound) {
		t.Fatalf("second delete must be not-found, got %v", err)
	}
}
