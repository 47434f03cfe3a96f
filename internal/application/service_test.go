package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-service/config"
	"github.com/oksasatya/go-auth-service/internal/domain/entity"
	repo "github.com/oksasatya/go-auth-service/internal/domain/repository"
	"github.com/oksasatya/go-auth-service/pkg/helpers"
)

// fakeRepo is an in-memory UserRepository good enough to drive the service
// flows end to end.
type fakeRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*entity.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[string]*entity.User{}}
}

func clone(u *entity.User, withPassword bool) *entity.User {
	c := *u
	if !withPassword {
		c.Password = ""
	}
	return &c
}

func (f *fakeRepo) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.users {
		if e.Email == u.Email {
			return repo.ErrDuplicateEmail
		}
	}
	f.seq++
	u.ID = fmt.Sprintf("u-%d", f.seq)
	u.Active = true
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = clone(u, true)
	return nil
}

func (f *fakeRepo) get(id string) (*entity.User, error) {
	u, ok := f.users[id]
	if !ok || !u.Active {
		return nil, repo.ErrNotFound
	}
	return u, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return nil, err
	}
	return clone(u, false), nil
}

func (f *fakeRepo) byEmail(email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Active && u.Email == email {
			return u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.byEmail(email)
	if err != nil {
		return nil, err
	}
	return clone(u, false), nil
}

func (f *fakeRepo) GetByEmailWithPassword(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.byEmail(email)
	if err != nil {
		return nil, err
	}
	return clone(u, true), nil
}

func (f *fakeRepo) GetByVerifyTokenHash(_ context.Context, hash string, now time.Time) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Active && u.VerifyTokenHash == hash && u.VerifyTokenExpiresAt != nil && u.VerifyTokenExpiresAt.After(now) {
			return clone(u, false), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeRepo) GetByResetTokenHash(_ context.Context, hash string, now time.Time) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Active && u.ResetTokenHash == hash && u.ResetTokenExpiresAt != nil && u.ResetTokenExpiresAt.After(now) {
			return clone(u, false), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeRepo) Update(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, err := f.get(u.ID)
	if err != nil {
		return err
	}
	e.Name = u.Name
	e.Email = u.Email
	e.AvatarURL = u.AvatarURL
	e.UpdatedAt = time.Now()
	return nil
}

func (f *fakeRepo) UpdateFields(_ context.Context, id string, fields map[string]any) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return nil, err
	}
	for col, v := range fields {
		s, _ := v.(string)
		switch col {
		case "name":
			u.Name = s
		case "email":
			s = strings.ToLower(s)
			for _, e := range f.users {
				if e.ID != id && e.Email == s {
					return nil, repo.ErrDuplicateEmail
				}
			}
			u.Email = s
		case "avatar_url":
			u.AvatarURL = s
		default:
			return nil, fmt.Errorf("unexpected column %q", col)
		}
	}
	u.UpdatedAt = time.Now()
	return clone(u, false), nil
}

func (f *fakeRepo) SetPassword(_ context.Context, id, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return err
	}
	now := time.Now()
	u.Password = passwordHash
	u.PasswordChangedAt = &now
	u.ResetTokenHash = ""
	u.ResetTokenExpiresAt = nil
	return nil
}

func (f *fakeRepo) SetResetToken(_ context.Context, id, hash string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return err
	}
	u.ResetTokenHash = hash
	u.ResetTokenExpiresAt = &expiresAt
	return nil
}

func (f *fakeRepo) ClearResetToken(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return err
	}
	u.ResetTokenHash = ""
	u.ResetTokenExpiresAt = nil
	return nil
}

func (f *fakeRepo) SetVerifyToken(_ context.Context, id, hash string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return err
	}
	u.VerifyTokenHash = hash
	u.VerifyTokenExpiresAt = &expiresAt
	return nil
}

func (f *fakeRepo) ClearVerifyToken(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return err
	}
	u.VerifyTokenHash = ""
	u.VerifyTokenExpiresAt = nil
	return nil
}

func (f *fakeRepo) SetVerified(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return err
	}
	u.IsVerified = true
	u.VerifyTokenHash = ""
	u.VerifyTokenExpiresAt = nil
	return nil
}

func (f *fakeRepo) Deactivate(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return err
	}
	u.Active = false
	return nil
}

func (f *fakeRepo) List(_ context.Context) ([]*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.User, 0, len(f.users))
	for _, u := range f.users {
		if u.Active {
			out = append(out, clone(u, false))
		}
	}
	return out, nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

// raw returns the stored record, password and all, bypassing the adapter
// contract. Tests use it to inspect and tweak state directly.
func (f *fakeRepo) raw(id string) *entity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id]
}

var _ repo.UserRepository = (*fakeRepo)(nil)

type sentMail struct {
	Email string
	Token string
	URL   string
}

type fakeNotifier struct {
	mu            sync.Mutex
	failNext      bool
	verifications []sentMail
	welcomes      []sentMail
	resets        []sentMail
}

func (n *fakeNotifier) maybeFail() error {
	if n.failNext {
		n.failNext = false
		return errors.New("mail channel down")
	}
	return nil
}

func (n *fakeNotifier) SendVerification(_ context.Context, email, _ string, rawToken string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.maybeFail(); err != nil {
		return err
	}
	n.verifications = append(n.verifications, sentMail{Email: email, Token: rawToken})
	return nil
}

func (n *fakeNotifier) SendWelcome(_ context.Context, email, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.maybeFail(); err != nil {
		return err
	}
	n.welcomes = append(n.welcomes, sentMail{Email: email})
	return nil
}

func (n *fakeNotifier) SendPasswordReset(_ context.Context, email, _ string, resetURL string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.maybeFail(); err != nil {
		return err
	}
	n.resets = append(n.resets, sentMail{Email: email, URL: resetURL})
	return nil
}

func (n *fakeNotifier) lastVerification() sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.verifications[len(n.verifications)-1]
}

func (n *fakeNotifier) lastReset() sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.resets[len(n.resets)-1]
}

func newTestService() (*Service, *fakeRepo, *fakeNotifier) {
	r := newFakeRepo()
	n := &fakeNotifier{}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		JWTSecret:        "0123456789abcdef0123456789abcdef",
		JWTTTL:           time.Hour,
		BcryptCost:       helpers.MinBcryptCost,
		VerifyTokenTTL:   24 * time.Hour,
		ResetTokenTTL:    10 * time.Minute,
		ResetPasswordURL: "http://localhost:8080/reset-password",
		VerifyEmailURL:   "http://localhost:8080/verify-email",
	}
	svc := NewService(
		r,
		helpers.NewPasswordHasher(cfg.BcryptCost),
		helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL),
		n,
		cfg,
		logger,
		nil,
		nil,
		nil,
	)
	return svc, r, n
}
