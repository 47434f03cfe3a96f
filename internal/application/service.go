package application

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-service/config"
	repo "github.com/oksasatya/go-auth-service/internal/domain/repository"
	"github.com/oksasatya/go-auth-service/pkg/helpers"
)

// Notifier is the outbound notification channel. Each send is an
// independent, possibly-failing remote call; the engine decides per
// operation whether a failure is surfaced or merely logged.
type Notifier interface {
	SendVerification(ctx context.Context, email, name, rawToken string) error
	SendWelcome(ctx context.Context, email, name string) error
	SendPasswordReset(ctx context.Context, email, name, resetURL string) error
}

// Service is the auth decision engine plus the account operations built on
// it. It composes the hasher, token signer and one-time token flow over the
// credential store; all its collaborators are read-only after startup.
type Service struct {
	Repo     repo.UserRepository
	Hasher   *helpers.PasswordHasher
	JWT      *helpers.JWTManager
	Notifier Notifier
	Logger   *logrus.Logger
	Cfg      *config.Config

	// Optional infrastructure; nil disables the feature.
	GCS *storage.Client
	ES  *elasticsearch.Client
	RDB *redis.Client
}

func NewService(r repo.UserRepository, hasher *helpers.PasswordHasher, jwt *helpers.JWTManager, notifier Notifier, cfg *config.Config, logger *logrus.Logger, gcs *storage.Client, es *elasticsearch.Client, rdb *redis.Client) *Service {
	return &Service{
		Repo:     r,
		Hasher:   hasher,
		JWT:      jwt,
		Notifier: notifier,
		Cfg:      cfg,
		Logger:   logger,
		GCS:      gcs,
		ES:       es,
		RDB:      rdb,
	}
}
