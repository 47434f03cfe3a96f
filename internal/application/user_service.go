package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"github.com/oksasatya/go-auth-service/internal/domain/entity"
	repo "github.com/oksasatya/go-auth-service/internal/domain/repository"
	"github.com/oksasatya/go-auth-service/pkg/apperr"
	"github.com/oksasatya/go-auth-service/pkg/helpers"
)

// profileColumns maps the externally updatable field names to store columns.
// Everything else — password, role, active, the token slots — is rejected
// before any store write, closing the mass-assignment escalation path.
var profileColumns = map[string]string{
	"name":  "name",
	"email": "email",
}

const profileCacheTTL = 5 * time.Minute

func profileCacheKey(id string) string { return "cache:user:" + id }

// cacheProfile and dropProfileCache are best-effort; Redis being down never
// fails a request.
func (s *Service) cacheProfile(ctx context.Context, u *entity.User) {
	if s.RDB == nil {
		return
	}
	if err := helpers.RedisSetJSON(ctx, s.RDB, profileCacheKey(u.ID), u, profileCacheTTL); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Debug("profile cache write failed")
	}
}

func (s *Service) dropProfileCache(ctx context.Context, id string) {
	if s.RDB == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.RDB, profileCacheKey(id)); err != nil {
		s.Logger.WithError(err).WithField("user_id", id).Warn("profile cache invalidation failed")
	}
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	if s.RDB != nil {
		var cached entity.User
		if ok, err := helpers.RedisGetJSON(ctx, s.RDB, profileCacheKey(userID), &cached); err == nil && ok {
			return &cached, nil
		}
	}

	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, apperr.Storage(err)
	}
	s.cacheProfile(ctx, u)
	return u, nil
}

// UpdateProfile writes an allow-listed subset of fields for the given user.
// The input is the raw decoded request body so a smuggled password or role
// key is seen and rejected rather than silently dropped.
func (s *Service) UpdateProfile(ctx context.Context, userID string, fields map[string]any) (*entity.User, error) {
	cols := make(map[string]any, len(fields))
	for k, v := range fields {
		col, ok := profileColumns[strings.ToLower(k)]
		if !ok {
			return nil, apperr.ErrIllegalFieldUpdate
		}
		str, ok := v.(string)
		if !ok || str == "" {
			return nil, apperr.ErrIllegalFieldUpdate
		}
		cols[col] = str
	}
	if len(cols) == 0 {
		return nil, apperr.ErrIllegalFieldUpdate
	}

	u, err := s.Repo.UpdateFields(ctx, userID, cols)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicateEmail):
			return nil, apperr.ErrDuplicateEmail
		case errors.Is(err, repo.ErrNotFound):
			return nil, apperr.ErrUserNotFound
		default:
			return nil, apperr.Storage(err)
		}
	}

	s.dropProfileCache(ctx, u.ID)
	s.indexUser(ctx, u)
	return u, nil
}

// Deactivate soft-deletes the account; default lookups exclude it from now
// on, the row itself stays.
func (s *Service) Deactivate(ctx context.Context, userID string) error {
	if err := s.Repo.Deactivate(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.ErrUserNotFound
		}
		return apperr.Storage(err)
	}
	s.dropProfileCache(ctx, userID)
	return nil
}

// UploadAvatar streams an image to GCS and stores the public URL.
func (s *Service) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.Cfg.GCSBucket == "" {
		return "", apperr.Storage(errors.New("gcs not configured"))
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", apperr.ErrUserNotFound
		}
		return "", apperr.Storage(err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.Cfg.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", apperr.Storage(err)
	}

	u.AvatarURL = url
	if err := s.Repo.Update(ctx, u); err != nil {
		return "", apperr.Storage(err)
	}
	s.dropProfileCache(ctx, u.ID)
	s.indexUser(ctx, u)
	return url, nil
}

// Admin surface.

func (s *Service) ListUsers(ctx context.Context) ([]*entity.User, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return users, nil
}

func (s *Service) AdminUpdateUser(ctx context.Context, id string, fields map[string]any) (*entity.User, error) {
	// the admin path honors the same allow-list; role changes go through
	// operational tooling, not this API
	return s.UpdateProfile(ctx, id, fields)
}

func (s *Service) AdminDeleteUser(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.ErrUserNotFound
		}
		return apperr.Storage(err)
	}
	s.dropProfileCache(ctx, id)
	return nil
}

// indexUser mirrors the public user fields into Elasticsearch, best-effort.
func (s *Service) indexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.Cfg.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          u.ID,
		"email":       u.Email,
		"name":        u.Name,
		"role":        u.Role,
		"is_verified": u.IsVerified,
		"avatar_url":  u.AvatarURL,
		"created_at":  u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":  u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.Cfg.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

// SearchUsers performs a simple multi_match search on email and name.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.Cfg.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.Cfg.ESUsersIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperr.Storage(err)
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
