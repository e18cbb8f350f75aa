package permission

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gestaolite/backoffice/internal"
	permissionDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/permission"
)

type API interface {
	GetPermissions(ctx context.Context, phone string) ([]string, error)
	AddPermissions(ctx context.Context, phone string, keys []string) error
	ReplacePermissions(ctx context.Context, phone string, keys []string) error
}

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Resolver turns the backend's flat permission list into the fixed menu flag
// set. A user the backend has never seen gets the default grant persisted
// server-side; if even that fails the resolver degrades to a client-side
// default instead of failing the bootstrap.
type Resolver struct {
	api    API
	cache  Cache
	logger *slog.Logger
}

func NewResolver(api API, cache Cache, logger *slog.Logger) *Resolver {
	return &Resolver{
		api:    api,
		cache:  cache,
		logger: logger,
	}
}

func cacheKey(phone string) string {
	return "permissions:" + phone
}

// FetchUserPermissions resolves the full flag set for a phone. The result is
// always a complete MenuPermissions value, replaced wholesale; callers never
// merge it with a previous one.
func (r *Resolver) FetchUserPermissions(ctx context.Context, phone string) (permissionDatamodel.MenuPermissions, error) {
	if cached, ok := r.fromCache(ctx, phone); ok {
		return cached, nil
	}

	keys, err := r.api.GetPermissions(ctx, phone)
	if err != nil && !internal.IsNotFound(err) {
		return permissionDatamodel.MenuPermissions{}, err
	}

	if internal.IsNotFound(err) || len(keys) == 0 {
		// New user with no record: persist the default grant, then re-read.
		keys, err = r.grantDefault(ctx, phone)
		if err != nil {
			r.logger.Warn("default permission grant failed, using client-side fallback",
				"phone", phone, "error", err)
			return permissionDatamodel.DefaultFallback(), nil
		}
	}

	mapped := permissionDatamodel.FromKeys(keys)
	r.toCache(ctx, phone, mapped)
	return mapped, nil
}

func (r *Resolver) grantDefault(ctx context.Context, phone string) ([]string, error) {
	if err := r.api.AddPermissions(ctx, phone, permissionDatamodel.DefaultGrantKeys()); err != nil {
		return nil, err
	}
	return r.api.GetPermissions(ctx, phone)
}

// Grant replaces a user's permission record and drops the stale cache entry.
func (r *Resolver) Grant(ctx context.Context, phone string, keys []string) error {
	if err := r.api.ReplacePermissions(ctx, phone, keys); err != nil {
		return err
	}
	r.Invalidate(ctx, phone)
	return nil
}

// Invalidate drops the cached flag set for a phone.
func (r *Resolver) Invalidate(ctx context.Context, phone string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, cacheKey(phone)); err != nil {
		r.logger.Warn("failed to invalidate permission cache", "phone", phone, "error", err)
	}
}

func (r *Resolver) fromCache(ctx context.Context, phone string) (permissionDatamodel.MenuPermissions, bool) {
	if r.cache == nil {
		return permissionDatamodel.MenuPermissions{}, false
	}
	raw, ok, err := r.cache.Get(ctx, cacheKey(phone))
	if err != nil {
		r.logger.Warn("permission cache read failed", "phone", phone, "error", err)
		return permissionDatamodel.MenuPermissions{}, false
	}
	if !ok {
		return permissionDatamodel.MenuPermissions{}, false
	}

	var mapped permissionDatamodel.MenuPermissions
	if err := json.Unmarshal([]byte(raw), &mapped); err != nil {
		r.logger.Warn("permission cache entry corrupt", "phone", phone, "error", err)
		return permissionDatamodel.MenuPermissions{}, false
	}
	return mapped, true
}

func (r *Resolver) toCache(ctx context.Context, phone string, mapped permissionDatamodel.MenuPermissions) {
	if r.cache == nil {
		return
	}
	raw, err := json.Marshal(mapped)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, cacheKey(phone), string(raw)); err != nil {
		r.logger.Warn("permission cache write failed", "phone", phone, "error", err)
	}
}
