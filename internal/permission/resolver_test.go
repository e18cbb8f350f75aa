package permission_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gestaolite/backoffice/internal"
	permissionDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/permission"
	"github.com/gestaolite/backoffice/internal/permission"
)

func TestPermission(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Permission Suite")
}

// mockAPI satisfies permission.API
type mockAPI struct {
	permissions map[string][]string
	getError    error
	addError    error
	patchError  error

	getCalls  int
	addCalls  []string
	patchKeys []string
}

func newMockAPI() *mockAPI {
	return &mockAPI{permissions: make(map[string][]string)}
}

func (m *mockAPI) GetPermissions(ctx context.Context, phone string) ([]string, error) {
	m.getCalls++
	if m.getError != nil {
		return nil, m.getError
	}
	keys, ok := m.permissions[phone]
	if !ok {
		return nil, internal.NewNotFoundError("nenhuma permissão", internal.ErrCodePermissionsNotFound)
	}
	return keys, nil
}

func (m *mockAPI) AddPermissions(ctx context.Context, phone string, keys []string) error {
	if m.addError != nil {
		return m.addError
	}
	m.addCalls = append(m.addCalls, phone)
	m.permissions[phone] = append(m.permissions[phone], keys...)
	return nil
}

func (m *mockAPI) ReplacePermissions(ctx context.Context, phone string, keys []string) error {
	if m.patchError != nil {
		return m.patchError
	}
	m.patchKeys = keys
	m.permissions[phone] = keys
	return nil
}

// mockCache satisfies permission.Cache
type mockCache struct {
	entries  map[string]string
	getError error
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]string)}
}

func (m *mockCache) Get(ctx context.Context, key string) (string, bool, error) {
	if m.getError != nil {
		return "", false, m.getError
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value string) error {
	m.entries[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

var _ = Describe("Resolver", func() {
	var (
		api    *mockAPI
		logger *slog.Logger
		ctx    context.Context
	)

	const phone = "11999990000"

	BeforeEach(func() {
		api = newMockAPI()
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		ctx = context.Background()
	})

	Describe("FetchUserPermissions", func() {
		It("maps known keys and leaves everything else off", func() {
			api.permissions[phone] = []string{"financeiro", "rh", "naoExiste"}
			resolver := permission.NewResolver(api, nil, logger)

			perms, err := resolver.FetchUserPermissions(ctx, phone)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms.Financeiro).To(BeTrue())
			Expect(perms.RH).To(BeTrue())
			Expect(perms.Aprovacoes).To(BeFalse())
			Expect(perms.Ponto).To(BeFalse())
		})

		It("persists the default grant for an unknown user and re-reads it", func() {
			resolver := permission.NewResolver(api, nil, logger)

			perms, err := resolver.FetchUserPermissions(ctx, phone)
			Expect(err).NotTo(HaveOccurred())
			Expect(api.addCalls).To(Equal([]string{phone}))
			Expect(perms.Financeiro).To(BeTrue())
			Expect(perms.RH).To(BeFalse())
		})

		It("also grants the default when the record exists but is empty", func() {
			api.permissions[phone] = []string{}
			resolver := permission.NewResolver(api, nil, logger)

			perms, err := resolver.FetchUserPermissions(ctx, phone)
			Expect(err).NotTo(HaveOccurred())
			Expect(api.addCalls).To(Equal([]string{phone}))
			Expect(perms.Financeiro).To(BeTrue())
		})

		It("degrades to the client-side fallback when the grant fails", func() {
			api.addError = internal.NewBackendError(http.StatusInternalServerError, "")
			resolver := permission.NewResolver(api, nil, logger)

			perms, err := resolver.FetchUserPermissions(ctx, phone)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms).To(Equal(permissionDatamodel.DefaultFallback()))
		})

		It("propagates non-404 failures", func() {
			api.getError = internal.NewBackendError(http.StatusInternalServerError, "")
			resolver := permission.NewResolver(api, nil, logger)

			_, err := resolver.FetchUserPermissions(ctx, phone)
			Expect(err).To(HaveOccurred())
			Expect(api.addCalls).To(BeEmpty())
		})
	})

	Describe("caching", func() {
		It("serves a warm entry without calling the backend", func() {
			cache := newMockCache()
			cached, _ := json.Marshal(permissionDatamodel.MenuPermissions{RH: true})
			cache.entries["permissions:"+phone] = string(cached)

			resolver := permission.NewResolver(api, cache, logger)

			perms, err := resolver.FetchUserPermissions(ctx, phone)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms.RH).To(BeTrue())
			Expect(api.getCalls).To(BeZero())
		})

		It("falls through to the backend on a cache error", func() {
			cache := newMockCache()
			cache.getError = errors.New("redis down")
			api.permissions[phone] = []string{"financeiro"}

			resolver := permission.NewResolver(api, cache, logger)

			perms, err := resolver.FetchUserPermissions(ctx, phone)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms.Financeiro).To(BeTrue())
		})

		It("ignores a corrupt cache entry", func() {
			cache := newMockCache()
			cache.entries["permissions:"+phone] = "{not json"
			api.permissions[phone] = []string{"financeiro"}

			resolver := permission.NewResolver(api, cache, logger)

			perms, err := resolver.FetchUserPermissions(ctx, phone)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms.Financeiro).To(BeTrue())
		})

		It("fills the cache after a resolve", func() {
			cache := newMockCache()
			api.permissions[phone] = []string{"financeiro"}

			resolver := permission.NewResolver(api, cache, logger)

			_, err := resolver.FetchUserPermissions(ctx, phone)
			Expect(err).NotTo(HaveOccurred())
			Expect(cache.entries).To(HaveKey("permissions:" + phone))
		})
	})

	Describe("Grant", func() {
		It("replaces the record and drops the cache entry", func() {
			cache := newMockCache()
			cache.entries["permissions:"+phone] = `{"financeiro":true}`

			resolver := permission.NewResolver(api, cache, logger)

			Expect(resolver.Grant(ctx, phone, []string{"rh", "ponto"})).To(Succeed())
			Expect(api.patchKeys).To(Equal([]string{"rh", "ponto"}))
			Expect(cache.entries).NotTo(HaveKey("permissions:" + phone))
		})

		It("keeps the cache when the backend rejects the replace", func() {
			cache := newMockCache()
			cache.entries["permissions:"+phone] = `{"financeiro":true}`
			api.patchError = internal.NewBackendError(http.StatusInternalServerError, "")

			resolver := permission.NewResolver(api, cache, logger)

			Expect(resolver.Grant(ctx, phone, []string{"rh"})).NotTo(Succeed())
			Expect(cache.entries).To(HaveKey("permissions:" + phone))
		})
	})
})

var _ = Describe("MenuPermissions mapping", func() {
	It("builds the full flag set from keys, ignoring unknown ones", func() {
		perms := permissionDatamodel.FromKeys([]string{"financeiro", "burgerCaixa", "invalido"})
		Expect(perms.Financeiro).To(BeTrue())
		Expect(perms.BurgerCaixa).To(BeTrue())
		Expect(perms.Empresas).To(BeFalse())
	})

	It("knows exactly the closed key set", func() {
		Expect(permissionDatamodel.KnownKeys()).To(HaveLen(18))
	})

	It("grants only financeiro by default", func() {
		Expect(permissionDatamodel.DefaultGrantKeys()).To(Equal([]string{permissionDatamodel.KeyFinanceiro}))
		fallback := permissionDatamodel.DefaultFallback()
		Expect(fallback.Financeiro).To(BeTrue())
		Expect(fallback.RH).To(BeFalse())
	})
})
