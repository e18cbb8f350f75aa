package session_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gestaolite/backoffice/internal"
	userDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/user"
	"github.com/gestaolite/backoffice/internal/core/datamodel/worksession"
	"github.com/gestaolite/backoffice/internal/core/events"
	"github.com/gestaolite/backoffice/internal/session"
)

// mockStore satisfies session.StoreAPI in memory
type mockStore struct {
	user      *userDatamodel.User
	ws        *worksession.WorkSession
	saveError error
}

func (m *mockStore) Load() (*userDatamodel.User, error) { return m.user, nil }

func (m *mockStore) Save(u *userDatamodel.User) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.user = u
	return nil
}

func (m *mockStore) Clear() error {
	m.user = nil
	m.ws = nil
	return nil
}

func (m *mockStore) SaveWorkSession(ws *worksession.WorkSession) error {
	m.ws = ws
	return nil
}

func (m *mockStore) LoadWorkSession() (*worksession.WorkSession, error) { return m.ws, nil }

func (m *mockStore) ClearWorkSession() error {
	m.ws = nil
	return nil
}

// mockBus records published events
type mockBus struct {
	published []events.Event
}

func (m *mockBus) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

var _ = Describe("Service", func() {
	var (
		store  *mockStore
		bus    *mockBus
		tokens *session.TokenGenerator
		logger *slog.Logger
	)

	newService := func() *session.Service {
		return session.NewService(store, tokens, bus, logger)
	}

	BeforeEach(func() {
		store = &mockStore{}
		bus = &mockBus{}
		tokens = session.NewTokenGenerator("test-secret-test-secret-test-secret", time.Hour)
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	})

	Describe("startup restore", func() {
		It("brings back a persisted identity", func() {
			store.user = &userDatamodel.User{Name: "Maria", Phone: "11999990000"}

			svc := newService()
			Expect(svc.CurrentUser()).To(Equal(store.user))
		})

		It("starts logged out when the store is empty", func() {
			svc := newService()
			Expect(svc.CurrentUser()).To(BeNil())
		})
	})

	Describe("Login", func() {
		It("persists the identity and issues a verifiable token", func() {
			svc := newService()

			u, token, err := svc.Login(session.LoginDTO{Name: "Maria", Phone: "11999990000"})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Phone).To(Equal("11999990000"))
			Expect(store.user).To(Equal(u))

			claims, err := svc.ValidateAccessToken(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Phone).To(Equal("11999990000"))
			Expect(claims.Name).To(Equal("Maria"))

			Expect(bus.published).To(HaveLen(1))
			Expect(bus.published[0].EventType()).To(Equal(events.EventTypeSessionStarted))
		})

		It("rejects an invalid phone before touching the store", func() {
			svc := newService()

			_, _, err := svc.Login(session.LoginDTO{Name: "Maria", Phone: "abc"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(store.user).To(BeNil())
			Expect(bus.published).To(BeEmpty())
		})

		It("rejects a missing name", func() {
			svc := newService()

			_, _, err := svc.Login(session.LoginDTO{Phone: "11999990000"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Logout", func() {
		It("clears the identity, cancels the scope and publishes the ended event", func() {
			svc := newService()
			_, _, err := svc.Login(session.LoginDTO{Name: "Maria", Phone: "11999990000"})
			Expect(err).NotTo(HaveOccurred())

			scope := svc.Scope()
			Expect(scope.Err()).NotTo(HaveOccurred())

			Expect(svc.Logout()).To(Succeed())

			Expect(svc.CurrentUser()).To(BeNil())
			Expect(store.user).To(BeNil())
			Eventually(scope.Done()).Should(BeClosed())

			last := bus.published[len(bus.published)-1]
			Expect(last.EventType()).To(Equal(events.EventTypeSessionEnded))
			ended, ok := last.(*events.SessionEndedEvent)
			Expect(ok).To(BeTrue())
			Expect(ended.Phone).To(Equal("11999990000"))
		})

		It("publishes nothing when nobody was logged in", func() {
			svc := newService()
			Expect(svc.Logout()).To(Succeed())
			Expect(bus.published).To(BeEmpty())
		})
	})

	Describe("Scope", func() {
		It("returns a live background context while logged out", func() {
			svc := newService()
			Expect(svc.Scope().Err()).NotTo(HaveOccurred())
		})

		It("replaces the scope on re-login so the old one is dead", func() {
			svc := newService()
			_, _, err := svc.Login(session.LoginDTO{Name: "Maria", Phone: "11999990000"})
			Expect(err).NotTo(HaveOccurred())
			oldScope := svc.Scope()

			_, _, err = svc.Login(session.LoginDTO{Name: "João", Phone: "11888880000"})
			Expect(err).NotTo(HaveOccurred())

			Eventually(oldScope.Done()).Should(BeClosed())
			Expect(svc.Scope().Err()).NotTo(HaveOccurred())
		})
	})

	Describe("work session", func() {
		It("delegates to the store", func() {
			svc := newService()
			started := time.Now()

			Expect(svc.StartWorkSession(&worksession.WorkSession{CompanyID: "c-1", StartedAt: started})).To(Succeed())

			ws, err := svc.WorkSession()
			Expect(err).NotTo(HaveOccurred())
			Expect(ws.CompanyID).To(Equal("c-1"))

			Expect(svc.EndWorkSession()).To(Succeed())
			ws, err = svc.WorkSession()
			Expect(err).NotTo(HaveOccurred())
			Expect(ws).To(BeNil())
		})
	})
})

var _ = Describe("TokenGenerator", func() {
	It("rejects a token signed with a different secret", func() {
		issuer := session.NewTokenGenerator("secret-one-secret-one-secret-one", time.Hour)
		verifier := session.NewTokenGenerator("secret-two-secret-two-secret-two", time.Hour)

		token, err := issuer.GenerateAccessToken(&userDatamodel.User{Name: "Maria", Phone: "11999990000"})
		Expect(err).NotTo(HaveOccurred())

		_, err = verifier.ValidateToken(token)
		Expect(err).To(HaveOccurred())
	})

	It("rejects an expired token", func() {
		issuer := session.NewTokenGenerator("secret-one-secret-one-secret-one", time.Hour)
		issuer.TokenTTL = -time.Minute

		token, err := issuer.GenerateAccessToken(&userDatamodel.User{Name: "Maria", Phone: "11999990000"})
		Expect(err).NotTo(HaveOccurred())

		_, err = issuer.ValidateToken(token)
		Expect(err).To(MatchError(session.ErrTokenExpired))
	})
})
