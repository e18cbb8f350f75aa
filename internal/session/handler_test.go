package session_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gestaolite/backoffice/internal"
	"github.com/gestaolite/backoffice/internal/session"
)

var _ = Describe("Handler", func() {
	var (
		svc     *session.Service
		handler *session.Handler
	)

	login := func() string {
		_, token, err := svc.Login(session.LoginDTO{Name: "Maria", Phone: "11999990000"})
		Expect(err).NotTo(HaveOccurred())
		return token
	}

	BeforeEach(func() {
		store := &mockStore{}
		bus := &mockBus{}
		tokens := session.NewTokenGenerator("test-secret-test-secret-test-secret", time.Hour)
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		svc = session.NewService(store, tokens, bus, logger)
		handler = session.NewHandler(svc)
	})

	Describe("Login", func() {
		It("returns the user and an access token", func() {
			body := bytes.NewBufferString(`{"name":"Maria","phone":"11999990000"}`)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"access_token"`))
			Expect(rec.Body.String()).To(ContainSubstring("11999990000"))
		})

		It("answers 400 with field details on an invalid phone", func() {
			body := bytes.NewBufferString(`{"name":"Maria","phone":"abc"}`)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("phone"))
		})
	})

	Describe("AuthMiddleware", func() {
		var protected http.Handler

		BeforeEach(func() {
			protected = handler.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(internal.UserPhoneFromContext(r.Context())))
			}))
		})

		It("passes a valid bearer token through with the phone in context", func() {
			token := login()

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			protected.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(Equal("11999990000"))
		})

		It("rejects a missing token", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			rec := httptest.NewRecorder()

			protected.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Body.String()).To(ContainSubstring(internal.MsgNotLoggedIn))
		})

		It("rejects a garbage token", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			req.Header.Set("Authorization", "Bearer nonsense")
			rec := httptest.NewRecorder()

			protected.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects a token that outlived its session", func() {
			token := login()
			Expect(svc.Logout()).To(Succeed())

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			protected.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects a token belonging to a previous identity", func() {
			oldToken := login()
			_, _, err := svc.Login(session.LoginDTO{Name: "João", Phone: "11888880000"})
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			req.Header.Set("Authorization", "Bearer "+oldToken)
			rec := httptest.NewRecorder()

			protected.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("Logout", func() {
		It("answers 204 and forgets the user", func() {
			login()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
			rec := httptest.NewRecorder()
			handler.Logout(rec, req)

			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(svc.CurrentUser()).To(BeNil())
		})
	})
})
