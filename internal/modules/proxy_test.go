package modules_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gestaolite/backoffice/internal/bootstrap"
	permissionDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/permission"
	userDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/user"
	"github.com/gestaolite/backoffice/internal/modules"
)

func TestModules(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Modules Suite")
}

type fakeState struct {
	state bootstrap.State
}

func (f *fakeState) State() bootstrap.State { return f.state }

var _ = Describe("Proxy", func() {
	var (
		backend  *httptest.Server
		gotPath  string
		gotAuth  string
		state    *fakeState
		router   *chi.Mux
		recorder *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		gotPath = ""
		gotAuth = "unset"
		backend = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			w.Write([]byte(`{"ok":true}`))
		}))
		DeferCleanup(backend.Close)

		state = &fakeState{state: bootstrap.State{
			User:        &userDatamodel.User{Name: "Maria", Phone: "11999990000"},
			Permissions: permissionDatamodel.MenuPermissions{Financeiro: true, Ponto: true},
			CanClockIn:  false,
			Ready:       true,
		}}

		proxy, err := modules.NewProxy(backend.URL, state)
		Expect(err).NotTo(HaveOccurred())

		router = chi.NewRouter()
		router.HandleFunc("/api/v1/modules/{page}", proxy.Handle)
		router.HandleFunc("/api/v1/modules/{page}/*", proxy.Handle)
		recorder = httptest.NewRecorder()
	})

	It("forwards an allowed module and rewrites the path", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/modules/financeiro/transacoes?mes=1", nil)
		req.Header.Set("Authorization", "Bearer abc")

		router.ServeHTTP(recorder, req)

		Expect(recorder.Code).To(Equal(http.StatusOK))
		Expect(gotPath).To(Equal("/financeiro/transacoes"))
		Expect(gotAuth).To(BeEmpty())
	})

	It("forwards the bare module root", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/modules/financeiro", nil)

		router.ServeHTTP(recorder, req)

		Expect(recorder.Code).To(Equal(http.StatusOK))
		Expect(gotPath).To(Equal("/financeiro"))
	})

	It("rejects a module whose flag is off", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/modules/rh", nil)

		router.ServeHTTP(recorder, req)

		Expect(recorder.Code).To(Equal(http.StatusForbidden))
		Expect(gotPath).To(BeEmpty())
	})

	It("rejects an unknown module", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/modules/naoExiste", nil)

		router.ServeHTTP(recorder, req)

		Expect(recorder.Code).To(Equal(http.StatusNotFound))
	})

	It("rejects ponto without a company link even with the flag on", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/modules/ponto", nil)

		router.ServeHTTP(recorder, req)

		Expect(recorder.Code).To(Equal(http.StatusForbidden))
	})

	It("allows ponto once a company link exists", func() {
		state.state.CanClockIn = true
		req := httptest.NewRequest(http.MethodGet, "/api/v1/modules/ponto/registrar", nil)

		router.ServeHTTP(recorder, req)

		Expect(recorder.Code).To(Equal(http.StatusOK))
		Expect(gotPath).To(Equal("/ponto/registrar"))
	})

	It("answers 502 with the connection message when the backend is down", func() {
		downProxy, err := modules.NewProxy("http://127.0.0.1:1", state)
		Expect(err).NotTo(HaveOccurred())

		downRouter := chi.NewRouter()
		downRouter.HandleFunc("/api/v1/modules/{page}", downProxy.Handle)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/modules/financeiro", nil)
		downRouter.ServeHTTP(recorder, req)

		Expect(recorder.Code).To(Equal(http.StatusBadGateway))
		Expect(recorder.Body.String()).To(ContainSubstring("Falha de conexão"))
	})
})
