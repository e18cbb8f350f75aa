package modules

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/go-chi/chi"

	"github.com/gestaolite/backoffice/internal/bootstrap"
	"github.com/gestaolite/backoffice/internal/navigation"
	"github.com/gestaolite/backoffice/internal/transport"
	"github.com/gestaolite/backoffice/pkg/logger"
)

type StateSource interface {
	State() bootstrap.State
}

// Proxy forwards feature-module requests (finance, HR, tickets, the burger
// POS, …) to the backend. The pages themselves are external collaborators;
// the gateway only enforces the same permission gating the sidebar applies,
// so a module whose flag is off is unreachable even by crafted requests.
type Proxy struct {
	*transport.BaseHandler
	state   StateSource
	reverse *httputil.ReverseProxy
}

func NewProxy(backendBaseURL string, state StateSource) (*Proxy, error) {
	target, err := url.Parse(backendBaseURL)
	if err != nil {
		return nil, err
	}

	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}

	reverse := &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			req.URL.Scheme = target.Scheme
			req.URL.Host = target.Host
			req.Host = target.Host
			// the backend must never see the gateway's own session token
			req.Header.Del("Authorization")
			req.Header.Set("Cache-Control", "no-cache")
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			lg.Error("module proxy failed", "path", r.URL.Path, "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"Falha de conexão com o servidor. Verifique sua internet e tente novamente."}`))
		},
	}

	return &Proxy{
		BaseHandler: transport.NewBaseHandler(lg),
		state:       state,
		reverse:     reverse,
	}, nil
}

// Handle gates and forwards one module request. The backend path is the
// module name plus whatever follows it: /modules/financeiro/transacoes
// becomes /financeiro/transacoes upstream.
func (p *Proxy) Handle(w http.ResponseWriter, r *http.Request) {
	page := navigation.ActivePage(chi.URLParam(r, "page"))

	flag, known := navigation.RequiredFlag(page)
	if !known {
		p.WriteError(w, http.StatusNotFound, "unknown module")
		return
	}

	state := p.state.State()
	if !flag(state.Permissions) {
		p.WriteError(w, http.StatusForbidden, "Acesso negado: permissão insuficiente.")
		return
	}
	if page == navigation.PagePonto && !state.CanClockIn {
		p.WriteError(w, http.StatusForbidden, "Acesso negado: nenhuma empresa vinculada.")
		return
	}

	prefix := "/api/v1/modules/" + string(page)
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	r.URL.Path = "/" + string(page) + rest

	p.reverse.ServeHTTP(w, r)
}
