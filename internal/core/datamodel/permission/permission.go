package permission

// Permission keys as the backend stores them. The set is closed: a key the
// backend returns that is not listed here is ignored, and a listed key the
// backend omits is false.
const (
	KeyFinanceiro       = "financeiro"
	KeyAprovacoes       = "aprovacoes"
	KeyRH               = "rh"
	KeyPonto            = "ponto"
	KeyAprovarHoras     = "aprovarHoras"
	KeyOrdensServico    = "ordensServico"
	KeyChamados         = "chamados"
	KeyEmpresas         = "empresas"
	KeyListaCompras     = "listaCompras"
	KeyConfiguracoes    = "configuracoes"
	KeyExemplos         = "exemplos"
	KeyManualFinanceiro = "manualFinanceiro"

	KeyBurgerPedidos       = "burgerPedidos"
	KeyBurgerCardapio      = "burgerCardapio"
	KeyBurgerCaixa         = "burgerCaixa"
	KeyBurgerEntregas      = "burgerEntregas"
	KeyBurgerRelatorios    = "burgerRelatorios"
	KeyBurgerConfiguracoes = "burgerConfiguracoes"
)

// MenuPermissions is the fixed flag set gating the feature modules. Every
// field is always present; the struct is replaced wholesale on every fetch,
// never partially merged.
type MenuPermissions struct {
	Financeiro       bool `json:"financeiro"`
	Aprovacoes       bool `json:"aprovacoes"`
	RH               bool `json:"rh"`
	Ponto            bool `json:"ponto"`
	AprovarHoras     bool `json:"aprovarHoras"`
	OrdensServico    bool `json:"ordensServico"`
	Chamados         bool `json:"chamados"`
	Empresas         bool `json:"empresas"`
	ListaCompras     bool `json:"listaCompras"`
	Configuracoes    bool `json:"configuracoes"`
	Exemplos         bool `json:"exemplos"`
	ManualFinanceiro bool `json:"manualFinanceiro"`

	BurgerPedidos       bool `json:"burgerPedidos"`
	BurgerCardapio      bool `json:"burgerCardapio"`
	BurgerCaixa         bool `json:"burgerCaixa"`
	BurgerEntregas      bool `json:"burgerEntregas"`
	BurgerRelatorios    bool `json:"burgerRelatorios"`
	BurgerConfiguracoes bool `json:"burgerConfiguracoes"`
}

var flagSetters = map[string]func(*MenuPermissions){
	KeyFinanceiro:       func(m *MenuPermissions) { m.Financeiro = true },
	KeyAprovacoes:       func(m *MenuPermissions) { m.Aprovacoes = true },
	KeyRH:               func(m *MenuPermissions) { m.RH = true },
	KeyPonto:            func(m *MenuPermissions) { m.Ponto = true },
	KeyAprovarHoras:     func(m *MenuPermissions) { m.AprovarHoras = true },
	KeyOrdensServico:    func(m *MenuPermissions) { m.OrdensServico = true },
	KeyChamados:         func(m *MenuPermissions) { m.Chamados = true },
	KeyEmpresas:         func(m *MenuPermissions) { m.Empresas = true },
	KeyListaCompras:     func(m *MenuPermissions) { m.ListaCompras = true },
	KeyConfiguracoes:    func(m *MenuPermissions) { m.Configuracoes = true },
	KeyExemplos:         func(m *MenuPermissions) { m.Exemplos = true },
	KeyManualFinanceiro: func(m *MenuPermissions) { m.ManualFinanceiro = true },

	KeyBurgerPedidos:       func(m *MenuPermissions) { m.BurgerPedidos = true },
	KeyBurgerCardapio:      func(m *MenuPermissions) { m.BurgerCardapio = true },
	KeyBurgerCaixa:         func(m *MenuPermissions) { m.BurgerCaixa = true },
	KeyBurgerEntregas:      func(m *MenuPermissions) { m.BurgerEntregas = true },
	KeyBurgerRelatorios:    func(m *MenuPermissions) { m.BurgerRelatorios = true },
	KeyBurgerConfiguracoes: func(m *MenuPermissions) { m.BurgerConfiguracoes = true },
}

// KnownKeys returns every recognized permission key.
func KnownKeys() []string {
	keys := make([]string, 0, len(flagSetters))
	for k := range flagSetters {
		keys = append(keys, k)
	}
	return keys
}

// FromKeys maps a flat permission-key list onto the fixed flag set.
// Unrecognized keys are ignored; keys absent from the list stay false.
func FromKeys(keys []string) MenuPermissions {
	var m MenuPermissions
	for _, k := range keys {
		if set, ok := flagSetters[k]; ok {
			set(&m)
		}
	}
	return m
}

// DefaultFallback is the client-side permission set used when the backend has
// no record for the user and the default grant could not be persisted.
func DefaultFallback() MenuPermissions {
	return MenuPermissions{Financeiro: true}
}

// DefaultGrantKeys is what gets persisted server-side for a brand-new user.
func DefaultGrantKeys() []string {
	return []string{KeyFinanceiro}
}
