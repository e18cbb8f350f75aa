package navigation

import (
	"sync"

	permissionDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/permission"
)

// ActivePage names one of the feature pages. The set is closed; navigation
// to anything outside it is rejected at the transport edge.
type ActivePage string

const (
	PageHome             ActivePage = "home"
	PageFinanceiro       ActivePage = "financeiro"
	PageAprovacoes       ActivePage = "aprovacoes"
	PageRH               ActivePage = "rh"
	PagePonto            ActivePage = "ponto"
	PageOrdensServico    ActivePage = "ordensServico"
	PageChamados         ActivePage = "chamados"
	PageEmpresas         ActivePage = "empresas"
	PageListaCompras     ActivePage = "listaCompras"
	PageConfiguracoes    ActivePage = "configuracoes"
	PageExemplos         ActivePage = "exemplos"
	PageManualFinanceiro ActivePage = "manualFinanceiro"

	PageBurgerPedidos       ActivePage = "burgerPedidos"
	PageBurgerCardapio      ActivePage = "burgerCardapio"
	PageBurgerCaixa         ActivePage = "burgerCaixa"
	PageBurgerEntregas      ActivePage = "burgerEntregas"
	PageBurgerRelatorios    ActivePage = "burgerRelatorios"
	PageBurgerConfiguracoes ActivePage = "burgerConfiguracoes"
)

type pageSpec struct {
	label string
	flag  func(permissionDatamodel.MenuPermissions) bool
}

var pages = map[ActivePage]pageSpec{
	PageFinanceiro:       {"Financeiro", func(p permissionDatamodel.MenuPermissions) bool { return p.Financeiro }},
	PageAprovacoes:       {"Aprovações", func(p permissionDatamodel.MenuPermissions) bool { return p.Aprovacoes }},
	PageRH:               {"RH", func(p permissionDatamodel.MenuPermissions) bool { return p.RH }},
	PagePonto:            {"Ponto", func(p permissionDatamodel.MenuPermissions) bool { return p.Ponto }},
	PageOrdensServico:    {"Ordens de Serviço", func(p permissionDatamodel.MenuPermissions) bool { return p.OrdensServico }},
	PageChamados:         {"Chamados", func(p permissionDatamodel.MenuPermissions) bool { return p.Chamados }},
	PageEmpresas:         {"Empresas", func(p permissionDatamodel.MenuPermissions) bool { return p.Empresas }},
	PageListaCompras:     {"Lista de Compras", func(p permissionDatamodel.MenuPermissions) bool { return p.ListaCompras }},
	PageConfiguracoes:    {"Configurações", func(p permissionDatamodel.MenuPermissions) bool { return p.Configuracoes }},
	PageExemplos:         {"Exemplos", func(p permissionDatamodel.MenuPermissions) bool { return p.Exemplos }},
	PageManualFinanceiro: {"Manual Financeiro", func(p permissionDatamodel.MenuPermissions) bool { return p.ManualFinanceiro }},

	PageBurgerPedidos:       {"Pedidos", func(p permissionDatamodel.MenuPermissions) bool { return p.BurgerPedidos }},
	PageBurgerCardapio:      {"Cardápio", func(p permissionDatamodel.MenuPermissions) bool { return p.BurgerCardapio }},
	PageBurgerCaixa:         {"Caixa", func(p permissionDatamodel.MenuPermissions) bool { return p.BurgerCaixa }},
	PageBurgerEntregas:      {"Entregas", func(p permissionDatamodel.MenuPermissions) bool { return p.BurgerEntregas }},
	PageBurgerRelatorios:    {"Relatórios", func(p permissionDatamodel.MenuPermissions) bool { return p.BurgerRelatorios }},
	PageBurgerConfiguracoes: {"Config. Hamburgueria", func(p permissionDatamodel.MenuPermissions) bool { return p.BurgerConfiguracoes }},
}

// menuOrder fixes the sidebar ordering; map iteration would shuffle it.
var menuOrder = []ActivePage{
	PageFinanceiro, PageAprovacoes, PageRH, PagePonto,
	PageOrdensServico, PageChamados, PageEmpresas, PageListaCompras,
	PageConfiguracoes, PageExemplos, PageManualFinanceiro,
	PageBurgerPedidos, PageBurgerCardapio, PageBurgerCaixa,
	PageBurgerEntregas, PageBurgerRelatorios, PageBurgerConfiguracoes,
}

// IsKnown reports whether page belongs to the closed page set.
func IsKnown(page ActivePage) bool {
	if page == PageHome {
		return true
	}
	_, ok := pages[page]
	return ok
}

type MenuItem struct {
	Page  ActivePage `json:"page"`
	Label string     `json:"label"`
}

// Controller decides which pages are reachable with the current permissions.
// Navigation itself is free-form and reversible; gating happens at render
// time, so an unreachable active page falls back to home.
type Controller struct {
	mu          sync.RWMutex
	active      ActivePage
	sidebarOpen bool
	perms       permissionDatamodel.MenuPermissions
	canClockIn  bool
}

func NewController() *Controller {
	return &Controller{active: PageHome}
}

// Update replaces the gating inputs wholesale after a bootstrap or a
// permission change.
func (c *Controller) Update(perms permissionDatamodel.MenuPermissions, canClockIn bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.perms = perms
	c.canClockIn = canClockIn
}

// Reset returns the controller to its logged-out state.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = PageHome
	c.sidebarOpen = false
	c.perms = permissionDatamodel.MenuPermissions{}
	c.canClockIn = false
}

// Navigate accepts any known page unconditionally and closes the mobile
// sidebar overlay.
func (c *Controller) Navigate(page ActivePage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = page
	c.sidebarOpen = false
}

func (c *Controller) Active() ActivePage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

func (c *Controller) OpenSidebar() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sidebarOpen = true
}

func (c *Controller) SidebarOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sidebarOpen
}

// Reachable reports whether a page may be rendered. Home is always
// reachable; ponto requires a company link on top of its flag.
func (c *Controller) Reachable(page ActivePage) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reachableLocked(page)
}

func (c *Controller) reachableLocked(page ActivePage) bool {
	if page == PageHome {
		return true
	}
	spec, ok := pages[page]
	if !ok {
		return false
	}
	if !spec.flag(c.perms) {
		return false
	}
	if page == PagePonto && !c.canClockIn {
		return false
	}
	return true
}

// Visible resolves what actually renders: the active page when reachable,
// home otherwise.
func (c *Controller) Visible() ActivePage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.reachableLocked(c.active) {
		return c.active
	}
	return PageHome
}

// Menu lists the reachable feature pages in sidebar order.
func (c *Controller) Menu() []MenuItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]MenuItem, 0, len(menuOrder))
	for _, page := range menuOrder {
		if c.reachableLocked(page) {
			items = append(items, MenuItem{Page: page, Label: pages[page].label})
		}
	}
	return items
}

// RequiredFlag maps a page to its permission check, for the transport-level
// module gate.
func RequiredFlag(page ActivePage) (func(permissionDatamodel.MenuPermissions) bool, bool) {
	spec, ok := pages[page]
	if !ok {
		return nil, false
	}
	return spec.flag, true
}
