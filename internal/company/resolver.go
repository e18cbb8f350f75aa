package company

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gestaolite/backoffice/internal"
	companyDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/company"
	permissionDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/permission"
	userDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/user"
)

type API interface {
	GetEmployeeLink(ctx context.Context, phone string) (*companyDatamodel.Link, error)
	GetCompaniesByOwner(ctx context.Context, ownerPhone string) ([]companyDatamodel.Company, error)
	GetCompany(ctx context.Context, id string) (*companyDatamodel.Company, error)
	CreateCompany(ctx context.Context, name, ownerPhone string) (*companyDatamodel.Company, error)
}

// Affiliations is one resolved snapshot of the user's company relationships:
// the companies they own plus, at most, one linked employer. The derived
// views are memoized per snapshot; a new Refresh produces a new snapshot.
type Affiliations struct {
	Owned           []companyDatamodel.Company
	Linked          *companyDatamodel.Company
	LinkedCompanyID string

	mu     sync.Mutex
	merged map[bool][]companyDatamodel.Company
}

// CanClockIn reports whether the user has an employer to clock in against.
// Clocking in without a company link is meaningless, so the timeclock page
// requires this on top of the ponto flag.
func (a *Affiliations) CanClockIn() bool {
	if a == nil {
		return false
	}
	return a.LinkedCompanyID != ""
}

// Manageable returns the companies the user can administrate: everything
// owned, plus the linked company when the user holds an HR, company
// management or tickets permission.
func (a *Affiliations) Manageable(perms permissionDatamodel.MenuPermissions) []companyDatamodel.Company {
	includeLinked := perms.RH || perms.Empresas || perms.Chamados
	return a.mergedView(includeLinked)
}

// Approvable returns the companies the user can approve timesheets for.
func (a *Affiliations) Approvable(perms permissionDatamodel.MenuPermissions) []companyDatamodel.Company {
	return a.mergedView(perms.AprovarHoras)
}

// mergedView deduplicates by company id: an owned entry always wins over the
// linked duplicate, and the linked company is appended last when eligible.
func (a *Affiliations) mergedView(includeLinked bool) []companyDatamodel.Company {
	if a == nil {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.merged == nil {
		a.merged = make(map[bool][]companyDatamodel.Company, 2)
	}
	if view, ok := a.merged[includeLinked]; ok {
		return view
	}

	view := make([]companyDatamodel.Company, len(a.Owned))
	copy(view, a.Owned)

	if includeLinked && a.Linked != nil {
		duplicate := false
		for _, owned := range a.Owned {
			if owned.ID == a.Linked.ID {
				duplicate = true
				break
			}
		}
		if !duplicate {
			view = append(view, *a.Linked)
		}
	}

	a.merged[includeLinked] = view
	return view
}

// Resolver determines which companies the logged-in user owns or is linked
// to as an employee.
type Resolver struct {
	api    API
	logger *slog.Logger
}

func NewResolver(api API, logger *slog.Logger) *Resolver {
	return &Resolver{
		api:    api,
		logger: logger,
	}
}

// Refresh runs the affiliation sequence: employee link, owned companies,
// then the supplementary fetch of the linked company. 404s along the way are
// expected absences; only the supplementary fetch may fail without aborting
// the refresh, since a placeholder company name degrades gracefully.
func (r *Resolver) Refresh(ctx context.Context, u *userDatamodel.User) (*Affiliations, error) {
	affiliations := &Affiliations{}

	link, err := r.api.GetEmployeeLink(ctx, u.Phone)
	switch {
	case internal.IsNotFound(err):
		// no employer link
	case err != nil:
		return nil, err
	case link != nil && link.IsActive():
		affiliations.LinkedCompanyID = link.CompanyID
	}

	owned, err := r.api.GetCompaniesByOwner(ctx, u.Phone)
	switch {
	case internal.IsNotFound(err):
		// zero owned companies
	case err != nil:
		return nil, err
	}
	for i := range owned {
		owned[i].IsOwnedByCurrentUser = true
	}
	affiliations.Owned = owned

	if id := affiliations.LinkedCompanyID; id != "" && !containsID(owned, id) {
		linked, err := r.api.GetCompany(ctx, id)
		if err != nil {
			r.logger.Warn("failed to fetch linked company, continuing without it",
				"company_id", id, "error", err)
		} else {
			linked.IsOwnedByCurrentUser = false
			affiliations.Linked = linked
		}
	}

	return affiliations, nil
}

// Create registers a company with the backend. Callers re-run Refresh
// afterwards; there is no optimistic local mutation.
func (r *Resolver) Create(ctx context.Context, name string, owner *userDatamodel.User) (*companyDatamodel.Company, error) {
	return r.api.CreateCompany(ctx, name, owner.Phone)
}

func containsID(companies []companyDatamodel.Company, id string) bool {
	for _, c := range companies {
		if c.ID == id {
			return true
		}
	}
	return false
}
