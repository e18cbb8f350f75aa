package gateway

import (
	"context"
	"net/http"
	"net/url"

	companyDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/company"
)

// Typed wrappers over the backend endpoints the core consumes. Each endpoint
// gets its own decode struct; unexpected shapes are rejected instead of being
// coalesced away.

type permissionListResponse struct {
	Permissions []string `json:"permissions"`
}

// GetPermissions fetches the flat permission-key list for a phone.
func (c *Client) GetPermissions(ctx context.Context, phone string) ([]string, error) {
	query := url.Values{"userPhone": {phone}}

	var resp permissionListResponse
	if err := c.do(ctx, http.MethodGet, "/permissions", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Permissions, nil
}

type permissionPatchRequest struct {
	Permissions []string `json:"permissions"`
}

// AddPermissions appends keys to a user's permission record, creating the
// record when none exists yet.
func (c *Client) AddPermissions(ctx context.Context, phone string, keys []string) error {
	query := url.Values{"phone": {phone}, "add": {"true"}}
	return c.do(ctx, http.MethodPatch, "/permissions", query, permissionPatchRequest{Permissions: keys}, nil)
}

// ReplacePermissions overwrites a user's permission record wholesale.
func (c *Client) ReplacePermissions(ctx context.Context, phone string, keys []string) error {
	query := url.Values{"phone": {phone}}
	return c.do(ctx, http.MethodPatch, "/permissions", query, permissionPatchRequest{Permissions: keys}, nil)
}

// GetEmployeeLink fetches the user's active employer affiliation. The backend
// returns at most one; a 404 means the user is linked to no company.
func (c *Client) GetEmployeeLink(ctx context.Context, phone string) (*companyDatamodel.Link, error) {
	var link companyDatamodel.Link
	if err := c.do(ctx, http.MethodGet, "/rh/company/"+url.PathEscape(phone), nil, nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

type companyListResponse struct {
	Empresas []companyDatamodel.Company `json:"empresas"`
}

// GetCompaniesByOwner fetches every company owned by the phone. A 404 means
// zero owned companies and is the caller's signal, not an error here.
func (c *Client) GetCompaniesByOwner(ctx context.Context, ownerPhone string) ([]companyDatamodel.Company, error) {
	var resp companyListResponse
	if err := c.do(ctx, http.MethodGet, "/companies/"+url.PathEscape(ownerPhone), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Empresas, nil
}

type companyResponse struct {
	Empresa companyDatamodel.Company `json:"empresa"`
}

// GetCompany fetches one company by its id.
func (c *Client) GetCompany(ctx context.Context, id string) (*companyDatamodel.Company, error) {
	var resp companyResponse
	if err := c.do(ctx, http.MethodGet, "/companies/"+url.PathEscape(id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Empresa, nil
}

type createCompanyRequest struct {
	Name       string `json:"nome"`
	OwnerPhone string `json:"telefoneProprietario"`
}

// CreateCompany registers a new company owned by the phone.
func (c *Client) CreateCompany(ctx context.Context, name, ownerPhone string) (*companyDatamodel.Company, error) {
	var resp companyResponse
	req := createCompanyRequest{Name: name, OwnerPhone: ownerPhone}
	if err := c.do(ctx, http.MethodPost, "/companies", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Empresa, nil
}

// BaseURL exposes the backend root for the feature-module reverse proxy.
func (c *Client) BaseURL() string {
	return c.baseURL
}
