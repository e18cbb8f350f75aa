package company

const (
	StatusAtivo   = "ativo"
	StatusInativo = "inativo"
)

// Company is an Empresa record as returned by the business API.
// IsOwnedByCurrentUser is derived while merging affiliations and is never
// persisted.
type Company struct {
	ID                   string `json:"_id"`
	Name                 string `json:"nome"`
	Status               string `json:"status"`
	OwnerPhone           string `json:"telefoneProprietario"`
	IsOwnedByCurrentUser bool   `json:"isOwnedByCurrentUser,omitempty"`
}

func (c Company) IsActive() bool {
	return c.Status == StatusAtivo
}

// Link joins a user phone to a company as an employee. Links are never
// updated in place: re-linking means delete and recreate.
type Link struct {
	Phone     string `json:"telefone"`
	CompanyID string `json:"empresaId"`
	Status    string `json:"status"`
}

func (l Link) IsActive() bool {
	return l.Status == StatusAtivo
}
