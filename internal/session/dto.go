package session

import (
	"github.com/gestaolite/backoffice/internal"
	"github.com/gestaolite/backoffice/internal/core/common/validation"
	userDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/user"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Validate checks required fields and the phone format.
func (d LoginDTO) Validate() *internal.AppError {
	if err := validation.ValidateLoginName(d.Name); err != nil {
		return err
	}
	return validation.ValidateLoginPhone(d.Phone)
}

type LoginResponse struct {
	User        *userDatamodel.User `json:"user"`
	AccessToken string              `json:"access_token"`
}
