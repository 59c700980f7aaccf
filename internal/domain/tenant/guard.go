// Package tenant aísla los datos de cada negocio. Todo caso de uso recibe un Actor
// y valida con Authorize que cada entidad leída o escrita pertenezca a su negocio.
package tenant

import (
	"fmt"

	"github.com/jhoicas/kardex-api/internal/domain"
)

// Actor usuario que ejecuta la operación, con el negocio al que pertenece (claim del token).
type Actor struct {
	UserID     string
	BusinessID string
}

// NewActor construye el actor a partir de los claims de sesión.
func NewActor(userID, businessID string) Actor {
	return Actor{UserID: userID, BusinessID: businessID}
}

// Validate rechaza actores sin usuario o sin negocio.
func (a Actor) Validate() error {
	if a.UserID == "" || a.BusinessID == "" {
		return fmt.Errorf("%w: sesión sin usuario o negocio", domain.ErrForbidden)
	}
	return nil
}

// Authorize verifica que un recurso del negocio ownerBusinessID sea accesible para el actor.
func Authorize(actor Actor, ownerBusinessID string) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if ownerBusinessID != actor.BusinessID {
		return domain.ErrForbidden
	}
	return nil
}
