package usecase

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/entregas-api/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput valida las etiquetas `validate` del DTO y traduce la falla a domain.ErrInvalidInput.
func validateInput(in any) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
