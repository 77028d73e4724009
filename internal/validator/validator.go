// internal/validator/validator.go
package validator

import (
	"regexp"

	"cardwise/internal/domain"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New()

	// Non-empty and not only whitespace.
	_ = Validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return len(regexp.MustCompile(`\S`).FindString(s)) > 0
	})

	// Known spending category tag.
	_ = Validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return domain.Category(fl.Field().String()).Valid()
	})

	// Known rewards point system tag.
	_ = Validate.RegisterValidation("pointsystem", func(fl validator.FieldLevel) bool {
		return domain.PointType(fl.Field().String()).Valid()
	})

	// Limit reset cadence.
	_ = Validate.RegisterValidation("cadence", func(fl validator.FieldLevel) bool {
		switch domain.ResetCadence(fl.Field().String()) {
		case domain.ResetMonthly, domain.ResetQuarterly, domain.ResetAnnually:
			return true
		}
		return false
	})
}
