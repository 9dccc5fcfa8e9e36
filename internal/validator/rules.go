package validator

import (
	"log"

	"homefix_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует правила для enum-типов из statuses.go.
// Пустые значения пропускаются: за обязательность отвечает 'required'.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-service-category", enumRule(func(s string) bool { return models.ServiceCategory(s).IsValid() }))
	mustRegister("is-availability", enumRule(func(s string) bool { return models.Availability(s).IsValid() }))
	mustRegister("is-booking-status", enumRule(func(s string) bool { return models.BookingStatus(s).IsValid() }))
	mustRegister("is-payment-status", enumRule(func(s string) bool { return models.PaymentStatus(s).IsValid() }))
	mustRegister("is-payment-method", enumRule(func(s string) bool { return models.PaymentMethod(s).IsValid() }))
	mustRegister("is-settlement-method", enumRule(func(s string) bool { return models.PaymentMethod(s).IsSettlement() }))
}

func enumRule(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		return valid(value)
	}
}

func serviceCategoryNames() []string {
	names := make([]string, 0, len(models.ServiceCategories))
	for _, c := range models.ServiceCategories {
		names = append(names, string(c))
	}
	return names
}
