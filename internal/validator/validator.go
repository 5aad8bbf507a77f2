// Package validator provides custom validation functions for Gin's binding
// engine and the checks applied to records read back from storage.
package validator

import (
	"reflect"
	"regexp"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"taxledger/internal/models"
	"taxledger/internal/money"
)

// DateLayout is the calendar date format used for transaction dates.
const DateLayout = "2006-01-02"

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerAll(v)
	}
}

func registerAll(v *validator.Validate) {
	_ = v.RegisterValidation("hex_color", validateHexColor)
	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("theme_mode", validateThemeMode)
	_ = v.RegisterValidation("iso_date", validateISODate)
	_ = v.RegisterValidation("max_amount", validateMaxAmount)
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return models.TransactionType(fl.Field().String()).Valid()
}

func validateThemeMode(fl validator.FieldLevel) bool {
	return models.ThemeMode(fl.Field().String()).Valid()
}

func validateISODate(fl validator.FieldLevel) bool {
	return IsISODate(fl.Field().String())
}

// validateMaxAmount accepts integer and float amounts up to money.MaxCents.
func validateMaxAmount(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return f.Int() <= money.MaxCents
	case reflect.Float32, reflect.Float64:
		return f.Float() <= money.MaxCents
	}
	return false
}

// IsHexColor reports whether s is a #rgb or #rrggbb colour.
func IsHexColor(s string) bool {
	return hexColorRegex.MatchString(s)
}

// IsISODate reports whether s is a valid YYYY-MM-DD calendar date.
func IsISODate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
