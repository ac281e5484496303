package catalogue

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/localnerve/archhub/internal/models"
	"github.com/localnerve/archhub/internal/types"
)

// IDPattern is the format of a catalogue key
var IDPattern = regexp.MustCompile(`^[A-Z]{2,4}[0-9]{3,6}$`)

var recordPatterns = map[string]*regexp.Regexp{
	"catalogueid":   IDPattern,
	"appname":       regexp.MustCompile(`^[a-z0-9-]+$`),
	"appprefix":     regexp.MustCompile(`^[A-Z]{2,10}$`),
	"appversion":    regexp.MustCompile(`^[vV]?[0-9]+(\.[0-9]+)*([a-zA-Z0-9-]*)?$`),
	"integrationid": regexp.MustCompile(`^INT_[A-Z0-9_]+$`),
	"replacementid": regexp.MustCompile(`^REP_[A-Z0-9_]+$`),
}

var recordEnums = map[string][]string{
	"apptype":   models.ApplicationTypes,
	"lifecycle": models.LifecycleStatuses,
	"tier":      models.Tiers,
	"strategy":  models.Strategies,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for tag, re := range recordPatterns {
		re := re
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		})
	}
	for tag, values := range recordEnums {
		values := values
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return slices.Contains(values, fl.Field().String())
		})
	}

	return v
}

// Normalize trims text attributes and turns empty optional references into nil.
func Normalize(record *models.ApplicationRecord) {
	record.ID = strings.TrimSpace(record.ID)
	record.ApplicationName = strings.TrimSpace(record.ApplicationName)
	record.ApplicationCommonName = strings.TrimSpace(record.ApplicationCommonName)
	record.Prefix = strings.TrimSpace(record.Prefix)
	record.Description = strings.TrimSpace(record.Description)
	record.IntegrationPointID = nilIfBlank(record.IntegrationPointID)
	record.ApplicationReplacementID = nilIfBlank(record.ApplicationReplacementID)
}

func nilIfBlank(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" || trimmed == "N/A" {
		return nil
	}
	return &trimmed
}

// Validate checks a record against the catalogue schema. The returned error is
// a types.ValidationErrors keyed by dotted JSON path.
func Validate(record *models.ApplicationRecord) error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(types.ValidationErrors, len(verrs))
	for _, fe := range verrs {
		key := fe.Namespace()
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		if _, exists := out[key]; !exists {
			out[key] = message(fe)
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return fmt.Sprintf("Minimum length is %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s characters", fe.Param())
	}
	if _, ok := recordPatterns[fe.Tag()]; ok {
		return "Invalid format"
	}
	if values, ok := recordEnums[fe.Tag()]; ok {
		return fmt.Sprintf("Must be one of: %s", strings.Join(values, ", "))
	}
	return fmt.Sprintf("Failed %s validation", fe.Tag())
}
