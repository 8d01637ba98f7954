package api

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"propertycrm/server/internal/models"
)

var registerOnce sync.Once

// enumValidators maps binding tags to the closed vocabularies they enforce.
var enumValidators = map[string]func(string) error{
	"timeline":        func(s string) error { _, err := models.ParseTimeline(s); return err },
	"buyer_type":      func(s string) error { _, err := models.ParseBuyerType(s); return err },
	"property_type":   func(s string) error { _, err := models.ParsePropertyType(s); return err },
	"property_status": func(s string) error { _, err := models.ParsePropertyStatus(s); return err },
	"lead_status":     func(s string) error { _, err := models.ParseLeadStatus(s); return err },
	"engagement_kind": func(s string) error { _, err := models.ParseEngagementKind(s); return err },
}

// RegisterValidators installs the enum binding tags on gin's validator.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		for tag, parse := range enumValidators {
			if err = v.RegisterValidation(tag, enumFunc(parse)); err != nil {
				return
			}
		}
	})
	return err
}

func enumFunc(parse func(string) error) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return parse(fl.Field().String()) == nil
	}
}
