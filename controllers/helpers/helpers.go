package helpers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gookit/validate"
	"github.com/zsmartex/venuex/config"
	"github.com/zsmartex/venuex/types"
)

var ServerInternalError = "server.internal_error"

type Errors struct {
	Errors []string `json:"errors"`
}

func (e Errors) Size() int {
	return len(e.Errors)
}

func Vaildate(payload interface{}, err_src *Errors) {
	v := validate.Struct(payload)
	if !v.Validate() {
		for _, errs := range v.Errors.All() {
			for _, err := range errs {
				err_src.Errors = append(err_src.Errors, err)
			}
		}
	}
}

// ErrorStatus maps an error kind to the HTTP status it is rendered with.
func ErrorStatus(err error) int {
	switch types.KindOf(err) {
	case types.KindValidation:
		return 422
	case types.KindNotFound:
		return 404
	case types.KindExternal:
		return 502
	default:
		return 500
	}
}

// RenderError answers with the message of a typed error. Anything else is
// logged and hidden behind server.internal_error.
func RenderError(c *fiber.Ctx, err error) error {
	status := ErrorStatus(err)

	var typed *types.Error
	if status == 500 || !errors.As(err, &typed) {
		config.GetLogger().WithField("path", c.Path()).Errorf("Request failed: %v", err)

		return c.Status(500).JSON(Errors{
			Errors: []string{ServerInternalError},
		})
	}

	return c.Status(status).JSON(Errors{
		Errors: []string{typed.Message},
	})
}
