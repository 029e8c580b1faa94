package providers

import (
	"withings-mcp/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidatorInterface interface {
	Validate() error
}

type CnfValidator struct {
	conf *structures.Config
}

func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if v.Validate() {
		return nil
	}
	return v.Errors.OneError()
}

func NewCnfValidator(conf *structures.Config) CnfValidatorInterface {
	return &CnfValidator{conf: conf}
}
