package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validation errors report fields by their JSON names.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0] //nolint:mnd // name and options
				if name == "-" {
					return ""
				}
				return name
			})
		}
	})
}

// bindingMessage turns a body binding failure into the plain-text reply for the client.
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "The request body is not a valid employee: " + err.Error()
	}

	return fmt.Sprintf("%s is invalid.", verrs[0].Field())
}
