package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	enlocale "github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

var trans ut.Translator

// Init teaches gin's validator to report json field names and installs
// english message translations. Call once before handling requests.
func Init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	locale := enlocale.New()
	trans, _ = ut.New(locale, locale).GetTranslator("en")
	_ = entrans.RegisterDefaultTranslations(v, trans)
}

// ParseError flattens binding errors into a field -> message map for the
// validation problem body.
func ParseError(err error) map[string]string {
	fields := make(map[string]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["body"] = "Invalid request body format. Please fix your payload."
		return fields
	}

	for _, fe := range verrs {
		// Strip the struct name from the namespace
		field := fe.Namespace()
		if i := strings.Index(field, "."); i != -1 {
			field = field[i+1:]
		}

		switch fe.Tag() {
		case "oneof":
			fields[field] = fmt.Sprintf("must be one of [%s]", strings.ReplaceAll(fe.Param(), " ", ", "))
		default:
			fields[field] = fe.Translate(trans)
		}
	}

	return fields
}
