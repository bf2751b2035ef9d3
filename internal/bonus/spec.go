package bonus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidSpec is returned when a bonus URL or description does not pass validation.
var ErrInvalidSpec = errors.New("invalid bonus")

// Spec is a promotional offer supplied by the operator.
type Spec struct {
	URL         string `bson:"url" validate:"required,http_url,max=2048"`
	Description string `bson:"description" validate:"required,max=1024"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the URL and description.
func (s Spec) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed on %q", ErrInvalidSpec, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	return nil
}

// ParseSpec reads "<url> <description>" as typed after the /bonus command.
// The URL may also be on its own line followed by the description.
func ParseSpec(text string) (Spec, error) {
	text = strings.TrimSpace(text)
	url, desc, _ := strings.Cut(text, " ")
	if nl := strings.IndexByte(url, '\n'); nl >= 0 {
		url, desc = url[:nl], url[nl+1:]+" "+desc
	}
	spec := Spec{
		URL:         strings.TrimSpace(url),
		Description: strings.Join(strings.Fields(desc), " "),
	}
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}
