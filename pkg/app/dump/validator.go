package dump

import (
	"strings"

	"github.com/deploymenttheory/go-dex/pkg/app"
)

// Validate validates a dump request and applies the default sections
func (r *Request) Validate() error {
	if len(r.Paths) == 0 {
		return app.NewError(app.ErrCodeInvalidInput, "at least one dex file is required", nil)
	}
	for _, p := range r.Paths {
		if strings.TrimSpace(p) == "" {
			return app.NewError(app.ErrCodeInvalidInput, "file path cannot be empty", nil)
		}
	}

	if r.VerifyOnly {
		if r.ClassName != "" || !r.Sections.IsEmpty() {
			return app.NewError(app.ErrCodeInvalidInput, "verify does not take section flags", nil)
		}
		return nil
	}

	r.ClassName = strings.TrimSpace(r.ClassName)
	if r.Sections.IsEmpty() && r.ClassName == "" {
		r.Sections = DefaultSections()
	}

	return nil
}
