// Package mutate implements the state-changing workflows. Each helper
// validates client-side (advisory), submits exactly one request, and leaves
// the refresh-after-mutation to the caller's controller — the backend is
// the source of truth, so the view is never patched locally.
package mutate

import (
	"context"
	"errors"
	"io"
	"strings"

	"backoffice-cli/internal/model"
	"backoffice-cli/internal/resource"
	"backoffice-cli/internal/validate"
)

var (
	// ErrNothingSelected rejects bulk operations with an empty selection.
	ErrNothingSelected = errors.New("no rows selected")
	// ErrStatusNotAllowed rejects a status the resource does not use.
	ErrStatusNotAllowed = errors.New("status not allowed for this resource")
)

// Backend is the slice of api.Client the workflows need.
type Backend interface {
	Create(ctx context.Context, resourcePath string, fields map[string]string) (model.Item, error)
	UpdateFields(ctx context.Context, resourcePath, id string, fields map[string]string) error
	UpdateStatus(ctx context.Context, resourcePath, id string, status model.Status) error
	BulkUpdateStatus(ctx context.Context, resourcePath string, ids []string, status model.Status) error
	Delete(ctx context.Context, resourcePath, id string) error
	UploadImage(ctx context.Context, resourcePath, id, filename string, r io.Reader) error
}

// ValidateFields runs the advisory client-side checks for a form submission.
// All failures are returned so the form can mark every offending field.
func ValidateFields(res resource.Resource, fields map[string]string, create bool) []validate.FieldError {
	var errs []validate.FieldError
	add := func(err error) {
		var fe validate.FieldError
		if errors.As(err, &fe) {
			errs = append(errs, fe)
		}
	}

	for _, f := range res.Fields {
		if f.CreateOnly && !create {
			continue
		}
		val, present := fields[f.Key]
		if f.Required && create {
			if err := validate.Required(f.Key, val); err != nil {
				add(err)
				continue
			}
		}
		// On edit, absent fields stay untouched server-side.
		if !present || strings.TrimSpace(val) == "" {
			continue
		}
		switch f.Kind {
		case resource.FieldEmail:
			add(validate.Email(f.Key, val))
		case resource.FieldPhone:
			add(validate.Phone(f.Key, val))
		case resource.FieldPassword:
			add(validate.Password(f.Key, val))
		case resource.FieldSelect:
			if len(f.Options) > 0 && !contains(f.Options, strings.TrimSpace(val)) {
				add(validate.FieldError{Field: f.Key, Message: "is not a valid option"})
			}
		}
	}
	return errs
}

// Create validates and posts a new record. For name-unique resources the
// page-local duplicate guard runs first and blocks the submission without
// any network call; it is a UX hint only, the server's 409 stays
// authoritative.
func Create(ctx context.Context, b Backend, res resource.Resource, fields map[string]string, loadedPage []model.Item) (model.Item, error) {
	if errs := ValidateFields(res, fields, true); len(errs) > 0 {
		return model.Item{}, errs[0]
	}
	if res.NameUnique {
		if err := validate.DuplicateName(fields["name"], loadedPage); err != nil {
			return model.Item{}, err
		}
	}
	return b.Create(ctx, res.Path, fields)
}

// UpdateFields validates and patches the given fields of one record.
func UpdateFields(ctx context.Context, b Backend, res resource.Resource, id string, fields map[string]string) error {
	if errs := ValidateFields(res, fields, false); len(errs) > 0 {
		return errs[0]
	}
	return b.UpdateFields(ctx, res.Path, id, fields)
}

// SetStatus changes one record's status.
func SetStatus(ctx context.Context, b Backend, res resource.Resource, id string, status model.Status) error {
	if !res.HasStatus(status) {
		return ErrStatusNotAllowed
	}
	return b.UpdateStatus(ctx, res.Path, id, status)
}

// BulkSetStatus changes the status of all selected records in one request.
func BulkSetStatus(ctx context.Context, b Backend, res resource.Resource, ids []string, status model.Status) error {
	if len(ids) == 0 {
		return ErrNothingSelected
	}
	if !res.HasStatus(status) {
		return ErrStatusNotAllowed
	}
	return b.BulkUpdateStatus(ctx, res.Path, ids, status)
}

// Delete removes one record.
func Delete(ctx context.Context, b Backend, res resource.Resource, id string) error {
	return b.Delete(ctx, res.Path, id)
}

// UploadImage replaces a record's image.
func UploadImage(ctx context.Context, b Backend, res resource.Resource, id, filename string, r io.Reader) error {
	if !res.HasImage {
		return errors.New(res.Key + " has no image")
	}
	return b.UploadImage(ctx, res.Path, id, filename, r)
}

func contains(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
