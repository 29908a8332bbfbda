// Package resource declares the managed screens. Every screen is the same
// machine — generic list controller + modal workflows — parameterized by
// one of these schemas; adding a screen means adding an entry here.
package resource

import (
	"fmt"
	"strings"

	"backoffice-cli/internal/model"
)

type FieldKind int

const (
	FieldText FieldKind = iota
	FieldEmail
	FieldPhone
	FieldPassword
	FieldTextarea
	// FieldMarkdown renders through the markdown preview in detail views.
	FieldMarkdown
	FieldSelect
)

// Field describes one form input of the create/edit modal.
type Field struct {
	Key      string
	Label    string
	Kind     FieldKind
	Required bool
	// Options applies to FieldSelect.
	Options []string
	// CreateOnly fields (e.g. passwords) are absent from the edit form.
	CreateOnly bool
}

// Filter describes one list-scope dropdown mapped to a query parameter.
type Filter struct {
	Key     string
	Label   string
	Options []string
}

// Resource is the full declarative schema of one screen.
type Resource struct {
	Key   string // CLI name and registry key
	Title string
	Path  string // backend path segment

	Statuses []model.Status
	Filters  []Filter
	Fields   []Field
	// Columns are the field keys shown in list rows, in order.
	Columns []string

	// NameUnique enables the page-local duplicate-name guard on create.
	NameUnique bool
	// HasImage enables the image-upload workflow.
	HasImage bool
	// PreviewField, when set, is rendered as markdown in the detail pane.
	PreviewField string
}

func (r Resource) HasStatus(s model.Status) bool {
	for _, k := range r.Statuses {
		if k == s {
			return true
		}
	}
	return false
}

// Find returns a field by key.
func (r Resource) Find(key string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

var activePair = []model.Status{model.StatusActive, model.StatusDeactive}

var registry = []Resource{
	{
		Key: "staff", Title: "Staff", Path: "staff",
		Statuses: []model.Status{model.StatusActive, model.StatusDeactive, model.StatusSuspended},
		Filters:  []Filter{{Key: "role", Label: "Role", Options: []string{"ADMIN", "MANAGER", "SUPPORT"}}},
		Fields: []Field{
			{Key: "name", Label: "Name", Required: true},
			{Key: "email", Label: "Email", Kind: FieldEmail, Required: true},
			{Key: "phone", Label: "Phone", Kind: FieldPhone},
			{Key: "role", Label: "Role", Kind: FieldSelect, Required: true, Options: []string{"ADMIN", "MANAGER", "SUPPORT"}},
			{Key: "password", Label: "Password", Kind: FieldPassword, Required: true, CreateOnly: true},
		},
		Columns: []string{"name", "email", "role"},
	},
	{
		Key: "banners", Title: "Banners", Path: "banner",
		Statuses: activePair,
		Filters:  []Filter{{Key: "placement", Label: "Placement", Options: []string{"HOME", "CATEGORY", "CHECKOUT"}}},
		Fields: []Field{
			{Key: "title", Label: "Title", Required: true},
			{Key: "link", Label: "Link"},
			{Key: "placement", Label: "Placement", Kind: FieldSelect, Options: []string{"HOME", "CATEGORY", "CHECKOUT"}},
		},
		Columns:  []string{"title", "placement", "link"},
		HasImage: true,
	},
	{
		Key: "books", Title: "Books", Path: "book",
		Statuses: activePair,
		Filters: []Filter{
			{Key: "subjectId", Label: "Subject"},
			{Key: "languageId", Label: "Language"},
		},
		Fields: []Field{
			{Key: "title", Label: "Title", Required: true},
			{Key: "author", Label: "Author", Required: true},
			{Key: "subjectId", Label: "Subject ID", Required: true},
			{Key: "languageId", Label: "Language ID", Required: true},
			{Key: "edition", Label: "Edition"},
		},
		Columns:  []string{"title", "author", "edition"},
		HasImage: true,
	},
	{
		Key: "subjects", Title: "Subjects", Path: "subject",
		Statuses: activePair,
		Fields: []Field{
			{Key: "name", Label: "Name", Required: true},
		},
		Columns:    []string{"name"},
		NameUnique: true,
	},
	{
		Key: "languages", Title: "Languages", Path: "language",
		Statuses: activePair,
		Fields: []Field{
			{Key: "name", Label: "Name", Required: true},
			{Key: "code", Label: "ISO code"},
		},
		Columns:    []string{"name", "code"},
		NameUnique: true,
	},
	{
		Key: "states", Title: "States", Path: "state",
		Statuses: activePair,
		Fields: []Field{
			{Key: "name", Label: "Name", Required: true},
			{Key: "countryCode", Label: "Country code"},
		},
		Columns:    []string{"name", "countryCode"},
		NameUnique: true,
	},
	{
		Key: "faqs", Title: "FAQs", Path: "faq",
		Statuses: activePair,
		Fields: []Field{
			{Key: "question", Label: "Question", Required: true},
			{Key: "answer", Label: "Answer", Kind: FieldMarkdown, Required: true},
		},
		Columns:      []string{"question"},
		PreviewField: "answer",
	},
	{
		Key: "contacts", Title: "Contacts", Path: "contact",
		Statuses: []model.Status{model.StatusPending, model.StatusActive, model.StatusDeactive},
		Filters:  []Filter{{Key: "categoryId", Label: "Category"}},
		Fields: []Field{
			{Key: "name", Label: "Name", Required: true},
			{Key: "email", Label: "Email", Kind: FieldEmail, Required: true},
			{Key: "message", Label: "Message", Kind: FieldMarkdown, Required: true},
			{Key: "categoryId", Label: "Category ID"},
		},
		Columns:      []string{"name", "email"},
		PreviewField: "message",
	},
	{
		Key: "payouts", Title: "Payouts", Path: "payout",
		Statuses: []model.Status{model.StatusPending, model.StatusApproved, model.StatusRejected},
		Filters:  []Filter{{Key: "method", Label: "Method", Options: []string{"BANK", "PAYPAL", "STRIPE"}}},
		Fields: []Field{
			{Key: "amount", Label: "Amount", Required: true},
			{Key: "method", Label: "Method", Kind: FieldSelect, Options: []string{"BANK", "PAYPAL", "STRIPE"}},
			{Key: "note", Label: "Note", Kind: FieldTextarea},
		},
		Columns: []string{"amount", "method", "note"},
	},
	{
		Key: "settings", Title: "Settings", Path: "setting",
		Statuses: activePair,
		Fields: []Field{
			{Key: "key", Label: "Key", Required: true},
			{Key: "value", Label: "Value", Required: true},
			{Key: "description", Label: "Description", Kind: FieldTextarea},
		},
		Columns:    []string{"key", "value"},
		NameUnique: false,
	},
}

// All returns the screens in menu order.
func All() []Resource {
	out := make([]Resource, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds a resource by its key (case-insensitive).
func Lookup(key string) (Resource, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, r := range registry {
		if r.Key == key {
			return r, nil
		}
	}
	return Resource{}, fmt.Errorf("unknown resource %q", key)
}
