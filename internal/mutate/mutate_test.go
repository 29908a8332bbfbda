package mutate

import (
	"context"
	"errors"
	"io"
	"testing"

	"backoffice-cli/internal/model"
	"backoffice-cli/internal/resource"
	"backoffice-cli/internal/validate"
)

type call struct {
	op     string
	path   string
	id     string
	ids    []string
	status model.Status
	fields map[string]string
}

type fakeBackend struct {
	calls []call
	err   error
}

func (f *fakeBackend) Create(_ context.Context, path string, fields map[string]string) (model.Item, error) {
	f.calls = append(f.calls, call{op: "create", path: path, fields: fields})
	if f.err != nil {
		return model.Item{}, f.err
	}
	return model.Item{ID: "new-1", Fields: fields}, nil
}

func (f *fakeBackend) UpdateFields(_ context.Context, path, id string, fields map[string]string) error {
	f.calls = append(f.calls, call{op: "update", path: path, id: id, fields: fields})
	return f.err
}

func (f *fakeBackend) UpdateStatus(_ context.Context, path, id string, status model.Status) error {
	f.calls = append(f.calls, call{op: "status", path: path, id: id, status: status})
	return f.err
}

func (f *fakeBackend) BulkUpdateStatus(_ context.Context, path string, ids []string, status model.Status) error {
	f.calls = append(f.calls, call{op: "bulk", path: path, ids: ids, status: status})
	return f.err
}

func (f *fakeBackend) Delete(_ context.Context, path, id string) error {
	f.calls = append(f.calls, call{op: "delete", path: path, id: id})
	return f.err
}

func (f *fakeBackend) UploadImage(_ context.Context, path, id, filename string, _ io.Reader) error {
	f.calls = append(f.calls, call{op: "upload", path: path, id: id})
	return f.err
}

func mustRes(t *testing.T, key string) resource.Resource {
	t.Helper()
	r, err := resource.Lookup(key)
	if err != nil {
		t.Fatalf("lookup %s: %v", key, err)
	}
	return r
}

func TestCreate_ValidationBlocksBeforeNetwork(t *testing.T) {
	b := &fakeBackend{}
	res := mustRes(t, "staff")

	_, err := Create(context.Background(), b, res, map[string]string{
		"name":     "Ada",
		"email":    "ada@example.com",
		"role":     "ADMIN",
		"password": "abc123", // no uppercase
	}, nil)

	var fe validate.FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FieldError", err)
	}
	if fe.Field != "password" || fe.Message != "must contain an uppercase letter" {
		t.Fatalf("unexpected field error: %+v", fe)
	}
	if len(b.calls) != 0 {
		t.Fatalf("validation failure must not reach the network, got %d calls", len(b.calls))
	}
}

func TestCreate_DuplicateNameGuardBlocksWithoutNetwork(t *testing.T) {
	b := &fakeBackend{}
	res := mustRes(t, "subjects")
	loaded := []model.Item{{ID: "s1", Fields: map[string]string{"name": "support"}}}

	_, err := Create(context.Background(), b, res, map[string]string{"name": "Support"}, loaded)
	var fe validate.FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want duplicate-name FieldError", err)
	}
	if len(b.calls) != 0 {
		t.Fatalf("duplicate guard must not issue a request")
	}
}

func TestCreate_Submits(t *testing.T) {
	b := &fakeBackend{}
	res := mustRes(t, "subjects")

	it, err := Create(context.Background(), b, res, map[string]string{"name": "Algebra"}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if it.ID != "new-1" {
		t.Fatalf("id = %q", it.ID)
	}
	if len(b.calls) != 1 || b.calls[0].op != "create" || b.calls[0].path != "subject" {
		t.Fatalf("calls = %+v", b.calls)
	}
}

func TestUpdateFields_SkipsAbsentAndCreateOnly(t *testing.T) {
	b := &fakeBackend{}
	res := mustRes(t, "staff")

	// No password, no name: edit patches only what is present.
	if err := UpdateFields(context.Background(), b, res, "s1", map[string]string{"phone": "12345678"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(b.calls) != 1 || b.calls[0].id != "s1" {
		t.Fatalf("calls = %+v", b.calls)
	}

	if err := UpdateFields(context.Background(), b, res, "s1", map[string]string{"email": "broken"}); err == nil {
		t.Fatalf("bad email must fail on edit too")
	}
}

func TestSetStatus_RejectsForeignStatus(t *testing.T) {
	b := &fakeBackend{}
	res := mustRes(t, "banners")

	if err := SetStatus(context.Background(), b, res, "b1", model.StatusApproved); !errors.Is(err, ErrStatusNotAllowed) {
		t.Fatalf("err = %v, want ErrStatusNotAllowed", err)
	}
	if len(b.calls) != 0 {
		t.Fatalf("rejected status must not reach the network")
	}
	if err := SetStatus(context.Background(), b, res, "b1", model.StatusDeactive); err != nil {
		t.Fatalf("valid status: %v", err)
	}
}

func TestBulkSetStatus(t *testing.T) {
	b := &fakeBackend{}
	res := mustRes(t, "banners")

	if err := BulkSetStatus(context.Background(), b, res, nil, model.StatusDeactive); !errors.Is(err, ErrNothingSelected) {
		t.Fatalf("err = %v, want ErrNothingSelected", err)
	}

	ids := []string{"b1", "b2", "b3"}
	if err := BulkSetStatus(context.Background(), b, res, ids, model.StatusDeactive); err != nil {
		t.Fatalf("bulk: %v", err)
	}
	if len(b.calls) != 1 {
		t.Fatalf("want exactly one request, got %d", len(b.calls))
	}
	got := b.calls[0]
	if got.op != "bulk" || len(got.ids) != 3 || got.status != model.StatusDeactive {
		t.Fatalf("call = %+v", got)
	}
}

func TestUploadImage_RequiresImageResource(t *testing.T) {
	b := &fakeBackend{}
	if err := UploadImage(context.Background(), b, mustRes(t, "subjects"), "s1", "x.png", nil); err == nil {
		t.Fatalf("subjects has no image upload")
	}
	if err := UploadImage(context.Background(), b, mustRes(t, "banners"), "b1", "x.png", nil); err != nil {
		t.Fatalf("banner upload: %v", err)
	}
}
