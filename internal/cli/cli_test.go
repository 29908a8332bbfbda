package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice-cli/internal/resource"
	"backoffice-cli/internal/session"
)

// runCmdIn executes the root command against srv with dir as the data dir,
// returning stdout. Ambient BACKOFFICE_* variables are neutralized so the
// test host's environment cannot leak into flag defaults.
func runCmdIn(t *testing.T, srv *httptest.Server, dir string, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{
		"BACKOFFICE_CONFIG", "BACKOFFICE_FORMAT", "BACKOFFICE_DATA_DIR",
		"BACKOFFICE_EMAIL", "BACKOFFICE_PASSWORD",
	} {
		t.Setenv(k, "")
	}

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(append([]string{}, args...), "--api-url", srv.URL, "--data-dir", dir))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func runCmd(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	return runCmdIn(t, srv, t.TempDir(), args...)
}

func newBackend(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestListCommand_JSONOutput(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/subject/list", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "0", q.Get("offset"))
		assert.Equal(t, "alg", q.Get("keyword"))
		_, _ = w.Write([]byte(`{"result":[{"id":"su1","status":"ACTIVE","name":"Algebra"}],"total":1}`))
	})

	out, err := runCmd(t, srv, "subjects", "list", "--search", "alg")
	require.NoError(t, err)

	var got struct {
		Total      int `json:"total"`
		Page       int `json:"page"`
		TotalPages int `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 1, got.Total)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 1, got.TotalPages)
	assert.Contains(t, out, "Algebra")
}

func TestListCommand_SecondPageSendsOffset(t *testing.T) {
	var offsets []string
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		offsets = append(offsets, r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(`{"result":[{"id":"su1","status":"ACTIVE","name":"Algebra"}],"total":15}`))
	})

	_, err := runCmd(t, srv, "subjects", "list", "--page", "2")
	require.NoError(t, err)
	// First fetch establishes the page count, the second lands on page 2.
	require.Equal(t, []string{"0", "10"}, offsets)
}

func TestListCommand_TableOutput(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":[{"id":"su1","status":"ACTIVE","name":"Algebra"}],"total":1}`))
	})

	out, err := runCmd(t, srv, "subjects", "list", "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "su1")
	assert.Contains(t, out, "page 1/1, 1 total")
}

func TestListCommand_RejectsForeignStatus(t *testing.T) {
	var calls int
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) { calls++ })

	_, err := runCmd(t, srv, "subjects", "list", "--status", "SUSPENDED")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not used by subjects")
	assert.Zero(t, calls)
}

func TestCreateCommand_PostsFields(t *testing.T) {
	var gotMethod, gotPath string
	var body map[string]string
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"result":{"id":"su9","status":"ACTIVE","name":"Algebra"}}`))
	})

	out, err := runCmd(t, srv, "subjects", "create", "--field", "name=Algebra")
	require.NoError(t, err)
	assert.Equal(t, "POST", gotMethod)
	assert.Equal(t, "/subject", gotPath)
	assert.Equal(t, "Algebra", body["name"])
	assert.Contains(t, out, "su9")
}

func TestCreateCommand_UnknownFieldRejected(t *testing.T) {
	var calls int
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) { calls++ })

	_, err := runCmd(t, srv, "subjects", "create", "--field", "color=red")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "color"`)
	assert.Zero(t, calls)
}

func TestDeleteCommand_RequiresYes(t *testing.T) {
	var calls int
	var gotPath string
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotPath = r.Method + " " + r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := runCmd(t, srv, "subjects", "delete", "su1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
	assert.Zero(t, calls)

	_, err = runCmd(t, srv, "subjects", "delete", "su1", "--yes")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "DELETE /subject/su1", gotPath)
}

func TestBulkStatusCommand_SingleRequest(t *testing.T) {
	var calls int
	var body map[string]any
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, "PUT", r.Method)
		require.Equal(t, "/banner/bulk-status", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := runCmd(t, srv, "banners", "bulk-status", "DEACTIVE", "--id", "b1", "--id", "b2")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "DEACTIVE", body["status"])
	assert.Equal(t, []any{"b1", "b2"}, body["ids"])
}

func TestLoginCommand_SavesSession(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		require.Equal(t, "ops@example.com", creds["email"])
		_, _ = w.Write([]byte(`{"result":{"accessToken":"tok-xyz"}}`))
	})

	dir := t.TempDir()
	out, err := runCmdIn(t, srv, dir, "login", "--email", "ops@example.com", "--password", "Abc123x")
	require.NoError(t, err)
	assert.Contains(t, out, `"loggedIn":true`)

	sess, err := session.Store{Dir: dir}.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-xyz", sess.Token)
	assert.Equal(t, "ops@example.com", sess.Email)
}

func TestStoredTokenAttachedToRequests(t *testing.T) {
	var gotAuth string
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			_, _ = w.Write([]byte(`{"result":{"accessToken":"tok-xyz"}}`))
			return
		}
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"result":[],"total":0}`))
	})

	dir := t.TempDir()
	_, err := runCmdIn(t, srv, dir, "login", "--email", "ops@example.com", "--password", "Abc123x")
	require.NoError(t, err)
	_, err = runCmdIn(t, srv, dir, "subjects", "list")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-xyz", gotAuth)
}

func TestHistoryCommand_ListsRecordedMutations(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"id":"su9","status":"ACTIVE","name":"Algebra"}}`))
	})

	dir := t.TempDir()
	_, err := runCmdIn(t, srv, dir, "subjects", "create", "--field", "name=Algebra")
	require.NoError(t, err)

	out, err := runCmdIn(t, srv, dir, "history", "--resource", "subjects")
	require.NoError(t, err)
	assert.Contains(t, out, "create")
	assert.Contains(t, out, "Algebra")
}

func TestParseFields(t *testing.T) {
	res, err := resource.Lookup("staff")
	require.NoError(t, err)

	fields, err := parseFields(res, []string{"name=Ada", "email=a@b.co"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "Ada", "email": "a@b.co"}, fields)

	_, err = parseFields(res, []string{"name"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want key=value")

	_, err = parseFields(res, []string{"nope=1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "nope"`)
}

func TestWhoamiCommand_NoSession(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {})

	out, err := runCmd(t, srv, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, `"loggedIn":false`)
}
