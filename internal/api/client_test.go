package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice-cli/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second)
}

func TestListParams_OmitsEmptyValues(t *testing.T) {
	p := ListParams{
		Limit:   10,
		Offset:  20,
		Keyword: "",
		Status:  "ACTIVE",
		Extra:   map[string]string{"subjectId": "", "languageId": "lang-2"},
	}
	v := p.Values()

	assert.Equal(t, "10", v.Get("limit"))
	assert.Equal(t, "20", v.Get("offset"))
	assert.Equal(t, "ACTIVE", v.Get("status"))
	assert.Equal(t, "lang-2", v.Get("languageId"))
	_, hasKeyword := v["keyword"]
	assert.False(t, hasKeyword, "empty keyword must be absent, not empty")
	_, hasSubject := v["subjectId"]
	assert.False(t, hasSubject, "empty extra filter must be absent")
}

func TestList_DecodesEnvelopeAndSendsAuth(t *testing.T) {
	var gotAuth, gotReqID, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		gotQuery = r.URL.RawQuery
		require.Equal(t, "/staff/list", r.URL.Path)
		_, _ = w.Write([]byte(`{"result":[{"id":"s1","status":"ACTIVE","name":"Ada"},{"id":"s2","status":"DEACTIVE","name":"Bo"}],"total":42}`))
	})
	c.SetToken("tok-abc")

	res, err := c.List(context.Background(), "staff", ListParams{Limit: 10, Offset: 0, Keyword: "a"})
	require.NoError(t, err)
	assert.Equal(t, 42, res.Total)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "s1", res.Items[0].ID)
	assert.Equal(t, model.StatusActive, res.Items[0].Status)

	assert.Equal(t, "Bearer tok-abc", gotAuth)
	assert.NotEmpty(t, gotReqID)
	assert.Contains(t, gotQuery, "keyword=a")
}

func TestSend_401FiresExpiredHookOnce(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	c.SetToken("stale")

	fired := 0
	c.OnSessionExpired(func() { fired++ })

	_, err := c.List(context.Background(), "staff", ListParams{Limit: 10})
	require.ErrorIs(t, err, ErrSessionExpired)
	_, err = c.List(context.Background(), "staff", ListParams{Limit: 10})
	require.ErrorIs(t, err, ErrSessionExpired)

	assert.Equal(t, 1, fired, "hook must fire once per expiry")
	assert.Empty(t, c.Token(), "401 must clear the stored token")

	// A fresh login re-arms the hook.
	c.SetToken("fresh")
	_, _ = c.List(context.Background(), "staff", ListParams{Limit: 10})
	assert.Equal(t, 2, fired)
}

func TestSend_ExpiredJWTSkipsRequest(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"result":[]}`))
	})

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	c.SetToken(tok)

	fired := 0
	c.OnSessionExpired(func() { fired++ })

	_, err = c.List(context.Background(), "staff", ListParams{Limit: 10})
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Zero(t, calls, "expired token must not reach the backend")
	assert.Equal(t, 1, fired)

	// Opaque tokens carry no exp claim; the server stays the judge.
	c.SetToken("opaque-token")
	_, err = c.List(context.Background(), "staff", ListParams{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestSend_ServerMessageSurfacedVerbatim(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"subject name already exists"}`))
	})

	_, err := c.Create(context.Background(), "subject", map[string]string{"name": "Math"})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "subject name already exists", apiErr.Error())
}

func TestBulkUpdateStatus_SingleRequestWithAllIDs(t *testing.T) {
	var calls int
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/banner/bulk-status", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"result":null}`))
	})

	err := c.BulkUpdateStatus(context.Background(), "banner", []string{"b1", "b2", "b3"}, model.StatusDeactive)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "DEACTIVE", body["status"])
	assert.Equal(t, []any{"b1", "b2", "b3"}, body["ids"])
}

func TestUpdateStatus_PathAndBody(t *testing.T) {
	var gotPath, gotBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{}`))
	})

	require.NoError(t, c.UpdateStatus(context.Background(), "staff", "s9", model.StatusSuspended))
	assert.Equal(t, "PUT /staff/status/s9", gotPath)
	assert.JSONEq(t, `{"status":"SUSPENDED"}`, gotBody)
}

func TestUploadImage_Multipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/banner/image/b1", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "hero.png", hdr.Filename)
		b, _ := io.ReadAll(f)
		assert.Equal(t, "png-bytes", string(b))
		_, _ = w.Write([]byte(`{}`))
	})

	err := c.UploadImage(context.Background(), "banner", "b1", "/tmp/assets/hero.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
}

func TestLogin_InstallsToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		require.Equal(t, "ops@example.com", creds["email"])
		_, _ = w.Write([]byte(`{"result":{"accessToken":"tok-xyz"}}`))
	})

	tok, err := c.Login(context.Background(), "ops@example.com", "Abc123x")
	require.NoError(t, err)
	assert.Equal(t, "tok-xyz", tok)
	assert.Equal(t, "tok-xyz", c.Token())
}
