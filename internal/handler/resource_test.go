package handler_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasan-mia/manufacturer-server/internal/auth"
	"github.com/hasan-mia/manufacturer-server/internal/handler"
	"github.com/hasan-mia/manufacturer-server/internal/model"
	"github.com/hasan-mia/manufacturer-server/internal/repository/sqlite"
	"github.com/hasan-mia/manufacturer-server/internal/service"
)

// newResourceHandler builds a handler for the named resource on a fresh
// in-memory database, plus the token service for routes behind auth.
func newResourceHandler(t *testing.T, name string) (*handler.ResourceHandler, *auth.TokenService) {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var resource model.Resource
	for _, r := range model.Resources {
		if r.Name == name {
			resource = r
		}
	}
	require.NotEmpty(t, resource.Name, "unknown resource %q", name)

	tokens, err := auth.NewTokenService(testSecret)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := service.NewResourceService(db.Documents(), resource, logger)
	return handler.NewResourceHandler(svc, logger), tokens
}

// createDoc posts a document through the handler and returns its decoded body.
func createDoc(t *testing.T, h *handler.ResourceHandler, fields string) map[string]any {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/x", bytes.NewBufferString(fields))
	rr := httptest.NewRecorder()
	h.HandleCreate(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, "create body: %s", rr.Body.String())

	var doc map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&doc))
	return doc
}

func TestResourceHandler_CreateAndGet(t *testing.T) {
	h, _ := newResourceHandler(t, "product")

	doc := createDoc(t, h, `{"title":"Hex Bolt","price":12.5,"quantity":100}`)
	id, _ := doc["id"].(string)
	require.NotEmpty(t, id)

	req := httptest.NewRequest(http.MethodGet, "/product/"+id, nil)
	req.SetPathValue("id", id)
	rr := httptest.NewRecorder()
	h.HandleGet(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, "Hex Bolt", got["title"])
	assert.Equal(t, 12.5, got["price"])
}

func TestResourceHandler_Create_EmptyBody(t *testing.T) {
	h, _ := newResourceHandler(t, "product")

	req := httptest.NewRequest(http.MethodPost, "/product", bytes.NewBufferString(`{}`))
	rr := httptest.NewRecorder()
	h.HandleCreate(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "validation_error")
}

func TestResourceHandler_List(t *testing.T) {
	h, _ := newResourceHandler(t, "blog")

	createDoc(t, h, `{"title":"first post"}`)
	createDoc(t, h, `{"title":"second post"}`)

	req := httptest.NewRequest(http.MethodGet, "/blog", nil)
	rr := httptest.NewRecorder()
	h.HandleList(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var docs []map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&docs))
	assert.Len(t, docs, 2)
}

func TestResourceHandler_Get_Unknown(t *testing.T) {
	h, _ := newResourceHandler(t, "product")

	req := httptest.NewRequest(http.MethodGet, "/product/missing", nil)
	req.SetPathValue("id", "missing")
	rr := httptest.NewRecorder()
	h.HandleGet(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "not_found")
}

func TestResourceHandler_Update(t *testing.T) {
	h, _ := newResourceHandler(t, "product")

	doc := createDoc(t, h, `{"title":"Nut","price":1}`)
	id := doc["id"].(string)

	// The patch carries one updatable field and one that is not; only the
	// price may land.
	body := `{"price":2.5,"paid":true}`
	req := httptest.NewRequest(http.MethodPut, "/product/"+id, bytes.NewBufferString(body))
	req.SetPathValue("id", id)
	rr := httptest.NewRecorder()
	h.HandleUpdate(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, 2.5, got["price"])
	assert.Equal(t, "Nut", got["title"])
	assert.NotContains(t, got, "paid")
}

func TestResourceHandler_Delete(t *testing.T) {
	h, _ := newResourceHandler(t, "portfolio")

	doc := createDoc(t, h, `{"title":"site","link":"https://example.com"}`)
	id := doc["id"].(string)

	req := httptest.NewRequest(http.MethodDelete, "/portfolio/"+id, nil)
	req.SetPathValue("id", id)
	rr := httptest.NewRecorder()
	h.HandleDelete(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	getReq := httptest.NewRequest(http.MethodGet, "/portfolio/"+id, nil)
	getReq.SetPathValue("id", id)
	getRR := httptest.NewRecorder()
	h.HandleGet(getRR, getReq)
	assert.Equal(t, http.StatusNotFound, getRR.Code)
}

func TestResourceHandler_HandleListMine(t *testing.T) {
	h, tokens := newResourceHandler(t, "order")

	createDoc(t, h, `{"email":"a@x.com","item":"bolt"}`)
	createDoc(t, h, `{"email":"b@x.com","item":"nut"}`)
	createDoc(t, h, `{"email":"a@x.com","item":"washer"}`)

	token, err := tokens.Issue("a@x.com")
	require.NoError(t, err)

	protected := auth.RequireAuth(tokens)(http.HandlerFunc(h.HandleListMine))

	t.Run("owner sees only their orders", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/myorders?email=a@x.com", nil)
		req.Header.Set("Authorization", "a@x.com "+token)
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var docs []map[string]any
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&docs))
		require.Len(t, docs, 2)
		for _, doc := range docs {
			assert.Equal(t, "a@x.com", doc["email"])
		}
	})

	t.Run("header identity alone is enough", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/myorders", nil)
		req.Header.Set("Authorization", "a@x.com "+token)
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var docs []map[string]any
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&docs))
		assert.Len(t, docs, 2)
	})

	t.Run("asking for someone else's orders is 403", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/myorders?email=b@x.com", nil)
		req.Header.Set("Authorization", "a@x.com "+token)
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
