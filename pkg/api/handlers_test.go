package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clydefs/clydefs/pkg/clypool"
	"github.com/clydefs/clydefs/pkg/itbl"
	"github.com/clydefs/clydefs/pkg/treeiface"
)

func newTestRouter(t *testing.T) (*chi.Mux, *Handlers) {
	t.Helper()
	tree := treeiface.NewMemoryTreeWithCapacity(clypool.NewPayloadPool(1<<20, 16))
	h := NewHandlers(tree, tree, nil)

	r := chi.NewRouter()
	r.Get("/api/v1/health", h.HandleHealth)
	r.Get("/api/v1/stats", h.HandleStats)
	r.Post("/api/v1/trees", h.HandleCreateTree)
	r.Delete("/api/v1/trees/{tid}", h.HandleRemoveTree)
	r.Post("/api/v1/trees/{tid}/nodes", h.HandleInsertNode)
	r.Post("/api/v1/trees/{tid}/nodes/{nid}/read", h.HandleReadNode)
	r.Post("/api/v1/trees/{tid}/nodes/{nid}/write", h.HandleWriteNode)
	r.Get("/api/v1/trees/{tid}/nodes/{nid}/entries", h.HandleListDir)
	r.Post("/api/v1/trees/{tid}/nodes/{nid}/entries", h.HandleInsertDirEntry)
	r.Get("/api/v1/trees/{tid}/nodes/{nid}/entries/{name}", h.HandleFindDirEntry)
	return r, h
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeAPIResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateTreeThenStats(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/trees", CreateTreeRequest{K: 32})
	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeAPIResponse(t, rec)
	assert.True(t, resp.Success)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/stats", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	resp = decodeAPIResponse(t, rec)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 1, data["registered_trees"])
}

func TestRemoveUnknownTreeReturnsNotFound(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := doJSON(t, r, http.MethodDelete, "/api/v1/trees/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNodeReadWriteRoundTrip(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/trees", CreateTreeRequest{K: 32})
	var created CreateTreeResponse
	rehydrate(t, rec, &created)

	rec = doJSON(t, r, http.MethodPost, "/api/v1/trees/"+itoa(created.Tid)+"/nodes", nil)
	var node CreateNodeResponse
	rehydrate(t, rec, &node)

	writeBody := nodeIOBody{Offset: 0, Length: 5, Data: "aGVsbG8="} // "hello"
	rec = doJSON(t, r, http.MethodPost,
		"/api/v1/trees/"+itoa(created.Tid)+"/nodes/"+itoa(node.Nid)+"/write", writeBody)
	assert.Equal(t, http.StatusOK, rec.Code)

	readBody := nodeIOBody{Offset: 0, Length: 5}
	rec = doJSON(t, r, http.MethodPost,
		"/api/v1/trees/"+itoa(created.Tid)+"/nodes/"+itoa(node.Nid)+"/read", readBody)
	assert.Equal(t, http.StatusOK, rec.Code)
	var readBack nodeIOBody
	rehydrate(t, rec, &readBack)
	assert.Equal(t, "aGVsbG8=", readBack.Data)
}

func TestDirEntryInsertFindList(t *testing.T) {
	r, h := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/trees", CreateTreeRequest{K: 32})
	var created CreateTreeResponse
	rehydrate(t, rec, &created)

	// The entries endpoints open an existing directory; a bare node has
	// no chunk in it, so the directory is created through pkg/itbl.
	dir, err := itbl.Create(h.tree, created.Tid)
	require.NoError(t, err)
	node := CreateNodeResponse{Nid: dir.Nid()}

	view := DirEntryView{Name: "hello.txt", Ino: 7, Mode: 0100644}
	rec = doJSON(t, r, http.MethodPost,
		"/api/v1/trees/"+itoa(created.Tid)+"/nodes/"+itoa(node.Nid)+"/entries", view)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodGet,
		"/api/v1/trees/"+itoa(created.Tid)+"/nodes/"+itoa(node.Nid)+"/entries/hello.txt", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet,
		"/api/v1/trees/"+itoa(created.Tid)+"/nodes/"+itoa(node.Nid)+"/entries", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var list []DirEntryView
	rehydrate(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "hello.txt", list[0].Name)
}

func rehydrate(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	resp := decodeAPIResponse(t, rec)
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func itoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}
