package tags

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagging/internal/shared/utils/response"
)

func newTestEngine(t *testing.T) (*gin.Engine, Repository) {
	t.Helper()

	repo := NewRepository(newTestDB(t))
	svc := NewService(repo, nil, nil, nil, testTaggingConfig())

	r := gin.New()
	r.HTMLRender = NewAdminRenderer()
	SetupTagRoutes(r.Group("/api/v1"), NewController(svc))
	SetupAdminRoutes(r, NewAdminController(svc))
	return r, repo
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) response.StandardApiResponse {
	t.Helper()
	var body response.StandardApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func postJSON(r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestController_CreateAndResolve(t *testing.T) {
	r, _ := newTestEngine(t)

	w := postJSON(r, "/api/v1/admin/tags", CreateTagRequest{Name: "cat", Synonyms: []string{"kitty"}})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(r, "/api/v1/admin/tags", CreateTagRequest{Name: "cat"})
	assert.Equal(t, http.StatusConflict, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tags/resolve/kitty", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeResponse(t, w)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, "cat", data["name"])

	req = httptest.NewRequest(http.MethodGet, "/api/v1/tags/resolve/dog", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestController_JoinTags_JSON(t *testing.T) {
	r, repo := newTestEngine(t)

	a := mustTag(t, repo, "A")
	b := mustTag(t, repo, "B")

	selected := []string{a.ID.String(), b.ID.String()}

	w := postJSON(r, "/api/v1/admin/tags/actions/join", JoinTagsRequest{Selected: selected})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Select main tag", decodeResponse(t, w).Message)

	w = postJSON(r, "/api/v1/admin/tags/actions/join", JoinTagsRequest{Selected: selected, Post: "yes", Tag: b.ID.String()})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Successfully joined 2 tags.", decodeResponse(t, w).Message)

	w = postJSON(r, "/api/v1/admin/tags/actions/join", JoinTagsRequest{Selected: []string{"bad"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdmin_TagChangeList(t *testing.T) {
	r, repo := newTestEngine(t)
	mustTag(t, repo, "cat", "feline")
	mustTag(t, repo, "dog")

	req := httptest.NewRequest(http.MethodGet, "/admin/tagging/tag/?q=feline", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cat, feline")
	assert.NotContains(t, w.Body.String(), ">dog<")
	assert.Contains(t, w.Body.String(), JoinActionLabel)
	assert.Contains(t, w.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, w.Body.String(), "| Tagging administration")
}

func TestNewAdminRenderer_RegistersEveryPage(t *testing.T) {
	renderer := NewAdminRenderer().(multitemplate.Render)

	assert.Len(t, renderer, len(adminPages))
	for name := range adminPages {
		tmpl, ok := renderer[name]
		require.True(t, ok, name)
		assert.NotNil(t, tmpl.Lookup("content"), name)
	}
}

func TestAdmin_JoinAction_RendersConfirmation(t *testing.T) {
	r, repo := newTestEngine(t)
	a := mustTag(t, repo, "A")
	b := mustTag(t, repo, "B")

	w := postForm(r, "/admin/tagging/tag/", url.Values{
		"action":           {JoinActionName},
		"_selected_action": {a.ID.String(), b.ID.String()},
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Select main tag")
	assert.Contains(t, body, `name="_selected_action" value="`+a.ID.String()+`"`)
	assert.Contains(t, body, `name="post" value="yes"`)
}

func TestAdmin_JoinAction_Confirmed(t *testing.T) {
	r, repo := newTestEngine(t)
	a := mustTag(t, repo, "A")
	b := mustTag(t, repo, "B")
	c := mustTag(t, repo, "C")

	w := postForm(r, "/admin/tagging/tag/", url.Values{
		"action":           {JoinActionName},
		"_selected_action": {a.ID.String(), b.ID.String(), c.ID.String()},
		"post":             {"yes"},
		"tag":              {b.ID.String()},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Successfully joined 3 tags.")

	tag, err := repo.ResolveSynonym(t.Context(), "C")
	require.NoError(t, err)
	assert.Equal(t, b.ID, tag.ID)
}

func TestAdmin_JoinAction_Rejections(t *testing.T) {
	r, repo := newTestEngine(t)
	a := mustTag(t, repo, "A")
	b := mustTag(t, repo, "B")
	other := mustTag(t, repo, "other")

	w := postForm(r, "/admin/tagging/tag/", url.Values{
		"action":           {JoinActionName},
		"_selected_action": {a.ID.String(), b.ID.String()},
		"post":             {"yes"},
		"tag":              {other.ID.String()},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postForm(r, "/admin/tagging/tag/", url.Values{"action": {JoinActionName}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Items must be selected")

	w = postForm(r, "/admin/tagging/tag/", url.Values{"_selected_action": {a.ID.String()}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No action selected.")
}

func TestAdmin_SynonymChangeList_LinksToTag(t *testing.T) {
	r, repo := newTestEngine(t)
	cat := mustTag(t, repo, "cat", "kitty")

	req := httptest.NewRequest(http.MethodGet, "/admin/tagging/synonym/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `href="/admin/tagging/tag/`+cat.ID.String()+`/"`)
	assert.Contains(t, w.Body.String(), "kitty")
}

func TestAdmin_TagChangeForm(t *testing.T) {
	r, repo := newTestEngine(t)
	cat := mustTag(t, repo, "cat")

	req := httptest.NewRequest(http.MethodGet, "/admin/tagging/tag/"+cat.ID.String()+"/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/tagging/tag/not-an-id/", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
