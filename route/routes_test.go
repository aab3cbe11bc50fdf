package route_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"menufic/model"
	"menufic/reorder"
	"menufic/testutil"
	"menufic/testutil/apitest"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func send(t *testing.T, srv *apitest.Server, method, path, token, contentType string, body io.Reader) (int, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func sendJSON(t *testing.T, srv *apitest.Server, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	return send(t, srv, method, path, token, "application/json", r)
}

// sendForm posts a multipart form, attaching file under fileField when
// fileName is set.
func sendForm(t *testing.T, srv *apitest.Server, method, path, token string, fields map[string]string, fileField, fileName string, file []byte) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return send(t, srv, method, path, token, w.FormDataContentType(), &buf)
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestAuthFlow(t *testing.T) {
	srv := apitest.New(t)

	status, env := sendJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "chef@example.com", "name": "Chef", "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)

	status, env = sendJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "chef@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, env = sendJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "chef@example.com", "password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, status)
	tokens := decode[struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}](t, env)
	require.NotEmpty(t, tokens.AccessToken)

	status, _ = sendJSON(t, srv, http.MethodGet, "/api/restaurants", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = sendJSON(t, srv, http.MethodGet, "/api/restaurants", tokens.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status, "refresh tokens are not accepted as access tokens")

	status, env = sendJSON(t, srv, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": tokens.RefreshToken})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, _ = sendJSON(t, srv, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": tokens.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = sendJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "chef@example.com", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "conflict", env.Code)
}

func TestRestaurantLifecycle(t *testing.T) {
	srv := apitest.New(t)
	_, token := srv.Owner(t, "owner@example.com")

	status, env := sendForm(t, srv, http.MethodPost, "/api/restaurants", token,
		map[string]string{"name": "Cafe", "location": "Kandy", "blur_hash": "LEHV6n", "color": "#aabbcc"},
		"image", "cover.png", []byte("\x89PNG"))
	require.Equal(t, http.StatusCreated, status, env.Error)
	restaurant := decode[model.Restaurant](t, env)
	require.NotNil(t, restaurant.Image)
	assert.Equal(t, "#aabbcc", restaurant.Image.Color)

	status, env = sendForm(t, srv, http.MethodPost, "/api/restaurants/"+restaurant.ID+"/banners", token,
		nil, "image", "banner.webp", []byte("RIFF"))
	require.Equal(t, http.StatusCreated, status, env.Error)
	banner := decode[model.Image](t, env)

	status, env = sendJSON(t, srv, http.MethodPost, "/api/restaurants/"+restaurant.ID+"/menus", token, map[string]string{"name": "Lunch"})
	require.Equal(t, http.StatusCreated, status, env.Error)
	menu := decode[model.Menu](t, env)

	status, env = sendJSON(t, srv, http.MethodPost, "/api/menus/"+menu.ID+"/categories", token, map[string]string{"name": "Mains"})
	require.Equal(t, http.StatusCreated, status, env.Error)
	category := decode[model.Category](t, env)

	status, env = sendForm(t, srv, http.MethodPost, "/api/categories/"+category.ID+"/items", token,
		map[string]string{"name": "Rice", "price": "4.50"}, "image", "rice.jpg", []byte("\xff\xd8"))
	require.Equal(t, http.StatusCreated, status, env.Error)
	require.Len(t, srv.Store.IDs(), 3)

	status, _ = sendJSON(t, srv, http.MethodDelete, "/api/restaurants/"+restaurant.ID+"/banners/"+banner.ID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, srv.Store.Has(banner.ID))

	status, env = sendJSON(t, srv, http.MethodGet, "/api/public/restaurants/"+restaurant.ID+"/menu", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Restaurant not found", env.Error)

	status, _ = sendJSON(t, srv, http.MethodPatch, "/api/restaurants/"+restaurant.ID+"/publish", token, map[string]bool{"is_published": true})
	require.Equal(t, http.StatusOK, status)
	status, env = sendJSON(t, srv, http.MethodGet, "/api/public/restaurants/"+restaurant.ID+"/menu", "", nil)
	require.Equal(t, http.StatusOK, status)
	public := decode[model.Restaurant](t, env)
	require.Len(t, public.Menus, 1)
	require.Len(t, public.Menus[0].Categories, 1)
	assert.Equal(t, "Rice", public.Menus[0].Categories[0].Items[0].Name)

	status, env = sendJSON(t, srv, http.MethodDelete, "/api/restaurants/"+restaurant.ID, token, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	deleted := decode[model.Restaurant](t, env)
	assert.Equal(t, "Cafe", deleted.Name)
	require.Len(t, deleted.Menus, 1)
	assert.Empty(t, srv.Store.IDs())
	assert.Zero(t, testutil.Count(t, srv.DB, &model.Image{}))
}

func TestOwnerIsolationOverHTTP(t *testing.T) {
	srv := apitest.New(t)
	_, owner := srv.Owner(t, "owner@example.com")
	_, other := srv.Owner(t, "other@example.com")

	status, env := sendForm(t, srv, http.MethodPost, "/api/restaurants", owner, map[string]string{"name": "Mine"}, "", "", nil)
	require.Equal(t, http.StatusCreated, status, env.Error)
	restaurant := decode[model.Restaurant](t, env)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/restaurants/" + restaurant.ID},
		{http.MethodDelete, "/api/restaurants/" + restaurant.ID},
		{http.MethodGet, "/api/restaurants/" + restaurant.ID + "/menus"},
	} {
		status, env := sendJSON(t, srv, tc.method, tc.path, other, nil)
		assert.Equal(t, http.StatusNotFound, status, tc.path)
		assert.Equal(t, "not_found", env.Code)
	}
	assert.EqualValues(t, 1, testutil.Count(t, srv.DB, &model.Restaurant{}))
}

func TestMenuPositionsEndpoint(t *testing.T) {
	srv := apitest.New(t)
	_, token := srv.Owner(t, "owner@example.com")
	_, env := sendForm(t, srv, http.MethodPost, "/api/restaurants", token, map[string]string{"name": "Cafe"}, "", "", nil)
	restaurant := decode[model.Restaurant](t, env)

	var menus []model.Menu
	for _, name := range []string{"M1", "M2", "M3", "M4", "M5"} {
		_, env := sendJSON(t, srv, http.MethodPost, "/api/restaurants/"+restaurant.ID+"/menus", token, map[string]string{"name": name})
		menus = append(menus, decode[model.Menu](t, env))
	}

	dst := 0
	plan, err := reorder.Plan(menus, 4, &dst)
	require.NoError(t, err)
	status, env := sendJSON(t, srv, http.MethodPost, "/api/menus/positions", token, map[string]any{"items": plan.Updates})
	require.Equal(t, http.StatusOK, status, env.Error)

	saved := decode[[]model.Menu](t, env)
	names := make([]string, len(saved))
	for i, m := range saved {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"M5", "M1", "M2", "M3", "M4"}, names)

	status, env = sendJSON(t, srv, http.MethodPost, "/api/menus/positions", token, map[string]any{
		"items": []map[string]any{{"id": menus[0].ID, "new_position": -1}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation", env.Code)
}

func TestValidationAndQuotaEnvelopes(t *testing.T) {
	srv := apitest.New(t)
	_, token := srv.Owner(t, "owner@example.com")

	status, env := sendForm(t, srv, http.MethodPost, "/api/restaurants", token, map[string]string{"name": "Cafe"}, "image", "cover.gif", []byte("GIF89a"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error, "Invalid image")

	status, env = sendForm(t, srv, http.MethodPost, "/api/restaurants", token, map[string]string{"name": "Cafe"}, "image", "big.png",
		bytes.Repeat([]byte{1}, apitest.MaxUpload+1))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Empty(t, srv.Store.IDs())

	for i := 0; i < apitest.Quotas.RestaurantsPerUser; i++ {
		status, env = sendForm(t, srv, http.MethodPost, "/api/restaurants", token, map[string]string{"name": "Cafe"}, "", "", nil)
		require.Equal(t, http.StatusCreated, status, env.Error)
	}
	status, env = sendForm(t, srv, http.MethodPost, "/api/restaurants", token, map[string]string{"name": "Cafe"}, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "quota_exceeded", env.Code)
	assert.Equal(t, "Maximum of 2 restaurants allowed per user", env.Error)
}

func TestImportTemplateAndImport(t *testing.T) {
	srv := apitest.New(t)
	_, token := srv.Owner(t, "owner@example.com")

	resp, err := srv.Client().Get(srv.URL + "/api/items/import/template")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "application/vnd.openxmlformats"))

	book, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	rows, err := book.GetRows(book.GetSheetName(0))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Name", "Price", "Description"}}, rows)

	require.NoError(t, book.SetSheetRow(book.GetSheetName(0), "A2", &[]any{"Tea", "1.00", "Hot"}))
	var buf bytes.Buffer
	require.NoError(t, book.Write(&buf))

	_, env := sendForm(t, srv, http.MethodPost, "/api/restaurants", token, map[string]string{"name": "Cafe"}, "", "", nil)
	restaurant := decode[model.Restaurant](t, env)
	_, env = sendJSON(t, srv, http.MethodPost, "/api/restaurants/"+restaurant.ID+"/menus", token, map[string]string{"name": "Menu"})
	menu := decode[model.Menu](t, env)
	_, env = sendJSON(t, srv, http.MethodPost, "/api/menus/"+menu.ID+"/categories", token, map[string]string{"name": "Drinks"})
	category := decode[model.Category](t, env)

	status, env := sendForm(t, srv, http.MethodPost, "/api/categories/"+category.ID+"/items/import", token, nil, "file", "items.xlsx", buf.Bytes())
	require.Equal(t, http.StatusCreated, status, env.Error)
	items := decode[[]model.MenuItem](t, env)
	require.Len(t, items, 1)
	assert.Equal(t, "Tea", items[0].Name)
}

func TestHealth(t *testing.T) {
	srv := apitest.New(t)
	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
