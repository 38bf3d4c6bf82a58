package redink

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leedaaye/redink-ziyong/api/adminapi"
	"github.com/leedaaye/redink-ziyong/internal/pwhash"
	"github.com/leedaaye/redink-ziyong/storage"
	"github.com/leedaaye/redink-ziyong/storage/model"
)

func testServer(t *testing.T) (*RedInk, *model.User) {
	t.Helper()
	users := storage.NewFileStorage(
		t.TempDir(), pwhash.Params{
			Time:        1,
			MemoryKiB:   8 * 1024,
			Parallelism: 1,
			KeyLen:      32,
			SaltLen:     16,
		},
	)
	u, err := users.Create("alice")
	require.NoError(t, err)

	sessions, err := adminapi.NewSessionIssuer(adminapi.SessionConf{Secret: "test-secret"})
	require.NoError(t, err)
	return New(ServerConf{}, users, sessions), u
}

func validate(t *testing.T, r *RedInk, method string, header, value string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, "/api/auth/validate", nil)
	require.NoError(t, err)
	if header != "" {
		req.Header.Set(header, value)
	}
	resp, err := r.server.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestValidateWithAuthorizationHeader(t *testing.T) {
	r, u := testServer(t)

	resp := validate(t, r, http.MethodGet, "Authorization", "Bearer "+u.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool           `json:"success"`
		User    model.Identity `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, u.ID, body.User.ID)
	assert.Equal(t, "alice", body.User.Username)
}

func TestValidateWithAccessTokenHeader(t *testing.T) {
	r, u := testServer(t)

	resp := validate(t, r, http.MethodPost, "X-Access-Token", u.AccessToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestValidatePrefersAuthorizationHeader(t *testing.T) {
	r, u := testServer(t)

	req, err := http.NewRequest(http.MethodGet, "/api/auth/validate", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+u.AccessToken)
	req.Header.Set("X-Access-Token", "bogus")
	resp, err := r.server.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestValidateWithoutToken(t *testing.T) {
	r, _ := testServer(t)

	resp := validate(t, r, http.MethodGet, "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestValidateUnknownToken(t *testing.T) {
	r, _ := testServer(t)

	resp := validate(t, r, http.MethodGet, "Authorization", "Bearer bogus")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
}

func TestValidateNonBearerAuthorization(t *testing.T) {
	r, u := testServer(t)

	// a non-bearer Authorization scheme must not be treated as a token
	resp := validate(t, r, http.MethodGet, "Authorization", "Basic "+u.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
