//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var instructions = strings.Repeat("Simmer gently and stir. ", 3)

func TestSessionLifecycle(t *testing.T) {
	client := newClient(t)
	username := uniqueName("cook")

	created := signup(t, client, username)
	require.NotZero(t, created.ID)

	var current userResponse
	require.Equal(t, http.StatusOK, doJSON(t, client, http.MethodGet, "/check_session", nil, &current))
	assert.Equal(t, created, current)

	require.Equal(t, http.StatusNoContent, doJSON(t, client, http.MethodDelete, "/logout", nil, nil))
	require.Equal(t, http.StatusUnauthorized, doJSON(t, client, http.MethodGet, "/check_session", nil, nil))
	require.Equal(t, http.StatusUnauthorized, doJSON(t, client, http.MethodDelete, "/logout", nil, nil))

	var wrong, unknown errorResponse
	require.Equal(t, http.StatusUnauthorized, doJSON(t, client, http.MethodPost, "/login",
		map[string]string{"username": username, "password": "nope"}, &wrong))
	require.Equal(t, http.StatusUnauthorized, doJSON(t, client, http.MethodPost, "/login",
		map[string]string{"username": uniqueName("ghost"), "password": "nope"}, &unknown))
	assert.Equal(t, wrong, unknown)

	var loggedIn userResponse
	require.Equal(t, http.StatusOK, doJSON(t, client, http.MethodPost, "/login",
		map[string]string{"username": username, "password": username + "password"}, &loggedIn))
	assert.Equal(t, created, loggedIn)
}

func TestRecipesAgainstPostgres(t *testing.T) {
	client := newClient(t)
	owner := signup(t, client, uniqueName("chef"))

	require.Equal(t, http.StatusUnauthorized, doJSON(t, newClient(t), http.MethodPost, "/recipes",
		map[string]any{"title": "x", "instructions": instructions, "minutes_to_complete": 1}, nil))

	var recipe recipeResponse
	require.Equal(t, http.StatusCreated, doJSON(t, client, http.MethodPost, "/recipes", map[string]any{
		"title":               "Raw oysters",
		"instructions":        instructions,
		"minutes_to_complete": 0,
	}, &recipe))
	assert.Equal(t, 0, recipe.MinutesToComplete)
	assert.Equal(t, owner, recipe.User)

	var errs errorResponse
	require.Equal(t, http.StatusUnprocessableEntity, doJSON(t, client, http.MethodPost, "/recipes", map[string]any{
		"title":        "No time",
		"instructions": instructions,
	}, &errs))
	assert.Equal(t, []string{"Title, instructions, and minutes_to_complete are required."}, errs.Errors)

	var recipes []recipeResponse
	require.Equal(t, http.StatusOK, doJSON(t, client, http.MethodGet, "/recipes", nil, &recipes))
	var found bool
	for i, r := range recipes {
		if i > 0 {
			assert.Greater(t, r.ID, recipes[i-1].ID)
		}
		if r.ID == recipe.ID {
			found = true
			assert.Equal(t, recipe, r)
		}
	}
	assert.True(t, found, "created recipe missing from list")
}

func TestConcurrentDuplicateSignup(t *testing.T) {
	username := uniqueName("race")
	const attempts = 10

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		statuses = map[int]int{}
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status := doJSON(t, newClient(t), http.MethodPost, "/signup", map[string]string{
				"username": username,
				"password": "pw",
			}, nil)
			mu.Lock()
			statuses[status]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, map[int]int{
		http.StatusCreated:             1,
		http.StatusUnprocessableEntity: attempts - 1,
	}, statuses)

	var count int
	require.NoError(t, openDB(t).QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM users WHERE username = $1`, username).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestAvatarUploadAgainstMinio(t *testing.T) {
	client := newClient(t)
	signup(t, client, uniqueName("avatar"))

	image := []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\xff\xff\xff\x00\x00\x00!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "me.gif")
	require.NoError(t, err)
	_, err = part.Write(image)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, baseURL+"/avatar", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user userResponse
	require.Equal(t, http.StatusOK, doJSON(t, client, http.MethodGet, "/check_session", nil, &user))
	require.True(t, strings.HasPrefix(user.ImageURL, baseURL+"/media/avatars/"), user.ImageURL)

	resp, err = http.Get(user.ImageURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/gif", resp.Header.Get("Content-Type"))
	assert.Equal(t, image, body)
}
