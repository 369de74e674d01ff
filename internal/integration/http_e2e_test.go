//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"hotel_mapping/internal/adapters/feed"
	server "hotel_mapping/internal/adapters/http_server"
	"hotel_mapping/internal/adapters/password"
	"hotel_mapping/internal/adapters/token"
	"hotel_mapping/internal/app"
	"hotel_mapping/internal/domain"
	"hotel_mapping/internal/shared"
	"hotel_mapping/internal/storage"
)

// ---------- helpers ----------

// startStore runs an isolated MySQL container and opens it through the same path the API uses.
func startStore(t *testing.T) storage.Store {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker daemon unreachable: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=hotel_mapping",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "run mysql")
	t.Cleanup(func() { _ = pool.Purge(resource) })

	cfg := shared.Config{
		StorageDriver: "mysql",
		MySQLDSN: fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/hotel_mapping?parseTime=true&charset=utf8mb4&loc=UTC",
			resource.GetPort("3306/tcp")),
	}

	pool.MaxWait = 2 * time.Minute
	var (
		store   storage.Store
		closeFn func() error
	)
	require.NoError(t, pool.Retry(func() error {
		var e error
		store, closeFn, e = storage.Open(context.Background(), cfg)
		return e
	}), "open store")
	t.Cleanup(func() { _ = closeFn() })
	return store
}

func searchAround(lat, lon, radius float64) domain.SearchQuery {
	return domain.SearchQuery{Center: domain.NewPoint(lat, lon), RadiusMeters: radius}
}

type client struct {
	t    *testing.T
	base string
	tok  string
}

func (c *client) call(method, path string, body any, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.tok != "" {
		req.Header.Set("Authorization", "Bearer "+c.tok)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()
	if out != nil && res.StatusCode < 300 {
		require.NoError(c.t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

type hotel struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Amenities []string `json:"amenities"`
	Distance  *float64 `json:"distance"`
}

// ---------- the test ----------

func TestHTTP_EndToEnd_MySQL(t *testing.T) {
	store := startStore(t)

	hasher, err := password.New(bcrypt.MinCost)
	require.NoError(t, err)
	issuer, err := token.New("e2e-secret-0123456789abcdef", time.Hour)
	require.NoError(t, err)
	accounts := app.NewAccountService(store, hasher, issuer)
	listings := app.NewListingService(store)

	srv := server.New([]string{"*"})
	srv.MountHandlers(&server.Handlers{
		Accounts: accounts,
		Listings: listings,
		Search:   app.NewSearchService(store),
		Store:    store,
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	c := &client{t: t, base: ts.URL}
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/healthz", nil, nil))

	// register and become the bearer
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	require.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/auth/register",
		map[string]string{"email": "e2e@example.com", "password": "pw", "name": "E2E"}, &tok))
	c.tok = tok.AccessToken
	require.Equal(t, http.StatusBadRequest, c.call(http.MethodPost, "/api/auth/register",
		map[string]string{"email": "e2e@example.com", "password": "pw", "name": "E2E"}, nil))

	// create
	var created hotel
	require.Equal(t, http.StatusCreated, c.call(http.MethodPost, "/api/hotels", map[string]any{
		"name": "Times Square Stay", "price": 180, "latitude": 40.758, "longitude": -73.9855,
		"address": "Broadway", "amenities": []string{"wifi", "gym"},
	}, &created))
	require.NotEmpty(t, created.ID)

	// search around it
	var found []hotel
	require.Equal(t, http.StatusOK, c.call(http.MethodGet,
		"/api/hotels/search?latitude=40.7580&longitude=-73.9855&radius=500&amenities=gym", nil, &found))
	require.Len(t, found, 1)
	assert.Equal(t, created.ID, found[0].ID)
	require.NotNil(t, found[0].Distance)
	assert.Less(t, *found[0].Distance, 1.0)

	// update price only
	var updated hotel
	require.Equal(t, http.StatusOK, c.call(http.MethodPut, "/api/hotels/"+created.ID,
		map[string]any{"price": 150}, &updated))
	assert.Equal(t, 150.0, updated.Price)
	assert.Equal(t, created.Latitude, updated.Latitude)
	assert.Equal(t, []string{"wifi", "gym"}, updated.Amenities)

	require.Equal(t, http.StatusOK, c.call(http.MethodGet,
		"/api/hotels/search?latitude=40.7580&longitude=-73.9855&radius=500&max_price=140", nil, &found))
	assert.Empty(t, found)

	// someone else cannot touch it
	other := &client{t: t, base: ts.URL}
	require.Equal(t, http.StatusOK, other.call(http.MethodPost, "/api/auth/register",
		map[string]string{"email": "other@example.com", "password": "pw", "name": "Other"}, &tok))
	other.tok = tok.AccessToken
	assert.Equal(t, http.StatusNotFound, other.call(http.MethodDelete, "/api/hotels/"+created.ID, nil, nil))

	// delete
	require.Equal(t, http.StatusOK, c.call(http.MethodDelete, "/api/hotels/"+created.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, c.call(http.MethodGet, "/api/hotels/"+created.ID, nil, nil))

	var mine []hotel
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/hotels/my-hotels", nil, &mine))
	assert.Empty(t, mine)
}

func TestImportSampleFeed_MySQL(t *testing.T) {
	store := startStore(t)
	ctx := context.Background()

	hasher, err := password.New(bcrypt.MinCost)
	require.NoError(t, err)
	issuer, err := token.New("e2e-secret-0123456789abcdef", time.Hour)
	require.NoError(t, err)
	owner, err := app.NewAccountService(store, hasher, issuer).Register(ctx, "importer@example.com", "pw", "Importer")
	require.NoError(t, err)

	listings := app.NewListingService(store)
	rep, err := app.NewImportService(feed.Sample{}, listings, 2).Import(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, app.ImportReport{Fetched: 3, Created: 3}, rep)

	q := app.NewSearchService(store)
	berlin, err := q.Search(ctx, searchAround(52.52, 13.405, 5_000))
	require.NoError(t, err)
	require.Len(t, berlin, 1)
	assert.Equal(t, "Digital Nomad Paradise", berlin[0].Name)
	assert.Equal(t, owner.ID, berlin[0].OwnerID)
}
