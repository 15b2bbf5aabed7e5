package dspace_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"docsgraph/internal/dspace"
	"docsgraph/internal/dspace/dspacetest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type recorded struct {
	op     string
	status int
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recorded
}

func (r *fakeRecorder) ObserveRequest(op string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recorded{op: op, status: status})
}

func newClient(t *testing.T) (*dspace.Client, *dspacetest.Server, *fakeRecorder) {
	t.Helper()
	srv := dspacetest.NewServer(t)
	rec := &fakeRecorder{}
	client := dspace.New(dspace.Config{
		BaseURL:  srv.BaseURL(),
		Username: dspacetest.Username,
		Password: dspacetest.Password,
		Language: "en",
		Recorder: rec,
	})
	return client, srv, rec
}

func createItem(t *testing.T, client *dspace.Client, srv *dspacetest.Server, title string) uuid.UUID {
	t.Helper()
	collection := srv.AddCollection("Theses")
	res, err := client.CreateItem(context.Background(), collection, dspace.ItemInput{Title: title, Author: "Doe, J."})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.Status)
	id := res.UUID()
	require.NotNil(t, id)
	return *id
}

func TestClient_HandshakeSequence(t *testing.T) {
	client, srv, rec := newClient(t)
	itemID := createItem(t, client, srv, "Thesis A")

	before := len(srv.Requests())
	res, err := client.SetTitle(context.Background(), itemID, "Thesis B", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)

	reqs := srv.Requests()[before:]
	require.Len(t, reqs, 4)

	assert.Equal(t, "GET", reqs[0].Method)
	assert.Equal(t, "/authn/status", reqs[0].Path)
	assert.Empty(t, reqs[0].Authorization)

	assert.Equal(t, "POST", reqs[1].Method)
	assert.Equal(t, "/authn/login", reqs[1].Path)
	assert.NotEmpty(t, reqs[1].XSRF)
	assert.Contains(t, reqs[1].ContentType, "application/x-www-form-urlencoded")

	// priming carries the login XSRF token and no bearer token
	assert.Equal(t, "PATCH", reqs[2].Method)
	assert.Equal(t, "/core/items/"+itemID.String(), reqs[2].Path)
	assert.Equal(t, "{}", string(reqs[2].Body))
	assert.Empty(t, reqs[2].Authorization)
	assert.NotEqual(t, reqs[1].XSRF, reqs[2].XSRF)

	assert.Equal(t, "PATCH", reqs[3].Method)
	assert.True(t, strings.HasPrefix(reqs[3].Authorization, "Bearer "))
	assert.NotEqual(t, reqs[2].XSRF, reqs[3].XSRF, "the real request uses the token rotated by priming")
	assert.JSONEq(t, `[{"op":"replace","path":"/metadata/dc.title/0","value":{"value":"Thesis B","language":"en"}}]`, string(reqs[3].Body))

	item, ok := srv.Item(itemID)
	require.True(t, ok)
	assert.Equal(t, "Thesis B", item.Title())

	require.NotEmpty(t, rec.calls)
	assert.Equal(t, recorded{op: "set_title", status: http.StatusOK}, rec.calls[len(rec.calls)-1])
}

func TestClient_EveryCallReauthenticates(t *testing.T) {
	client, srv, _ := newClient(t)
	itemID := createItem(t, client, srv, "Thesis A")

	_, err := client.GetItem(context.Background(), itemID)
	require.NoError(t, err)
	_, err = client.GetItem(context.Background(), itemID)
	require.NoError(t, err)

	logins := 0
	bearers := map[string]bool{}
	for _, r := range srv.Requests() {
		if r.Path == "/authn/login" {
			logins++
		}
		if r.Authorization != "" {
			bearers[r.Authorization] = true
		}
	}
	assert.Equal(t, 3, logins)
	assert.Len(t, bearers, 3)
}

func TestClient_CreateItemMetadata(t *testing.T) {
	client, srv, _ := newClient(t)
	collection := srv.AddCollection("Theses")

	res, err := client.CreateItem(context.Background(), collection, dspace.ItemInput{
		Title:    "Thesis A",
		Author:   "Doe, J.",
		Type:     "thesis",
		Language: "cs",
	})
	require.NoError(t, err)
	require.True(t, res.OK())

	last := srv.Requests()[len(srv.Requests())-1]
	assert.Equal(t, "owningCollection="+collection.String(), last.Query)

	item, ok := srv.Item(*res.UUID())
	require.True(t, ok)
	assert.Equal(t, collection.String(), item.Collection)
	assert.Equal(t, "Thesis A", item.Title())
	assert.Equal(t, "Doe, J.", item.Metadata["dc.contributor.author"][0].Value)
	assert.Equal(t, "thesis", item.Metadata["dc.type"][0].Value)
	assert.Equal(t, "cs", *item.Metadata["dc.title"][0].Language)
	assert.Equal(t, "cs", item.Metadata["dc.language.iso"][0].Value)
}

func TestClient_DescriptionAndWithdrawn(t *testing.T) {
	ctx := context.Background()
	client, srv, _ := newClient(t)
	itemID := createItem(t, client, srv, "Thesis A")

	res, err := client.SetDescription(ctx, itemID, "missing", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Status, "replace needs an existing value")

	res, err = client.AddDescription(ctx, itemID, "first", "")
	require.NoError(t, err)
	assert.True(t, res.OK())

	res, err = client.SetDescription(ctx, itemID, "second", "")
	require.NoError(t, err)
	assert.True(t, res.OK())

	res, err = client.SetWithdrawn(ctx, itemID)
	require.NoError(t, err)
	assert.True(t, res.OK())

	item, _ := srv.Item(itemID)
	assert.Equal(t, "second", item.Description())
	assert.True(t, item.Withdrawn)
}

func TestClient_BundlesAndBitstreams(t *testing.T) {
	ctx := context.Background()
	client, srv, _ := newClient(t)
	itemID := createItem(t, client, srv, "Thesis A")

	res, err := client.CreateBundle(ctx, itemID)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.Status)
	bundleID := *res.UUID()

	res, err = client.GetBundles(ctx, itemID)
	require.NoError(t, err)
	bundles := res.Objects("bundles")
	require.Len(t, bundles, 1)
	assert.Equal(t, bundleID, bundles[0].UUID)
	assert.Equal(t, dspace.DefaultBundle, bundles[0].Name)

	res, err = client.UploadBitstream(ctx, bundleID, "thesis.txt", strings.NewReader("chapter one"))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.Status)

	res, err = client.GetBitstreams(ctx, bundleID)
	require.NoError(t, err)
	streams := res.Objects("bitstreams")
	require.Len(t, streams, 1)
	assert.Equal(t, "thesis.txt", streams[0].Name)
	assert.EqualValues(t, 1, res.Total())

	res, err = client.DownloadBitstream(ctx, streams[0].UUID, streams[0].Name)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "chapter one", res.String())
}

func TestClient_CommunitiesAndCollections(t *testing.T) {
	ctx := context.Background()
	client, _, _ := newClient(t)

	res, err := client.CreateCommunity(ctx, "C1", "")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.Status)
	communityID := *res.UUID()

	res, err = client.CreateCollection(ctx, communityID, "E1", "en")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.Status)

	res, err = client.ListCommunities(ctx, 0, 10)
	require.NoError(t, err)
	communities := res.Objects("communities")
	require.Len(t, communities, 1)
	assert.Equal(t, "C1", communities[0].Name)

	res, err = client.ListCollections(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, "E1", res.Get("_embedded.collections.0.name").String())
}

func TestClient_LoginRejected(t *testing.T) {
	srv := dspacetest.NewServer(t)
	client := dspace.New(dspace.Config{BaseURL: srv.BaseURL(), Username: "nobody", Password: "wrong"})

	res, err := client.GetItem(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Equal(t, 0, srv.Count("GET", "/core/items"))
}

func TestClient_InjectedFailurePassesThrough(t *testing.T) {
	client, srv, _ := newClient(t)
	srv.Fail("POST", "/core/items", http.StatusForbidden)

	res, err := client.CreateItem(context.Background(), uuid.New(), dspace.ItemInput{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, res.Status)
	assert.False(t, res.OK())
	assert.Nil(t, res.UUID())
	assert.Equal(t, 0, srv.ItemCount())
}

func TestClient_MissingXSRFCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := dspace.New(dspace.Config{BaseURL: srv.URL})
	_, err := client.GetItem(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DSPACE-XSRF-COOKIE")
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rec := &fakeRecorder{}
	client := dspace.New(dspace.Config{BaseURL: url, Recorder: rec, Timeout: time.Second})
	_, err := client.GetItem(context.Background(), uuid.New())
	require.Error(t, err)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, 0, rec.calls[0].status)
}

func TestClient_TimeoutCoversWholeHandshake(t *testing.T) {
	// every step answers well within the timeout; the four together do not
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(250 * time.Millisecond)
		http.SetCookie(w, &http.Cookie{Name: "DSPACE-XSRF-COOKIE", Value: "token"})
		w.Header().Set("Authorization", "Bearer token")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rec := &fakeRecorder{}
	client := dspace.New(dspace.Config{BaseURL: srv.URL, Recorder: rec, Timeout: 600 * time.Millisecond})

	start := time.Now()
	_, err := client.GetItem(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 950*time.Millisecond)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, 0, rec.calls[0].status)
}

func TestResult_Helpers(t *testing.T) {
	id := uuid.New()
	res := &dspace.Result{Status: 200, Body: []byte(`{
		"_embedded": {"communities": [{"uuid": "` + id.String() + `", "name": "C1"}, {"uuid": "bogus", "name": "skip"}]},
		"page": {"totalElements": 2}
	}`)}

	assert.True(t, res.OK())
	assert.Nil(t, res.UUID())
	assert.EqualValues(t, 2, res.Total())
	assert.Len(t, res.Embedded("communities"), 2)
	assert.Equal(t, []dspace.Object{{UUID: id, Name: "C1"}}, res.Objects("communities"))

	binary := &dspace.Result{Status: 204, Body: []byte{0xff, 0xfe}}
	assert.Equal(t, gjson.Result{}, binary.Get("uuid"))
}

func TestPatch_Builder(t *testing.T) {
	body, err := dspace.Patch{}.
		Add("/metadata/dc.subject", []dspace.MetadataValue{{Value: "go"}}).
		Replace("/withdrawn", true).
		Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"op":"add","path":"/metadata/dc.subject","value":[{"value":"go","language":null}]},
		{"op":"replace","path":"/withdrawn","value":true}
	]`, string(body))
}
