// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package vladhog

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/vhsecgo/pkg/cache"
)

// fakeService stands in for the remote API. Bodies are keyed by request path.
type fakeService struct {
	t      *testing.T
	mu     sync.Mutex
	bodies map[string]string
	calls  atomic.Int32
	last   *http.Request
	server *httptest.Server
}

func newFakeService(t *testing.T, bodies map[string]string) *fakeService {
	t.Helper()
	f := &fakeService{t: t, bodies: bodies}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		f.mu.Lock()
		f.last = r
		body, ok := f.bodies[r.URL.Path]
		f.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeService) client(t *testing.T, store cache.Store) *Client {
	t.Helper()
	return New(context.Background(), Options{
		APIKey:          "secret-key",
		Store:           store,
		Endpoint:        f.server.URL,
		ServiceEndpoint: f.server.URL + "/svc",
		HTTPClient:      f.server.Client(),
	})
}

func (f *fakeService) lastRequest() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestCheckURL_CachesAfterFirstCall(t *testing.T) {
	svc := newFakeService(t, map[string]string{"/": `{"result":"Likely safe"}`})
	store := cache.NewMemoryStore(nil)
	c := svc.client(t, store)
	ctx := context.Background()

	first, err := c.CheckURL(ctx, "https://example.com")
	require.NoError(t, err)
	second, err := c.CheckURL(ctx, "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, 0.0, first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), svc.calls.Load())
	assert.Equal(t, 1, store.Saves())

	req := svc.lastRequest()
	assert.Equal(t, "secret-key", req.URL.Query().Get("key"))
	assert.Equal(t, "https://example.com", req.URL.Query().Get("url"))

	snap := store.Snapshot()
	require.Contains(t, snap, "https://example.com")
	assert.Equal(t, cache.KindSimple, snap["https://example.com"].Kind)
	assert.JSONEq(t, `{"result":"Likely safe"}`, string(snap["https://example.com"].Value))
}

func TestCheckURL_Verdicts(t *testing.T) {
	tests := []struct {
		name string
		body string
		want float64
	}{
		{name: "safe", body: `{"result":"Safe"}`, want: 0},
		{name: "clean", body: `{"result":"The system didn't detect anything malicious."}`, want: 0.5},
		{name: "malicious", body: `{"result":"Might be malicious"}`, want: 1},
		{name: "detections", body: `{"result":["phishing"]}`, want: 1},
		{name: "unknown", body: `{"result":"Huh"}`, want: -1},
		{name: "missing result", body: `{}`, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService(t, map[string]string{"/": tt.body})
			c := svc.client(t, cache.NewMemoryStore(nil))

			got, err := c.CheckURL(context.Background(), "https://example.com")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// The cached entry maps to the same score.
			again, err := c.CheckURL(context.Background(), "https://example.com")
			require.NoError(t, err)
			assert.Equal(t, tt.want, again)
			assert.Equal(t, int32(1), svc.calls.Load())
		})
	}
}

func TestGetDetailedCheck_SeparateKey(t *testing.T) {
	svc := newFakeService(t, map[string]string{
		"/":              `{"result":"Safe"}`,
		"/classify_link": `{"result":"Safe","screenshot_url":"shot.png","tag":"news"}`,
	})
	store := cache.NewMemoryStore(nil)
	c := svc.client(t, store)
	ctx := context.Background()

	_, err := c.CheckURL(ctx, "https://example.com")
	require.NoError(t, err)
	detailed, err := c.GetDetailedCheck(ctx, "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, int32(2), svc.calls.Load())
	assert.Equal(t, &DetailedResult{Result: "Safe", ScreenshotURL: "shot.png", Tag: "news"}, detailed)

	snap := store.Snapshot()
	assert.Len(t, snap, 2)
	assert.Equal(t, cache.KindSimple, snap["https://example.com"].Kind)
	assert.Equal(t, cache.KindDetailed, snap["https://example.com_detailed"].Kind)

	// Cached detailed entries come back verbatim.
	again, err := c.GetDetailedCheck(ctx, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, detailed, again)
	assert.Equal(t, int32(2), svc.calls.Load())
}

func TestPerformDynamicAnalysis(t *testing.T) {
	target := "https://example.com/login"
	path := "/svc/dynamic_analysis/" + b64(target)

	tests := []struct {
		name string
		body string
		want float64
	}{
		{name: "not 200 ignores result", body: `{"response":"404","result":"x"}`, want: -1},
		{name: "not 200 ignores malicious result", body: `{"response":"500","result":"Might be malicious"}`, want: -1},
		{name: "numeric 200 is not success", body: `{"response":200,"result":"Might be malicious"}`, want: -1},
		{name: "200 safe", body: `{"response":"200","result":"Safe"}`, want: 0},
		{name: "200 detections", body: `{"response":"200","result":["trojan","phishing"]}`, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService(t, map[string]string{path: tt.body})
			store := cache.NewMemoryStore(nil)
			c := svc.client(t, store)

			got, err := c.PerformDynamicAnalysis(context.Background(), target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			key := svc.server.URL + path
			assert.Equal(t, key, c.DynamicAnalysisURL(target))
			require.Contains(t, store.Snapshot(), key)
			assert.Equal(t, cache.KindDynamic, store.Snapshot()[key].Kind)
			assert.JSONEq(t, tt.body, string(store.Snapshot()[key].Value))
		})
	}
}

func TestPerformDynamicAnalysis_HitMapsCachedResult(t *testing.T) {
	target := "https://example.com"
	svc := newFakeService(t, nil)
	key := svc.server.URL + "/svc/dynamic_analysis/" + b64(target)
	store := cache.NewMemoryStore(cache.Snapshot{
		key: {Kind: cache.KindDynamic, Value: []byte(`{"response":"200","result":"Might be malicious"}`)},
	})
	c := svc.client(t, store)

	got, err := c.PerformDynamicAnalysis(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
	assert.Equal(t, int32(0), svc.calls.Load())
}

func TestCheckDomainSimilarity_ReturnsPayloadUnmodified(t *testing.T) {
	svc := newFakeService(t, map[string]string{
		"/svc/domain_similarity/example.com": `[{"similar_to":"ex.com","similarity_percent":0.8}]`,
	})
	store := cache.NewMemoryStore(nil)
	c := svc.client(t, store)
	ctx := context.Background()

	got, err := c.CheckDomainSimilarity(ctx, "example.com")
	require.NoError(t, err)
	want := []DomainSimilarityResult{{SimilarTo: "ex.com", SimilarityPercent: 0.8}}
	assert.Equal(t, want, got)

	again, err := c.CheckDomainSimilarity(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, want, again)
	assert.Equal(t, int32(1), svc.calls.Load())

	key := svc.server.URL + "/svc/domain_similarity/example.com"
	require.Contains(t, store.Snapshot(), key)
	assert.JSONEq(t, `[{"similar_to":"ex.com","similarity_percent":0.8}]`, string(store.Snapshot()[key].Value))
}

func TestCheckDomainSimilarity_EmptyList(t *testing.T) {
	svc := newFakeService(t, map[string]string{"/svc/domain_similarity/example.com": `[]`})
	c := svc.client(t, cache.NewMemoryStore(nil))

	got, err := c.CheckDomainSimilarity(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestGetScreenshotURL(t *testing.T) {
	svc := newFakeService(t, nil)
	store := cache.NewMemoryStore(nil)
	c := svc.client(t, store)

	assert.Equal(t, svc.server.URL+"/screenshot/a.png", c.GetScreenshotURL("a.png"))
	assert.Equal(t, int32(0), svc.calls.Load())
	assert.Equal(t, 0, store.Saves())
	assert.Equal(t, 0, c.Cache().Len())
}

func TestGetScreenshotURL_Default(t *testing.T) {
	c := New(context.Background(), Options{Store: cache.NewMemoryStore(nil)})
	assert.Equal(t, "https://api.vladhog.ru/security/screenshot/a.png", c.GetScreenshotURL("a.png"))
}

func TestNew_MissingCacheFile(t *testing.T) {
	svc := newFakeService(t, map[string]string{"/": `{"result":"Safe"}`})
	path := filepath.Join(t.TempDir(), "nested", "cache.json")

	c := New(context.Background(), Options{
		APIKey:     "k",
		CacheFile:  path,
		Endpoint:   svc.server.URL,
		HTTPClient: svc.server.Client(),
	})
	assert.Equal(t, 0, c.Cache().Len())

	got, err := c.CheckURL(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	_, err = os.Stat(path)
	assert.NoError(t, err, "cache file should be written after a miss")
}

func TestNew_CorruptCacheFile(t *testing.T) {
	svc := newFakeService(t, map[string]string{"/": `{"result":"Might be malicious"}`})
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	var ops []string
	c := New(context.Background(), Options{
		APIKey:       "k",
		CacheFile:    path,
		Endpoint:     svc.server.URL,
		HTTPClient:   svc.server.Client(),
		OnCacheError: func(op string, _ error) { ops = append(ops, op) },
	})
	assert.Equal(t, 0, c.Cache().Len())
	assert.Equal(t, []string{"load"}, ops)

	got, err := c.CheckURL(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestNew_ReusesPersistedFile(t *testing.T) {
	svc := newFakeService(t, map[string]string{"/": `{"result":"Safe"}`})
	path := filepath.Join(t.TempDir(), "cache.json")
	opts := Options{
		APIKey:     "k",
		CacheFile:  path,
		Endpoint:   svc.server.URL,
		HTTPClient: svc.server.Client(),
	}

	_, err := New(context.Background(), opts).CheckURL(context.Background(), "https://example.com")
	require.NoError(t, err)

	got, err := New(context.Background(), opts).CheckURL(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
	assert.Equal(t, int32(1), svc.calls.Load())
}

func TestNew_LegacySnapshot(t *testing.T) {
	svc := newFakeService(t, nil)
	base := svc.server.URL + "/svc"
	legacy := `{
		"https://a.com": {"result":"Safe"},
		"https://a.com_detailed": {"result":"Safe","tag":"shop"},
		"` + base + `/dynamic_analysis/` + b64("https://a.com") + `": {"response":"200","result":["x"]},
		"` + base + `/domain_similarity/a.com": [{"similar_to":"b.com","similarity_percent":0.5}],
		"junk": 12
	}`
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o600))

	c := New(context.Background(), Options{
		APIKey:          "k",
		CacheFile:       path,
		Endpoint:        svc.server.URL,
		ServiceEndpoint: base,
		HTTPClient:      svc.server.Client(),
	})
	assert.Equal(t, 4, c.Cache().Len())

	ctx := context.Background()
	score, err := c.CheckURL(ctx, "https://a.com")
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)

	detailed, err := c.GetDetailedCheck(ctx, "https://a.com")
	require.NoError(t, err)
	assert.Equal(t, "shop", detailed.Tag)

	dyn, err := c.PerformDynamicAnalysis(ctx, "https://a.com")
	require.NoError(t, err)
	assert.Equal(t, 1.0, dyn)

	sim, err := c.CheckDomainSimilarity(ctx, "a.com")
	require.NoError(t, err)
	assert.Equal(t, []DomainSimilarityResult{{SimilarTo: "b.com", SimilarityPercent: 0.5}}, sim)

	assert.Equal(t, int32(0), svc.calls.Load())
}

func TestSaveFailureDoesNotFailLookup(t *testing.T) {
	svc := newFakeService(t, map[string]string{"/": `{"result":"Safe"}`})
	store := cache.NewMemoryStore(nil)
	store.SaveErr = errors.New("disk full")

	var errs []error
	c := New(context.Background(), Options{
		APIKey:       "k",
		Store:        store,
		Endpoint:     svc.server.URL,
		HTTPClient:   svc.server.Client(),
		OnCacheError: func(_ string, err error) { errs = append(errs, err) },
	})

	got, err := c.CheckURL(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
	require.Len(t, errs, 1)
	assert.ErrorContains(t, errs[0], "disk full")

	// The in-memory cache still answers.
	_, err = c.CheckURL(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, int32(1), svc.calls.Load())
}

func TestKindConflictKeepsStoredEntry(t *testing.T) {
	svc := newFakeService(t, map[string]string{
		"/classify_link": `{"result":"Safe","tag":"news"}`,
		"/":              `{"result":"Might be malicious"}`,
	})
	store := cache.NewMemoryStore(nil)
	c := svc.client(t, store)
	ctx := context.Background()

	_, err := c.GetDetailedCheck(ctx, "https://a.com")
	require.NoError(t, err)

	// A plain check of a URL that collides with the detailed key fetches, but
	// never replaces the detailed entry.
	score, err := c.CheckURL(ctx, "https://a.com_detailed")
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)

	snap := store.Snapshot()
	assert.Equal(t, cache.KindDetailed, snap["https://a.com_detailed"].Kind)
}

func TestErrors(t *testing.T) {
	t.Run("decode error", func(t *testing.T) {
		svc := newFakeService(t, map[string]string{"/": `<html>oops</html>`})
		store := cache.NewMemoryStore(nil)
		c := svc.client(t, store)

		_, err := c.CheckURL(context.Background(), "https://example.com")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDecode)
		assert.NotContains(t, err.Error(), "secret-key")

		var re *RequestError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, http.StatusOK, re.StatusCode)
		assert.Equal(t, 0, store.Saves())
	})

	t.Run("non-json error status", func(t *testing.T) {
		svc := newFakeService(t, nil)
		c := svc.client(t, cache.NewMemoryStore(nil))

		_, err := c.GetDetailedCheck(context.Background(), "https://example.com")
		var re *RequestError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, http.StatusNotFound, re.StatusCode)
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("transport error", func(t *testing.T) {
		svc := newFakeService(t, nil)
		c := svc.client(t, cache.NewMemoryStore(nil))
		svc.server.Close()

		_, err := c.CheckURL(context.Background(), "https://example.com")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTransport)
		assert.NotContains(t, err.Error(), "secret-key")
		assert.True(t, strings.Contains(err.Error(), "REDACTED"))
	})

	t.Run("canceled context", func(t *testing.T) {
		svc := newFakeService(t, map[string]string{"/": `{"result":"Safe"}`})
		c := svc.client(t, cache.NewMemoryStore(nil))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.CheckURL(ctx, "https://example.com")
		assert.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, err, ErrTransport)
	})
}

func TestConcurrentMissesKeepAllEntries(t *testing.T) {
	svc := newFakeService(t, map[string]string{"/": `{"result":"Safe"}`})
	store := cache.NewMemoryStore(nil)
	c := svc.client(t, store)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := c.CheckURL(context.Background(), "https://example.com/"+string(rune('a'+n)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Snapshot(), 20)
}
