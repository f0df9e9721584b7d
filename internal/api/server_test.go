package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rencanakan/ahsmatch/internal/catalog"
	"github.com/rencanakan/ahsmatch/internal/matching"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo := catalog.NewMemoryRepository([]catalog.Candidate{
		{Source: catalog.SourceAHS, ID: 1, Code: "A.4.4.1.9", Name: "Pemasangan 1 m2 dinding bata merah", Unit: "m2", UnitPrice: 150000},
		{Source: catalog.SourceAHS, ID: 2, Code: "A.4.1.1.4", Name: "Pekerjaan galian tanah biasa", Unit: "m3", UnitPrice: 95000},
		{Source: catalog.SourceAHS, ID: 3, Code: "A.4.4.3.53", Name: "Pemasangan keramik lantai 40x40", Unit: "m2", UnitPrice: 210000},
		{Source: catalog.SourceAHS, ID: 4, Code: "B.2.1", Name: "Pengecatan dinding dalam", Unit: "m2", UnitPrice: 35000},
	})
	return NewServer(":0", matching.NewMatcher(repo), repo, nil, nil)
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

func TestBestMatchEndpoint(t *testing.T) {
	router := newTestServer(t).Router()

	t.Run("exact_match_found", func(t *testing.T) {
		w := postJSON(t, router, "/api/match/best", `{"description": "Pekerjaan galian tanah biasa"}`)
		require.Equal(t, http.StatusOK, w.Code)

		payload := decodeBody(t, w)
		assert.Equal(t, "found", payload["status"])

		match, ok := payload["match"].(map[string]any)
		require.True(t, ok, "match should be a single object, got %T", payload["match"])
		assert.Equal(t, "A.4.1.1.4", match["code"])
		assert.Equal(t, 1.0, match["confidence"])
	})

	t.Run("single_word_returns_list", func(t *testing.T) {
		w := postJSON(t, router, "/api/match/best", `{"description": "keramik"}`)
		require.Equal(t, http.StatusOK, w.Code)

		payload := decodeBody(t, w)
		_, ok := payload["match"].([]any)
		assert.True(t, ok, "match should be a list, got %T", payload["match"])
	})

	t.Run("not_found_is_null_match", func(t *testing.T) {
		w := postJSON(t, router, "/api/match/best", `{"description": "zzz qqq xxx yyy"}`)
		require.Equal(t, http.StatusOK, w.Code)

		payload := decodeBody(t, w)
		assert.Equal(t, "not found", payload["status"])
		assert.Nil(t, payload["match"])
	})

	t.Run("unit_filter_returns_alternatives", func(t *testing.T) {
		w := postJSON(t, router, "/api/match/best", `{"description": "pengecatan dinding", "unit": "kg"}`)
		require.Equal(t, http.StatusOK, w.Code)

		payload := decodeBody(t, w)
		assert.Equal(t, matching.AlternativesMessage, payload["message"])
		assert.NotEmpty(t, payload["alternatives"])
		assert.NotContains(t, payload, "status")
	})

	t.Run("no_store_headers", func(t *testing.T) {
		w := postJSON(t, router, "/api/match/best", `{"description": "keramik"}`)
		assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	})
}

func TestBestMatchEndpointRejections(t *testing.T) {
	router := newTestServer(t).Router()

	t.Run("wrong_content_type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/match/best", strings.NewReader("description=beton"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusUnsupportedMediaType, w.Code)
		assert.Equal(t, "Unsupported content type", decodeBody(t, w)["error"])
	})

	t.Run("payload_too_large", func(t *testing.T) {
		body := `{"description": "` + strings.Repeat("a", MaxJSONPayloadBytes) + `"}`
		w := postJSON(t, router, "/api/match/best", body)

		require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, "Payload too large", decodeBody(t, w)["error"])
	})

	t.Run("invalid_json", func(t *testing.T) {
		w := postJSON(t, router, "/api/match/best", `{"description": `)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid JSON", decodeBody(t, w)["error"])
	})

	t.Run("missing_description", func(t *testing.T) {
		w := postJSON(t, router, "/api/match/best", `{"unit": "m2"}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid input", decodeBody(t, w)["error"])
	})

	t.Run("blank_description", func(t *testing.T) {
		w := postJSON(t, router, "/api/match/best", `{"description": "   "}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("oversized_description", func(t *testing.T) {
		body := `{"description": "` + strings.Repeat("a", MaxDescriptionLength+1) + `"}`
		w := postJSON(t, router, "/api/match/best", body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid input", decodeBody(t, w)["error"])
	})

	t.Run("unit_with_invalid_characters", func(t *testing.T) {
		w := postJSON(t, router, "/api/match/best", `{"description": "beton", "unit": "m2; DROP TABLE"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid input", decodeBody(t, w)["error"])
	})

	t.Run("empty_body_is_missing_description", func(t *testing.T) {
		w := postJSON(t, router, "/api/match/best", "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid input", decodeBody(t, w)["error"])
	})
}

func TestSearchCandidatesEndpoint(t *testing.T) {
	router := newTestServer(t).Router()

	t.Run("term_search", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/candidates?term=keramik", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		payload := decodeBody(t, w)
		rows, ok := payload["candidates"].([]any)
		require.True(t, ok)
		require.Len(t, rows, 1)

		row := rows[0].(map[string]any)
		assert.Equal(t, "ahs", row["source"])
		assert.Equal(t, "A.4.4.3.53", row["code"])
		// Slim shape only.
		assert.NotContains(t, row, "unit_price")
	})

	t.Run("missing_term", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/candidates", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad_limit", func(t *testing.T) {
		for _, limit := range []string{"0", "51", "abc"} {
			req := httptest.NewRequest(http.MethodGet, "/api/candidates?term=keramik&limit="+limit, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", limit)
		}
	})
}

func TestAnalyzeEndpoint(t *testing.T) {
	router := newTestServer(t).Router()

	t.Run("summary", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/analyze?description=pemasangan+keramik+lantai", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		payload := decodeBody(t, w)
		metrics, ok := payload["metrics"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, 3.0, metrics["word_count"])
		assert.Contains(t, payload, "analysis")
	})

	t.Run("blank_query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/analyze", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeBody(t, w), "error")
	})
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestServer(t).Router()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	payload := decodeBody(t, w)
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, 4.0, payload["catalog_entries"])
}
