package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cardmodels "cardtrack/internal/card/models"
	cardStore "cardtrack/internal/card/store"
	"cardtrack/internal/ledger/models"
	ledgerService "cardtrack/internal/ledger/service"
	ledgerStore "cardtrack/internal/ledger/store"
	"cardtrack/internal/platform/logger"
	"cardtrack/internal/platform/middleware"
	"cardtrack/pkg/domain"
)

type handlerEnv struct {
	router http.Handler
	cards  *cardStore.MemoryStore
	engine *ledgerService.Engine
}

// withActor stands in for the auth middleware in tests.
func withActor(actor domain.Actor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.ContextKeyActor, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	cards := cardStore.NewMemoryStore()
	engine := ledgerService.NewEngine(
		ledgerStore.NewMemoryOperationStore(),
		ledgerStore.NewMemoryCanceledStore(),
		cards,
		ledgerStore.NewMemoryTxRunner(),
		nil,
		50,
	)

	r := chi.NewRouter()
	r.Use(withActor(domain.Actor{Name: "operator", Level: 1}))
	New(engine, logger.New()).Register(r)

	_, err := cards.Create(context.Background(), cardmodels.Card{
		Name:      "alpha",
		GeoStatus: domain.StatusUnknown,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	return &handlerEnv{router: r, cards: cards, engine: engine}
}

func (e *handlerEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleMove(t *testing.T) {
	env := newHandlerEnv(t)

	rec := env.do(t, http.MethodPost, "/track/move",
		`{"card_name":"alpha","geo_status":"ON SITE","offload_status":"In Progress"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var op models.Operation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &op))
	assert.NotZero(t, op.ID)
	assert.Equal(t, "operator", op.Actor)
	assert.Equal(t, "ON SITE", op.GeoStatus)

	t.Run("unknown card", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/track/move", `{"card_name":"ghost","geo_status":"ON SITE"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing statuses", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/track/move", `{"card_name":"alpha"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/track/move", `{`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("quarantined card yields conflict", func(t *testing.T) {
		card, err := env.cards.FindByName(context.Background(), "alpha")
		require.NoError(t, err)
		card.Quarantine = true
		require.NoError(t, env.cards.Update(context.Background(), card))

		rec := env.do(t, http.MethodPost, "/track/move", `{"card_name":"alpha","geo_status":"OFF SITE"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestHandleCancel(t *testing.T) {
	env := newHandlerEnv(t)

	rec := env.do(t, http.MethodPost, "/track/move", `{"card_name":"alpha","geo_status":"ON SITE"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var op models.Operation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &op))

	rec = env.do(t, http.MethodPost, "/track/cancel/"+itoa(op.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var card cardmodels.Card
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
	assert.Equal(t, domain.StatusUnknown, card.GeoStatus)
	assert.Equal(t, 0, card.Usage)

	t.Run("already canceled", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/track/cancel/"+itoa(op.ID), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/track/cancel/abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleRecentLists(t *testing.T) {
	env := newHandlerEnv(t)

	for _, geo := range []string{"ON SITE", "IN TRANSIT", "OFF SITE"} {
		rec := env.do(t, http.MethodPost, "/track/move", `{"card_name":"alpha","geo_status":"`+geo+`"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/track/operations?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Operations []models.Operation `json:"operations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Operations, 2)
	assert.Equal(t, "OFF SITE", body.Operations[0].GeoStatus)

	t.Run("canceled list starts empty", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/track/canceled", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Operations []models.CanceledOperation `json:"operations"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Empty(t, body.Operations)
	})
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
