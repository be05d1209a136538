package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/dataq/pkg/config"
	"github.com/codeready-toolchain/dataq/pkg/driver"
	"github.com/codeready-toolchain/dataq/pkg/llm"
	"github.com/codeready-toolchain/dataq/pkg/memory"
	"github.com/codeready-toolchain/dataq/pkg/warehouse"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeWarehouse answers ListDatasets and fails ListTables, so no live
// Postgres connection is needed. Sessions created in these tests wait
// at the dataset prompt and reach a terminal state when the short
// session deadline set in testServer expires.
type fakeWarehouse struct{}

func (fakeWarehouse) ListDatasets(ctx context.Context) ([]warehouse.Dataset, error) {
	return []warehouse.Dataset{{Name: "sales"}}, nil
}

func (fakeWarehouse) ListTables(ctx context.Context, dataset string) ([]warehouse.Table, error) {
	return nil, warehouse.ErrDatasetNotFound
}

func (fakeWarehouse) GetSchema(ctx context.Context, dataset, table string) (*warehouse.Table, error) {
	return nil, warehouse.ErrTableNotFound
}

func (fakeWarehouse) Sample(ctx context.Context, sql string, limit int) (*warehouse.QueryResult, error) {
	return nil, warehouse.ErrQueryFailed
}

func (fakeWarehouse) Execute(ctx context.Context, sql string, cap int) (*warehouse.QueryResult, error) {
	return nil, warehouse.ErrQueryFailed
}

type fakeLLMTransport struct{}

func (fakeLLMTransport) Generate(ctx context.Context, input *llm.GenerateInput) (<-chan llm.Chunk, error) {
	ch := make(chan llm.Chunk, 2)
	ch <- &llm.TextChunk{Content: `{"verdict":"accept","filtered_task":"ok"}`}
	ch <- &llm.UsageChunk{TotalTokens: 10}
	close(ch)
	return ch, nil
}

func (fakeLLMTransport) Close() error { return nil }

func testServer(t *testing.T) (*gin.Engine, *driver.Manager) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Workflow.Deadlines.Session = config.Duration{Duration: 300 * time.Millisecond}

	mgr := driver.NewManager()
	drv := driver.New(fakeWarehouse{}, fakeLLMTransport{}, memory.NewMemStore(), cfg)
	wsHub := NewWSHub(nil)
	go wsHub.Run()

	srv := NewServer(mgr, drv, wsHub)

	engine := gin.New()
	engine.GET("/health", srv.Health)
	engine.POST("/sessions", srv.CreateSession)
	engine.GET("/sessions", srv.ListSessions)
	engine.GET("/sessions/:id", srv.GetSession)
	engine.POST("/sessions/:id/input", srv.SubmitInput)
	engine.POST("/sessions/:id/cancel", srv.CancelSession)
	engine.GET("/sessions/:id/stream", srv.StreamSession)

	return engine, mgr
}

func doRequest(engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealth_ReturnsOK(t *testing.T) {
	engine, _ := testServer(t)
	rec := doRequest(engine, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateSession_StartsARunAndReturnsSnapshot(t *testing.T) {
	engine, mgr := testServer(t)

	rec := doRequest(engine, http.MethodPost, "/sessions", CreateSessionRequest{ProjectID: "proj-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var snap driver.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.NotEmpty(t, snap.ID)

	_, err := mgr.Get(snap.ID)
	assert.NoError(t, err)
}

func TestCreateSession_MissingProjectIDIsBadRequest(t *testing.T) {
	engine, _ := testServer(t)
	rec := doRequest(engine, http.MethodPost, "/sessions", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSession_UnknownIDIsNotFound(t *testing.T) {
	engine, _ := testServer(t)
	rec := doRequest(engine, http.MethodGet, "/sessions/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSession_KnownIDReturnsSnapshot(t *testing.T) {
	engine, mgr := testServer(t)
	sess := mgr.New("proj-1")

	rec := doRequest(engine, http.MethodGet, "/sessions/"+sess.ID(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap driver.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, sess.ID(), snap.ID)
}

func TestListSessions_ReturnsEveryTrackedSession(t *testing.T) {
	engine, mgr := testServer(t)
	mgr.New("proj-1")
	mgr.New("proj-2")

	rec := doRequest(engine, http.MethodGet, "/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snaps []driver.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snaps))
	assert.Len(t, snaps, 2)
}

func TestCancelSession_UnknownIDIsNotFound(t *testing.T) {
	engine, _ := testServer(t)
	rec := doRequest(engine, http.MethodPost, "/sessions/ghost/cancel", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelSession_KnownIDAccepted(t *testing.T) {
	engine, mgr := testServer(t)
	sess := mgr.New("proj-1")

	rec := doRequest(engine, http.MethodPost, "/sessions/"+sess.ID()+"/cancel", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSubmitInput_UnknownSessionIsNotFound(t *testing.T) {
	engine, _ := testServer(t)
	rec := doRequest(engine, http.MethodPost, "/sessions/ghost/input", SubmitInputRequest{Answer: "0"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitInput_NoAwaitingSessionIsNotFound(t *testing.T) {
	engine, mgr := testServer(t)
	sess := mgr.New("proj-1")

	// CreateSession is what registers an AsyncInput for a session; one
	// created directly through the manager has nothing awaiting input.
	rec := doRequest(engine, http.MethodPost, "/sessions/"+sess.ID()+"/input", SubmitInputRequest{Answer: "0"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitInput_MissingAnswerIsBadRequest(t *testing.T) {
	engine, _ := testServer(t)

	createRec := doRequest(engine, http.MethodPost, "/sessions", CreateSessionRequest{ProjectID: "proj-1"})
	require.Equal(t, http.StatusOK, createRec.Code)
	var snap driver.Snapshot
	require.NoError(t, json.Unmarshal(createRec.Body.Bytes(), &snap))

	rec := doRequest(engine, http.MethodPost, "/sessions/"+snap.ID+"/input", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStreamSession_UnknownIDIsNotFound(t *testing.T) {
	engine, _ := testServer(t)
	rec := doRequest(engine, http.MethodGet, "/sessions/ghost/stream", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
