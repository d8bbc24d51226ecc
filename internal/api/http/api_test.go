package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/mathathon/mathathon-server/internal/api/http"
	"github.com/mathathon/mathathon-server/internal/auth"
	"github.com/mathathon/mathathon-server/internal/db"
	"github.com/mathathon/mathathon-server/internal/quiz"
)

const adminPassword = "letmein"

func newTestServer(t *testing.T) (*httptest.Server, quiz.Store) {
	t.Helper()
	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	dbh, err := db.Connect(ctx, db.Options{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close(context.Background()) })
	sqlDB, err := dbh.SQL()
	require.NoError(t, err)
	store := quiz.NewSQLStore(sqlDB)

	srv := httptest.NewServer(api.NewRouter(api.Deps{
		Store:         store,
		Sessions:      auth.NewSessionService("test-secret", false),
		AdminPassword: adminPassword,
		DatabaseKind:  "sqlite",
		CORSOrigins:   []string{"http://localhost:3000"},
	}))
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, client *http.Client, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := client.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func getJSON(t *testing.T, client *http.Client, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return out
}

func TestLoginSessionLogoutScenario(t *testing.T) {
	srv, _ := newTestServer(t)
	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar}

	resp, body := postJSON(t, client, srv.URL+"/api/auth/login", map[string]string{"username": " alice "})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "alice", body["username"])

	resp, body = getJSON(t, client, srv.URL+"/api/auth/session")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", body["username"])

	resp, body = postJSON(t, client, srv.URL+"/api/auth/logout", map[string]string{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logged out successfully", body["message"])

	resp, body = getJSON(t, client, srv.URL+"/api/auth/session")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, body["username"])
}

func TestLoginRequiresUsername(t *testing.T) {
	srv, store := newTestServer(t)
	client := srv.Client()

	resp, body := postJSON(t, client, srv.URL+"/api/auth/login", map[string]string{"username": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Username is required", body["error"])

	users, err := store.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestModuleEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	client := srv.Client()

	resp, body := postJSON(t, client, srv.URL+"/api/modules", map[string]string{"name": "Number Theory"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "number-theory", body["slug"])
	id := body["id"].(string)

	resp, body = getJSON(t, client, srv.URL+"/api/modules/"+id)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Number Theory", body["name"])

	resp, body = getJSON(t, client, srv.URL+"/api/modules/does-not-exist")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Module not found", body["error"])

	resp, _ = postJSON(t, client, srv.URL+"/api/modules", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateQuestionValidation(t *testing.T) {
	srv, store := newTestServer(t)
	client := srv.Client()
	ctx := context.Background()

	mod, err := store.CreateModule(ctx, "Trigonometry", "trigonometry")
	require.NoError(t, err)

	// Mock question without full options is rejected and nothing persists.
	resp, body := postJSON(t, client, srv.URL+"/api/questions", map[string]any{
		"module_id": string(mod.ID), "type": "mock", "question_text": "incomplete",
		"option_a": "1", "option_b": "2",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "Mock questions require")
	n, err := store.CountQuestions(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	resp, body = postJSON(t, client, srv.URL+"/api/questions", map[string]any{
		"module_id": string(mod.ID), "type": "mock", "question_text": "bad letter",
		"option_a": "1", "option_b": "2", "option_c": "3", "option_d": "4",
		"correct_option": "E",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, client, srv.URL+"/api/questions", map[string]any{
		"module_id": string(mod.ID), "type": "exam", "question_text": "bad type",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Revision question persists nulls for options regardless of the payload.
	resp, body = postJSON(t, client, srv.URL+"/api/questions", map[string]any{
		"module_id": string(mod.ID), "type": "revision", "question_text": "State the sine rule.",
		"option_a": "ignored", "correct_option": "A", "answer_text": "a/sinA = b/sinB",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created, err := store.GetQuestion(ctx, quiz.RecordID(body["id"].(string)))
	require.NoError(t, err)
	assert.Nil(t, created.OptionA)
	assert.Nil(t, created.CorrectOption)
	require.NotNil(t, created.AnswerText)
}

func TestListQuestionsProjection(t *testing.T) {
	srv, store := newTestServer(t)
	client := srv.Client()
	ctx := context.Background()

	mod, err := store.CreateModule(ctx, "Algebra", "algebra")
	require.NoError(t, err)
	a, b, c, d, correct := "1", "2", "3", "4", "B"
	_, err = store.CreateQuestion(ctx, quiz.Question{
		ModuleID: mod.ID, Type: quiz.TypeMock, QuestionText: "1+1?",
		OptionA: &a, OptionB: &b, OptionC: &c, OptionD: &d,
		CorrectOption: &correct, Difficulty: "easy",
	})
	require.NoError(t, err)

	resp, err := client.Get(srv.URL + "/api/questions/" + string(mod.ID) + "/mock")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var items []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.NotContains(t, items[0], "module_id")
	assert.NotContains(t, items[0], "type")
	assert.Equal(t, "B", items[0]["correct_option"])

	badType, _ := getJSON(t, client, srv.URL+"/api/questions/"+string(mod.ID)+"/exam")
	assert.Equal(t, http.StatusBadRequest, badType.StatusCode)
}

func TestCreateAttemptValidation(t *testing.T) {
	srv, store := newTestServer(t)
	client := srv.Client()
	ctx := context.Background()

	mod, err := store.CreateModule(ctx, "Algebra", "algebra")
	require.NoError(t, err)

	resp, body := postJSON(t, client, srv.URL+"/api/attempts", map[string]any{
		"username": "alice", "type": "mock", "datetime_iso": "2024-01-15T10:30:00.000Z",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "required")

	resp, body = postJSON(t, client, srv.URL+"/api/attempts", map[string]any{
		"username": "alice", "module_id": string(mod.ID), "type": "mock",
		"datetime_iso": "15/01/2024", "score": 80, "time_taken_seconds": 300,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "datetime_iso must be in ISO 8601 format", body["error"])

	resp, body = postJSON(t, client, srv.URL+"/api/attempts", map[string]any{
		"username": "alice", "module_id": string(mod.ID), "type": "mock",
		"datetime_iso": "2024-01-15T10:30:00.000Z", "score": 80,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Mock attempts require score and time_taken_seconds", body["error"])

	attempts, err := store.ListAttempts(ctx)
	require.NoError(t, err)
	assert.Empty(t, attempts)

	resp, body = postJSON(t, client, srv.URL+"/api/attempts", map[string]any{
		"username": "alice", "module_id": string(mod.ID), "type": "mock",
		"datetime_iso": "2024-01-15T10:30:00.000Z", "score": 80, "time_taken_seconds": 300,
		"details": []map[string]any{{"question_id": "q1", "chosen": "B"}},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, body["attemptId"])

	// Revision attempts may omit score and time.
	resp, _ = postJSON(t, client, srv.URL+"/api/attempts", map[string]any{
		"username": "alice", "module_id": string(mod.ID), "type": "revision",
		"datetime_iso": "2024-01-16T10:30:00.000Z",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	attempts, err = store.ListAttempts(ctx)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	// Details round-trip as serialized JSON strings.
	assert.JSONEq(t, `[{"question_id":"q1","chosen":"B"}]`, attempts[1].Details)
	assert.Equal(t, "{}", attempts[0].Details)
}

func TestAdminRequiresSecret(t *testing.T) {
	srv, _ := newTestServer(t)
	client := srv.Client()

	for _, path := range []string{"/api/admin/attempts", "/api/admin/stats"} {
		resp, body := getJSON(t, client, srv.URL+path)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, "Invalid admin credentials", body["error"])
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/admin/stats", nil)
	req.Header.Set("x-admin-password", "wrong")
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/api/admin/stats", nil)
	req.Header.Set("x-admin-password", adminPassword)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminAddQuestionReusesModule(t *testing.T) {
	srv, store := newTestServer(t)
	client := srv.Client()
	ctx := context.Background()

	resp, _ := postJSON(t, client, srv.URL+"/api/modules", map[string]string{"name": "Trigonometry"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Secret supplied via the body field instead of the header.
	resp, body := postJSON(t, client, srv.URL+"/api/admin/add-question", map[string]any{
		"admin_password": adminPassword,
		"module_name":    "Trigonometry",
		"type":           "revision",
		"question_text":  "State the half-angle formula.",
		"answer_text":    "tan(θ/2) = sinθ/(1+cosθ)",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	mod := body["module"].(map[string]any)
	assert.Equal(t, "trigonometry", mod["slug"])

	modules, err := store.ListModules(ctx)
	require.NoError(t, err)
	assert.Len(t, modules, 1, "existing module must be reused")

	n, err := store.CountQuestions(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAdminAttemptsIncludeModuleNames(t *testing.T) {
	srv, store := newTestServer(t)
	client := srv.Client()
	ctx := context.Background()

	mod, err := store.CreateModule(ctx, "Vectors", "vectors")
	require.NoError(t, err)
	score := 90.0
	taken := 240
	_, err = store.CreateAttempt(ctx, quiz.Attempt{
		Username: "alice", ModuleID: mod.ID, Type: quiz.TypeMock,
		DatetimeISO: "2024-01-15T10:30:00.000Z",
		Score:       &score, TimeTakenSeconds: &taken,
		Details: `[{"chosen":"A"}]`,
	})
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/admin/attempts", nil)
	req.Header.Set("x-admin-password", adminPassword)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, "Vectors", items[0]["module_name"])
	// details arrives deserialized, not as a string.
	details, ok := items[0]["details"].([]any)
	require.True(t, ok, "details should be a JSON array, got %T", items[0]["details"])
	assert.Len(t, details, 1)
}

func TestAdminStats(t *testing.T) {
	srv, store := newTestServer(t)
	client := srv.Client()
	ctx := context.Background()

	modA, err := store.CreateModule(ctx, "Algebra", "algebra")
	require.NoError(t, err)
	modB, err := store.CreateModule(ctx, "Bearings", "bearings")
	require.NoError(t, err)
	taken := 300
	for _, fix := range []struct {
		mod   quiz.Module
		score float64
	}{{modA, 80}, {modA, 60}, {modA, 100}, {modB, 50}} {
		score := fix.score
		_, err := store.CreateAttempt(ctx, quiz.Attempt{
			Username: "alice", ModuleID: fix.mod.ID, Type: quiz.TypeMock,
			DatetimeISO: "2024-01-15T10:30:00.000Z",
			Score:       &score, TimeTakenSeconds: &taken, Details: "[]",
		})
		require.NoError(t, err)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/admin/stats", nil)
	req.Header.Set("x-admin-password", adminPassword)
	resp, err := client.Do(req)
	require.NoError(t, err)
	body := decodeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	overview := body["overview"].(map[string]any)
	assert.EqualValues(t, 4, overview["total_attempts"])
	assert.EqualValues(t, 2, overview["total_modules"])

	moduleStats := body["module_stats"].([]any)
	require.Len(t, moduleStats, 2)
	first := moduleStats[0].(map[string]any)
	assert.Equal(t, "Algebra", first["module_name"])
	assert.EqualValues(t, 80, first["average_score"])
}

func TestImportCSVEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	client := srv.Client()

	csvData := strings.Join([]string{
		"module,type,question,answer,difficulty,option_a,option_b,option_c,option_d,correct_option",
		"Trigonometry,revision,State the cosine rule.,a²=b²+c²-2bc·cosA,easy,,,,,",
		"Trigonometry,mock,cos(0)?,,medium,0,1,-1,undefined,B",
	}, "\n")

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/admin/import-csv", strings.NewReader(csvData))
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Set("x-admin-password", adminPassword)
	resp, err := client.Do(req)
	require.NoError(t, err)
	body := decodeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["imported"])
	assert.EqualValues(t, 0, body["skipped"])

	n, err := store.CountQuestions(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestHealthAndNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	client := srv.Client()

	resp, body := getJSON(t, client, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "sqlite", body["database"])
	assert.NotEmpty(t, body["timestamp"])

	resp, body = getJSON(t, client, srv.URL+"/api/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Endpoint not found", body["error"])
}
