package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bedtime-story-api/internal/application/profile"
	"bedtime-story-api/internal/application/quota"
	"bedtime-story-api/internal/application/story"
	"bedtime-story-api/internal/config"
	"bedtime-story-api/internal/domain/entity"
	"bedtime-story-api/internal/infrastructure/llm"
	"bedtime-story-api/internal/infrastructure/persistence/postgres"
	"bedtime-story-api/internal/infrastructure/persistence/redis"
	"bedtime-story-api/internal/interfaces/http/dto"
	"bedtime-story-api/internal/interfaces/http/handler"
	"bedtime-story-api/internal/testutil"
	apperrors "bedtime-story-api/pkg/errors"
)

// stubGenerator 返回固定结果的生成器
type stubGenerator struct {
	text string
	err  error
}

func (g stubGenerator) Generate(context.Context, string) (*story.Generation, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &story.Generation{
		Text:             g.text,
		Provider:         llm.ProviderAnthropic,
		Model:            "claude-test",
		PromptTokens:     100,
		CompletionTokens: 200,
		Duration:         time.Second,
	}, nil
}

type testServer struct {
	engine *gin.Engine
	client *postgres.Client
	user   *entity.User
}

func newTestServer(t *testing.T, gen story.Generator, anthropic *llm.AnthropicClient) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	client := testutil.NewClient(t)
	users := postgres.NewUserRepository(client)
	profiles := postgres.NewChildProfileRepository(client)
	stories := postgres.NewStoryRepository(client)
	usage := postgres.NewLLMUsageEventRepository(client)

	profileSvc := profile.NewService(users, profiles)
	storySvc := story.NewService(users, profiles, stories, profileSvc, gen, quota.NewLLMUsageRecorder(usage))

	if anthropic == nil {
		anthropic = llm.NewAnthropicClient(&config.AnthropicConfig{})
	}

	health := handler.NewHealthHandler(client, nil)
	profilesH := handler.NewChildProfileHandler(profileSvc)
	storiesH := handler.NewStoryHandler(storySvc)
	diag := handler.NewDiagnosticHandler(anthropic, redis.NewCache(nil), users, stories, postgres.NewTxManager(client))

	engine := gin.New()
	engine.GET("/health", health.Health)
	engine.GET("/ready", health.Ready)
	engine.GET("/child-profiles", profilesH.List)
	engine.POST("/child-profiles", profilesH.Create)
	engine.GET("/stories", storiesH.List)
	engine.POST("/create-story", storiesH.Create)
	engine.GET("/anthropic-models", diag.AnthropicModels)
	engine.GET("/test-create", diag.TestCreate)

	return &testServer{
		engine: engine,
		client: client,
		user:   testutil.SeedUser(t, client, "parent@example.com"),
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w, out
}

func TestHealth_Connected(t *testing.T) {
	s := newTestServer(t, stubGenerator{}, nil)

	w, body := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "connected", body["db"])
}

func TestReady_RedisDisabled(t *testing.T) {
	s := newTestServer(t, stubGenerator{}, nil)

	w, body := s.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "disabled", checks["redis"].(map[string]any)["status"])

	pg := checks["postgres"].(map[string]any)
	assert.Equal(t, "ok", pg["status"])
	assert.GreaterOrEqual(t, pg["openConns"], float64(1))
	assert.Contains(t, pg, "inUse")
}

func TestChildProfiles_ListRejectsBadUserID(t *testing.T) {
	s := newTestServer(t, stubGenerator{}, nil)

	for _, q := range []string{"", "?userId=abc", "?userId=0", "?userId=-3", "?userId=2.5"} {
		w, body := s.do(t, http.MethodGet, "/child-profiles"+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, dto.MsgInvalidUserID, body["message"])
	}
}

func TestChildProfiles_CreateThenReuse(t *testing.T) {
	s := newTestServer(t, stubGenerator{}, nil)

	w, body := s.do(t, http.MethodPost, "/child-profiles", map[string]any{"userId": s.user.ID, "childName": "Ada"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["created"])
	first := body["item"].(map[string]any)
	assert.Equal(t, "Ada", first["childName"])

	w, body = s.do(t, http.MethodPost, "/child-profiles", map[string]any{"userId": s.user.ID, "childName": "  Ada  "})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["created"])
	assert.Equal(t, first["id"], body["item"].(map[string]any)["id"])

	w, body = s.do(t, http.MethodGet, fmt.Sprintf("/child-profiles?userId=%d", s.user.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["items"], 1)
}

func TestChildProfiles_CreateValidation(t *testing.T) {
	s := newTestServer(t, stubGenerator{}, nil)

	w, body := s.do(t, http.MethodPost, "/child-profiles", map[string]any{"userId": s.user.ID, "childName": "   "})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid input", body["message"])
	fields := body["details"].(map[string]any)["fieldErrors"].(map[string]any)
	assert.Contains(t, fields, "childName")

	w, body = s.do(t, http.MethodPost, "/child-profiles", "{not json")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid input", body["message"])
}

func TestChildProfiles_CreateUnknownUser(t *testing.T) {
	s := newTestServer(t, stubGenerator{}, nil)

	w, body := s.do(t, http.MethodPost, "/child-profiles", map[string]any{"userId": 9999, "childName": "Ada"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", body["message"])
}

func TestCreateStory_SuccessThenList(t *testing.T) {
	s := newTestServer(t, stubGenerator{text: "# Ay Işığı\n\nBir varmış bir yokmuş."}, nil)

	w, body := s.do(t, http.MethodPost, "/create-story", map[string]any{
		"userId":    s.user.ID,
		"theme":     "uzay",
		"childName": "Ada",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["success"])
	created := body["story"].(map[string]any)
	assert.Equal(t, "Ay Işığı", created["title"])
	assert.Equal(t, "Bir varmış bir yokmuş.", created["storyText"])
	assert.NotNil(t, created["childProfileId"])
	assert.Equal(t, []any{}, created["imageUrls"])

	w, body = s.do(t, http.MethodGet, fmt.Sprintf("/stories?userId=%d", s.user.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "Ay Işığı", item["title"])
	assert.Equal(t, "Ada", item["childProfile"].(map[string]any)["childName"])
}

func TestCreateStory_Validation(t *testing.T) {
	s := newTestServer(t, stubGenerator{text: "x"}, nil)

	w, body := s.do(t, http.MethodPost, "/create-story", map[string]any{
		"userId":    s.user.ID,
		"language":  "de",
		"lengthSec": 10,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := body["details"].(map[string]any)["fieldErrors"].(map[string]any)
	assert.Contains(t, fields, "language")
	assert.Contains(t, fields, "lengthSec")
	assert.Zero(t, testutil.CountStories(t, s.client))
}

func TestCreateStory_AcceptsIntegerValuedNumbers(t *testing.T) {
	s := newTestServer(t, stubGenerator{text: "# Başlık\n\nMetin."}, nil)

	w, body := s.do(t, http.MethodPost, "/create-story",
		fmt.Sprintf(`{"userId":%d.0,"age":5.0,"lengthSec":90.0}`, s.user.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["success"])

	w, body = s.do(t, http.MethodPost, "/create-story",
		fmt.Sprintf(`{"userId":%d,"age":2.5}`, s.user.ID))
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := body["details"].(map[string]any)["fieldErrors"].(map[string]any)
	assert.Equal(t, []any{"Expected integer, received number 2.5"}, fields["age"])
	assert.Equal(t, int64(1), testutil.CountStories(t, s.client))
}

func TestCreateStory_NullOptionalFieldsUseDefaults(t *testing.T) {
	s := newTestServer(t, stubGenerator{text: "# Başlık\n\nMetin."}, nil)

	w, _ := s.do(t, http.MethodPost, "/create-story",
		fmt.Sprintf(`{"userId":%d,"theme":null,"age":null,"language":null,"lengthSec":null}`, s.user.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, body := s.do(t, http.MethodPost, "/create-story", `{"userId":null}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := body["details"].(map[string]any)["fieldErrors"].(map[string]any)
	assert.Equal(t, []any{"Required"}, fields["userId"])
}

func TestChildProfiles_CreateAcceptsIntegerValuedUserID(t *testing.T) {
	s := newTestServer(t, stubGenerator{}, nil)

	w, body := s.do(t, http.MethodPost, "/child-profiles",
		fmt.Sprintf(`{"userId":%d.0,"childName":"Ada"}`, s.user.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, true, body["created"])
}

func TestCreateStory_UnknownUser(t *testing.T) {
	s := newTestServer(t, stubGenerator{text: "x"}, nil)

	w, body := s.do(t, http.MethodPost, "/create-story", map[string]any{"userId": 4242})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", body["message"])
	assert.Zero(t, testutil.CountStories(t, s.client))
}

func TestCreateStory_GenerationFailureMarksRow(t *testing.T) {
	upstream := apperrors.New(apperrors.CodeGenerationFailed, "Claude API failed: 429 | rate limited")
	s := newTestServer(t, stubGenerator{err: upstream}, nil)

	w, body := s.do(t, http.MethodPost, "/create-story", map[string]any{"userId": s.user.ID})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, story.MsgGenerationFailed, body["message"])
	assert.Equal(t, "Claude API failed: 429 | rate limited", body["details"])

	var row entity.Story
	require.NoError(t, s.client.DB().First(&row).Error)
	assert.Equal(t, entity.StoryFailureMarker, row.StoryText)
}

func TestTestCreate_SeedsUserAndStory(t *testing.T) {
	s := newTestServer(t, stubGenerator{}, nil)

	w, body := s.do(t, http.MethodGet, "/test-create", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	uid := body["uid"].(string)
	assert.Len(t, uid, 8)
	seeded := body["story"].(map[string]any)
	assert.Equal(t, "demo-"+uid, seeded["storyId"])
	assert.Equal(t, entity.StoryFallbackTitle, seeded["title"])
	assert.Equal(t, handler.DemoStoryText, seeded["storyText"])
	assert.Equal(t, int64(1), testutil.CountStories(t, s.client))
}

func newAnthropic(t *testing.T, status int, body string) *llm.AnthropicClient {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(upstream.Close)

	return llm.NewAnthropicClient(&config.AnthropicConfig{
		APIKey:         "sk-test",
		BaseURL:        upstream.URL,
		Version:        "2023-06-01",
		Timeout:        5 * time.Second,
		ModelsCacheTTL: time.Minute,
	})
}

func TestAnthropicModels(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		s := newTestServer(t, stubGenerator{}, nil)
		w, body := s.do(t, http.MethodGet, "/anthropic-models", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, llm.ErrMissingAPIKey.Error(), body["error"])
	})

	t.Run("upstream ok", func(t *testing.T) {
		s := newTestServer(t, stubGenerator{}, newAnthropic(t, http.StatusOK, `{"data":[{"id":"claude-test"}]}`))
		w, body := s.do(t, http.MethodGet, "/anthropic-models", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(200), body["status"])
		assert.Contains(t, body["data"], "data")
	})

	t.Run("upstream error json", func(t *testing.T) {
		s := newTestServer(t, stubGenerator{}, newAnthropic(t, http.StatusUnauthorized, `{"error":{"type":"authentication_error"}}`))
		w, body := s.do(t, http.MethodGet, "/anthropic-models", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, float64(401), body["status"])
	})

	t.Run("upstream non json", func(t *testing.T) {
		s := newTestServer(t, stubGenerator{}, newAnthropic(t, http.StatusBadGateway, "<html>bad gateway</html>"))
		w, body := s.do(t, http.MethodGet, "/anthropic-models", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "<html>bad gateway</html>", body["raw"])
	})
}
