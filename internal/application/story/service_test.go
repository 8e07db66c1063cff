package story

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bedtime-story-api/internal/application/profile"
	"bedtime-story-api/internal/application/quota"
	"bedtime-story-api/internal/domain/entity"
	"bedtime-story-api/internal/domain/repository"
	"bedtime-story-api/internal/domain/service"
	"bedtime-story-api/internal/infrastructure/persistence/postgres"
	"bedtime-story-api/internal/testutil"
	apperrors "bedtime-story-api/pkg/errors"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (*Generation, error) {
	args := m.Called(ctx, prompt)
	gen, _ := args.Get(0).(*Generation)
	return gen, args.Error(1)
}

// failingMarkRepo 正常读写，但写失败标记时报错
type failingMarkRepo struct {
	repository.StoryRepository
}

func (r failingMarkRepo) UpdateStoryText(context.Context, int64, string) error {
	return errors.New("db down")
}

type fixture struct {
	svc     *Service
	gen     *mockGenerator
	client  *postgres.Client
	stories repository.StoryRepository
	user    *entity.User
}

func newFixture(t *testing.T, wrap func(repository.StoryRepository) repository.StoryRepository) *fixture {
	t.Helper()
	client := testutil.NewClient(t)
	users := postgres.NewUserRepository(client)
	profiles := postgres.NewChildProfileRepository(client)
	var stories repository.StoryRepository = postgres.NewStoryRepository(client)
	if wrap != nil {
		stories = wrap(stories)
	}
	usage := postgres.NewLLMUsageEventRepository(client)
	gen := new(mockGenerator)

	svc := NewService(users, profiles, stories,
		profile.NewService(users, profiles), gen, quota.NewLLMUsageRecorder(usage))

	return &fixture{
		svc:     svc,
		gen:     gen,
		client:  client,
		stories: stories,
		user:    testutil.SeedUser(t, client, "parent@example.com"),
	}
}

func okGeneration(text string) *Generation {
	return &Generation{
		Text:             text,
		Provider:         "anthropic",
		Model:            "claude-test",
		PromptTokens:     50,
		CompletionTokens: 250,
		Duration:         1200 * time.Millisecond,
	}
}

func TestService_CreateStorySuccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return p == BuildPrompt(PromptParams{Age: 5, LengthSec: 110, Language: LanguageTurkish})
	})).Return(okGeneration("# Ay Işığı\nBir varmış\n\n\n\nbir yokmuş"), nil).Once()

	story, err := f.svc.CreateStory(ctx, CreateStoryInput{UserID: f.user.ID})
	require.NoError(t, err)

	assert.Equal(t, "Ay Işığı", story.Title)
	assert.Equal(t, "Bir varmış\n\nbir yokmuş", story.StoryText)
	assert.Regexp(t, `^st-[0-9a-f-]{12}$`, story.StoryID)
	assert.Nil(t, story.ChildProfileID)
	assert.Nil(t, story.VoiceProfileID)
	assert.Nil(t, story.AudioURL)
	assert.Empty(t, story.ImageURLs)
	assert.Equal(t, int64(1), testutil.CountStories(t, f.client))

	var usage entity.LLMUsageEvent
	require.NoError(t, f.client.DB().Where("user_id = ?", f.user.ID).First(&usage).Error)
	assert.Equal(t, &story.ID, usage.StoryID)
	assert.Equal(t, 300, usage.TotalTokens())
	f.gen.AssertExpectations(t)
}

func TestService_CreateStoryUnknownUser(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.CreateStory(context.Background(), CreateStoryInput{UserID: f.user.ID + 100})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUserNotFound))
	assert.Zero(t, testutil.CountStories(t, f.client))
	f.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestService_CreateStoryForeignChildProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	other := testutil.SeedUser(t, f.client, "other@example.com")

	foreign := entity.NewChildProfile(other.ID, "Deniz")
	_, err := postgres.NewChildProfileRepository(f.client).CreateIfAbsent(ctx, foreign)
	require.NoError(t, err)

	_, err = f.svc.CreateStory(ctx, CreateStoryInput{UserID: f.user.ID, ChildProfileID: &foreign.ID})
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, 400, appErr.HTTPStatus)
	assert.Equal(t, "Child profile not found", appErr.Message)
	assert.Zero(t, testutil.CountStories(t, f.client))
}

func TestService_CreateStoryWithChildNameReusesProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return containsLine(p, "Character Name: Ada")
	})).Return(okGeneration("Title\nBody"), nil).Twice()

	name := "Ada"
	first, err := f.svc.CreateStory(ctx, CreateStoryInput{UserID: f.user.ID, Language: LanguageEnglish, ChildName: &name})
	require.NoError(t, err)
	second, err := f.svc.CreateStory(ctx, CreateStoryInput{UserID: f.user.ID, Language: LanguageEnglish, ChildName: &name})
	require.NoError(t, err)

	require.NotNil(t, first.ChildProfileID)
	require.NotNil(t, second.ChildProfileID)
	assert.Equal(t, *first.ChildProfileID, *second.ChildProfileID)

	stories, err := f.svc.ListByUser(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, stories, 2)
	assert.Equal(t, second.ID, stories[0].ID)
	require.NotNil(t, stories[0].ChildProfile)
	assert.Equal(t, "Ada", stories[0].ChildProfile.ChildName)
}

func TestService_CreateStoryExplicitChildProfileSetsCharacter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	child := entity.NewChildProfile(f.user.ID, "Elif")
	_, err := postgres.NewChildProfileRepository(f.client).CreateIfAbsent(ctx, child)
	require.NoError(t, err)

	f.gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return containsLine(p, "Karakter Adı: Elif")
	})).Return(okGeneration("Başlık\nMetin"), nil).Once()

	ignored := "Başka"
	story, err := f.svc.CreateStory(ctx, CreateStoryInput{UserID: f.user.ID, ChildProfileID: &child.ID, ChildName: &ignored})
	require.NoError(t, err)
	require.NotNil(t, story.ChildProfileID)
	assert.Equal(t, child.ID, *story.ChildProfileID)
	f.gen.AssertExpectations(t)
}

func TestService_CreateStoryGeneratorFailureMarksRow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.gen.On("Generate", mock.Anything, mock.Anything).
		Return(nil, apperrors.New(apperrors.CodeGenerationFailed, "Claude returned empty text")).Once()

	_, err := f.svc.CreateStory(ctx, CreateStoryInput{UserID: f.user.ID})
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, 500, appErr.HTTPStatus)
	assert.Equal(t, MsgGenerationFailed, appErr.Message)
	assert.Equal(t, "Claude returned empty text", appErr.Details)

	require.Equal(t, int64(1), testutil.CountStories(t, f.client))
	stories, err := f.stories.ListByUser(ctx, f.user.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, entity.StoryFailureMarker, stories[0].StoryText)
	assert.Equal(t, entity.StoryPlaceholderText, stories[0].Title)
}

func TestService_CreateStoryFailureMarkerErrorIsSwallowed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(r repository.StoryRepository) repository.StoryRepository {
		return failingMarkRepo{StoryRepository: r}
	})
	cause := apperrors.New(apperrors.CodeConfiguration, "ANTHROPIC_API_KEY not set")
	f.gen.On("Generate", mock.Anything, mock.Anything).Return(nil, cause).Once()

	_, err := f.svc.CreateStory(ctx, CreateStoryInput{UserID: f.user.ID})
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, MsgGenerationFailed, appErr.Message)
	assert.Equal(t, "ANTHROPIC_API_KEY not set", appErr.Details)
	assert.True(t, errors.Is(err, cause))

	stories, err := f.stories.ListByUser(ctx, f.user.ID, 10)
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, entity.StoryStateGenerating, stories[0].State())
}

func TestService_CreateStoryIgnoresCallerCancellation(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	f.gen.On("Generate", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		cancel()
		genCtx := args.Get(0).(context.Context)
		assert.NoError(t, genCtx.Err())
	}).Return(okGeneration("Title\nBody"), nil).Once()

	story, err := f.svc.CreateStory(ctx, CreateStoryInput{UserID: f.user.ID})
	require.NoError(t, err)
	assert.Equal(t, "Title", story.Title)
}

func containsLine(s, line string) bool {
	return slices.Contains(strings.Split(s, "\n"), line)
}

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishStoryEvent(ctx context.Context, ev service.StoryEvent) error {
	return m.Called(ctx, ev).Error(0)
}

func TestService_CreateStoryPublishesEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	events := new(mockEvents)
	f.svc.WithEvents(events)

	f.gen.On("Generate", mock.Anything, mock.Anything).Return(okGeneration("Başlık\nbir iki üç"), nil).Once()
	events.On("PublishStoryEvent", mock.Anything, mock.MatchedBy(func(ev service.StoryEvent) bool {
		return ev.Type == service.StoryEventGenerated && ev.Title == "Başlık" && ev.WordCount == 3 && ev.Model == "claude-test"
	})).Return(errors.New("stream down")).Once()

	story, err := f.svc.CreateStory(ctx, CreateStoryInput{UserID: f.user.ID})
	require.NoError(t, err, "publish errors must not fail the request")
	assert.Equal(t, "Başlık", story.Title)

	f.gen.On("Generate", mock.Anything, mock.Anything).
		Return(nil, apperrors.New(apperrors.CodeGenerationFailed, "Claude returned empty text")).Once()
	events.On("PublishStoryEvent", mock.Anything, mock.MatchedBy(func(ev service.StoryEvent) bool {
		return ev.Type == service.StoryEventFailed && ev.Error == "Claude returned empty text" && ev.UserID == f.user.ID
	})).Return(nil).Once()

	_, err = f.svc.CreateStory(ctx, CreateStoryInput{UserID: f.user.ID})
	require.Error(t, err)
	events.AssertExpectations(t)
}
