package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bedtime-story-api/internal/domain/entity"
	"bedtime-story-api/internal/infrastructure/persistence/postgres"
	"bedtime-story-api/internal/testutil"
	apperrors "bedtime-story-api/pkg/errors"
	"bedtime-story-api/pkg/logger"
)

func newService(t *testing.T) (*Service, *postgres.Client) {
	t.Helper()
	client := testutil.NewClient(t)
	return NewService(postgres.NewUserRepository(client), postgres.NewChildProfileRepository(client)), client
}

func TestService_CreateReusesSameName(t *testing.T) {
	ctx := context.Background()
	svc, client := newService(t)
	user := testutil.SeedUser(t, client, "a@example.com")

	first, created, err := svc.Create(ctx, user.ID, "Ada")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.Create(ctx, user.ID, "Ada")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	items, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestService_CreateLogsUserIDOnce(t *testing.T) {
	buf := &bytes.Buffer{}
	logger.SetOutput(buf)
	logger.Init("info", "json")
	t.Cleanup(func() {
		logger.SetOutput(os.Stdout)
		logger.Init("info", "json")
	})

	svc, client := newService(t)
	user := testutil.SeedUser(t, client, "a@example.com")

	_, created, err := svc.Create(context.Background(), user.ID, "Ada")
	require.NoError(t, err)
	require.True(t, created)

	var line string
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.Contains(l, "child profile created") {
			line = l
		}
	}
	require.NotEmpty(t, line)
	assert.Equal(t, 1, strings.Count(line, `"user_id"`))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, float64(user.ID), entry["user_id"])
}

func TestService_CreateUnknownUser(t *testing.T) {
	svc, _ := newService(t)

	_, _, err := svc.Create(context.Background(), 999, "Ada")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUserNotFound))
}

func TestService_SameNameDifferentUsers(t *testing.T) {
	ctx := context.Background()
	svc, client := newService(t)
	a := testutil.SeedUser(t, client, "a@example.com")
	b := testutil.SeedUser(t, client, "b@example.com")

	pa, _, err := svc.FindOrCreate(ctx, a.ID, "Ada")
	require.NoError(t, err)
	pb, created, err := svc.FindOrCreate(ctx, b.ID, "Ada")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, pa.ID, pb.ID)
}

type mockProfileRepo struct {
	mock.Mock
}

func (m *mockProfileRepo) GetByID(ctx context.Context, id int64) (*entity.ChildProfile, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*entity.ChildProfile)
	return p, args.Error(1)
}

func (m *mockProfileRepo) GetByUserAndName(ctx context.Context, userID int64, name string) (*entity.ChildProfile, error) {
	args := m.Called(ctx, userID, name)
	p, _ := args.Get(0).(*entity.ChildProfile)
	return p, args.Error(1)
}

func (m *mockProfileRepo) CreateIfAbsent(ctx context.Context, p *entity.ChildProfile) (bool, error) {
	args := m.Called(ctx, p)
	return args.Bool(0), args.Error(1)
}

func (m *mockProfileRepo) ListByUser(ctx context.Context, userID int64) ([]*entity.ChildProfile, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]*entity.ChildProfile)
	return items, args.Error(1)
}

func TestService_FindOrCreateLosesRace(t *testing.T) {
	ctx := context.Background()
	repo := new(mockProfileRepo)
	winner := &entity.ChildProfile{ID: 11, UserID: 1, ChildName: "Ada"}

	repo.On("GetByUserAndName", mock.Anything, int64(1), "Ada").Return(nil, nil).Once()
	repo.On("CreateIfAbsent", mock.Anything, mock.AnythingOfType("*entity.ChildProfile")).Return(false, nil).Once()
	repo.On("GetByUserAndName", mock.Anything, int64(1), "Ada").Return(winner, nil).Once()

	svc := NewService(nil, repo)
	got, created, err := svc.FindOrCreate(ctx, 1, "Ada")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(11), got.ID)
	repo.AssertExpectations(t)
}
