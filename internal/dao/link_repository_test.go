package dao

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/petalpost/proposal-link-service/internal/domain"
	"github.com/petalpost/proposal-link-service/internal/model"

	"github.com/gookit/goutil/dump"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRepo(t *testing.T) domain.LinkRepository {
	t.Helper()

	db, err := NewDBEngineWithConfig(DatabaseConfig{
		Type:         "sqlite",
		Path:         filepath.Join(t.TempDir(), "test.sqlite3"),
		// 单连接串行化 SQLite 写入，避免测试里的 busy 错误
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db, "Link"))

	return NewLinkRepository(New(db, context.Background()))
}

func testLink(slug string) *domain.Link {
	return &domain.Link{
		Slug:         slug,
		SenderName:   "Alex",
		ReceiverName: "Sam",
		BackgroundID: "sunset",
		Message:      "Will you be my Valentine?",
		ButtonStyle:  domain.ButtonStyleStandard,
		Template:     "romantic",
		Metadata:     domain.RequestMeta{UserAgent: "test-agent", IP: "127.0.0.1"},
	}
}

func TestLinkRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	link := testLink("abc123XY")
	require.NoError(t, repo.Create(ctx, link))
	assert.NotZero(t, link.ID)

	got, err := repo.GetBySlug(ctx, "abc123XY")
	require.NoError(t, err)
	dump.P(got)

	assert.Equal(t, link.Slug, got.Slug)
	assert.Equal(t, link.SenderName, got.SenderName)
	assert.Equal(t, link.ReceiverName, got.ReceiverName)
	assert.Equal(t, link.Message, got.Message)
	assert.Equal(t, "test-agent", got.Metadata.UserAgent)
	assert.Nil(t, got.Answer)
	assert.Nil(t, got.AnsweredAt)
	assert.Equal(t, int64(0), got.ViewCount)
}

func TestLinkRepository_CreateDuplicateSlug(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testLink("dup_slug")))

	err := repo.Create(ctx, testLink("dup_slug"))
	assert.ErrorIs(t, err, domain.ErrSlugTaken)
}

func TestLinkRepository_GetBySlugNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetBySlug(context.Background(), "missing1")
	assert.ErrorIs(t, err, domain.ErrLinkNotFound)
}

func TestLinkRepository_IncrementViewAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testLink("viewslug")))

	for i := int64(1); i <= 3; i++ {
		got, err := repo.IncrementViewAndGet(ctx, "viewslug", time.Now())
		require.NoError(t, err)
		assert.Equal(t, i, got.ViewCount)
		assert.NotNil(t, got.LastViewedAt)
	}

	_, err := repo.IncrementViewAndGet(ctx, "missing1", time.Now())
	assert.ErrorIs(t, err, domain.ErrLinkNotFound)
}

func TestLinkRepository_SetAnswerIfUnset(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testLink("ansslug1")))

	answeredAt := time.Now()
	meta := domain.RequestMeta{UserAgent: "responder", IP: "10.0.0.1"}

	got, err := repo.SetAnswerIfUnset(ctx, "ansslug1", domain.AnswerAccepted, answeredAt, meta)
	require.NoError(t, err)
	require.NotNil(t, got.Answer)
	assert.Equal(t, domain.AnswerAccepted, *got.Answer)
	require.NotNil(t, got.AnsweredAt)

	// 第二次写入必须输给已存档的回答
	got, err = repo.SetAnswerIfUnset(ctx, "ansslug1", domain.AnswerRejected, time.Now(), meta)
	assert.ErrorIs(t, err, domain.ErrAlreadyAnswered)
	require.NotNil(t, got)
	assert.Equal(t, domain.AnswerAccepted, *got.Answer)

	_, err = repo.SetAnswerIfUnset(ctx, "missing1", domain.AnswerAccepted, time.Now(), meta)
	assert.ErrorIs(t, err, domain.ErrLinkNotFound)
}

func TestLinkRepository_ConcurrentAnswers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testLink("racelink")))

	answers := []domain.Answer{domain.AnswerAccepted, domain.AnswerRejected}
	results := make([]error, len(answers))

	var wg sync.WaitGroup
	for i, answer := range answers {
		wg.Add(1)
		go func(i int, answer domain.Answer) {
			defer wg.Done()
			_, results[i] = repo.SetAnswerIfUnset(ctx, "racelink", answer, time.Now(), domain.RequestMeta{})
		}(i, answer)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrAlreadyAnswered):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins, "exactly one writer must win")
	assert.Equal(t, 1, losses)

	// 之后所有读取都收敛到同一个回答
	got, err := repo.GetBySlug(ctx, "racelink")
	require.NoError(t, err)
	require.NotNil(t, got.Answer)
}
