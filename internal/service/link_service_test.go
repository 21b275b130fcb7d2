package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/petalpost/proposal-link-service/internal/domain"
	"github.com/petalpost/proposal-link-service/internal/dto"
	"github.com/petalpost/proposal-link-service/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLinkRepo struct {
	mu sync.Mutex

	createCalls    int
	getCalls       int
	incrementCalls int
	answerCalls    int

	// slug -> record
	links map[string]*domain.Link
	// Create 的前 N 次调用返回 ErrSlugTaken
	conflictFirstN int
	// 非空时所有调用返回该错误
	forcedErr error
}

func newMockLinkRepo() *mockLinkRepo {
	return &mockLinkRepo{links: map[string]*domain.Link{}}
}

func (m *mockLinkRepo) Create(ctx context.Context, link *domain.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.forcedErr != nil {
		return m.forcedErr
	}
	if m.createCalls <= m.conflictFirstN {
		return domain.ErrSlugTaken
	}
	if _, ok := m.links[link.Slug]; ok {
		return domain.ErrSlugTaken
	}
	link.ID = int64(len(m.links) + 1)
	cp := *link
	m.links[link.Slug] = &cp
	return nil
}

func (m *mockLinkRepo) GetBySlug(ctx context.Context, slug string) (*domain.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	l, ok := m.links[slug]
	if !ok {
		return nil, domain.ErrLinkNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *mockLinkRepo) IncrementViewAndGet(ctx context.Context, slug string, viewedAt time.Time) (*domain.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incrementCalls++
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	l, ok := m.links[slug]
	if !ok {
		return nil, domain.ErrLinkNotFound
	}
	l.ViewCount++
	t := viewedAt
	l.LastViewedAt = &t
	cp := *l
	return &cp, nil
}

func (m *mockLinkRepo) SetAnswerIfUnset(ctx context.Context, slug string, answer domain.Answer, answeredAt time.Time, meta domain.RequestMeta) (*domain.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answerCalls++
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	l, ok := m.links[slug]
	if !ok {
		return nil, domain.ErrLinkNotFound
	}
	if l.AnsweredAt != nil {
		cp := *l
		return &cp, domain.ErrAlreadyAnswered
	}
	a := answer
	t := answeredAt
	l.Answer = &a
	l.AnsweredAt = &t
	l.AnsweredMeta = &meta
	cp := *l
	return &cp, nil
}

func validCreateRequest() *dto.LinkCreateRequest {
	return &dto.LinkCreateRequest{
		SenderName:   "Alex",
		ReceiverName: "Sam",
		BackgroundID: "sunset",
		Message:      "Will you marry me?",
		ButtonStyle:  "standard",
		Template:     "romantic",
	}
}

func newTestService(repo domain.LinkRepository) LinkService {
	return NewLinkService(repo, LinkServiceConfig{
		BaseURL:           "https://petalpost.example.com",
		SlugLength:        8,
		CreateMaxAttempts: 5,
	}, nil)
}

func TestShareURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		slug    string
		want    string
	}{
		{"no trailing slash", "https://example.com", "abc123_X", "https://example.com/p/abc123_X"},
		{"trailing slash trimmed", "https://example.com/", "abc123_X", "https://example.com/p/abc123_X"},
		{"multiple trailing slashes", "https://example.com///", "abc123_X", "https://example.com/p/abc123_X"},
		{"base with path", "https://example.com/app/", "s1", "https://example.com/app/p/s1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShareURL(tt.baseURL, tt.slug))
		})
	}
}

func TestLinkServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := newMockLinkRepo()
		svc := newTestService(repo)

		res, err := svc.Create(ctx, validCreateRequest(), domain.RequestMeta{IP: "127.0.0.1"})
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Len(t, res.Slug, 8)
		assert.Equal(t, "https://petalpost.example.com/p/"+res.Slug, res.ShareURL)
		assert.Equal(t, 1, repo.createCalls)

		stored, err := repo.GetBySlug(ctx, res.Slug)
		require.NoError(t, err)
		assert.Equal(t, "Alex", stored.SenderName)
		assert.Equal(t, "127.0.0.1", stored.Metadata.IP)
		assert.Equal(t, int64(0), stored.ViewCount)
		assert.Nil(t, stored.Answer)
	})

	t.Run("invalid button style skips store", func(t *testing.T) {
		repo := newMockLinkRepo()
		svc := newTestService(repo)

		params := validCreateRequest()
		params.ButtonStyle = "sparkly"
		_, err := svc.Create(ctx, params, domain.RequestMeta{})
		require.Error(t, err)
		var c *code.Code
		require.ErrorAs(t, err, &c)
		assert.Equal(t, code.ErrorInvalidParams.Code(), c.Code())
		assert.Equal(t, 0, repo.createCalls, "validation failure must not touch the store")
	})

	t.Run("retries on slug collision", func(t *testing.T) {
		repo := newMockLinkRepo()
		repo.conflictFirstN = 2
		svc := newTestService(repo)

		res, err := svc.Create(ctx, validCreateRequest(), domain.RequestMeta{})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Slug)
		assert.Equal(t, 3, repo.createCalls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		repo := newMockLinkRepo()
		repo.conflictFirstN = 100
		svc := newTestService(repo)

		_, err := svc.Create(ctx, validCreateRequest(), domain.RequestMeta{})
		var c *code.Code
		require.ErrorAs(t, err, &c)
		assert.Equal(t, code.ErrorSlugExhausted.Code(), c.Code())
		assert.Equal(t, 5, repo.createCalls)
	})

	t.Run("client metadata is archived with request context", func(t *testing.T) {
		repo := newMockLinkRepo()
		svc := newTestService(repo)

		params := validCreateRequest()
		params.Metadata = map[string]any{"source": "mobile"}
		res, err := svc.Create(ctx, params, domain.RequestMeta{UserAgent: "test-agent"})
		require.NoError(t, err)

		stored, err := repo.GetBySlug(ctx, res.Slug)
		require.NoError(t, err)
		assert.Equal(t, "test-agent", stored.Metadata.UserAgent)
		assert.NotNil(t, stored.Metadata.ClientMeta)
	})
}

func TestLinkServiceGet(t *testing.T) {
	ctx := context.Background()
	repo := newMockLinkRepo()
	svc := newTestService(repo)

	created, err := svc.Create(ctx, validCreateRequest(), domain.RequestMeta{})
	require.NoError(t, err)

	t.Run("increments view count on every retrieval", func(t *testing.T) {
		for want := int64(1); want <= 3; want++ {
			res, err := svc.Get(ctx, created.Slug)
			require.NoError(t, err)
			assert.Equal(t, want, res.ViewCount)
			require.NotNil(t, res.LastViewedAt)
		}
	})

	t.Run("public view omits request context", func(t *testing.T) {
		res, err := svc.Get(ctx, created.Slug)
		require.NoError(t, err)
		assert.Equal(t, "Alex", res.Link.SenderName)
		assert.Equal(t, "Sam", res.Link.ReceiverName)
		assert.Nil(t, res.Link.PhotoURL)
		assert.Nil(t, res.Link.Answer)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Get(ctx, "missing00")
		var c *code.Code
		require.ErrorAs(t, err, &c)
		assert.Equal(t, code.ErrorLinkNotFound.Code(), c.Code())
	})
}

func TestLinkServiceGetStatus(t *testing.T) {
	ctx := context.Background()
	repo := newMockLinkRepo()
	svc := newTestService(repo)

	created, err := svc.Create(ctx, validCreateRequest(), domain.RequestMeta{})
	require.NoError(t, err)

	t.Run("pure read leaves view count untouched", func(t *testing.T) {
		before := repo.incrementCalls
		res, err := svc.GetStatus(ctx, created.Slug)
		require.NoError(t, err)
		assert.Equal(t, "Alex", res.SenderName)
		assert.Nil(t, res.Answer)
		assert.Nil(t, res.AnsweredAt)
		assert.Equal(t, before, repo.incrementCalls)
	})

	t.Run("reflects recorded answer", func(t *testing.T) {
		_, err := svc.SubmitAnswer(ctx, created.Slug, &dto.LinkAnswerRequest{Answer: "accepted"}, domain.RequestMeta{})
		require.NoError(t, err)

		res, err := svc.GetStatus(ctx, created.Slug)
		require.NoError(t, err)
		require.NotNil(t, res.Answer)
		assert.Equal(t, "accepted", *res.Answer)
		require.NotNil(t, res.AnsweredAt)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.GetStatus(ctx, "missing00")
		var c *code.Code
		require.ErrorAs(t, err, &c)
		assert.Equal(t, code.ErrorLinkNotFound.Code(), c.Code())
	})

	t.Run("shared fetch is detached from the caller's cancellation", func(t *testing.T) {
		// 合并执行的结果供所有等待者共享，发起者被取消不应污染结果
		canceled, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := svc.GetStatus(canceled, created.Slug)
		require.NoError(t, err)
		assert.Equal(t, "Alex", res.SenderName)
	})
}

func TestLinkServiceSubmitAnswer(t *testing.T) {
	ctx := context.Background()

	newAnsweredLink := func(t *testing.T) (*mockLinkRepo, LinkService, string) {
		t.Helper()
		repo := newMockLinkRepo()
		svc := newTestService(repo)
		created, err := svc.Create(ctx, validCreateRequest(), domain.RequestMeta{})
		require.NoError(t, err)
		return repo, svc, created.Slug
	}

	t.Run("records first answer", func(t *testing.T) {
		_, svc, slug := newAnsweredLink(t)

		res, err := svc.SubmitAnswer(ctx, slug, &dto.LinkAnswerRequest{Answer: "accepted"}, domain.RequestMeta{IP: "10.0.0.1"})
		require.NoError(t, err)
		assert.Equal(t, "accepted", res.Answer)
		require.NotNil(t, res.AnsweredAt)
	})

	t.Run("synonyms and case map onto the enumeration", func(t *testing.T) {
		tests := []struct {
			raw  string
			want string
		}{
			{"yes", "accepted"},
			{"YES", "accepted"},
			{"  Accepted ", "accepted"},
			{"no", "rejected"},
			{"No", "rejected"},
			{"REJECTED", "rejected"},
		}
		for _, tt := range tests {
			t.Run(tt.raw, func(t *testing.T) {
				_, svc, slug := newAnsweredLink(t)
				res, err := svc.SubmitAnswer(ctx, slug, &dto.LinkAnswerRequest{Answer: tt.raw}, domain.RequestMeta{})
				require.NoError(t, err)
				assert.Equal(t, tt.want, res.Answer)
			})
		}
	})

	t.Run("invalid answer skips store", func(t *testing.T) {
		repo, svc, slug := newAnsweredLink(t)
		before := repo.answerCalls

		_, err := svc.SubmitAnswer(ctx, slug, &dto.LinkAnswerRequest{Answer: "maybe"}, domain.RequestMeta{})
		var c *code.Code
		require.ErrorAs(t, err, &c)
		assert.Equal(t, code.ErrorInvalidAnswer.Code(), c.Code())
		assert.Equal(t, before, repo.answerCalls, "invalid answer must not touch the store")
	})

	t.Run("second answer loses and sees the first", func(t *testing.T) {
		_, svc, slug := newAnsweredLink(t)

		first, err := svc.SubmitAnswer(ctx, slug, &dto.LinkAnswerRequest{Answer: "rejected"}, domain.RequestMeta{})
		require.NoError(t, err)

		_, err = svc.SubmitAnswer(ctx, slug, &dto.LinkAnswerRequest{Answer: "accepted"}, domain.RequestMeta{})
		var c *code.Code
		require.ErrorAs(t, err, &c)
		assert.Equal(t, code.ErrorLinkAnswered.Code(), c.Code())

		// 冲突响应携带的是已存档的权威回答
		existing, ok := c.Data().(*dto.LinkAnswerResponse)
		require.True(t, ok)
		assert.Equal(t, first.Answer, existing.Answer)
	})

	t.Run("concurrent submissions have exactly one winner", func(t *testing.T) {
		_, svc, slug := newAnsweredLink(t)

		const writers = 8
		answers := []string{"accepted", "rejected"}
		var wg sync.WaitGroup
		errs := make([]error, writers)

		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.SubmitAnswer(ctx, slug, &dto.LinkAnswerRequest{Answer: answers[i%2]}, domain.RequestMeta{})
			}(i)
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			var c *code.Code
			require.ErrorAs(t, err, &c)
			assert.Equal(t, code.ErrorLinkAnswered.Code(), c.Code())
		}
		assert.Equal(t, 1, wins)
	})

	t.Run("not found", func(t *testing.T) {
		repo := newMockLinkRepo()
		svc := newTestService(repo)
		_, err := svc.SubmitAnswer(ctx, "missing00", &dto.LinkAnswerRequest{Answer: "yes"}, domain.RequestMeta{})
		var c *code.Code
		require.ErrorAs(t, err, &c)
		assert.Equal(t, code.ErrorLinkNotFound.Code(), c.Code())
	})
}
