package api_router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/petalpost/proposal-link-service/internal/app"
	"github.com/petalpost/proposal-link-service/internal/dao"
	"github.com/petalpost/proposal-link-service/internal/domain"
	"github.com/petalpost/proposal-link-service/internal/dto"
	"github.com/petalpost/proposal-link-service/internal/service"
	pkgapp "github.com/petalpost/proposal-link-service/pkg/app"
	"github.com/petalpost/proposal-link-service/pkg/code"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	validatorV10 "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var bindingTagNamesOnce sync.Once

// registerBindingTagNames 与服务启动时的校验器配置一致，
// 校验错误里报告 json 字段名而不是 Go 字段名
func registerBindingTagNames() {
	bindingTagNamesOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validatorV10.Validate); ok {
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
				if name == "-" {
					return ""
				}
				return name
			})
		}
	})
}

// countingLinkRepo 只统计调用次数，用来断言校验失败不触达存储层
type countingLinkRepo struct {
	mu    sync.Mutex
	calls int
}

func (m *countingLinkRepo) bump() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
}

func (m *countingLinkRepo) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *countingLinkRepo) Create(ctx context.Context, link *domain.Link) error {
	m.bump()
	return nil
}

func (m *countingLinkRepo) GetBySlug(ctx context.Context, slug string) (*domain.Link, error) {
	m.bump()
	return nil, domain.ErrLinkNotFound
}

func (m *countingLinkRepo) IncrementViewAndGet(ctx context.Context, slug string, viewedAt time.Time) (*domain.Link, error) {
	m.bump()
	return nil, domain.ErrLinkNotFound
}

func (m *countingLinkRepo) SetAnswerIfUnset(ctx context.Context, slug string, answer domain.Answer, answeredAt time.Time, meta domain.RequestMeta) (*domain.Link, error) {
	m.bump()
	return nil, domain.ErrLinkNotFound
}

func newTestRouter(t *testing.T, repo domain.LinkRepository) *gin.Engine {
	t.Helper()
	registerBindingTagNames()
	gin.SetMode(gin.TestMode)

	db, err := dao.NewDBEngineWithConfig(dao.DatabaseConfig{
		Type:         "sqlite",
		Path:         filepath.Join(t.TempDir(), "test.sqlite3"),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)

	cfg := &app.AppConfig{}
	cfg.App.BaseURL = "https://petalpost.example.com"
	cfg.App.SlugLength = 8
	cfg.App.CreateMaxAttempts = 5

	a, err := app.NewApp(cfg, zap.NewNop(), db)
	require.NoError(t, err)

	// 换上计数仓库，断言请求是否触达存储层
	a.LinkRepo = repo
	a.LinkService = service.NewLinkService(repo, service.LinkServiceConfig{
		BaseURL:           cfg.App.BaseURL,
		SlugLength:        cfg.App.SlugLength,
		CreateMaxAttempts: cfg.App.CreateMaxAttempts,
	}, nil)

	r := gin.New()
	h := NewLinkHandler(a)
	r.POST("/api/links", h.Create)
	return r
}

func postJSON(r *gin.Engine, path string, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestLinkHandlerCreate_MissingReceiverName(t *testing.T) {
	repo := &countingLinkRepo{}
	r := newTestRouter(t, repo)

	// receiverName 与 buttonStyle 同时缺失，报告的第一个字段
	// 必须按声明顺序命名 receiverName
	body := `{"senderName":"Alex","backgroundId":"sunset","message":"Will you marry me?","template":"romantic"}`
	w := postJSON(r, "/api/links", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var res struct {
		Code    int               `json:"code"`
		Status  bool              `json:"status"`
		Data    map[string]string `json:"data"`
		Details string            `json:"details"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, code.ErrorInvalidParams.Code(), res.Code)
	assert.False(t, res.Status)
	assert.Contains(t, res.Data, "receiverName")

	first := strings.SplitN(res.Details, ",", 2)[0]
	assert.Contains(t, first, "receiverName", "first reported field must be receiverName")

	assert.Equal(t, 0, repo.total(), "validation failure must not touch the store")
}

func TestBindAndValidNamesFirstMissingField(t *testing.T) {
	registerBindingTagNames()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/api/links",
		strings.NewReader(`{"senderName":"Alex","backgroundId":"sunset","message":"hi","template":"romantic"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	params := &dto.LinkCreateRequest{}
	valid, errs := pkgapp.BindAndValid(c, params)
	require.False(t, valid)
	require.NotEmpty(t, errs)
	assert.Equal(t, "receiverName", errs[0].Key)
	assert.Contains(t, errs.MapsToString(), "buttonStyle")
}