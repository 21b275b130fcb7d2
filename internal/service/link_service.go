package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/petalpost/proposal-link-service/internal/domain"
	"github.com/petalpost/proposal-link-service/internal/dto"
	"github.com/petalpost/proposal-link-service/pkg/code"
	"github.com/petalpost/proposal-link-service/pkg/logger"
	"github.com/petalpost/proposal-link-service/pkg/timex"
	"github.com/petalpost/proposal-link-service/pkg/util"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// LinkService 提案链接业务服务接口
type LinkService interface {
	// Create 生成唯一 slug 并落库，返回 slug 与完整分享地址
	Create(ctx context.Context, params *dto.LinkCreateRequest, meta domain.RequestMeta) (*dto.LinkCreateResponse, error)
	// Get 检索公开视图，同时原子递增浏览计数
	Get(ctx context.Context, slug string) (*dto.LinkViewResponse, error)
	// GetStatus 查询回答状态，纯读取，不影响浏览计数
	GetStatus(ctx context.Context, slug string) (*dto.LinkStatusResponse, error)
	// SubmitAnswer 提交最终回答，单写者胜出
	SubmitAnswer(ctx context.Context, slug string, params *dto.LinkAnswerRequest, meta domain.RequestMeta) (*dto.LinkAnswerResponse, error)
}

type linkService struct {
	linkRepo domain.LinkRepository
	config   LinkServiceConfig
	log      *zap.Logger
	sf       singleflight.Group
}

func NewLinkService(linkRepo domain.LinkRepository, config LinkServiceConfig, log *zap.Logger) LinkService {
	if log == nil {
		log = zap.NewNop()
	}
	return &linkService{
		linkRepo: linkRepo,
		config:   config,
		log:      log,
		sf:       singleflight.Group{},
	}
}

// ShareURL 拼接完整分享地址，baseURL 末尾多余的 "/" 会被去掉
func ShareURL(baseURL string, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/p/" + slug
}

func (s *linkService) domainToDTO(l *domain.Link) *dto.LinkDTO {
	if l == nil {
		return nil
	}
	d := &dto.LinkDTO{
		SenderName:   l.SenderName,
		ReceiverName: l.ReceiverName,
		BackgroundID: l.BackgroundID,
		Message:      l.Message,
		ButtonStyle:  string(l.ButtonStyle),
		Template:     l.Template,
	}
	if l.PhotoURL != "" {
		photoURL := l.PhotoURL
		d.PhotoURL = &photoURL
	}
	if l.Answer != nil {
		answer := string(*l.Answer)
		d.Answer = &answer
	}
	d.AnsweredAt = toTimexPtr(l.AnsweredAt)
	return d
}

func toTimexPtr(t *time.Time) *timex.Time {
	if t == nil {
		return nil
	}
	tt := timex.Time(*t)
	return &tt
}

func (s *linkService) Create(ctx context.Context, params *dto.LinkCreateRequest, meta domain.RequestMeta) (*dto.LinkCreateResponse, error) {
	if !domain.IsValidButtonStyle(params.ButtonStyle) {
		return nil, code.ErrorInvalidParams.WithDetails("buttonStyle must be one of standard, persistent, decoy")
	}

	meta.ClientMeta = params.Metadata

	maxAttempts := s.config.createMaxAttempts()
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		slug := util.GenerateSlug(s.config.slugLength())

		link := &domain.Link{
			Slug:         slug,
			SenderName:   params.SenderName,
			ReceiverName: params.ReceiverName,
			PhotoURL:     params.PhotoURL,
			BackgroundID: params.BackgroundID,
			Message:      params.Message,
			ButtonStyle:  domain.ButtonStyle(params.ButtonStyle),
			Template:     params.Template,
			Metadata:     meta,
		}

		err := s.linkRepo.Create(ctx, link)
		if err == nil {
			s.log.Info("link created",
				zap.String(logger.FieldSlug, slug),
				zap.Int(logger.FieldAttempt, attempt))
			return &dto.LinkCreateResponse{
				Slug:     slug,
				ShareURL: ShareURL(s.config.BaseURL, slug),
			}, nil
		}
		if errors.Is(err, domain.ErrSlugTaken) {
			s.log.Warn("slug collision, retrying",
				zap.String(logger.FieldSlug, slug),
				zap.Int(logger.FieldAttempt, attempt))
			continue
		}
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}

	s.log.Error("slug generation exhausted",
		zap.Int(logger.FieldAttempt, maxAttempts))
	return nil, code.ErrorSlugExhausted
}

func (s *linkService) Get(ctx context.Context, slug string) (*dto.LinkViewResponse, error) {
	link, err := s.linkRepo.IncrementViewAndGet(ctx, slug, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrLinkNotFound) {
			return nil, code.ErrorLinkNotFound
		}
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}

	return &dto.LinkViewResponse{
		Link:         *s.domainToDTO(link),
		ViewCount:    link.ViewCount,
		LastViewedAt: toTimexPtr(link.LastViewedAt),
	}, nil
}

func (s *linkService) GetStatus(ctx context.Context, slug string) (*dto.LinkStatusResponse, error) {
	// 状态轮询是只读热点，singleflight 合并同一 slug 的并发查询。
	// 合并后的查询供所有等待者共享，不能继承发起者的取消信号
	v, err, _ := s.sf.Do("link:status:"+slug, func() (interface{}, error) {
		return s.linkRepo.GetBySlug(context.WithoutCancel(ctx), slug)
	})
	if err != nil {
		if errors.Is(err, domain.ErrLinkNotFound) {
			return nil, code.ErrorLinkNotFound
		}
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}
	link := v.(*domain.Link)

	res := &dto.LinkStatusResponse{
		SenderName:   link.SenderName,
		ReceiverName: link.ReceiverName,
		AnsweredAt:   toTimexPtr(link.AnsweredAt),
	}
	if link.Answer != nil {
		answer := string(*link.Answer)
		res.Answer = &answer
	}
	return res, nil
}

func (s *linkService) SubmitAnswer(ctx context.Context, slug string, params *dto.LinkAnswerRequest, meta domain.RequestMeta) (*dto.LinkAnswerResponse, error) {
	answer, ok := domain.NormalizeAnswer(params.Answer)
	if !ok {
		return nil, code.ErrorInvalidAnswer
	}

	link, err := s.linkRepo.SetAnswerIfUnset(ctx, slug, answer, time.Now(), meta)
	if err != nil {
		if errors.Is(err, domain.ErrLinkNotFound) {
			return nil, code.ErrorLinkNotFound
		}
		if errors.Is(err, domain.ErrAlreadyAnswered) {
			// 竞争失败，响应携带已存档的权威回答
			s.log.Info("answer rejected, already answered",
				zap.String(logger.FieldSlug, slug),
				zap.String(logger.FieldAnswer, string(answer)))
			return nil, code.ErrorLinkAnswered.WithData(s.answerToDTO(link))
		}
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}

	s.log.Info("answer recorded",
		zap.String(logger.FieldSlug, slug),
		zap.String(logger.FieldAnswer, string(answer)))
	return s.answerToDTO(link), nil
}

func (s *linkService) answerToDTO(l *domain.Link) *dto.LinkAnswerResponse {
	if l == nil || l.Answer == nil {
		return nil
	}
	return &dto.LinkAnswerResponse{
		Answer:     string(*l.Answer),
		AnsweredAt: toTimexPtr(l.AnsweredAt),
	}
}
