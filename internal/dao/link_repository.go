package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/petalpost/proposal-link-service/internal/domain"
	"github.com/petalpost/proposal-link-service/internal/model"
	"github.com/petalpost/proposal-link-service/pkg/timex"

	"gorm.io/gorm"
)

// linkRepository 实现 domain.LinkRepository 接口
type linkRepository struct {
	dao *Dao
}

// NewLinkRepository 创建 LinkRepository 实例
func NewLinkRepository(dao *Dao) domain.LinkRepository {
	return &linkRepository{dao: dao}
}

func (r *linkRepository) toDomain(m *model.Link) *domain.Link {
	if m == nil {
		return nil
	}

	var meta domain.RequestMeta
	_ = sonic.Unmarshal([]byte(m.Metadata), &meta)

	l := &domain.Link{
		ID:           m.ID,
		Slug:         m.Slug,
		SenderName:   m.SenderName,
		ReceiverName: m.ReceiverName,
		PhotoURL:     m.PhotoURL,
		BackgroundID: m.BackgroundID,
		Message:      m.Message,
		ButtonStyle:  domain.ButtonStyle(m.ButtonStyle),
		Template:     m.Template,
		Metadata:     meta,
		ViewCount:    m.ViewCount,
		CreatedAt:    time.Time(m.CreatedAt),
		UpdatedAt:    time.Time(m.UpdatedAt),
	}

	if m.Answer != nil {
		answer := domain.Answer(*m.Answer)
		l.Answer = &answer
	}
	if m.AnsweredAt != nil {
		answeredAt := time.Time(*m.AnsweredAt)
		l.AnsweredAt = &answeredAt
	}
	if m.AnsweredMeta != "" {
		var answeredMeta domain.RequestMeta
		if err := sonic.Unmarshal([]byte(m.AnsweredMeta), &answeredMeta); err == nil {
			l.AnsweredMeta = &answeredMeta
		}
	}
	if m.LastViewedAt != nil {
		lastViewedAt := time.Time(*m.LastViewedAt)
		l.LastViewedAt = &lastViewedAt
	}

	return l
}

func (r *linkRepository) toModel(d *domain.Link) *model.Link {
	if d == nil {
		return nil
	}

	metaBytes, _ := sonic.Marshal(d.Metadata)

	m := &model.Link{
		ID:           d.ID,
		Slug:         d.Slug,
		SenderName:   d.SenderName,
		ReceiverName: d.ReceiverName,
		PhotoURL:     d.PhotoURL,
		BackgroundID: d.BackgroundID,
		Message:      d.Message,
		ButtonStyle:  string(d.ButtonStyle),
		Template:     d.Template,
		Metadata:     string(metaBytes),
		ViewCount:    d.ViewCount,
		CreatedAt:    timex.Time(d.CreatedAt),
		UpdatedAt:    timex.Time(d.UpdatedAt),
	}

	if d.Answer != nil {
		answer := string(*d.Answer)
		m.Answer = &answer
	}
	if d.AnsweredAt != nil {
		answeredAt := timex.Time(*d.AnsweredAt)
		m.AnsweredAt = &answeredAt
	}
	if d.AnsweredMeta != nil {
		answeredMetaBytes, _ := sonic.Marshal(d.AnsweredMeta)
		m.AnsweredMeta = string(answeredMetaBytes)
	}
	if d.LastViewedAt != nil {
		lastViewedAt := timex.Time(*d.LastViewedAt)
		m.LastViewedAt = &lastViewedAt
	}

	return m
}

// link 获取带自动迁移的链接查询对象
func (r *linkRepository) link(ctx context.Context) *gorm.DB {
	return r.dao.db.WithContext(ctx).Model(&model.Link{})
}

// isDuplicateKeyError reports whether err is a unique-constraint violation.
// gorm's TranslateError covers the common drivers; the string checks keep
// older driver versions working.
// isDuplicateKeyError 判断 err 是否为唯一约束冲突。
// gorm 的 TranslateError 覆盖常见驱动；字符串匹配兼容旧版驱动。
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}

// Create inserts a record, relying on the store's unique index on slug.
// A duplicate surfaces as domain.ErrSlugTaken so the caller can retry with
// a fresh slug.
// Create 插入记录，依赖存储层 slug 唯一索引。
// 冲突以 domain.ErrSlugTaken 返回，调用方用新 slug 重试。
func (r *linkRepository) Create(ctx context.Context, link *domain.Link) error {
	m := r.toModel(link)
	now := timex.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := r.link(ctx).Create(m).Error; err != nil {
		if isDuplicateKeyError(err) {
			return domain.ErrSlugTaken
		}
		return err
	}

	// 回填生成的 ID 和时间戳
	link.ID = m.ID
	link.CreatedAt = time.Time(m.CreatedAt)
	link.UpdatedAt = time.Time(m.UpdatedAt)
	return nil
}

// GetBySlug 按 slug 纯读取，不产生任何副作用
func (r *linkRepository) GetBySlug(ctx context.Context, slug string) (*domain.Link, error) {
	var m model.Link
	err := r.link(ctx).Where("slug = ?", slug).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLinkNotFound
		}
		return nil, err
	}
	return r.toDomain(&m), nil
}

// IncrementViewAndGet bumps the view counter and reads the record inside one
// transaction so callers never observe a read-modify-write window. The
// increment itself is a single relative UPDATE, so concurrent views are never
// lost.
// IncrementViewAndGet 在一个事务内递增计数并读取记录，调用方不会观察到
// 读-改-写窗口。递增本身是一条相对 UPDATE，并发浏览不会丢失计数。
func (r *linkRepository) IncrementViewAndGet(ctx context.Context, slug string, viewedAt time.Time) (*domain.Link, error) {
	var m model.Link

	err := r.dao.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Link{}).
			Where("slug = ?", slug).
			Updates(map[string]interface{}{
				"view_count":     gorm.Expr("view_count + ?", 1),
				"last_viewed_at": viewedAt,
				"updated_at":     viewedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrLinkNotFound
		}
		return tx.Where("slug = ?", slug).First(&m).Error
	})
	if err != nil {
		return nil, err
	}

	return r.toDomain(&m), nil
}

// SetAnswerIfUnset performs the answer transition as one conditional UPDATE
// keyed on answered_at being NULL. Exactly one concurrent writer can match;
// everyone else gets ErrAlreadyAnswered plus the record already on file.
// SetAnswerIfUnset 以一条以 answered_at IS NULL 为条件的 UPDATE 完成回答
// 迁移。并发写入者中只有一个能命中；其余拿到 ErrAlreadyAnswered 与已
// 存档的记录。
func (r *linkRepository) SetAnswerIfUnset(ctx context.Context, slug string, answer domain.Answer, answeredAt time.Time, meta domain.RequestMeta) (*domain.Link, error) {
	metaBytes, _ := sonic.Marshal(meta)

	res := r.link(ctx).
		Where("slug = ? AND answered_at IS NULL", slug).
		Updates(map[string]interface{}{
			"answer":        string(answer),
			"answered_at":   answeredAt,
			"answered_meta": string(metaBytes),
			"updated_at":    answeredAt,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	// 无论写入是否命中都重读记录：命中时返回新状态，
	// 未命中时返回权威的既有回答或 NOT_FOUND
	existing, err := r.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if res.RowsAffected == 0 {
		return existing, domain.ErrAlreadyAnswered
	}
	return existing, nil
}

var _ domain.LinkRepository = (*linkRepository)(nil)
