package task

import (
	"context"

	"github.com/petalpost/proposal-link-service/internal/app"

	"go.uber.org/zap"
)

// DBMaintenanceTask 数据库维护任务
// SQLite 下执行 WAL checkpoint 和 VACUUM，其他数据库执行 ANALYZE
type DBMaintenanceTask struct {
	app      *app.App
	logger   *zap.Logger
	cronSpec string
}

// Name returns the task name
func (t *DBMaintenanceTask) Name() string {
	return "DBMaintenance"
}

// CronSpec returns the cron schedule
func (t *DBMaintenanceTask) CronSpec() string {
	return t.cronSpec
}

// IsStartupRun returns whether to run on startup
func (t *DBMaintenanceTask) IsStartupRun() bool {
	return false
}

// Run executes the maintenance statements
func (t *DBMaintenanceTask) Run(ctx context.Context) error {
	db := t.app.DB.WithContext(ctx)

	if t.app.Config().Database.Type == "sqlite" {
		if err := db.Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error; err != nil {
			return err
		}
		if err := db.Exec("VACUUM").Error; err != nil {
			return err
		}
	} else {
		if err := db.Exec("ANALYZE").Error; err != nil {
			return err
		}
	}

	t.logger.Info("database maintenance finished",
		zap.String("type", t.app.Config().Database.Type))
	return nil
}

// NewDBMaintenanceTask creates a new DBMaintenanceTask instance
// 配置未设置 maintenance-cron 时任务禁用
func NewDBMaintenanceTask(appContainer *app.App) (Task, error) {
	spec := appContainer.Config().Database.MaintenanceCron
	if spec == "" {
		return nil, nil
	}
	return &DBMaintenanceTask{
		app:      appContainer,
		logger:   appContainer.Logger(),
		cronSpec: spec,
	}, nil
}

// init registers the maintenance task
func init() {
	RegisterWithApp(NewDBMaintenanceTask)
}
