package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Section         SectionRepository
	SectionSchedule SectionScheduleRepository
	Planner         PlannerRepository
	PlanVariant     PlanVariantRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Section:         NewSectionRepo(db),
		SectionSchedule: NewSectionScheduleRepo(db),
		Planner:         NewPlannerRepo(db),
		PlanVariant:     NewPlanVariantRepo(db),
	}
}

// withAdvisoryLock 在单个事务内持有以 key 哈希出的 Postgres 咨询锁执行 fn
// fn 收到绑定事务连接的 Repository，锁随事务提交/回滚自动释放
func withAdvisoryLock(db *gorm.DB, key string, fn func(txRepo *Repository) error) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
			return err
		}
		return fn(NewRepository(tx))
	})
}
