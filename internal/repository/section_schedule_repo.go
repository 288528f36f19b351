package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/6610545011/cn331-project/internal/model"
	pkgerrors "github.com/6610545011/cn331-project/pkg/errors"
)

// SectionScheduleRepository 班次上课时间数据访问接口
type SectionScheduleRepository interface {
	ListBySection(ctx context.Context, sectionID string) ([]model.SectionSchedule, error)
	ListBySections(ctx context.Context, sectionIDs []string) ([]model.SectionSchedule, error)
	// CreateExclusive 在单个事务内完成同班次同日的重叠复检并插入，
	// 已有行加 FOR UPDATE 锁，并发插入同一 (section, day) 会串行化；
	// 检出重叠时返回 *pkgerrors.ScheduleOverlapError
	CreateExclusive(ctx context.Context, entry *model.SectionSchedule) error
}

type sectionScheduleRepo struct {
	db *gorm.DB
}

// NewSectionScheduleRepo 创建 SectionScheduleRepository 实例
func NewSectionScheduleRepo(db *gorm.DB) SectionScheduleRepository {
	return &sectionScheduleRepo{db: db}
}

func (r *sectionScheduleRepo) ListBySection(ctx context.Context, sectionID string) ([]model.SectionSchedule, error) {
	var schedules []model.SectionSchedule
	err := r.db.WithContext(ctx).
		Where("section_id = ?", sectionID).
		Order("day_of_week ASC, start_time ASC").
		Find(&schedules).Error
	return schedules, err
}

func (r *sectionScheduleRepo) ListBySections(ctx context.Context, sectionIDs []string) ([]model.SectionSchedule, error) {
	if len(sectionIDs) == 0 {
		return nil, nil
	}
	var schedules []model.SectionSchedule
	err := r.db.WithContext(ctx).
		Where("section_id IN ?", sectionIDs).
		Order("section_id ASC, day_of_week ASC, start_time ASC").
		Find(&schedules).Error
	return schedules, err
}

func (r *sectionScheduleRepo) CreateExclusive(ctx context.Context, entry *model.SectionSchedule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []model.SectionSchedule
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("section_id = ? AND day_of_week = ?", entry.SectionID, entry.DayOfWeek).
			Find(&existing).Error; err != nil {
			return err
		}

		for i := range existing {
			if entry.Overlaps(&existing[i]) {
				return &pkgerrors.ScheduleOverlapError{
					Start: existing[i].StartTime,
					End:   existing[i].EndTime,
				}
			}
		}

		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		// 版本号自增，使该班次的占用缓存失效
		return tx.Model(&model.Section{}).
			Where("section_id = ?", entry.SectionID).
			UpdateColumn("schedule_version", gorm.Expr("schedule_version + 1")).Error
	})
}
