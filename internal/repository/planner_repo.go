package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/6610545011/cn331-project/internal/model"
)

// PlannerRepository 选课计划数据访问接口
type PlannerRepository interface {
	// GetOrCreateByUser 返回用户的计划，首次访问时创建
	GetOrCreateByUser(ctx context.Context, userID string) (*model.Planner, error)
	GetByUser(ctx context.Context, userID string) (*model.Planner, error)
	ListSections(ctx context.Context, plannerID string) ([]model.Section, error)
	AddSection(ctx context.Context, plannerID, sectionID string) error
	RemoveSection(ctx context.Context, plannerID, sectionID string) error
	// ReplaceSections 全量替换计划成员（载入方案场景，跳过逐个校验）
	ReplaceSections(ctx context.Context, plannerID string, sectionIDs []string) error
	// WithLock 在持有该计划咨询锁的事务内执行 fn，
	// 同一计划的"查冲突 + 改成员"序列因此串行化
	WithLock(ctx context.Context, plannerID string, fn func(txRepo *Repository) error) error
}

type plannerRepo struct {
	db *gorm.DB
}

// NewPlannerRepo 创建 PlannerRepository 实例
func NewPlannerRepo(db *gorm.DB) PlannerRepository {
	return &plannerRepo{db: db}
}

func (r *plannerRepo) GetOrCreateByUser(ctx context.Context, userID string) (*model.Planner, error) {
	planner := model.Planner{UserID: userID}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		FirstOrCreate(&planner).Error
	if err != nil {
		// 并发首次访问触发唯一约束时重查一次
		var again model.Planner
		if e2 := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&again).Error; e2 == nil {
			return &again, nil
		}
		return nil, err
	}
	return &planner, nil
}

func (r *plannerRepo) GetByUser(ctx context.Context, userID string) (*model.Planner, error) {
	var planner model.Planner
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&planner).Error
	if err != nil {
		return nil, err
	}
	return &planner, nil
}

func (r *plannerRepo) ListSections(ctx context.Context, plannerID string) ([]model.Section, error) {
	var sections []model.Section
	err := r.db.WithContext(ctx).
		Joins("JOIN planner_sections ps ON ps.section_id = sections.section_id").
		Joins("JOIN courses ON courses.course_id = sections.course_id").
		Where("ps.planner_id = ?", plannerID).
		Preload("Course").
		Preload("Professor").
		Order("courses.code ASC, sections.section_number ASC").
		Find(&sections).Error
	return sections, err
}

func (r *plannerRepo) AddSection(ctx context.Context, plannerID, sectionID string) error {
	// 重复加入按无操作处理
	return r.db.WithContext(ctx).Exec(
		"INSERT INTO planner_sections (planner_id, section_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		plannerID, sectionID,
	).Error
}

func (r *plannerRepo) RemoveSection(ctx context.Context, plannerID, sectionID string) error {
	return r.db.WithContext(ctx).Exec(
		"DELETE FROM planner_sections WHERE planner_id = ? AND section_id = ?",
		plannerID, sectionID,
	).Error
}

func (r *plannerRepo) ReplaceSections(ctx context.Context, plannerID string, sectionIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM planner_sections WHERE planner_id = ?", plannerID).Error; err != nil {
			return err
		}
		for _, sid := range sectionIDs {
			if err := tx.Exec(
				"INSERT INTO planner_sections (planner_id, section_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
				plannerID, sid,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *plannerRepo) WithLock(ctx context.Context, plannerID string, fn func(txRepo *Repository) error) error {
	if plannerID == "" {
		return errors.New("plannerID 不能为空")
	}
	return withAdvisoryLock(r.db.WithContext(ctx), plannerID, fn)
}
