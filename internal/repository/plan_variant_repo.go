package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/6610545011/cn331-project/internal/model"
)

// PlanVariantRepository 计划方案数据访问接口
type PlanVariantRepository interface {
	Create(ctx context.Context, variant *model.PlanVariant) error
	GetByID(ctx context.Context, id string) (*model.PlanVariant, error)
	ListByPlanner(ctx context.Context, plannerID string) ([]model.PlanVariant, error)
	Delete(ctx context.Context, id string) error
	ListSections(ctx context.Context, variantID string) ([]model.Section, error)
	AddSection(ctx context.Context, variantID, sectionID string) error
	RemoveSection(ctx context.Context, variantID, sectionID string) error
	// SetSections 全量写入方案成员（保存当前计划为方案时使用）
	SetSections(ctx context.Context, variantID string, sectionIDs []string) error
	// WithLock 在持有该方案咨询锁的事务内执行 fn
	WithLock(ctx context.Context, variantID string, fn func(txRepo *Repository) error) error
}

type planVariantRepo struct {
	db *gorm.DB
}

// NewPlanVariantRepo 创建 PlanVariantRepository 实例
func NewPlanVariantRepo(db *gorm.DB) PlanVariantRepository {
	return &planVariantRepo{db: db}
}

func (r *planVariantRepo) Create(ctx context.Context, variant *model.PlanVariant) error {
	return r.db.WithContext(ctx).Create(variant).Error
}

func (r *planVariantRepo) GetByID(ctx context.Context, id string) (*model.PlanVariant, error) {
	var variant model.PlanVariant
	err := r.db.WithContext(ctx).
		Where("plan_variant_id = ?", id).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *planVariantRepo) ListByPlanner(ctx context.Context, plannerID string) ([]model.PlanVariant, error) {
	var variants []model.PlanVariant
	err := r.db.WithContext(ctx).
		Where("planner_id = ?", plannerID).
		Order("created_at DESC").
		Find(&variants).Error
	return variants, err
}

func (r *planVariantRepo) Delete(ctx context.Context, id string) error {
	// 硬删除：方案是快照，无审计需求，级联清空成员表
	return r.db.WithContext(ctx).
		Where("plan_variant_id = ?", id).
		Delete(&model.PlanVariant{}).Error
}

func (r *planVariantRepo) ListSections(ctx context.Context, variantID string) ([]model.Section, error) {
	var sections []model.Section
	err := r.db.WithContext(ctx).
		Joins("JOIN plan_variant_sections pvs ON pvs.section_id = sections.section_id").
		Joins("JOIN courses ON courses.course_id = sections.course_id").
		Where("pvs.plan_variant_id = ?", variantID).
		Preload("Course").
		Preload("Professor").
		Order("courses.code ASC, sections.section_number ASC").
		Find(&sections).Error
	return sections, err
}

func (r *planVariantRepo) AddSection(ctx context.Context, variantID, sectionID string) error {
	return r.db.WithContext(ctx).Exec(
		"INSERT INTO plan_variant_sections (plan_variant_id, section_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		variantID, sectionID,
	).Error
}

func (r *planVariantRepo) RemoveSection(ctx context.Context, variantID, sectionID string) error {
	return r.db.WithContext(ctx).Exec(
		"DELETE FROM plan_variant_sections WHERE plan_variant_id = ? AND section_id = ?",
		variantID, sectionID,
	).Error
}

func (r *planVariantRepo) SetSections(ctx context.Context, variantID string, sectionIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM plan_variant_sections WHERE plan_variant_id = ?", variantID).Error; err != nil {
			return err
		}
		for _, sid := range sectionIDs {
			if err := tx.Exec(
				"INSERT INTO plan_variant_sections (plan_variant_id, section_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
				variantID, sid,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *planVariantRepo) WithLock(ctx context.Context, variantID string, fn func(txRepo *Repository) error) error {
	if variantID == "" {
		return errors.New("variantID 不能为空")
	}
	return withAdvisoryLock(r.db.WithContext(ctx), variantID, fn)
}
