package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/6610545011/cn331-project/internal/model"
)

// SectionRepository 开课班次数据访问接口
type SectionRepository interface {
	GetByID(ctx context.Context, id string) (*model.Section, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Section, error)
	// Search 按课程代码或名称模糊检索班次
	Search(ctx context.Context, query string, limit int) ([]model.Section, error)
}

type sectionRepo struct {
	db *gorm.DB
}

// NewSectionRepo 创建 SectionRepository 实例
func NewSectionRepo(db *gorm.DB) SectionRepository {
	return &sectionRepo{db: db}
}

func (r *sectionRepo) GetByID(ctx context.Context, id string) (*model.Section, error) {
	var section model.Section
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Professor").
		Where("section_id = ?", id).
		First(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *sectionRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Section, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var sections []model.Section
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Professor").
		Where("section_id IN ?", ids).
		Find(&sections).Error
	return sections, err
}

func (r *sectionRepo) Search(ctx context.Context, query string, limit int) ([]model.Section, error) {
	var sections []model.Section
	db := r.db.WithContext(ctx).
		Joins("JOIN courses ON courses.course_id = sections.course_id")

	if query != "" {
		pattern := "%" + query + "%"
		db = db.Where("courses.code ILIKE ? OR courses.name ILIKE ?", pattern, pattern)
	}

	err := db.Preload("Course").
		Preload("Professor").
		Order("courses.code ASC, sections.section_number ASC").
		Limit(limit).
		Find(&sections).Error
	return sections, err
}
