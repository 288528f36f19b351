package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/6610545011/cn331-project/internal/dto"
	"github.com/6610545011/cn331-project/internal/repository"
)

// 检索结果数量上限
const sectionSearchLimit = 20

// SectionService 班次检索业务接口
type SectionService interface {
	// Search 按课程代码或名称模糊检索班次
	Search(ctx context.Context, query string) ([]dto.SectionSearchResult, error)
}

type sectionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSectionService 创建 SectionService 实例
func NewSectionService(repo *repository.Repository, logger *zap.Logger) SectionService {
	return &sectionService{repo: repo, logger: logger}
}

// Search 按课程代码或名称模糊检索班次，空查询返回头部若干条
func (s *sectionService) Search(ctx context.Context, query string) ([]dto.SectionSearchResult, error) {
	sections, err := s.repo.Section.Search(ctx, query, sectionSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("检索班次失败: %w", err)
	}

	out := make([]dto.SectionSearchResult, 0, len(sections))
	for i := range sections {
		sec := &sections[i]
		var code, name string
		if sec.Course != nil {
			code = sec.Course.Code
			name = sec.Course.Name
		}
		out = append(out, dto.SectionSearchResult{
			ID:            sec.SectionID,
			CourseCode:    code,
			CourseName:    name,
			SectionNumber: sec.SectionNumber,
			Credit:        sec.CreditValue(),
			Label:         fmt.Sprintf("%s Sec %s - %s", code, sec.SectionNumber, name),
		})
	}
	return out, nil
}
