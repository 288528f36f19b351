package service

import (
	"go.uber.org/zap"

	"github.com/6610545011/cn331-project/internal/repository"
	"github.com/6610545011/cn331-project/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Planner PlannerService
	Variant VariantService
	Section SectionService
	Export  ExportService
}

// NewService 创建 Service 聚合
// cache 可以为 nil，此时冲突检测直查数据库、不走占用缓存
func NewService(repo *repository.Repository, cache *redis.Client, logger *zap.Logger) *Service {
	checker := newConflictChecker(cache, logger)
	return &Service{
		Planner: NewPlannerService(repo, checker, logger),
		Variant: NewVariantService(repo, checker, logger),
		Section: NewSectionService(repo, logger),
		Export:  NewExportService(repo, logger),
	}
}
