package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/6610545011/cn331-project/internal/dto"
	"github.com/6610545011/cn331-project/internal/model"
	"github.com/6610545011/cn331-project/internal/repository"
)

var (
	// ErrVariantNotFound 方案不存在
	ErrVariantNotFound = errors.New("plan variant not found")
	// ErrVariantNotOwner 方案不属于当前用户
	ErrVariantNotOwner = errors.New("plan variant belongs to another user")
)

// CreditBoundError 保存方案时总学分越出 9-22 硬性区间
// 与加课时的软提示不同，这里是阻断性错误
type CreditBoundError struct {
	Total int
}

func (e *CreditBoundError) Error() string {
	return fmt.Sprintf("total credits must be between %d and %d, current: %d",
		minRecommendedCredits, maxRecommendedCredits, e.Total)
}

// VariantService 计划方案业务接口
type VariantService interface {
	// Create 新建空方案
	Create(ctx context.Context, userID string, req *dto.CreateVariantRequest) (*dto.VariantResponse, error)
	// List 列出用户的全部方案
	List(ctx context.Context, userID string) ([]dto.VariantResponse, error)
	// SaveCurrent 将当前计划快照为新方案，总学分须在 9-22 区间内
	SaveCurrent(ctx context.Context, userID string, req *dto.SaveVariantRequest) (*dto.VariantResponse, error)
	// Load 将方案成员整体载入当前计划
	Load(ctx context.Context, userID, variantID string) (*dto.LoadVariantResponse, error)
	// Delete 删除方案
	Delete(ctx context.Context, userID, variantID string) error
	// AddSection 将班次加入方案
	AddSection(ctx context.Context, userID, variantID, sectionID string) (*dto.AddSectionResponse, error)
	// RemoveSection 从方案移除班次
	RemoveSection(ctx context.Context, userID, variantID, sectionID string) (*dto.RemoveSectionResponse, error)
}

type variantService struct {
	repo    *repository.Repository
	checker *conflictChecker
	logger  *zap.Logger
}

// NewVariantService 创建 VariantService 实例
func NewVariantService(repo *repository.Repository, checker *conflictChecker, logger *zap.Logger) VariantService {
	return &variantService{repo: repo, checker: checker, logger: logger}
}

// resolveOwnedVariant 取方案并校验归属
// 归属校验走用户的计划，未建计划的用户不可能持有任何方案
func (s *variantService) resolveOwnedVariant(ctx context.Context, userID, variantID string) (*model.PlanVariant, error) {
	variant, err := s.repo.PlanVariant.GetByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, fmt.Errorf("查询方案失败: %w", err)
	}

	planner, err := s.repo.Planner.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotOwner
		}
		return nil, fmt.Errorf("获取计划失败: %w", err)
	}
	if variant.PlannerID != planner.PlannerID {
		return nil, ErrVariantNotOwner
	}
	return variant, nil
}

// Create 新建空方案
func (s *variantService) Create(ctx context.Context, userID string, req *dto.CreateVariantRequest) (*dto.VariantResponse, error) {
	planner, err := s.repo.Planner.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("获取计划失败: %w", err)
	}

	variant := &model.PlanVariant{
		PlannerID: planner.PlannerID,
		Name:      req.Name,
	}
	if err := s.repo.PlanVariant.Create(ctx, variant); err != nil {
		return nil, fmt.Errorf("创建方案失败: %w", err)
	}

	return &dto.VariantResponse{
		ID:        variant.PlanVariantID,
		Name:      variant.Name,
		CreatedAt: variant.CreatedAt,
	}, nil
}

// List 列出用户的全部方案（新建在前），附带各自总学分
func (s *variantService) List(ctx context.Context, userID string) ([]dto.VariantResponse, error) {
	planner, err := s.repo.Planner.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []dto.VariantResponse{}, nil
		}
		return nil, fmt.Errorf("获取计划失败: %w", err)
	}

	variants, err := s.repo.PlanVariant.ListByPlanner(ctx, planner.PlannerID)
	if err != nil {
		return nil, fmt.Errorf("查询方案列表失败: %w", err)
	}

	out := make([]dto.VariantResponse, 0, len(variants))
	for i := range variants {
		sections, err := s.repo.PlanVariant.ListSections(ctx, variants[i].PlanVariantID)
		if err != nil {
			return nil, fmt.Errorf("查询方案成员失败: %w", err)
		}
		out = append(out, dto.VariantResponse{
			ID:           variants[i].PlanVariantID,
			Name:         variants[i].Name,
			TotalCredits: totalCredits(sections),
			CreatedAt:    variants[i].CreatedAt,
		})
	}
	return out, nil
}

// SaveCurrent 将当前计划成员快照为新方案
// 总学分必须落在 9-22 区间，越界则拒绝保存；
// 读成员与写快照在计划咨询锁内完成，避免保存到修改中途的状态
func (s *variantService) SaveCurrent(ctx context.Context, userID string, req *dto.SaveVariantRequest) (*dto.VariantResponse, error) {
	planner, err := s.repo.Planner.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlannerNotFound
		}
		return nil, fmt.Errorf("获取计划失败: %w", err)
	}

	var resp *dto.VariantResponse
	err = s.repo.Planner.WithLock(ctx, planner.PlannerID, func(txRepo *repository.Repository) error {
		members, err := txRepo.Planner.ListSections(ctx, planner.PlannerID)
		if err != nil {
			return err
		}

		total := totalCredits(members)
		if total < minRecommendedCredits || total > maxRecommendedCredits {
			return &CreditBoundError{Total: total}
		}

		variant := &model.PlanVariant{
			PlannerID: planner.PlannerID,
			Name:      req.Name,
		}
		if err := txRepo.PlanVariant.Create(ctx, variant); err != nil {
			return err
		}

		ids := make([]string, len(members))
		for i := range members {
			ids[i] = members[i].SectionID
		}
		if err := txRepo.PlanVariant.SetSections(ctx, variant.PlanVariantID, ids); err != nil {
			return err
		}

		resp = &dto.VariantResponse{
			ID:           variant.PlanVariantID,
			Name:         variant.Name,
			TotalCredits: total,
			CreatedAt:    variant.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("当前计划已保存为方案",
		zap.String("user_id", userID),
		zap.String("variant_id", resp.ID),
		zap.Int("total_credits", resp.TotalCredits))
	return resp, nil
}

// Load 将方案成员整体载入当前计划
// 载入是全量替换：方案保存时已通过校验，成员间不再逐个判冲突
func (s *variantService) Load(ctx context.Context, userID, variantID string) (*dto.LoadVariantResponse, error) {
	variant, err := s.resolveOwnedVariant(ctx, userID, variantID)
	if err != nil {
		return nil, err
	}

	sections, err := s.repo.PlanVariant.ListSections(ctx, variant.PlanVariantID)
	if err != nil {
		return nil, fmt.Errorf("查询方案成员失败: %w", err)
	}

	ids := make([]string, len(sections))
	for i := range sections {
		ids[i] = sections[i].SectionID
	}

	err = s.repo.Planner.WithLock(ctx, variant.PlannerID, func(txRepo *repository.Repository) error {
		return txRepo.Planner.ReplaceSections(ctx, variant.PlannerID, ids)
	})
	if err != nil {
		return nil, fmt.Errorf("载入方案失败: %w", err)
	}

	s.logger.Info("方案已载入当前计划",
		zap.String("user_id", userID),
		zap.String("variant_id", variantID),
		zap.Int("section_count", len(ids)))

	return &dto.LoadVariantResponse{
		VariantID:    variantID,
		TotalCredits: totalCredits(sections),
	}, nil
}

// Delete 删除方案（不影响当前计划）
func (s *variantService) Delete(ctx context.Context, userID, variantID string) error {
	variant, err := s.resolveOwnedVariant(ctx, userID, variantID)
	if err != nil {
		return err
	}
	if err := s.repo.PlanVariant.Delete(ctx, variant.PlanVariantID); err != nil {
		return fmt.Errorf("删除方案失败: %w", err)
	}
	return nil
}

// AddSection 将班次加入方案，冲突判断与当前计划同一套规则
func (s *variantService) AddSection(ctx context.Context, userID, variantID, sectionID string) (*dto.AddSectionResponse, error) {
	variant, err := s.resolveOwnedVariant(ctx, userID, variantID)
	if err != nil {
		return nil, err
	}

	section, err := s.repo.Section.GetByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}

	var resp *dto.AddSectionResponse
	err = s.repo.PlanVariant.WithLock(ctx, variant.PlanVariantID, func(txRepo *repository.Repository) error {
		members, err := txRepo.PlanVariant.ListSections(ctx, variant.PlanVariantID)
		if err != nil {
			return err
		}

		for i := range members {
			if members[i].SectionID == sectionID {
				resp = &dto.AddSectionResponse{
					SectionID:    sectionID,
					TotalCredits: totalCredits(members),
				}
				return nil
			}
		}

		result, err := s.checker.check(ctx, txRepo, members, section)
		if err != nil {
			return err
		}

		if err := txRepo.PlanVariant.AddSection(ctx, variant.PlanVariantID, sectionID); err != nil {
			return err
		}

		resp = &dto.AddSectionResponse{
			SectionID:    sectionID,
			TotalCredits: result.TotalCredits,
			Warning:      result.Warning,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// RemoveSection 从方案移除班次，移除不存在的成员为无操作
func (s *variantService) RemoveSection(ctx context.Context, userID, variantID, sectionID string) (*dto.RemoveSectionResponse, error) {
	variant, err := s.resolveOwnedVariant(ctx, userID, variantID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.PlanVariant.RemoveSection(ctx, variant.PlanVariantID, sectionID); err != nil {
		return nil, fmt.Errorf("移除班次失败: %w", err)
	}

	members, err := s.repo.PlanVariant.ListSections(ctx, variant.PlanVariantID)
	if err != nil {
		return nil, fmt.Errorf("查询方案成员失败: %w", err)
	}

	return &dto.RemoveSectionResponse{
		SectionID:    sectionID,
		TotalCredits: totalCredits(members),
	}, nil
}
