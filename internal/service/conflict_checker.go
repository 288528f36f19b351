package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/6610545011/cn331-project/internal/model"
	"github.com/6610545011/cn331-project/internal/repository"
	"github.com/6610545011/cn331-project/pkg/redis"
)

// 推荐学分区间；保存方案时越界为硬拒绝，加课时仅给出提示
const (
	minRecommendedCredits = 9
	maxRecommendedCredits = 22
)

// DayOverlap 某一天上的冲突槽位
type DayOverlap struct {
	Day   int   `json:"day"`
	Slots []int `json:"slots"`
}

// ScheduleConflictError 候选班次与计划成员的占用槽位相交
// 消息逐天列出全部冲突，而非只报第一处
type ScheduleConflictError struct {
	Overlaps []DayOverlap
}

func (e *ScheduleConflictError) Error() string {
	parts := make([]string, 0, len(e.Overlaps))
	for _, o := range e.Overlaps {
		parts = append(parts, fmt.Sprintf("day %d overlapping slots: %v", o.Day, o.Slots))
	}
	return strings.Join(parts, " ; ")
}

// conflictCheckResult 无冲突时的核算结果
type conflictCheckResult struct {
	TotalCredits int
	Warning      string
}

// conflictChecker 冲突检测器
// 占用聚合走 Redis 缓存（键含 schedule_version），缓存不可用时直查数据库
type conflictChecker struct {
	cache  *redis.Client
	logger *zap.Logger
}

func newConflictChecker(cache *redis.Client, logger *zap.Logger) *conflictChecker {
	return &conflictChecker{cache: cache, logger: logger}
}

// sectionOccupancy 取单个班次按天的占用槽位集合
func (c *conflictChecker) sectionOccupancy(ctx context.Context, r *repository.Repository, section *model.Section) (map[int]slotSet, error) {
	if c.cache != nil {
		if cached, ok := c.cache.GetOccupancy(ctx, section.SectionID, section.ScheduleVersion); ok {
			return occupancyFromCache(cached), nil
		}
	}

	schedules, err := r.SectionSchedule.ListBySection(ctx, section.SectionID)
	if err != nil {
		return nil, err
	}
	occ := occupancyOf(schedules)

	if c.cache != nil {
		flat := make(map[int][]int, daysPerWeek)
		for day, set := range occ {
			flat[day] = set.sorted()
		}
		c.cache.SetOccupancy(ctx, section.SectionID, section.ScheduleVersion, flat)
	}
	return occ, nil
}

// occupancyFromCache 还原缓存中的扁平占用表
// 缓存内容可能被外部写坏，越界的天直接丢弃
func occupancyFromCache(cached map[int][]int) map[int]slotSet {
	occ := emptyOccupancy()
	for day, slots := range cached {
		if day < 0 || day >= daysPerWeek {
			continue
		}
		for _, idx := range slots {
			occ[day][idx] = struct{}{}
		}
	}
	return occ
}

// planOccupancy 聚合一组成员班次的占用表（集合并，顺序无关）
func (c *conflictChecker) planOccupancy(ctx context.Context, r *repository.Repository, members []model.Section) (map[int]slotSet, error) {
	occupied := emptyOccupancy()
	for i := range members {
		occ, err := c.sectionOccupancy(ctx, r, &members[i])
		if err != nil {
			return nil, err
		}
		mergeOccupancy(occupied, occ)
	}
	return occupied, nil
}

// check 判断候选班次能否加入成员集合
// 任一天出现槽位相交即返回 *ScheduleConflictError（硬失败）；
// 无冲突时核算加入后的总学分，越界时只附带提示字符串
func (c *conflictChecker) check(ctx context.Context, r *repository.Repository, members []model.Section, candidate *model.Section) (*conflictCheckResult, error) {
	occupied, err := c.planOccupancy(ctx, r, members)
	if err != nil {
		return nil, err
	}
	newSlots, err := c.sectionOccupancy(ctx, r, candidate)
	if err != nil {
		return nil, err
	}

	var overlaps []DayOverlap
	for day := 0; day < daysPerWeek; day++ {
		if len(newSlots[day]) == 0 {
			continue
		}
		if inter := occupied[day].intersect(newSlots[day]); len(inter) > 0 {
			overlaps = append(overlaps, DayOverlap{Day: day, Slots: inter.sorted()})
		}
	}
	if len(overlaps) > 0 {
		return nil, &ScheduleConflictError{Overlaps: overlaps}
	}

	total := totalCredits(members) + candidate.CreditValue()

	var warning string
	if total < minRecommendedCredits || total > maxRecommendedCredits {
		warning = fmt.Sprintf("total credits after adding: %d (recommended %d-%d)",
			total, minRecommendedCredits, maxRecommendedCredits)
	}

	return &conflictCheckResult{TotalCredits: total, Warning: warning}, nil
}

// totalCredits 成员班次所属课程学分之和，课程引用缺失按 0 计
func totalCredits(sections []model.Section) int {
	total := 0
	for i := range sections {
		total += sections[i].CreditValue()
	}
	return total
}
