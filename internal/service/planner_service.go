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
	// ErrPlannerNotFound 用户尚未创建计划
	ErrPlannerNotFound = errors.New("planner not found")
	// ErrSectionNotFound 班次不存在
	ErrSectionNotFound = errors.New("section not found")
	// ErrScheduleInvalidTime 上课时间无法解析
	ErrScheduleInvalidTime = errors.New("invalid schedule time")
	// ErrScheduleEndNotAfterStart 结束时间未晚于开始时间
	ErrScheduleEndNotAfterStart = errors.New("end_time must be after start_time")
	// ErrScheduleOutsideHours 上课时间落在网格支持的时段之外
	ErrScheduleOutsideHours = errors.New("times must be within planner supported hours")
	// ErrScheduleNotAligned 上课时间未对齐 30 分钟槽位
	ErrScheduleNotAligned = errors.New("start and end times must align to 30-minute slots")
	// ErrScheduleSlotOutOfBounds 槽位坐标超出当日网格
	ErrScheduleSlotOutOfBounds = errors.New("slot range out of bounds")
)

// validateScheduleTimes 上课时间四步校验，失败即止：
// 1. 可解析；2. 结束晚于开始；3. 落在网格时段内；4. 对齐 30 分钟槽位。
// 只约束起点不早于 08:00，不设上界，晚间课程由槽位换算自行裁剪
func validateScheduleTimes(start, end string) error {
	startMin, err := model.MinuteOfDay(start)
	if err != nil {
		return ErrScheduleInvalidTime
	}
	endMin, err := model.MinuteOfDay(end)
	if err != nil {
		return ErrScheduleInvalidTime
	}
	if endMin <= startMin {
		return ErrScheduleEndNotAfterStart
	}
	if startMin-slotStartMinute < 0 || endMin-slotStartMinute <= 0 {
		return ErrScheduleOutsideHours
	}
	if (startMin-slotStartMinute)%slotDurationMinutes != 0 ||
		(endMin-slotStartMinute)%slotDurationMinutes != 0 {
		return ErrScheduleNotAligned
	}
	return nil
}

// PlannerService 当前计划业务接口
type PlannerService interface {
	// AddSection 将班次加入当前计划，冲突为硬失败
	AddSection(ctx context.Context, userID, sectionID string) (*dto.AddSectionResponse, error)
	// RemoveSection 从当前计划移除班次
	RemoveSection(ctx context.Context, userID, sectionID string) (*dto.RemoveSectionResponse, error)
	// GetTimetable 渲染当前计划的课程表视图
	GetTimetable(ctx context.Context, userID string) (*dto.TimetableResponse, error)
	// AddSchedule 手动为班次登记一段上课时间
	AddSchedule(ctx context.Context, req *dto.CreateScheduleRequest) (*dto.CreateScheduleResponse, error)
}

type plannerService struct {
	repo    *repository.Repository
	checker *conflictChecker
	logger  *zap.Logger
}

// NewPlannerService 创建 PlannerService 实例
func NewPlannerService(repo *repository.Repository, checker *conflictChecker, logger *zap.Logger) PlannerService {
	return &plannerService{repo: repo, checker: checker, logger: logger}
}

// AddSection 将班次加入当前计划
// 查冲突与写成员在计划咨询锁内完成，同一计划的并发加课串行化；
// 冲突为硬失败，学分越界仅在响应中附带提示
func (s *plannerService) AddSection(ctx context.Context, userID, sectionID string) (*dto.AddSectionResponse, error) {
	planner, err := s.repo.Planner.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("获取计划失败: %w", err)
	}

	section, err := s.repo.Section.GetByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}

	var resp *dto.AddSectionResponse
	err = s.repo.Planner.WithLock(ctx, planner.PlannerID, func(txRepo *repository.Repository) error {
		members, err := txRepo.Planner.ListSections(ctx, planner.PlannerID)
		if err != nil {
			return err
		}

		// 重复加入按无操作处理，避免候选与自身判交
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

		if err := txRepo.Planner.AddSection(ctx, planner.PlannerID, sectionID); err != nil {
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

	s.logger.Info("班次已加入计划",
		zap.String("user_id", userID),
		zap.String("section_id", sectionID),
		zap.Int("total_credits", resp.TotalCredits))
	return resp, nil
}

// RemoveSection 从当前计划移除班次
// 移除不在计划内的班次为无操作，不报错
func (s *plannerService) RemoveSection(ctx context.Context, userID, sectionID string) (*dto.RemoveSectionResponse, error) {
	planner, err := s.repo.Planner.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlannerNotFound
		}
		return nil, fmt.Errorf("获取计划失败: %w", err)
	}

	if err := s.repo.Planner.RemoveSection(ctx, planner.PlannerID, sectionID); err != nil {
		return nil, fmt.Errorf("移除班次失败: %w", err)
	}

	members, err := s.repo.Planner.ListSections(ctx, planner.PlannerID)
	if err != nil {
		return nil, fmt.Errorf("查询计划成员失败: %w", err)
	}

	return &dto.RemoveSectionResponse{
		SectionID:    sectionID,
		TotalCredits: totalCredits(members),
	}, nil
}

// GetTimetable 渲染当前计划的课程表视图
// 网格单元按 CSS Grid 坐标输出：第 1 列是日期标签，
// 槽位 i 落在第 i+2 列；未排课的班次只出现在课程清单里
func (s *plannerService) GetTimetable(ctx context.Context, userID string) (*dto.TimetableResponse, error) {
	planner, err := s.repo.Planner.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("获取计划失败: %w", err)
	}

	members, err := s.repo.Planner.ListSections(ctx, planner.PlannerID)
	if err != nil {
		return nil, fmt.Errorf("查询计划成员失败: %w", err)
	}

	ids := make([]string, len(members))
	byID := make(map[string]*model.Section, len(members))
	for i := range members {
		ids[i] = members[i].SectionID
		byID[members[i].SectionID] = &members[i]
	}

	schedules, err := s.repo.SectionSchedule.ListBySections(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("查询上课时间失败: %w", err)
	}

	items := make([]dto.TimetableItem, 0, len(schedules))
	for _, sc := range schedules {
		section, ok := byID[sc.SectionID]
		if !ok {
			continue
		}
		slots := slotRange(sc.StartTime, sc.EndTime)
		if len(slots) == 0 {
			continue
		}
		sorted := slots.sorted()
		startSlot := sorted[0]

		var courseCode, courseName string
		if section.Course != nil {
			courseCode = section.Course.Code
			courseName = section.Course.Name
		}
		var professor string
		if section.Professor != nil {
			professor = section.Professor.Name
		}

		items = append(items, dto.TimetableItem{
			CourseCode:    courseCode,
			CourseName:    courseName,
			SectionNumber: section.SectionNumber,
			Room:          section.Room,
			Professor:     professor,
			Day:           sc.DayOfWeek,
			StartCol:      startSlot + 2,
			SpanCols:      len(sorted),
			Color:         pastelColor(fmt.Sprintf("%s-%s-%d", courseCode, section.SectionNumber, sc.DayOfWeek)),
		})
	}

	rows := make([]dto.TimetableCourseRow, 0, len(members))
	for i := range members {
		m := &members[i]
		row := dto.TimetableCourseRow{
			SectionID:     m.SectionID,
			SectionNumber: m.SectionNumber,
			Credit:        m.CreditValue(),
		}
		if m.Course != nil {
			row.CourseCode = m.Course.Code
			row.CourseName = m.Course.Name
		}
		if m.Professor != nil {
			row.Professor = m.Professor.Name
		}
		rows = append(rows, row)
	}

	return &dto.TimetableResponse{
		Items:        items,
		CourseRows:   rows,
		TotalCredits: totalCredits(members),
		Days:         dayNames[:],
		SlotLabels:   slotLabels(),
	}, nil
}

// AddSchedule 手动为班次登记一段上课时间
// 槽位坐标先换算回挂钟时间再走统一校验，
// 重叠复检由仓储在写入事务内完成
func (s *plannerService) AddSchedule(ctx context.Context, req *dto.CreateScheduleRequest) (*dto.CreateScheduleResponse, error) {
	if _, err := s.repo.Section.GetByID(ctx, req.SectionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}

	day, startSlot, span := *req.DayOfWeek, *req.StartSlot, *req.Span
	if startSlot >= slotsPerDay || startSlot+span > slotsPerDay {
		return nil, ErrScheduleSlotOutOfBounds
	}

	startTime := model.ClockOfMinute(slotStartMinute + startSlot*slotDurationMinutes)
	endTime := model.ClockOfMinute(slotStartMinute + (startSlot+span)*slotDurationMinutes)

	if err := validateScheduleTimes(startTime, endTime); err != nil {
		return nil, err
	}

	entry := &model.SectionSchedule{
		SectionID: req.SectionID,
		DayOfWeek: day,
		StartTime: startTime,
		EndTime:   endTime,
	}
	if err := s.repo.SectionSchedule.CreateExclusive(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("上课时间已登记",
		zap.String("section_id", req.SectionID),
		zap.Int("day", day),
		zap.String("start", startTime),
		zap.String("end", endTime))

	return &dto.CreateScheduleResponse{
		ScheduleID: entry.SectionScheduleID,
		DayOfWeek:  day,
		StartTime:  startTime,
		EndTime:    endTime,
	}, nil
}
