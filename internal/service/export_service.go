package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/6610545011/cn331-project/internal/model"
	"github.com/6610545011/cn331-project/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoSchedules  = errors.New("当前计划没有可导出的上课时间")
	ErrExportBadFormat    = errors.New("unsupported export format")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// 导出格式标识
const (
	ExportFormatXLSX = "xlsx"
	ExportFormatICS  = "ics"
)

// iCalendar RRULE 的星期代码，下标对齐 day_of_week（0=周一）
var icsByDay = [daysPerWeek]string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

// ExportService 课程表导出业务接口
//
// 设计说明：
//   - xlsx：一张网格 Sheet，行为槽位、列为星期，供打印
//   - ics：每条上课时间一个 VEVENT，带 FREQ=WEEKLY 周期规则，供日历订阅
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportTimetable 导出当前计划的课程表
	// 返回值：buf（文件内容）, filename（建议文件名）, error
	ExportTimetable(ctx context.Context, userID, format string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ExportTimetable 导出当前计划的课程表
// 返回值：buf（文件内容）, filename（建议文件名）, error
func (s *exportService) ExportTimetable(ctx context.Context, userID, format string) (*bytes.Buffer, string, error) {
	if format != ExportFormatXLSX && format != ExportFormatICS {
		return nil, "", ErrExportBadFormat
	}

	planner, err := s.repo.Planner.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrExportNoSchedules
		}
		s.logger.Error("查询当前计划失败", zap.Error(err))
		return nil, "", err
	}

	members, err := s.repo.Planner.ListSections(ctx, planner.PlannerID)
	if err != nil {
		s.logger.Error("查询计划成员失败", zap.Error(err))
		return nil, "", err
	}

	ids := make([]string, len(members))
	byID := make(map[string]*model.Section, len(members))
	for i := range members {
		ids[i] = members[i].SectionID
		byID[members[i].SectionID] = &members[i]
	}

	schedules, err := s.repo.SectionSchedule.ListBySections(ctx, ids)
	if err != nil {
		s.logger.Error("查询上课时间失败", zap.Error(err))
		return nil, "", err
	}
	if len(schedules) == 0 {
		return nil, "", ErrExportNoSchedules
	}

	switch format {
	case ExportFormatICS:
		return s.renderICS(schedules, byID)
	default:
		return s.renderXLSX(schedules, byID)
	}
}

// renderXLSX 生成网格课程表：行为 24 个槽位、列为周一至周日
func (s *exportService) renderXLSX(schedules []model.SectionSchedule, byID map[string]*model.Section) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Timetable"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 10)
	for d := 0; d < daysPerWeek; d++ {
		f.SetColWidth(sheetName, colName(1+d), colName(1+d), 22)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 表头：A1 留白，B1-H1 为星期
	f.SetCellStyle(sheetName, cell("A", 1), cell(colName(daysPerWeek), 1), headerStyle)
	for d := 0; d < daysPerWeek; d++ {
		f.SetCellValue(sheetName, cell(colName(1+d), 1), dayNames[d])
	}

	// 行头：每个槽位的起始时间
	for i := 0; i < slotsPerDay; i++ {
		f.SetCellValue(sheetName, cell("A", 2+i), slotClock(i))
	}

	// 单元格：班次占用的每个槽位写入课程文本
	for _, sc := range schedules {
		section, ok := byID[sc.SectionID]
		if !ok {
			continue
		}
		text := cellText(section)
		for slot := range slotRange(sc.StartTime, sc.EndTime) {
			f.SetCellValue(sheetName, cell(colName(1+sc.DayOfWeek), 2+slot), text)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, "timetable.xlsx", nil
}

// renderICS 生成 iCalendar：每条上课时间一个按周重复的事件
func (s *exportService) renderICS(schedules []model.SectionSchedule, byID map[string]*model.Section) (*bytes.Buffer, string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//cn331-planner//timetable//EN")

	now := time.Now()
	for _, sc := range schedules {
		section, ok := byID[sc.SectionID]
		if !ok {
			continue
		}
		if sc.DayOfWeek < 0 || sc.DayOfWeek >= daysPerWeek {
			continue
		}
		startMin, err := model.MinuteOfDay(sc.StartTime)
		if err != nil {
			continue
		}
		endMin, err := model.MinuteOfDay(sc.EndTime)
		if err != nil || endMin <= startMin {
			continue
		}

		day := nextWeekday(now, sc.DayOfWeek)
		start := time.Date(day.Year(), day.Month(), day.Day(), startMin/60, startMin%60, 0, 0, now.Location())
		end := time.Date(day.Year(), day.Month(), day.Day(), endMin/60, endMin%60, 0, 0, now.Location())

		event := cal.AddEvent(fmt.Sprintf("%s-%d@cn331-planner", sc.SectionScheduleID, sc.DayOfWeek))
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(cellText(section))
		if section.Room != "" {
			event.SetLocation(section.Room)
		}
		event.AddRrule("FREQ=WEEKLY;BYDAY=" + icsByDay[sc.DayOfWeek])
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, "timetable.ics", nil
}

// cellText 课程表单元格/事件标题文本
func cellText(section *model.Section) string {
	code := "?"
	if section.Course != nil {
		code = section.Course.Code
	}
	return fmt.Sprintf("%s Sec %s", code, section.SectionNumber)
}

// nextWeekday 从 from 起（含当天）最近一个指定星期的日期，day 0=周一
func nextWeekday(from time.Time, day int) time.Time {
	// time.Weekday 以周日为 0，先换算到周一为 0 的编号
	current := (int(from.Weekday()) + 6) % 7
	delta := (day - current + daysPerWeek) % daysPerWeek
	return from.AddDate(0, 0, delta)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
