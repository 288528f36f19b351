package errors

import "fmt"

// ScheduleOverlapError 同一班次同一天的上课时间与已有记录重叠
// 由 SectionScheduleRepository 在写入事务内检出，消息需指明冲突区间
type ScheduleOverlapError struct {
	Start string
	End   string
}

func (e *ScheduleOverlapError) Error() string {
	return fmt.Sprintf("overlaps with existing schedule %s-%s", e.Start, e.End)
}
