package model

// SectionSchedule 班次上课时间表 — 对应 section_schedules
// 一个 Section 可有多条记录（如周一、周三各一次），
// day_of_week: 0=周一 .. 6=周日
type SectionSchedule struct {
	SectionScheduleID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"section_schedule_id"`
	SectionID         string `gorm:"type:uuid;not null"                             json:"section_id"`
	DayOfWeek         int    `gorm:"type:smallint;not null"                         json:"day_of_week"`
	StartTime         string `gorm:"type:time;not null"                             json:"start_time"`
	EndTime           string `gorm:"type:time;not null"                             json:"end_time"`
	BaseModel

	// 关联
	Section *Section `gorm:"foreignKey:SectionID;references:SectionID" json:"section,omitempty"`
}

// TableName 指定表名
func (SectionSchedule) TableName() string { return "section_schedules" }

// Overlaps 判断两条记录的 [start,end) 区间是否重叠（同日前提下）
// 时间先归一化为分钟数，避免 "08:00" 与 "08:00:00" 的字符串比较陷阱
func (s *SectionSchedule) Overlaps(other *SectionSchedule) bool {
	sStart, err := MinuteOfDay(s.StartTime)
	if err != nil {
		return false
	}
	sEnd, err := MinuteOfDay(s.EndTime)
	if err != nil {
		return false
	}
	oStart, err := MinuteOfDay(other.StartTime)
	if err != nil {
		return false
	}
	oEnd, err := MinuteOfDay(other.EndTime)
	if err != nil {
		return false
	}
	return !(sEnd <= oStart || sStart >= oEnd)
}
