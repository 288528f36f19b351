package model

// Section 开课班次表 — 对应 sections
// schedule_version 随每次 SectionSchedule 写入自增，
// 作为占用缓存键的一部分，旧版本缓存自然失效
type Section struct {
	SectionID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"section_id"`
	CourseID        string  `gorm:"type:uuid;not null"                             json:"course_id"`
	ProfessorID     *string `gorm:"type:uuid"                                      json:"professor_id,omitempty"`
	SectionNumber   string  `gorm:"type:varchar(10);not null"                      json:"section_number"`
	Room            string  `gorm:"type:varchar(100)"                              json:"room,omitempty"`
	ScheduleVersion int     `gorm:"not null;default:1"                             json:"schedule_version"`
	BaseModel

	// 关联
	Course    *Course           `gorm:"foreignKey:CourseID;references:CourseID"       json:"course,omitempty"`
	Professor *Professor        `gorm:"foreignKey:ProfessorID;references:ProfessorID" json:"professor,omitempty"`
	Schedules []SectionSchedule `gorm:"foreignKey:SectionID;references:SectionID"     json:"schedules,omitempty"`
}

// TableName 指定表名
func (Section) TableName() string { return "sections" }

// CreditValue 返回所属课程学分，课程引用缺失时按 0 计
func (s *Section) CreditValue() int {
	if s.Course == nil {
		return 0
	}
	return s.Course.Credit
}
