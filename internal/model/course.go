package model

// Course 课程表 — 对应 courses
// 由课程评价模块维护，排课核心只读取 credit
type Course struct {
	CourseID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Code        string `gorm:"type:varchar(50);not null"                      json:"code"`
	Name        string `gorm:"type:varchar(255);not null"                     json:"name"`
	Description string `gorm:"type:text"                                      json:"description,omitempty"`
	Credit      int    `gorm:"type:smallint;not null;default:0"               json:"credit"`
	BaseModel
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }
