package model

// Professor 教授表 — 对应 professors
type Professor struct {
	ProfessorID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"professor_id"`
	Name        string `gorm:"type:varchar(255);not null"                     json:"name"`
	Description string `gorm:"type:text"                                      json:"description,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Professor) TableName() string { return "professors" }
