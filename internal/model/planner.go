package model

// Planner 选课计划表 — 对应 planners
// 每个用户一份，首次访问时按需创建
type Planner struct {
	PlannerID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"planner_id"`
	UserID    string `gorm:"type:uuid;not null;uniqueIndex"                 json:"user_id"`
	BaseModel

	// 关联
	Sections []Section `gorm:"many2many:planner_sections;foreignKey:PlannerID;joinForeignKey:PlannerID;references:SectionID;joinReferences:SectionID" json:"sections,omitempty"`
}

// TableName 指定表名
func (Planner) TableName() string { return "planners" }

// PlanVariant 计划方案表 — 对应 plan_variants
// 当前计划的命名快照，可独立增删、可载入回当前计划
type PlanVariant struct {
	PlanVariantID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"plan_variant_id"`
	PlannerID     string `gorm:"type:uuid;not null"                             json:"planner_id"`
	Name          string `gorm:"type:varchar(120);not null"                     json:"name"`
	BaseModel

	// 关联
	Planner  *Planner  `gorm:"foreignKey:PlannerID;references:PlannerID" json:"planner,omitempty"`
	Sections []Section `gorm:"many2many:plan_variant_sections;foreignKey:PlanVariantID;joinForeignKey:PlanVariantID;references:SectionID;joinReferences:SectionID" json:"sections,omitempty"`
}

// TableName 指定表名
func (PlanVariant) TableName() string { return "plan_variants" }
