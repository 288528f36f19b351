package dto

// ── 计划成员增删 ──

// AddSectionResponse 加入班次成功响应
// warning 为学分越界提示（9-22 推荐区间），仅提示、不阻断
type AddSectionResponse struct {
	SectionID    string `json:"section_id"`
	TotalCredits int    `json:"total_credits"`
	Warning      string `json:"warning,omitempty"`
}

// RemoveSectionResponse 移除班次响应
type RemoveSectionResponse struct {
	SectionID    string `json:"section_id"`
	TotalCredits int    `json:"total_credits"`
}

// ── 手动登记上课时间 ──

// CreateScheduleRequest 手动为班次登记一段上课时间
// 以槽位坐标表达：day 0-6，start_slot 0-23，span 为 30 分钟槽数
// 数值字段取指针以便 binding 区分"缺失"与合法的 0
type CreateScheduleRequest struct {
	SectionID string `json:"section_id" binding:"required,uuid"`
	DayOfWeek *int   `json:"day" binding:"required,min=0,max=6"`
	StartSlot *int   `json:"start_slot" binding:"required,min=0"`
	Span      *int   `json:"span" binding:"required,min=1"`
}

// CreateScheduleResponse 登记上课时间响应
type CreateScheduleResponse struct {
	ScheduleID string `json:"schedule_id"`
	DayOfWeek  int    `json:"day"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

// ── 课程表视图 ──

// TimetableItem 课程表网格单元
// start_col/span_cols 为前端 CSS Grid 摆放参数（第 1 列是日期标签）
type TimetableItem struct {
	CourseCode    string `json:"course_code"`
	CourseName    string `json:"course_name"`
	SectionNumber string `json:"section_number"`
	Room          string `json:"room,omitempty"`
	Professor     string `json:"professor,omitempty"`
	Day           int    `json:"day"`
	StartCol      int    `json:"css_start_col"`
	SpanCols      int    `json:"css_span_col"`
	Color         string `json:"color"`
}

// TimetableCourseRow 课程表下方的课程清单行
type TimetableCourseRow struct {
	SectionID     string `json:"section_id"`
	CourseCode    string `json:"course_code"`
	CourseName    string `json:"course_name"`
	SectionNumber string `json:"section_number"`
	Professor     string `json:"professor,omitempty"`
	Credit        int    `json:"credit"`
}

// TimetableResponse 课程表视图响应
type TimetableResponse struct {
	Items        []TimetableItem      `json:"items"`
	CourseRows   []TimetableCourseRow `json:"course_rows"`
	TotalCredits int                  `json:"total_credits"`
	Days         []string             `json:"days"`
	SlotLabels   []string             `json:"slot_labels"`
}
