package dto

// SectionSearchRequest 班次检索请求
type SectionSearchRequest struct {
	Query string `form:"q" binding:"omitempty,max=100"`
}

// SectionSearchResult 班次检索结果
type SectionSearchResult struct {
	ID            string `json:"id"`
	CourseCode    string `json:"code"`
	CourseName    string `json:"name"`
	SectionNumber string `json:"sec"`
	Credit        int    `json:"credit"`
	Label         string `json:"label"`
}
