package handler

import "github.com/6610545011/cn331-project/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Planner *PlannerHandler
	Variant *VariantHandler
	Section *SectionHandler
	Export  *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Planner: NewPlannerHandler(svc.Planner),
		Variant: NewVariantHandler(svc.Variant),
		Section: NewSectionHandler(svc.Section),
		Export:  NewExportHandler(svc.Export),
	}
}
