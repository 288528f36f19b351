package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/6610545011/cn331-project/internal/dto"
)

// seedPlan 布置一个 9 学分、无冲突的当前计划
func seedPlan(t *testing.T, svc *Service, repos *mockRepos, userID string) {
	t.Helper()
	repos.addSection("sec-1", "CS101", "Intro to CS", 3, "1")
	repos.addSchedule("sec-1", 0, "09:00", "10:30")
	repos.addSection("sec-2", "MA201", "Calculus", 3, "1")
	repos.addSchedule("sec-2", 1, "09:00", "10:30")
	repos.addSection("sec-3", "PH301", "Physics", 3, "1")
	repos.addSchedule("sec-3", 2, "09:00", "10:30")

	ctx := context.Background()
	for _, sid := range []string{"sec-1", "sec-2", "sec-3"} {
		if _, err := svc.Planner.AddSection(ctx, userID, sid); err != nil {
			t.Fatalf("布置计划失败 (%s): %v", sid, err)
		}
	}
}

func TestVariantSaveCurrent(t *testing.T) {
	svc, repos := newTestServices()
	seedPlan(t, svc, repos, "user-1")

	resp, err := svc.Variant.SaveCurrent(context.Background(), "user-1", &dto.SaveVariantRequest{Name: "plan A"})
	if err != nil {
		t.Fatalf("保存方案失败: %v", err)
	}
	if resp.Name != "plan A" {
		t.Errorf("方案名期望 plan A, 实际 %s", resp.Name)
	}
	if resp.TotalCredits != 9 {
		t.Errorf("方案总学分期望 9, 实际 %d", resp.TotalCredits)
	}

	sections, _ := repos.variants.ListSections(context.Background(), resp.ID)
	if len(sections) != 3 {
		t.Errorf("方案成员期望 3, 实际 %d", len(sections))
	}
}

func TestVariantSaveCurrentCreditBound(t *testing.T) {
	svc, repos := newTestServices()
	repos.addSection("sec-1", "CS101", "Intro to CS", 3, "1")
	repos.addSection("sec-2", "MA201", "Calculus", 5, "1")

	ctx := context.Background()
	svc.Planner.AddSection(ctx, "user-1", "sec-1")
	svc.Planner.AddSection(ctx, "user-1", "sec-2")

	// 总学分 8，低于硬性下限
	_, err := svc.Variant.SaveCurrent(ctx, "user-1", &dto.SaveVariantRequest{Name: "plan B"})
	var bound *CreditBoundError
	if !errors.As(err, &bound) {
		t.Fatalf("期望学分越界错误, 实际 %v", err)
	}
	if bound.Total != 8 {
		t.Errorf("错误中的总学分期望 8, 实际 %d", bound.Total)
	}
	if !strings.Contains(err.Error(), "between 9 and 22") {
		t.Errorf("错误消息应包含硬性区间: %s", err.Error())
	}

	// 拒绝保存时不得留下半成品方案
	variants, _ := svc.Variant.List(ctx, "user-1")
	if len(variants) != 0 {
		t.Errorf("越界保存后方案列表应为空, 实际 %d", len(variants))
	}
}

func TestVariantSaveCurrentUpperBound(t *testing.T) {
	svc, repos := newTestServices()
	repos.addSection("sec-1", "CS101", "Intro to CS", 12, "1")
	repos.addSection("sec-2", "MA201", "Calculus", 11, "1")

	ctx := context.Background()
	svc.Planner.AddSection(ctx, "user-1", "sec-1")
	svc.Planner.AddSection(ctx, "user-1", "sec-2")

	// 总学分 23，超过硬性上限
	_, err := svc.Variant.SaveCurrent(ctx, "user-1", &dto.SaveVariantRequest{Name: "plan C"})
	var bound *CreditBoundError
	if !errors.As(err, &bound) {
		t.Fatalf("期望学分越界错误, 实际 %v", err)
	}
}

func TestVariantSaveCurrentNoPlanner(t *testing.T) {
	svc, _ := newTestServices()
	_, err := svc.Variant.SaveCurrent(context.Background(), "user-1", &dto.SaveVariantRequest{Name: "x"})
	if !errors.Is(err, ErrPlannerNotFound) {
		t.Errorf("期望 ErrPlannerNotFound, 实际 %v", err)
	}
}

func TestVariantCreateAndList(t *testing.T) {
	svc, _ := newTestServices()
	ctx := context.Background()

	resp, err := svc.Variant.Create(ctx, "user-1", &dto.CreateVariantRequest{Name: "empty plan"})
	if err != nil {
		t.Fatalf("新建方案失败: %v", err)
	}
	if resp.ID == "" {
		t.Error("方案 ID 不应为空")
	}

	variants, err := svc.Variant.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("列出方案失败: %v", err)
	}
	if len(variants) != 1 {
		t.Fatalf("方案数量期望 1, 实际 %d", len(variants))
	}
	if variants[0].TotalCredits != 0 {
		t.Errorf("空方案总学分期望 0, 实际 %d", variants[0].TotalCredits)
	}
}

func TestVariantListNoPlanner(t *testing.T) {
	svc, _ := newTestServices()
	variants, err := svc.Variant.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("未建计划的用户列出方案失败: %v", err)
	}
	if len(variants) != 0 {
		t.Errorf("期望空列表, 实际 %d", len(variants))
	}
}

func TestVariantLoadReplacesPlan(t *testing.T) {
	svc, repos := newTestServices()
	seedPlan(t, svc, repos, "user-1")
	ctx := context.Background()

	saved, err := svc.Variant.SaveCurrent(ctx, "user-1", &dto.SaveVariantRequest{Name: "plan A"})
	if err != nil {
		t.Fatalf("保存方案失败: %v", err)
	}

	// 改动当前计划后再载入方案，应整体回到快照状态
	repos.addSection("sec-4", "EN401", "English", 3, "1")
	repos.addSchedule("sec-4", 4, "09:00", "10:30")
	if _, err := svc.Planner.AddSection(ctx, "user-1", "sec-4"); err != nil {
		t.Fatalf("加入第四门课失败: %v", err)
	}
	if _, err := svc.Planner.RemoveSection(ctx, "user-1", "sec-1"); err != nil {
		t.Fatalf("移除班次失败: %v", err)
	}

	resp, err := svc.Variant.Load(ctx, "user-1", saved.ID)
	if err != nil {
		t.Fatalf("载入方案失败: %v", err)
	}
	if resp.TotalCredits != 9 {
		t.Errorf("载入后总学分期望 9, 实际 %d", resp.TotalCredits)
	}

	tt, _ := svc.Planner.GetTimetable(ctx, "user-1")
	if len(tt.CourseRows) != 3 {
		t.Fatalf("载入后成员期望 3, 实际 %d", len(tt.CourseRows))
	}
	for _, row := range tt.CourseRows {
		if row.SectionID == "sec-4" {
			t.Error("载入应整体替换, sec-4 不应保留")
		}
	}
}

func TestVariantLoadNotOwner(t *testing.T) {
	svc, repos := newTestServices()
	seedPlan(t, svc, repos, "user-1")
	ctx := context.Background()

	saved, err := svc.Variant.SaveCurrent(ctx, "user-1", &dto.SaveVariantRequest{Name: "plan A"})
	if err != nil {
		t.Fatalf("保存方案失败: %v", err)
	}

	if _, err := svc.Variant.Load(ctx, "user-2", saved.ID); !errors.Is(err, ErrVariantNotOwner) {
		t.Errorf("期望 ErrVariantNotOwner, 实际 %v", err)
	}
}

func TestVariantLoadNotFound(t *testing.T) {
	svc, _ := newTestServices()
	if _, err := svc.Variant.Load(context.Background(), "user-1", "missing"); !errors.Is(err, ErrVariantNotFound) {
		t.Errorf("期望 ErrVariantNotFound, 实际 %v", err)
	}
}

func TestVariantDelete(t *testing.T) {
	svc, repos := newTestServices()
	seedPlan(t, svc, repos, "user-1")
	ctx := context.Background()

	saved, err := svc.Variant.SaveCurrent(ctx, "user-1", &dto.SaveVariantRequest{Name: "plan A"})
	if err != nil {
		t.Fatalf("保存方案失败: %v", err)
	}

	if err := svc.Variant.Delete(ctx, "user-1", saved.ID); err != nil {
		t.Fatalf("删除方案失败: %v", err)
	}
	variants, _ := svc.Variant.List(ctx, "user-1")
	if len(variants) != 0 {
		t.Errorf("删除后方案列表应为空, 实际 %d", len(variants))
	}

	// 删除方案不影响当前计划
	tt, _ := svc.Planner.GetTimetable(ctx, "user-1")
	if len(tt.CourseRows) != 3 {
		t.Errorf("删除方案后当前计划成员期望 3, 实际 %d", len(tt.CourseRows))
	}
}

func TestVariantAddSectionConflict(t *testing.T) {
	svc, repos := newTestServices()
	repos.addSection("sec-1", "CS101", "Intro to CS", 3, "1")
	repos.addSchedule("sec-1", 0, "09:00", "10:30")
	repos.addSection("sec-2", "MA201", "Calculus", 3, "1")
	repos.addSchedule("sec-2", 0, "10:00", "11:00")
	ctx := context.Background()

	variant, err := svc.Variant.Create(ctx, "user-1", &dto.CreateVariantRequest{Name: "draft"})
	if err != nil {
		t.Fatalf("新建方案失败: %v", err)
	}

	if _, err := svc.Variant.AddSection(ctx, "user-1", variant.ID, "sec-1"); err != nil {
		t.Fatalf("方案加课失败: %v", err)
	}

	_, err = svc.Variant.AddSection(ctx, "user-1", variant.ID, "sec-2")
	var conflict *ScheduleConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("期望冲突错误, 实际 %v", err)
	}
}

func TestVariantRemoveSection(t *testing.T) {
	svc, repos := newTestServices()
	repos.addSection("sec-1", "CS101", "Intro to CS", 3, "1")
	ctx := context.Background()

	variant, err := svc.Variant.Create(ctx, "user-1", &dto.CreateVariantRequest{Name: "draft"})
	if err != nil {
		t.Fatalf("新建方案失败: %v", err)
	}
	if _, err := svc.Variant.AddSection(ctx, "user-1", variant.ID, "sec-1"); err != nil {
		t.Fatalf("方案加课失败: %v", err)
	}

	resp, err := svc.Variant.RemoveSection(ctx, "user-1", variant.ID, "sec-1")
	if err != nil {
		t.Fatalf("方案移除班次失败: %v", err)
	}
	if resp.TotalCredits != 0 {
		t.Errorf("移除后总学分期望 0, 实际 %d", resp.TotalCredits)
	}
}
