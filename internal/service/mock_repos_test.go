package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/6610545011/cn331-project/internal/model"
	"github.com/6610545011/cn331-project/internal/repository"
	pkgerrors "github.com/6610545011/cn331-project/pkg/errors"
)

// ── Mock SectionRepository ──

type mockSectionRepo struct {
	sections map[string]*model.Section
}

func newMockSectionRepo() *mockSectionRepo {
	return &mockSectionRepo{sections: make(map[string]*model.Section)}
}

func (m *mockSectionRepo) GetByID(_ context.Context, id string) (*model.Section, error) {
	if s, ok := m.sections[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSectionRepo) ListByIDs(_ context.Context, ids []string) ([]model.Section, error) {
	var result []model.Section
	for _, id := range ids {
		if s, ok := m.sections[id]; ok {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSectionRepo) Search(_ context.Context, query string, limit int) ([]model.Section, error) {
	var result []model.Section
	q := strings.ToLower(query)
	for _, s := range m.sections {
		if q == "" ||
			(s.Course != nil && (strings.Contains(strings.ToLower(s.Course.Code), q) ||
				strings.Contains(strings.ToLower(s.Course.Name), q))) {
			result = append(result, *s)
		}
	}
	sortSections(result)
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ── Mock SectionScheduleRepository ──

type mockSectionScheduleRepo struct {
	schedules []model.SectionSchedule
	sections  *mockSectionRepo
	nextID    int
}

func newMockSectionScheduleRepo(sections *mockSectionRepo) *mockSectionScheduleRepo {
	return &mockSectionScheduleRepo{sections: sections}
}

func (m *mockSectionScheduleRepo) ListBySection(_ context.Context, sectionID string) ([]model.SectionSchedule, error) {
	var result []model.SectionSchedule
	for _, sc := range m.schedules {
		if sc.SectionID == sectionID {
			result = append(result, sc)
		}
	}
	return result, nil
}

func (m *mockSectionScheduleRepo) ListBySections(_ context.Context, sectionIDs []string) ([]model.SectionSchedule, error) {
	want := make(map[string]bool, len(sectionIDs))
	for _, id := range sectionIDs {
		want[id] = true
	}
	var result []model.SectionSchedule
	for _, sc := range m.schedules {
		if want[sc.SectionID] {
			result = append(result, sc)
		}
	}
	return result, nil
}

func (m *mockSectionScheduleRepo) CreateExclusive(_ context.Context, entry *model.SectionSchedule) error {
	for i := range m.schedules {
		existing := &m.schedules[i]
		if existing.SectionID == entry.SectionID &&
			existing.DayOfWeek == entry.DayOfWeek &&
			entry.Overlaps(existing) {
			return &pkgerrors.ScheduleOverlapError{Start: existing.StartTime, End: existing.EndTime}
		}
	}
	m.nextID++
	entry.SectionScheduleID = fmt.Sprintf("sched-%d", m.nextID)
	m.schedules = append(m.schedules, *entry)
	if s, ok := m.sections.sections[entry.SectionID]; ok {
		s.ScheduleVersion++
	}
	return nil
}

// ── Mock PlannerRepository ──

type mockPlannerRepo struct {
	planners     map[string]*model.Planner // userID → planner
	members      map[string][]string       // plannerID → sectionIDs
	sections     *mockSectionRepo
	agg          *repository.Repository // WithLock 回调收到的聚合
	nextID       int
	getByUserErr error // 非 nil 时 GetByUser 直接返回该错误
}

func newMockPlannerRepo(sections *mockSectionRepo) *mockPlannerRepo {
	return &mockPlannerRepo{
		planners: make(map[string]*model.Planner),
		members:  make(map[string][]string),
		sections: sections,
	}
}

func (m *mockPlannerRepo) GetOrCreateByUser(_ context.Context, userID string) (*model.Planner, error) {
	if p, ok := m.planners[userID]; ok {
		return p, nil
	}
	m.nextID++
	p := &model.Planner{PlannerID: fmt.Sprintf("planner-%d", m.nextID), UserID: userID}
	m.planners[userID] = p
	return p, nil
}

func (m *mockPlannerRepo) GetByUser(_ context.Context, userID string) (*model.Planner, error) {
	if m.getByUserErr != nil {
		return nil, m.getByUserErr
	}
	if p, ok := m.planners[userID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPlannerRepo) ListSections(_ context.Context, plannerID string) ([]model.Section, error) {
	var result []model.Section
	for _, sid := range m.members[plannerID] {
		if s, ok := m.sections.sections[sid]; ok {
			result = append(result, *s)
		}
	}
	sortSections(result)
	return result, nil
}

func (m *mockPlannerRepo) AddSection(_ context.Context, plannerID, sectionID string) error {
	for _, sid := range m.members[plannerID] {
		if sid == sectionID {
			return nil
		}
	}
	m.members[plannerID] = append(m.members[plannerID], sectionID)
	return nil
}

func (m *mockPlannerRepo) RemoveSection(_ context.Context, plannerID, sectionID string) error {
	ids := m.members[plannerID]
	for i, sid := range ids {
		if sid == sectionID {
			m.members[plannerID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockPlannerRepo) ReplaceSections(_ context.Context, plannerID string, sectionIDs []string) error {
	m.members[plannerID] = append([]string(nil), sectionIDs...)
	return nil
}

func (m *mockPlannerRepo) WithLock(_ context.Context, _ string, fn func(txRepo *repository.Repository) error) error {
	return fn(m.agg)
}

// ── Mock PlanVariantRepository ──

type mockPlanVariantRepo struct {
	variants map[string]*model.PlanVariant
	members  map[string][]string // variantID → sectionIDs
	sections *mockSectionRepo
	agg      *repository.Repository
	nextID   int
}

func newMockPlanVariantRepo(sections *mockSectionRepo) *mockPlanVariantRepo {
	return &mockPlanVariantRepo{
		variants: make(map[string]*model.PlanVariant),
		members:  make(map[string][]string),
		sections: sections,
	}
}

func (m *mockPlanVariantRepo) Create(_ context.Context, variant *model.PlanVariant) error {
	m.nextID++
	variant.PlanVariantID = fmt.Sprintf("variant-%d", m.nextID)
	m.variants[variant.PlanVariantID] = variant
	return nil
}

func (m *mockPlanVariantRepo) GetByID(_ context.Context, id string) (*model.PlanVariant, error) {
	if v, ok := m.variants[id]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPlanVariantRepo) ListByPlanner(_ context.Context, plannerID string) ([]model.PlanVariant, error) {
	var result []model.PlanVariant
	for _, v := range m.variants {
		if v.PlannerID == plannerID {
			result = append(result, *v)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PlanVariantID > result[j].PlanVariantID })
	return result, nil
}

func (m *mockPlanVariantRepo) Delete(_ context.Context, id string) error {
	delete(m.variants, id)
	delete(m.members, id)
	return nil
}

func (m *mockPlanVariantRepo) ListSections(_ context.Context, variantID string) ([]model.Section, error) {
	var result []model.Section
	for _, sid := range m.members[variantID] {
		if s, ok := m.sections.sections[sid]; ok {
			result = append(result, *s)
		}
	}
	sortSections(result)
	return result, nil
}

func (m *mockPlanVariantRepo) AddSection(_ context.Context, variantID, sectionID string) error {
	for _, sid := range m.members[variantID] {
		if sid == sectionID {
			return nil
		}
	}
	m.members[variantID] = append(m.members[variantID], sectionID)
	return nil
}

func (m *mockPlanVariantRepo) RemoveSection(_ context.Context, variantID, sectionID string) error {
	ids := m.members[variantID]
	for i, sid := range ids {
		if sid == sectionID {
			m.members[variantID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockPlanVariantRepo) SetSections(_ context.Context, variantID string, sectionIDs []string) error {
	m.members[variantID] = append([]string(nil), sectionIDs...)
	return nil
}

func (m *mockPlanVariantRepo) WithLock(_ context.Context, _ string, fn func(txRepo *repository.Repository) error) error {
	return fn(m.agg)
}

// ── 组装辅助 ──

func sortSections(sections []model.Section) {
	sort.Slice(sections, func(i, j int) bool {
		var ci, cj string
		if sections[i].Course != nil {
			ci = sections[i].Course.Code
		}
		if sections[j].Course != nil {
			cj = sections[j].Course.Code
		}
		if ci != cj {
			return ci < cj
		}
		return sections[i].SectionNumber < sections[j].SectionNumber
	})
}

type mockRepos struct {
	agg       *repository.Repository
	sections  *mockSectionRepo
	schedules *mockSectionScheduleRepo
	planners  *mockPlannerRepo
	variants  *mockPlanVariantRepo
}

// newMockRepos 构建全内存 Repository 聚合
// 两个 WithLock 直接回调同一聚合，锁语义在仓储层自有测试覆盖
func newMockRepos() *mockRepos {
	sections := newMockSectionRepo()
	schedules := newMockSectionScheduleRepo(sections)
	planners := newMockPlannerRepo(sections)
	variants := newMockPlanVariantRepo(sections)

	agg := &repository.Repository{
		Section:         sections,
		SectionSchedule: schedules,
		Planner:         planners,
		PlanVariant:     variants,
	}
	planners.agg = agg
	variants.agg = agg

	return &mockRepos{
		agg:       agg,
		sections:  sections,
		schedules: schedules,
		planners:  planners,
		variants:  variants,
	}
}

// addSection 注册一个班次及其所属课程
func (m *mockRepos) addSection(id, code, name string, credit int, secNum string) *model.Section {
	s := &model.Section{
		SectionID:       id,
		CourseID:        "course-" + code,
		SectionNumber:   secNum,
		ScheduleVersion: 1,
		Course: &model.Course{
			CourseID: "course-" + code,
			Code:     code,
			Name:     name,
			Credit:   credit,
		},
	}
	m.sections.sections[id] = s
	return s
}

// addSchedule 为班次直接登记一条上课时间（绕过校验，用于布置场景）
func (m *mockRepos) addSchedule(sectionID string, day int, start, end string) {
	m.schedules.nextID++
	m.schedules.schedules = append(m.schedules.schedules, model.SectionSchedule{
		SectionScheduleID: fmt.Sprintf("sched-%d", m.schedules.nextID),
		SectionID:         sectionID,
		DayOfWeek:         day,
		StartTime:         start,
		EndTime:           end,
	})
}
