package service

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/6610545011/cn331-project/internal/model"
)

// ── 槽位网格 ────────────────────────────────────────────────
//
// 一天按 30 分钟切为 24 个槽位，覆盖 08:00-20:00。
// 所有冲突判断都先把上课时间换算为槽位下标集合，
// 多次上课（如周一+周三）与跨槽区间由同一套集合运算统一处理。
// ─────────────────────────────────────────────────────────────

const (
	slotStartMinute     = 8 * 60  // 网格起点 08:00
	slotEndMinute       = 20 * 60 // 网格终点 20:00
	slotDurationMinutes = 30
	slotsPerDay         = 24
	daysPerWeek         = 7
)

var dayNames = [daysPerWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// slotSet 一天内被占用的槽位下标集合
type slotSet map[int]struct{}

func (s slotSet) sorted() []int {
	out := make([]int, 0, len(s))
	for idx := range s {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

func (s slotSet) intersect(other slotSet) slotSet {
	out := slotSet{}
	for idx := range s {
		if _, ok := other[idx]; ok {
			out[idx] = struct{}{}
		}
	}
	return out
}

// slotOffset 返回挂钟时间相对网格起点的槽位偏移
// 08:00 → 0.0，08:30 → 1.0，09:15 → 2.5；非整数表示未对齐
func slotOffset(clock string) (float64, error) {
	minute, err := model.MinuteOfDay(clock)
	if err != nil {
		return 0, err
	}
	return float64(minute-slotStartMinute) / slotDurationMinutes, nil
}

// slotRange 将 [start, end) 区间换算为占用槽位集合
// 起点向下取整、终点向上取整，再裁剪到 [0, slotsPerDay)；
// end <= start 或时间不可解析时返回空集（宽容处理，严格校验由调用方负责）
func slotRange(start, end string) slotSet {
	startMin, err := model.MinuteOfDay(start)
	if err != nil {
		return slotSet{}
	}
	endMin, err := model.MinuteOfDay(end)
	if err != nil {
		return slotSet{}
	}
	if endMin <= startMin {
		return slotSet{}
	}

	startIdx := (startMin - slotStartMinute) / slotDurationMinutes
	endIdx := (endMin - slotStartMinute + slotDurationMinutes - 1) / slotDurationMinutes

	if startIdx < 0 {
		startIdx = 0
	}
	if endIdx > slotsPerDay {
		endIdx = slotsPerDay
	}

	set := slotSet{}
	for i := startIdx; i < endIdx; i++ {
		set[i] = struct{}{}
	}
	return set
}

// emptyOccupancy 初始化七天全空的占用表
func emptyOccupancy() map[int]slotSet {
	occ := make(map[int]slotSet, daysPerWeek)
	for d := 0; d < daysPerWeek; d++ {
		occ[d] = slotSet{}
	}
	return occ
}

// occupancyOf 将一个班次的全部上课时间聚合为按天的占用表
// 无任何记录时返回全空表（未排课不是错误）
func occupancyOf(schedules []model.SectionSchedule) map[int]slotSet {
	occ := emptyOccupancy()
	for _, sc := range schedules {
		if sc.DayOfWeek < 0 || sc.DayOfWeek >= daysPerWeek {
			continue
		}
		for idx := range slotRange(sc.StartTime, sc.EndTime) {
			occ[sc.DayOfWeek][idx] = struct{}{}
		}
	}
	return occ
}

// mergeOccupancy 将 src 并入 dst（集合并，跟成员遍历顺序无关）
func mergeOccupancy(dst, src map[int]slotSet) {
	for day, set := range src {
		if dst[day] == nil {
			dst[day] = slotSet{}
		}
		for idx := range set {
			dst[day][idx] = struct{}{}
		}
	}
}

// slotClock 槽位下标对应的起始挂钟时间
func slotClock(idx int) string {
	return model.ClockOfMinute(slotStartMinute + idx*slotDurationMinutes)
}

// slotLabels 课程表表头用的 24 个槽位起点标签
func slotLabels() []string {
	labels := make([]string, slotsPerDay)
	for i := range labels {
		labels[i] = slotClock(i)
	}
	return labels
}

// pastelColor 从键串生成确定性的浅色 HSL 颜色（前端课程色块用）
func pastelColor(key string) string {
	sum := md5.Sum([]byte(key))
	hue := binary.BigEndian.Uint32(sum[:4]) % 360
	return fmt.Sprintf("hsl(%ddeg 65%% 85%%)", hue)
}
