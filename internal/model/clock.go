package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ── 挂钟时间辅助 ──
//
// 时间列统一存为 PostgreSQL time 类型，Go 侧以字符串承载。
// 写入时格式为 "HH:MM"，读取时驱动可能返回 "HH:MM:SS"，
// 因此所有比较与换算都先转为"自零点起的分钟数"。

// MinuteOfDay 将 "HH:MM" 或 "HH:MM:SS" 解析为自零点起的分钟数
func MinuteOfDay(clock string) (int, error) {
	parts := strings.Split(clock, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("无效的时间格式 %q", clock)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("无效的时间格式 %q", clock)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("无效的时间格式 %q", clock)
	}
	return hour*60 + minute, nil
}

// ClockOfMinute 将自零点起的分钟数格式化为 "HH:MM"
func ClockOfMinute(minute int) string {
	return fmt.Sprintf("%02d:%02d", (minute/60)%24, minute%60)
}
