package api

import (
	"time"

	"tokenhub/internal/model"
)

// Expiry states reported to clients.
const (
	expiredStateNotStarted = "not_started"
	expiredStateNever      = "never"
	expiredStateTimed      = "timed"
)

// TokenDTO decorates a stored token with the derived fields list and detail
// views need: expiry state, remaining time and the daily consumption window.
type TokenDTO struct {
	model.Token
	ExpiredState        string `json:"expired_state"`
	DisplayExpiredTime  int64  `json:"display_expired_time"`
	DurationDays        int    `json:"duration_days"`
	DurationHours       int    `json:"duration_hours"`
	IsStarted           bool   `json:"is_started"`
	IsNeverExpire       bool   `json:"is_never_expire"`
	RemainingSeconds    int64  `json:"remaining_seconds"`
	PlanDurationSeconds int64  `json:"plan_duration_seconds"`
	DailyWindowStart    int64  `json:"daily_window_start"`
	DailyResetAt        int64  `json:"daily_reset_at"`
	DailyUsedQuota      int    `json:"daily_used_quota"`
	DailyRemainQuota    int    `json:"daily_remain_quota"`
}

func buildTokenDTO(t *model.Token, now time.Time) TokenDTO {
	dto := TokenDTO{Token: *t}
	if t.DurationSeconds > 0 {
		dto.DurationDays = int(t.DurationSeconds / 86400)
		dto.DurationHours = int((t.DurationSeconds % 86400) / 3600)
	}
	switch {
	case t.StartOnFirstUse && t.FirstUsedTime == 0:
		dto.ExpiredState = expiredStateNotStarted
	case t.ExpiredTime == model.ExpiryNever:
		dto.ExpiredState = expiredStateNever
		dto.DisplayExpiredTime = model.ExpiryNever
		dto.IsStarted = true
		dto.IsNeverExpire = true
		dto.RemainingSeconds = -1
	default:
		dto.ExpiredState = expiredStateTimed
		dto.DisplayExpiredTime = t.ExpiredTime
		dto.IsStarted = true
		if t.ExpiredTime > 0 {
			rem := t.ExpiredTime - now.Unix()
			if rem < 0 {
				rem = 0
			}
			dto.RemainingSeconds = rem
		}
	}
	dto.PlanDurationSeconds = t.DurationSeconds
	if t.DailyQuotaLimit > 0 {
		start := t.DayWindowStart
		if start == 0 && t.FirstUsedTime > 0 {
			start = t.FirstUsedTime
		}
		dto.DailyWindowStart = start
		if start > 0 {
			dto.DailyResetAt = start + 86400
		}
		used := t.DayUsedQuota
		if used < 0 {
			used = 0
		}
		if used > t.DailyQuotaLimit {
			used = t.DailyQuotaLimit
		}
		dto.DailyUsedQuota = used
		dto.DailyRemainQuota = t.DailyQuotaLimit - used
	}
	return dto
}
