package model

import "strings"

// Token status values. A token outside StatusEnabled is rejected by the
// auth middleware.
const (
	StatusEnabled   = 1
	StatusDisabled  = 2
	StatusExpired   = 3
	StatusExhausted = 4
)

// ExpiryNever is the expired_time sentinel meaning "no expiration".
const ExpiryNever int64 = -1

// Token represents an issued API credential with quota, expiration and
// access-scoping rules.
type Token struct {
	ID           int    `json:"id" gorm:"primaryKey"`
	UserID       int    `json:"user_id" gorm:"index"`
	Key          string `json:"key" gorm:"type:varchar(64);uniqueIndex"`
	Status       int    `json:"status" gorm:"default:1"`
	Name         string `json:"name" gorm:"index"`
	CreatedTime  int64  `json:"created_time" gorm:"bigint"`
	AccessedTime int64  `json:"accessed_time" gorm:"bigint"`
	// ExpiredTime is an epoch second, or ExpiryNever.
	ExpiredTime        int64  `json:"expired_time" gorm:"bigint;default:-1"`
	RemainQuota        int    `json:"remain_quota" gorm:"default:0"`
	UsedQuota          int    `json:"used_quota" gorm:"default:0"`
	UnlimitedQuota     bool   `json:"unlimited_quota" gorm:"default:false"`
	ModelLimitsEnabled bool   `json:"model_limits_enabled" gorm:"default:false"`
	ModelLimits        string `json:"model_limits" gorm:"type:varchar(1024);default:''"`
	AllowIPs           string `json:"allow_ips" gorm:"column:allow_ips;default:''"`
	Group              string `json:"group" gorm:"default:''"`
	// StartOnFirstUse defers expiration: the countdown of DurationSeconds
	// begins at FirstUsedTime, which the server sets on first consumption.
	StartOnFirstUse bool  `json:"start_on_first_use" gorm:"default:false"`
	DurationSeconds int64 `json:"duration_seconds" gorm:"bigint;default:0"`
	// DailyQuotaLimit caps per-day consumption; zero means unlimited.
	DailyQuotaLimit int   `json:"daily_quota_limit" gorm:"default:0"`
	FirstUsedTime   int64 `json:"first_used_time" gorm:"bigint;default:0"`
	DayWindowStart  int64 `json:"day_window_start" gorm:"bigint;default:0"`
	DayUsedQuota    int   `json:"day_used_quota" gorm:"default:0"`
}

// ModelLimitsMap expands the comma-joined model limit list into a set.
// An empty list means the token is unrestricted.
func (t *Token) ModelLimitsMap() map[string]bool {
	limits := map[string]bool{}
	if t.ModelLimits == "" {
		return limits
	}
	for _, m := range strings.Split(t.ModelLimits, ",") {
		if m != "" {
			limits[m] = true
		}
	}
	return limits
}
