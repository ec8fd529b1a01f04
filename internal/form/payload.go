package form

import (
	"strings"

	"tokenhub/internal/draft"
	"tokenhub/internal/expiry"
	"tokenhub/internal/model"
)

// BuildPayload assembles the wire record from a draft. The transient
// tokenCount and extend/duration day-hour fields never reach the payload in
// any form other than duration_seconds and the final expired_time.
//
// A draft that fails validation produces no payload and must trigger no
// request.
func (c *Controller) BuildPayload(d *draft.Draft, isEdit bool) (*model.Token, error) {
	now := c.now()

	// The extend fields only exist while editing an existing record.
	var extendSeconds int64
	if isEdit {
		extendSeconds = expiry.DurationSeconds(d.ExtendDays, d.ExtendHours)
	}

	payload := &model.Token{
		Name:            d.Name,
		Status:          d.Status,
		RemainQuota:     d.RemainQuota,
		UnlimitedQuota:  d.UnlimitedQuota,
		AllowIPs:        d.AllowIPs,
		Group:           d.Group,
		StartOnFirstUse: d.StartOnFirstUse,
		DurationSeconds: expiry.DurationSeconds(d.DurationDays, d.DurationHours),
		DailyQuotaLimit: d.DailyQuotaLimit,
		FirstUsedTime:   d.FirstUsedTime,
	}

	value := d.ExpiresAt
	deferred := d.StartOnFirstUse && d.FirstUsedTime <= 0
	if deferred && (value == "" || value == expiry.Never) {
		// Not used yet: the backend computes the real expiration lazily at
		// first use.
		value = expiry.Never
	}
	if value == expiry.Never {
		payload.ExpiredTime = model.ExpiryNever
	} else {
		t, err := expiry.Parse(value)
		if err != nil {
			return nil, &ValidationError{Message: "invalid expiration time format"}
		}
		// In deferred mode the expiration field is hidden until first use, so
		// a finite stored value passes through untouched; rejecting it would
		// block the user on a field they cannot edit.
		if !deferred && !t.After(now) {
			return nil, &ValidationError{Message: "expiration time must be later than now"}
		}
		payload.ExpiredTime = t.Unix()
	}

	if extendSeconds > 0 {
		if deferred {
			payload.DurationSeconds += extendSeconds
		} else if payload.ExpiredTime != model.ExpiryNever {
			payload.ExpiredTime += extendSeconds
		}
	}

	payload.ModelLimits = strings.Join(d.ModelLimits, ",")
	payload.ModelLimitsEnabled = payload.ModelLimits != ""
	return payload, nil
}
