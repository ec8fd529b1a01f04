package draft

import (
	"strings"
	"time"

	"tokenhub/internal/expiry"
	"tokenhub/internal/model"
	"tokenhub/internal/quota"
)

// Draft is the in-progress token record owned by a single form session.
// ExtendDays/ExtendHours and TokenCount are edit-time conveniences that are
// never persisted; AmountValue/DailyAmountValue are pure currency renderings
// of their quota counterparts.
type Draft struct {
	Name           string
	RemainQuota    int
	UnlimitedQuota bool
	// ExpiresAt is either expiry.Never or an editable date-time string.
	ExpiresAt       string
	StartOnFirstUse bool
	DurationDays    int
	DurationHours   int
	DailyQuotaLimit int
	// FirstUsedTime is set by the backend and read-only here.
	FirstUsedTime int64
	ExtendDays    int
	ExtendHours   int
	Group         string
	ModelLimits   []string
	AllowIPs      string
	Status        int
	// TokenCount only applies in create mode: how many records one
	// submission produces.
	TokenCount int

	// Display toggles: when set, the quota / daily-limit field is edited in
	// currency units instead of raw quota units.
	UseAmount        bool
	AmountValue      float64
	UseDailyAmount   bool
	DailyAmountValue float64
}

// New returns a draft with create-mode defaults: one currency unit of quota,
// no expiration, a single token.
func New(conv quota.Converter) *Draft {
	return &Draft{
		RemainQuota: conv.PerUnit,
		ExpiresAt:   expiry.Never,
		Status:      model.StatusEnabled,
		TokenCount:  1,
	}
}

// FromRecord hydrates a draft from a fetched record: the absolute expiration
// becomes editable (the sentinel stays the sentinel), the comma-joined model
// list becomes a set, and any stored duration is split back into the day/hour
// pair the form edits.
func FromRecord(rec *model.Token, conv quota.Converter) *Draft {
	d := New(conv)
	d.Name = rec.Name
	d.RemainQuota = rec.RemainQuota
	d.UnlimitedQuota = rec.UnlimitedQuota
	if rec.ExpiredTime == model.ExpiryNever {
		d.ExpiresAt = expiry.Never
	} else {
		d.ExpiresAt = expiry.Format(rec.ExpiredTime)
	}
	d.StartOnFirstUse = rec.StartOnFirstUse
	d.DurationDays, d.DurationHours = expiry.SplitDuration(rec.DurationSeconds)
	if rec.DailyQuotaLimit > 0 {
		d.DailyQuotaLimit = rec.DailyQuotaLimit
	}
	d.FirstUsedTime = rec.FirstUsedTime
	d.Group = rec.Group
	d.ModelLimits = splitModelLimits(rec.ModelLimits)
	d.AllowIPs = rec.AllowIPs
	d.Status = rec.Status
	return d
}

func splitModelLimits(joined string) []string {
	if joined == "" {
		return nil
	}
	var out []string
	for _, m := range strings.Split(joined, ",") {
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}

// ToggleAmountMode flips the quota field between raw and currency entry.
// The current raw value is snapshotted into its currency form first so the
// displayed amount does not jump on switch.
func (d *Draft) ToggleAmountMode(conv quota.Converter) {
	d.AmountValue = conv.ToCurrency(d.RemainQuota)
	d.UseAmount = !d.UseAmount
}

// ToggleDailyAmountMode does the same for the daily-limit field.
func (d *Draft) ToggleDailyAmountMode(conv quota.Converter) {
	d.DailyAmountValue = conv.ToCurrency(d.DailyQuotaLimit)
	d.UseDailyAmount = !d.UseDailyAmount
}

// SetQuota updates the raw quota and keeps the currency rendering in sync.
func (d *Draft) SetQuota(conv quota.Converter, q int) {
	d.RemainQuota = q
	d.AmountValue = conv.ToCurrency(q)
}

// SetQuotaFromCurrency derives the raw quota from a currency amount entered
// by the user. Non-finite input is ignored, leaving the prior quota intact.
func (d *Draft) SetQuotaFromCurrency(conv quota.Converter, amount float64) {
	q, ok := conv.ToQuota(amount)
	if !ok {
		return
	}
	d.AmountValue = amount
	d.RemainQuota = q
}

// SetDailyLimitFromCurrency is the daily-limit counterpart of
// SetQuotaFromCurrency.
func (d *Draft) SetDailyLimitFromCurrency(conv quota.Converter, amount float64) {
	q, ok := conv.ToQuota(amount)
	if !ok {
		return
	}
	d.DailyAmountValue = amount
	d.DailyQuotaLimit = q
}

// ApplyExpiryPreset sets the expiration from a one-click preset relative to
// now. The zero-length preset always yields the never sentinel, no matter
// how often it is applied.
func (d *Draft) ApplyExpiryPreset(now time.Time, p expiry.Preset) {
	d.ExpiresAt = p.At(now)
}
