package form

import (
	"context"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"time"

	"tokenhub/internal/client"
	"tokenhub/internal/draft"
	"tokenhub/internal/logger"
	"tokenhub/internal/quota"

	"github.com/google/uuid"
)

// State is the form session's lifecycle position.
type State int

const (
	StateClosed State = iota
	StateLoading
	StateReady
	StateSubmitting
)

// AutoGroup is the sentinel group key meaning "let the backend pick".
const AutoGroup = "auto"

// GroupOption is one selectable entry of the group picker.
type GroupOption struct {
	Key   string
	Desc  string
	Ratio float64
}

// Visibility is the derived view-model deciding which field blocks render.
type Visibility struct {
	// HideExpiration hides the absolute-expiration fields while a deferred
	// token has not been used yet.
	HideExpiration bool
	// ShowDuration shows the relative day/hour duration fields.
	ShowDuration bool
}

// ComputeVisibility derives the field visibility from the draft alone. Pure;
// re-evaluated on every state change by the presentation layer.
func ComputeVisibility(d *draft.Draft) Visibility {
	return Visibility{
		HideExpiration: d.StartOnFirstUse && d.FirstUsedTime == 0,
		ShowDuration:   d.StartOnFirstUse || d.DailyQuotaLimit > 0,
	}
}

// Controller drives one token create/edit session: load, payload assembly,
// submission, batch creation. It owns its draft exclusively; sessions are
// never shared.
type Controller struct {
	api       client.API
	conv      quota.Converter
	autoGroup bool
	logger    *slog.Logger

	// now and suffix are swappable for tests.
	now    func() time.Time
	suffix func() string

	state     State
	session   uuid.UUID
	draft     *draft.Draft
	editingID int
	models    []string
	groups    []GroupOption
}

// NewController builds a closed controller. autoGroup is the account-level
// "default to auto group" policy flag, injected rather than read from any
// shared state.
func NewController(api client.API, conv quota.Converter, autoGroup bool, log *slog.Logger) *Controller {
	return &Controller{
		api:       api,
		conv:      conv,
		autoGroup: autoGroup,
		logger:    logger.Component(log, "tokenform"),
		now:       time.Now,
		suffix:    randomSuffix,
		state:     StateClosed,
	}
}

const suffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// randomSuffix returns 6 alphanumeric characters. Display-name
// disambiguation only; not collision resistant.
func randomSuffix() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = suffixAlphabet[rand.Intn(len(suffixAlphabet))]
	}
	return string(b)
}

// State reports the session's lifecycle position.
func (c *Controller) State() State { return c.state }

// Draft returns the in-progress record, or nil when the form is closed.
func (c *Controller) Draft() *draft.Draft { return c.draft }

// Models returns the model identifiers loaded for the limit picker.
func (c *Controller) Models() []string { return c.models }

// Groups returns the loaded group options, auto-group first when enabled.
func (c *Controller) Groups() []GroupOption { return c.groups }

// IsEdit reports whether the session edits an existing record.
func (c *Controller) IsEdit() bool { return c.editingID != 0 }

// Open starts a create-mode session with a defaulted draft.
func (c *Controller) Open() {
	c.session = uuid.New()
	c.editingID = 0
	c.draft = draft.New(c.conv)
	if c.autoGroup {
		c.draft.Group = AutoGroup
	}
	c.state = StateReady
}

// OpenForEdit starts an edit-mode session by fetching the existing record and
// hydrating the draft from it. On failure the session closes and a FetchError
// carries the backend's message.
func (c *Controller) OpenForEdit(ctx context.Context, id int) error {
	c.session = uuid.New()
	c.editingID = id
	c.state = StateLoading
	sess := c.session

	rec, err := c.api.GetToken(ctx, id)
	if c.session != sess {
		// The form was closed or reopened while the request was in flight;
		// never apply a late response to a different session.
		return nil
	}
	if err != nil {
		c.logger.Warn("failed to load token", "id", id, "error", err)
		c.state = StateClosed
		c.draft = nil
		return &FetchError{Message: err.Error()}
	}
	c.draft = draft.FromRecord(rec, c.conv)
	c.state = StateReady
	return nil
}

// LoadModels fetches the model identifiers available to the token.
func (c *Controller) LoadModels(ctx context.Context) error {
	sess := c.session
	models, err := c.api.ListModels(ctx)
	if c.session != sess {
		return nil
	}
	if err != nil {
		return &FetchError{Message: err.Error()}
	}
	c.models = models
	return nil
}

// LoadGroups fetches the selectable groups. When the auto-group policy is
// enabled, the auto entry is added if missing, sorted first, and a draft
// without a group selection defaults to it.
func (c *Controller) LoadGroups(ctx context.Context) error {
	sess := c.session
	groups, err := c.api.ListGroups(ctx)
	if c.session != sess {
		return nil
	}
	if err != nil {
		return &FetchError{Message: err.Error()}
	}

	opts := make([]GroupOption, 0, len(groups))
	for key, info := range groups {
		opts = append(opts, GroupOption{Key: key, Desc: info.Desc, Ratio: info.Ratio})
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Key < opts[j].Key })
	if c.autoGroup {
		hasAuto := false
		for _, o := range opts {
			if o.Key == AutoGroup {
				hasAuto = true
				break
			}
		}
		if !hasAuto {
			opts = append([]GroupOption{{Key: AutoGroup, Desc: "Automatically selected"}}, opts...)
		} else {
			sort.SliceStable(opts, func(i, j int) bool {
				return opts[i].Key == AutoGroup && opts[j].Key != AutoGroup
			})
		}
		if c.draft != nil && c.draft.Group == "" {
			c.draft.Group = AutoGroup
		}
	}
	c.groups = opts
	return nil
}

// Close discards the draft and invalidates the session so any in-flight
// response is dropped.
func (c *Controller) Close() {
	c.session = uuid.New()
	c.draft = nil
	c.editingID = 0
	c.state = StateClosed
}

// SubmitEdit issues one update for the current draft. The draft survives a
// failed submit unmodified so the user can correct and resubmit.
func (c *Controller) SubmitEdit(ctx context.Context) error {
	d := c.draft
	payload, err := c.BuildPayload(d, true)
	if err != nil {
		return err
	}
	payload.ID = c.editingID

	sess := c.session
	c.state = StateSubmitting
	submitErr := c.api.UpdateToken(ctx, payload)
	if c.session != sess {
		return nil
	}
	if submitErr != nil {
		c.state = StateReady
		return &SubmitError{Message: submitErr.Error()}
	}
	c.logger.Info("token updated", "id", c.editingID)
	c.Close()
	return nil
}

// SubmitCreate issues one create request per requested token, sequentially,
// stopping at the first failure. Already-created tokens are kept; the session
// closes whenever at least one create succeeded. The returned count reports
// how many were created alongside any error.
func (c *Controller) SubmitCreate(ctx context.Context) (int, error) {
	d := c.draft
	count := d.TokenCount
	if count <= 0 {
		// A zero or missing token count falls back to a single token,
		// matching the behavior the form always had.
		count = 1
	}
	base := strings.TrimSpace(d.Name)

	sess := c.session
	c.state = StateSubmitting
	successCount := 0
	var failure error
	for i := 0; i < count; i++ {
		payload, err := c.BuildPayload(d, false)
		if err != nil {
			// Local validation failure: abort before sending anything.
			failure = err
			break
		}
		switch {
		case base == "":
			payload.Name = "default-" + c.suffix()
		case i == 0:
			payload.Name = base
		default:
			payload.Name = base + "-" + c.suffix()
		}
		if err := c.api.CreateToken(ctx, payload); err != nil {
			failure = &SubmitError{Message: err.Error()}
			break
		}
		successCount++
	}
	if c.session != sess {
		return successCount, nil
	}
	if successCount > 0 {
		c.logger.Info("tokens created", "requested", count, "created", successCount)
		c.Close()
	} else {
		c.state = StateReady
	}
	return successCount, failure
}
