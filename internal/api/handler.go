package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"tokenhub/internal/auth"
	"tokenhub/internal/config"
	"tokenhub/internal/db"
	"tokenhub/internal/logger"
	"tokenhub/internal/model"

	"github.com/gin-gonic/gin"
)

const maxTokenNameLength = 30

// Handler serves the token management API.
type Handler struct {
	db     db.Service
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time
}

func NewHandler(dbService db.Service, cfg *config.Config, log *slog.Logger) *Handler {
	return &Handler{
		db:     dbService,
		cfg:    cfg,
		logger: logger.Component(log, "api"),
		now:    time.Now,
	}
}

// ListTokensHandler returns one page of the acting user's tokens.
func (h *Handler) ListTokensHandler(c *gin.Context) {
	userID := c.GetInt(auth.ContextUserID)
	page := getPageQuery(c)
	tokens, err := h.db.ListTokens(userID, page.startIdx(), page.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	total, _ := h.db.CountTokens(userID)

	now := h.now()
	dtos := make([]TokenDTO, 0, len(tokens))
	for i := range tokens {
		dtos = append(dtos, buildTokenDTO(&tokens[i], now))
	}
	page.Total = int(total)
	page.Items = dtos
	respondSuccess(c, page)
}

// SearchTokensHandler matches tokens by name keyword or exact key.
func (h *Handler) SearchTokensHandler(c *gin.Context) {
	userID := c.GetInt(auth.ContextUserID)
	keyword := c.Query("keyword")
	key := c.Query("token")
	tokens, err := h.db.SearchTokens(userID, keyword, key)
	if err != nil {
		respondError(c, err)
		return
	}
	now := h.now()
	dtos := make([]TokenDTO, 0, len(tokens))
	for i := range tokens {
		dtos = append(dtos, buildTokenDTO(&tokens[i], now))
	}
	respondSuccess(c, dtos)
}

func (h *Handler) GetTokenHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	userID := c.GetInt(auth.ContextUserID)
	token, err := h.db.GetToken(id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	dto := buildTokenDTO(token, h.now())
	respondSuccess(c, dto)
}

// CreateTokenHandler inserts a new token. The key is generated server-side;
// client-supplied fields are copied into a clean record so nothing else
// (id, key, usage counters) can be injected.
func (h *Handler) CreateTokenHandler(c *gin.Context) {
	var token model.Token
	if err := c.ShouldBindJSON(&token); err != nil {
		respondError(c, err)
		return
	}
	if len(token.Name) > maxTokenNameLength {
		respondFail(c, "token name is too long")
		return
	}
	key, err := auth.GenerateKey()
	if err != nil {
		h.logger.Error("failed to generate token key", "error", err)
		respondFail(c, "failed to generate token key")
		return
	}
	now := h.now().Unix()
	cleanToken := model.Token{
		UserID:             c.GetInt(auth.ContextUserID),
		Name:               token.Name,
		Key:                key,
		Status:             model.StatusEnabled,
		CreatedTime:        now,
		AccessedTime:       now,
		ExpiredTime:        token.ExpiredTime,
		RemainQuota:        token.RemainQuota,
		UnlimitedQuota:     token.UnlimitedQuota,
		ModelLimitsEnabled: token.ModelLimitsEnabled,
		ModelLimits:        token.ModelLimits,
		AllowIPs:           token.AllowIPs,
		Group:              token.Group,
		StartOnFirstUse:    token.StartOnFirstUse,
		DurationSeconds:    token.DurationSeconds,
		DailyQuotaLimit:    token.DailyQuotaLimit,
	}
	if err := h.db.CreateToken(&cleanToken); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, nil)
}

// UpdateTokenHandler updates an existing token. With ?status_only=1 only the
// status changes; enabling a token that is still expired or exhausted is
// refused.
func (h *Handler) UpdateTokenHandler(c *gin.Context) {
	userID := c.GetInt(auth.ContextUserID)
	statusOnly := c.Query("status_only")
	var token model.Token
	if err := c.ShouldBindJSON(&token); err != nil {
		respondError(c, err)
		return
	}
	if len(token.Name) > maxTokenNameLength {
		respondFail(c, "token name is too long")
		return
	}
	cleanToken, err := h.db.GetToken(token.ID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	now := h.now().Unix()
	if token.Status == model.StatusEnabled {
		if cleanToken.Status == model.StatusExpired && cleanToken.ExpiredTime != model.ExpiryNever && cleanToken.ExpiredTime <= now {
			respondFail(c, "token has expired; update its expiration time or set it to never expire first")
			return
		}
		if cleanToken.Status == model.StatusExhausted && cleanToken.RemainQuota <= 0 && !cleanToken.UnlimitedQuota {
			respondFail(c, "token quota is exhausted; raise its remaining quota or set it to unlimited first")
			return
		}
	}
	if statusOnly != "" {
		cleanToken.Status = token.Status
	} else {
		cleanToken.Name = token.Name
		if token.StartOnFirstUse {
			if cleanToken.FirstUsedTime == 0 {
				// Unused: the never sentinel stays until first use fixes it.
				cleanToken.ExpiredTime = token.ExpiredTime
			} else if token.ExpiredTime == model.ExpiryNever && token.DurationSeconds > 0 {
				// Already started: derive the expiration from the first use.
				cleanToken.ExpiredTime = cleanToken.FirstUsedTime + token.DurationSeconds
			} else {
				cleanToken.ExpiredTime = token.ExpiredTime
			}
		} else {
			cleanToken.ExpiredTime = token.ExpiredTime
		}
		cleanToken.RemainQuota = token.RemainQuota
		cleanToken.UnlimitedQuota = token.UnlimitedQuota
		cleanToken.ModelLimitsEnabled = token.ModelLimitsEnabled
		cleanToken.ModelLimits = token.ModelLimits
		cleanToken.AllowIPs = token.AllowIPs
		cleanToken.Group = token.Group
		cleanToken.StartOnFirstUse = token.StartOnFirstUse
		cleanToken.DurationSeconds = token.DurationSeconds
		cleanToken.DailyQuotaLimit = token.DailyQuotaLimit
	}
	if err := h.db.UpdateToken(cleanToken); err != nil {
		respondError(c, err)
		return
	}
	dto := buildTokenDTO(cleanToken, h.now())
	respondSuccess(c, dto)
}

func (h *Handler) DeleteTokenHandler(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	userID := c.GetInt(auth.ContextUserID)
	if err := h.db.DeleteToken(id, userID); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, nil)
}

type tokenBatch struct {
	IDs []int `json:"ids"`
}

func (h *Handler) BatchDeleteTokensHandler(c *gin.Context) {
	var batch tokenBatch
	if err := c.ShouldBindJSON(&batch); err != nil || len(batch.IDs) == 0 {
		respondFail(c, "invalid parameters")
		return
	}
	userID := c.GetInt(auth.ContextUserID)
	count, err := h.db.BatchDeleteTokens(batch.IDs, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, count)
}

// UserModelsHandler lists the model identifiers a token may be limited to.
func (h *Handler) UserModelsHandler(c *gin.Context) {
	models := h.cfg.Models
	if models == nil {
		models = []string{}
	}
	respondSuccess(c, models)
}

// UserGroupsHandler lists the selectable access groups with their pricing
// ratios.
func (h *Handler) UserGroupsHandler(c *gin.Context) {
	groups := h.cfg.Groups
	if groups == nil {
		groups = map[string]config.GroupConfig{}
	}
	respondSuccess(c, groups)
}

// TokenStatusHandler reports a credit summary for the authenticated token.
func (h *Handler) TokenStatusHandler(c *gin.Context) {
	token := c.MustGet(auth.ContextToken).(*model.Token)
	expiresAt := token.ExpiredTime
	if expiresAt == model.ExpiryNever {
		expiresAt = 0
	}
	c.JSON(http.StatusOK, gin.H{
		"object":          "credit_summary",
		"total_granted":   token.RemainQuota + token.UsedQuota,
		"total_used":      token.UsedQuota,
		"total_available": token.RemainQuota,
		"expires_at":      expiresAt * 1000,
	})
}

// TokenUsageHandler reports usage details for the authenticated token.
func (h *Handler) TokenUsageHandler(c *gin.Context) {
	token := c.MustGet(auth.ContextToken).(*model.Token)
	expiresAt := token.ExpiredTime
	if expiresAt == model.ExpiryNever {
		expiresAt = 0
	}
	respondSuccess(c, gin.H{
		"object":               "token_usage",
		"name":                 token.Name,
		"total_granted":        token.RemainQuota + token.UsedQuota,
		"total_used":           token.UsedQuota,
		"total_available":      token.RemainQuota,
		"unlimited_quota":      token.UnlimitedQuota,
		"model_limits":         token.ModelLimitsMap(),
		"model_limits_enabled": token.ModelLimitsEnabled,
		"expires_at":           expiresAt,
	})
}
