package db

import (
	"fmt"
	"time"

	"tokenhub/internal/config"
	"tokenhub/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Service defines the storage operations the rest of the application depends on.
// This allows for mocking in tests.
type Service interface {
	ListTokens(userID, startIdx, pageSize int) ([]model.Token, error)
	CountTokens(userID int) (int64, error)
	SearchTokens(userID int, keyword, key string) ([]model.Token, error)
	GetToken(id, userID int) (*model.Token, error)
	GetTokenByKey(key string) (*model.Token, error)
	CreateToken(token *model.Token) error
	UpdateToken(token *model.Token) error
	DeleteToken(id, userID int) error
	BatchDeleteTokens(ids []int, userID int) (int64, error)
	TouchFirstUse(id int, now int64) error
	ResetAllDailyUsage(now int64) error
	GetDB() *gorm.DB
}

type service struct {
	db *gorm.DB
}

// NewService opens the database described by cfg, migrates the schema and
// returns a ready Service.
func NewService(cfg config.DatabaseConfig) (Service, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate the schema
	if err := db.AutoMigrate(&model.Token{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return &service{db: db}, nil
}

// GetDB exposes the underlying gorm handle for tests.
func (s *service) GetDB() *gorm.DB {
	return s.db
}

// ListTokens returns one page of a user's tokens, newest first.
func (s *service) ListTokens(userID, startIdx, pageSize int) ([]model.Token, error) {
	var tokens []model.Token
	result := s.db.Where("user_id = ?", userID).
		Order("id desc").
		Offset(startIdx).
		Limit(pageSize).
		Find(&tokens)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", result.Error)
	}
	return tokens, nil
}

func (s *service) CountTokens(userID int) (int64, error) {
	var total int64
	result := s.db.Model(&model.Token{}).Where("user_id = ?", userID).Count(&total)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count tokens: %w", result.Error)
	}
	return total, nil
}

// SearchTokens matches a user's tokens by name keyword, or by exact key when
// key is non-empty.
func (s *service) SearchTokens(userID int, keyword, key string) ([]model.Token, error) {
	var tokens []model.Token
	query := s.db.Where("user_id = ?", userID)
	if key != "" {
		query = query.Where("`key` = ?", key)
	} else if keyword != "" {
		query = query.Where("name LIKE ?", "%"+keyword+"%")
	}
	result := query.Order("id desc").Find(&tokens)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to search tokens: %w", result.Error)
	}
	return tokens, nil
}

func (s *service) GetToken(id, userID int) (*model.Token, error) {
	var token model.Token
	result := s.db.Where("id = ? AND user_id = ?", id, userID).First(&token)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get token %d: %w", id, result.Error)
	}
	return &token, nil
}

func (s *service) GetTokenByKey(key string) (*model.Token, error) {
	var token model.Token
	result := s.db.Where("`key` = ?", key).First(&token)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get token by key: %w", result.Error)
	}
	return &token, nil
}

func (s *service) CreateToken(token *model.Token) error {
	if err := s.db.Create(token).Error; err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

// UpdateToken persists every editable column, including zero values, so that
// clearing a field (e.g. model_limits back to "") survives the round trip.
func (s *service) UpdateToken(token *model.Token) error {
	result := s.db.Model(token).Select(
		"name", "status", "expired_time", "remain_quota", "unlimited_quota",
		"model_limits_enabled", "model_limits", "allow_ips", "group",
		"start_on_first_use", "duration_seconds", "daily_quota_limit",
	).Updates(token)
	if result.Error != nil {
		return fmt.Errorf("failed to update token %d: %w", token.ID, result.Error)
	}
	return nil
}

func (s *service) DeleteToken(id, userID int) error {
	result := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Token{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete token %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("token %d not found", id)
	}
	return nil
}

func (s *service) BatchDeleteTokens(ids []int, userID int) (int64, error) {
	result := s.db.Where("id IN ? AND user_id = ?", ids, userID).Delete(&model.Token{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to batch delete tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// TouchFirstUse records the first consumption of a deferred-expiration token.
// The absolute expiration is derived here, once, from the stored duration.
func (s *service) TouchFirstUse(id int, now int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var token model.Token
		if err := tx.Where("id = ?", id).First(&token).Error; err != nil {
			return err
		}
		if !token.StartOnFirstUse || token.FirstUsedTime > 0 {
			return nil
		}
		updates := map[string]interface{}{"first_used_time": now}
		if token.ExpiredTime == model.ExpiryNever && token.DurationSeconds > 0 {
			updates["expired_time"] = now + token.DurationSeconds
		}
		return tx.Model(&token).Updates(updates).Error
	})
}

// ResetAllDailyUsage rolls every daily consumption window whose 24h span has
// elapsed. Called by the scheduler.
func (s *service) ResetAllDailyUsage(now int64) error {
	result := s.db.Model(&model.Token{}).
		Where("daily_quota_limit > 0 AND day_window_start > 0 AND day_window_start <= ?", now-int64((24*time.Hour).Seconds())).
		Updates(map[string]interface{}{"day_used_quota": 0, "day_window_start": now})
	if result.Error != nil {
		return fmt.Errorf("failed to reset daily usage: %w", result.Error)
	}
	return nil
}
