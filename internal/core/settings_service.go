package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type settingsService struct {
	pool *pgxpool.Pool
}

// NewSettingsService constructs a SettingsService over the singleton
// settings row.
func NewSettingsService(pool *pgxpool.Pool) SettingsService {
	return &settingsService{pool: pool}
}

func (s *settingsService) Load(ctx context.Context) (*Settings, error) {
	var cfg Settings
	err := s.pool.QueryRow(ctx, `
		SELECT daily_goal, commission_rate, points_per_currency, point_value,
		       manager_password_hash, updated_at
		FROM settings WHERE id = 1
	`).Scan(&cfg.DailyGoal, &cfg.CommissionRate, &cfg.PointsPerCurrency,
		&cfg.PointValue, &cfg.managerPasswordHash, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("settings row missing — run cmd/seed: %w", err)
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &cfg, nil
}

func (s *settingsService) Update(ctx context.Context, patch SettingsPatch) (*Settings, error) {
	if patch.DailyGoal != nil && patch.DailyGoal.IsNegative() {
		return nil, validationf("daily goal cannot be negative")
	}
	if patch.CommissionRate != nil && patch.CommissionRate.IsNegative() {
		return nil, validationf("commission rate cannot be negative")
	}
	if patch.PointsPerCurrency != nil && patch.PointsPerCurrency.IsNegative() {
		return nil, validationf("points per currency cannot be negative")
	}
	if patch.PointValue != nil && patch.PointValue.IsNegative() {
		return nil, validationf("point value cannot be negative")
	}

	var passwordHash *string
	if patch.ManagerPassword != nil {
		if *patch.ManagerPassword == "" {
			return nil, validationf("manager password cannot be empty")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.ManagerPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash manager password: %w", err)
		}
		h := string(hash)
		passwordHash = &h
	}

	var cfg Settings
	err := s.pool.QueryRow(ctx, `
		UPDATE settings SET
			daily_goal            = COALESCE($1, daily_goal),
			commission_rate       = COALESCE($2, commission_rate),
			points_per_currency   = COALESCE($3, points_per_currency),
			point_value           = COALESCE($4, point_value),
			manager_password_hash = COALESCE($5, manager_password_hash),
			updated_at            = NOW()
		WHERE id = 1
		RETURNING daily_goal, commission_rate, points_per_currency, point_value,
		          manager_password_hash, updated_at
	`, patch.DailyGoal, patch.CommissionRate, patch.PointsPerCurrency,
		patch.PointValue, passwordHash).Scan(&cfg.DailyGoal, &cfg.CommissionRate,
		&cfg.PointsPerCurrency, &cfg.PointValue, &cfg.managerPasswordHash, &cfg.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return &cfg, nil
}

func (s *settingsService) VerifyManagerPassword(ctx context.Context, password string) error {
	cfg, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if cfg.managerPasswordHash == "" {
		return ErrOverrideDenied
	}
	if bcrypt.CompareHashAndPassword([]byte(cfg.managerPasswordHash), []byte(password)) != nil {
		return ErrOverrideDenied
	}
	return nil
}
