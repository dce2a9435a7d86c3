package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Settings is the singleton configuration row. Services load one snapshot
// at the start of an operation and use it throughout, so a concurrent rate
// change can never produce mixed math inside a single sale.
type Settings struct {
	DailyGoal         decimal.Decimal `json:"daily_goal"`
	CommissionRate    decimal.Decimal `json:"commission_rate"`
	PointsPerCurrency decimal.Decimal `json:"points_per_currency"`
	PointValue        decimal.Decimal `json:"point_value"`
	UpdatedAt         time.Time       `json:"updated_at"`

	managerPasswordHash string
}

// SettingsPatch is a partial settings update; nil fields are left
// untouched. ManagerPassword, when set, is stored bcrypt-hashed.
type SettingsPatch struct {
	DailyGoal         *decimal.Decimal
	CommissionRate    *decimal.Decimal
	PointsPerCurrency *decimal.Decimal
	PointValue        *decimal.Decimal
	ManagerPassword   *string
}

// SettingsService loads and mutates the configuration singleton.
type SettingsService interface {
	// Load returns the current settings snapshot.
	Load(ctx context.Context) (*Settings, error)

	// Update applies the non-nil fields of patch.
	Update(ctx context.Context, patch SettingsPatch) (*Settings, error)

	// VerifyManagerPassword checks password against the stored hash.
	// Returns ErrOverrideDenied on mismatch or when no password is set.
	VerifyManagerPassword(ctx context.Context, password string) error
}
