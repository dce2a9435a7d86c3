package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable item. StockQuantity is decremented inside the
// checkout transaction; it is allowed to go negative (the counter sells
// what is physically on the shelf).
type Product struct {
	ID            int             `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StockQuantity int             `json:"stock_quantity"`
	NCM           string          `json:"ncm"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ProductInput holds the fields required to create a product.
type ProductInput struct {
	Code          string
	Name          string
	Description   string
	UnitPrice     decimal.Decimal
	StockQuantity int
	NCM           string
}

// ProductPatch is a partial update; nil fields are left untouched.
type ProductPatch struct {
	Name          *string
	Description   *string
	UnitPrice     *decimal.Decimal
	StockQuantity *int
	NCM           *string
	IsActive      *bool
}

// ProductService provides catalog operations.
type ProductService interface {
	Create(ctx context.Context, input ProductInput) (*Product, error)
	Get(ctx context.Context, id int) (*Product, error)
	// List returns products ordered by name. When activeOnly is true,
	// deactivated products are omitted.
	List(ctx context.Context, activeOnly bool) ([]Product, error)
	Update(ctx context.Context, id int, patch ProductPatch) (*Product, error)
}
