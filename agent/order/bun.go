package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/contract"
)

type PostgresConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"5s"`
}

type orderRow struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID           string     `bun:"order_id,pk"`
	Status       string     `bun:"status,notnull"`
	PlacedAt     time.Time  `bun:"placed_at,notnull"`
	DeliveredAt  *time.Time `bun:"delivered_at"`
	Amount       float64    `bun:"amount,notnull"`
	RestaurantID string     `bun:"restaurant_id,notnull"`
}

// PostgresSource reads order records from the platform's order database.
type PostgresSource struct {
	db      *bun.DB
	timeout time.Duration
}

func NewPostgresSource(cfg PostgresConfig) (*PostgresSource, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	db := bun.NewDB(sqldb, pgdialect.New())

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &PostgresSource{db: db, timeout: timeout}, nil
}

func (s *PostgresSource) FetchOrder(ctx context.Context, orderID string) (*contractx.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var row orderRow
	err := s.db.NewSelect().Model(&row).Where("o.order_id = ?", orderID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contractx.ErrOrderNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	return &contractx.Order{
		ID:           row.ID,
		Status:       contractx.OrderStatus(row.Status),
		PlacedAt:     row.PlacedAt,
		DeliveredAt:  row.DeliveredAt,
		Amount:       row.Amount,
		RestaurantID: row.RestaurantID,
	}, nil
}

func (s *PostgresSource) Close() error {
	return s.db.Close()
}
