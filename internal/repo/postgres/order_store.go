package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Gunvolt24/statshub/internal/domain"
	"github.com/Gunvolt24/statshub/internal/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Проверка, что OrderStore удовлетворяет интерфейсу OrderStore.
var _ ports.OrderStore = (*OrderStore)(nil)

const (
	ordersTable  = "orders"
	stagingTable = "orders_staging"
)

// Цена в staging хранится текстом: decimal.Decimal уходит в COPY без кодека numeric,
// в orders значение приводится к numeric без потери точности.
const createStagingSQL = `
	CREATE TEMP TABLE ` + stagingTable + ` (
		seq               integer     NOT NULL,
		business_order_id text        NOT NULL,
		sku               text        NOT NULL,
		unit_price        text        NOT NULL,
		quantity          integer     NOT NULL,
		created_at        timestamptz NOT NULL,
		brand_name        text        NOT NULL
	) ON COMMIT DROP`

var stagingColumns = []string{"seq", "business_order_id", "sku", "unit_price", "quantity", "created_at", "brand_name"}

// OrderStore — хранилище заказов на Postgres (pgxpool).
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore - конструктор OrderStore.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore { return &OrderStore{pool: pool} }

// ExistingKeys — одним запросом выбирает уже сохранённые бизнес-ключи.
func (s *OrderStore) ExistingKeys(ctx context.Context, keys []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	if len(keys) == 0 {
		return existing, nil
	}

	query, args, err := psql.
		Select("business_order_id").
		From(ordersTable).
		Where("business_order_id = ANY(?)", keys).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build existing keys query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query existing keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan existing key: %w", err)
		}
		existing[key] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate existing keys: %w", err)
	}
	return existing, nil
}

// BulkInsert — одна транзакция: COPY во временную таблицу и INSERT ... SELECT
// с ON CONFLICT DO NOTHING. Ключи, уже вставленные конкурентом, пропускаются и не считаются.
// Дубликаты внутри пачки: побеждает первое вхождение.
func (s *OrderStore) BulkInsert(ctx context.Context, orders []domain.Order) (int, error) {
	if len(orders) == 0 {
		return 0, nil
	}

	insertSQL, insertArgs, err := psql.
		Insert(ordersTable).
		Columns("business_order_id", "sku", "unit_price", "quantity", "created_at", "brand_name").
		Select(psql.
			Select("business_order_id", "sku", "unit_price::numeric", "quantity", "created_at", "brand_name").
			Options("DISTINCT ON (business_order_id)").
			From(stagingTable).
			OrderBy("business_order_id", "seq")).
		Suffix("ON CONFLICT (business_order_id) DO NOTHING").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert query: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer rollback(ctx, tx)

	if _, err := tx.Exec(ctx, createStagingSQL); err != nil {
		return 0, fmt.Errorf("create staging table: %w", err)
	}

	rows := make([][]any, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		rows = append(rows, []any{
			i, o.OrderID, o.SKU, o.UnitPrice.String(), o.Quantity, o.CreatedAt.UTC(), o.BrandName,
		})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{stagingTable}, stagingColumns, pgx.CopyFromRows(rows)); err != nil {
		return 0, fmt.Errorf("copy orders to staging: %w", err)
	}

	tag, err := tx.Exec(ctx, insertSQL, insertArgs...)
	if err != nil {
		return 0, fmt.Errorf("insert orders: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// GroupSumByDate — выручка по календарным дням (UTC) по возрастанию даты.
func (s *OrderStore) GroupSumByDate(ctx context.Context) ([]domain.DailyRevenuePoint, error) {
	query, args, err := psql.
		Select("(created_at AT TIME ZONE 'UTC')::date AS sale_date", "SUM(unit_price * quantity)::text AS revenue").
		From(ordersTable).
		GroupBy("sale_date").
		OrderBy("sale_date").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build daily revenue query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query daily revenue: %w", err)
	}
	defer rows.Close()

	points := make([]domain.DailyRevenuePoint, 0)
	for rows.Next() {
		var (
			day time.Time
			raw string
		)
		if err := rows.Scan(&day, &raw); err != nil {
			return nil, fmt.Errorf("scan daily revenue: %w", err)
		}
		revenue, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse daily revenue %q: %w", raw, err)
		}
		points = append(points, domain.DailyRevenuePoint{
			Date:    time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			Revenue: revenue,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily revenue: %w", err)
	}
	return points, nil
}

// GroupSumByBrand — выручка по брендам.
func (s *OrderStore) GroupSumByBrand(ctx context.Context) (domain.BrandRevenue, error) {
	query, args, err := psql.
		Select("brand_name", "SUM(unit_price * quantity)::text AS revenue").
		From(ordersTable).
		GroupBy("brand_name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build brand revenue query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query brand revenue: %w", err)
	}
	defer rows.Close()

	result := make(domain.BrandRevenue)
	for rows.Next() {
		var brand, raw string
		if err := rows.Scan(&brand, &raw); err != nil {
			return nil, fmt.Errorf("scan brand revenue: %w", err)
		}
		revenue, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse brand revenue %q: %w", raw, err)
		}
		result[brand] = revenue
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brand revenue: %w", err)
	}
	return result, nil
}
