package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AggregateKind — вид агрегата выручки. У каждого вида ровно один ключ в кэше.
type AggregateKind int

const (
	AggregateDaily AggregateKind = iota + 1
	AggregateBrand
)

// Ключи агрегатов в общем кэше.
const (
	CacheKeyDailyRevenue = "stats:revenue:daily"
	CacheKeyBrandRevenue = "stats:revenue:brand"
)

// dateLayout — формат календарной даты в JSON.
const dateLayout = "2006-01-02"

// AllAggregateKinds — все виды агрегатов (порядок стабилен).
func AllAggregateKinds() []AggregateKind {
	return []AggregateKind{AggregateDaily, AggregateBrand}
}

// CacheKey — ключ кэша для вида агрегата; для неизвестного вида — пустая строка.
func (k AggregateKind) CacheKey() string {
	switch k {
	case AggregateDaily:
		return CacheKeyDailyRevenue
	case AggregateBrand:
		return CacheKeyBrandRevenue
	default:
		return ""
	}
}

func (k AggregateKind) String() string {
	switch k {
	case AggregateDaily:
		return "daily"
	case AggregateBrand:
		return "brand"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// CacheKeys — ключи кэша для набора видов (неизвестные виды пропускаются).
func CacheKeys(kinds ...AggregateKind) []string {
	keys := make([]string, 0, len(kinds))
	for _, k := range kinds {
		if key := k.CacheKey(); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// DailyRevenuePoint — суммарная выручка за календарный день (UTC).
type DailyRevenuePoint struct {
	Date    time.Time
	Revenue decimal.Decimal
}

// Суммы в JSON — числа без кавычек; при чтении принимается и строка (старые записи кэша).
type dailyRevenueJSON struct {
	Date    string      `json:"date"`
	Revenue json.Number `json:"revenue"`
}

// MarshalJSON — дата без времени: {"date":"2024-01-01","revenue":300}.
func (p DailyRevenuePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(dailyRevenueJSON{
		Date:    p.Date.UTC().Format(dateLayout),
		Revenue: json.Number(p.Revenue.String()),
	})
}

func (p *DailyRevenuePoint) UnmarshalJSON(data []byte) error {
	var raw dailyRevenueJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := time.ParseInLocation(dateLayout, raw.Date, time.UTC)
	if err != nil {
		return fmt.Errorf("daily revenue date: %w", err)
	}
	revenue, err := decimal.NewFromString(raw.Revenue.String())
	if err != nil {
		return fmt.Errorf("daily revenue amount: %w", err)
	}
	p.Date = date
	p.Revenue = revenue
	return nil
}

// BrandRevenue — выручка по брендам (бренд → сумма).
type BrandRevenue map[string]decimal.Decimal

// MarshalJSON — {"Nike":260}; пустая или nil карта — {}.
func (b BrandRevenue) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.Number, len(b))
	for brand, sum := range b {
		out[brand] = json.Number(sum.String())
	}
	return json.Marshal(out)
}
