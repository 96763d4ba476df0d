package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Gunvolt24/statshub/internal/domain"
)

func TestParseTimestamp(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)

	cases := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{name: "empty", in: "", want: time.Time{}},
		{name: "utc", in: "2024-03-10T08:30:00Z", want: time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)},
		{name: "offset", in: "2024-03-10T11:30:00+03:00", want: time.Date(2024, 3, 10, 11, 30, 0, 0, msk)},
		{name: "nanos", in: "2024-03-10T08:30:00.123456789Z", want: time.Date(2024, 3, 10, 8, 30, 0, 123456789, time.UTC)},
		{name: "no offset", in: "2024-03-10T08:30:00", want: time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)},
		{name: "no offset millis", in: "2024-03-10T08:30:00.500", want: time.Date(2024, 3, 10, 8, 30, 0, 500_000_000, time.UTC)},
		{name: "space separator", in: "2024-03-10 08:30:00", wantErr: true},
		{name: "date only", in: "2024-03-10", wantErr: true},
		{name: "garbage", in: "not a time", wantErr: true},
	}
	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ParseTimestamp(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("want error for %q, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrderUnmarshalJSON(t *testing.T) {
	var o domain.Order
	raw := `{"orderId":"A","sku":"S1","price":"12.50","quantity":3,"createdAt":"2024-03-10T08:30:00","brandName":"Nike"}`
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if o.OrderID != "A" || o.SKU != "S1" || o.Quantity != 3 || o.BrandName != "Nike" {
		t.Fatalf("fields lost: %+v", o)
	}
	if o.UnitPrice.String() != "12.5" {
		t.Fatalf("price: %s", o.UnitPrice)
	}
	if !o.CreatedAt.Equal(time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)) || o.CreatedAt.Location() != time.UTC {
		t.Fatalf("offset-less createdAt must be UTC, got %v", o.CreatedAt)
	}

	if err := json.Unmarshal([]byte(`{"orderId":"A","discount":5}`), &o); err == nil {
		t.Fatalf("unknown field must be rejected")
	}
	if err := json.Unmarshal([]byte(`{"orderId":"A","createdAt":"10.03.2024"}`), &o); err == nil {
		t.Fatalf("malformed createdAt must be rejected")
	}
}
