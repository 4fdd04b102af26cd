package dataset

import (
	"time"
)

// Record is one cleaned line item of one invoice. The base fields come
// straight from the source table; the derived fields are computed once
// at ingestion and never read from the source.
type Record struct {
	InvoiceNo   string    `json:"invoice_no" csv:"InvoiceNo"`
	StockCode   string    `json:"stock_code" csv:"StockCode"`
	Description string    `json:"description" csv:"Description"`
	Quantity    int64     `json:"quantity" csv:"Quantity"`
	InvoiceDate time.Time `json:"invoice_date" csv:"InvoiceDate"`
	UnitPrice   float64   `json:"unit_price" csv:"UnitPrice"`
	CustomerID  int64     `json:"customer_id" csv:"CustomerID"`
	Country     string    `json:"country" csv:"Country"`

	// Derived at ingestion.
	Total     float64   `json:"total" csv:"Total"`
	Year      int       `json:"year" csv:"Year"`
	Month     int       `json:"month" csv:"Month"`
	MonthName string    `json:"month_name" csv:"MonthName"`
	Day       int       `json:"day" csv:"Day"`
	Hour      int       `json:"hour" csv:"Hour"`
	Weekday   string    `json:"weekday" csv:"DayOfWeek"`
	Date      time.Time `json:"date" csv:"Date"`
}

// ComputeDerived fills the derived fields from the base fields. The
// line total is always recomputed, never trusted from the source.
func (r *Record) ComputeDerived() {
	r.Total = float64(r.Quantity) * r.UnitPrice
	r.Year = r.InvoiceDate.Year()
	r.Month = int(r.InvoiceDate.Month())
	r.MonthName = r.InvoiceDate.Month().String()
	r.Day = r.InvoiceDate.Day()
	r.Hour = r.InvoiceDate.Hour()
	r.Weekday = r.InvoiceDate.Weekday().String()
	r.Date = truncateToDay(r.InvoiceDate)
}

// truncateToDay drops the time-of-day component, keeping the location.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
