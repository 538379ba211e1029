package store

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/safar/storefront/internal/models"
)

type DayRevenue struct {
	Day     string `json:"day"`
	Revenue int64  `json:"revenue"`
}

// Report is derived from the full collection on every call.
type Report struct {
	TotalOrders       int                        `json:"total_orders"`
	CountByStatus     map[models.OrderStatus]int `json:"count_by_status"`
	Revenue           int64                      `json:"revenue"`
	TodayRevenue      int64                      `json:"today_revenue"`
	AverageOrderValue decimal.Decimal            `json:"average_order_value"`
	LastSevenDays     []DayRevenue               `json:"last_seven_days"`
}

// Report summarizes the orders. Cancelled orders are counted by status but
// excluded from every revenue figure.
func (o *Orders) Report(now time.Time) Report {
	r := Report{
		TotalOrders:   len(o.orders),
		CountByStatus: make(map[models.OrderStatus]int, len(models.OrderStatuses)),
	}
	for _, s := range models.OrderStatuses {
		r.CountByStatus[s] = 0
	}

	today := now.In(o.loc)
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, o.loc).AddDate(0, 0, -6)
	byDay := make(map[string]int64, 7)

	counted := 0
	for _, order := range o.orders {
		r.CountByStatus[order.Status]++
		if !order.Counted() {
			continue
		}

		counted++
		r.Revenue += order.Total
		if sameDay(order.CreatedAt, now, o.loc) {
			r.TodayRevenue += order.Total
		}
		if created := order.CreatedAt.In(o.loc); !created.Before(start) {
			byDay[created.Format(time.DateOnly)] += order.Total
		}
	}

	if counted > 0 {
		r.AverageOrderValue = decimal.NewFromInt(r.Revenue).
			Div(decimal.NewFromInt(int64(counted))).
			Round(2)
	}

	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i).Format(time.DateOnly)
		r.LastSevenDays = append(r.LastSevenDays, DayRevenue{Day: day, Revenue: byDay[day]})
	}

	return r
}
