package analytics

import (
	"sort"
	"strconv"

	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/filter"
)

// GroupTotal is one row of a revenue ranking.
type GroupTotal struct {
	Label   string  `json:"label"`
	Revenue float64 `json:"revenue"`
}

// CustomerStat is one customer's aggregate for the customer rankings.
type CustomerStat struct {
	CustomerID   int64   `json:"customer_id"`
	Revenue      float64 `json:"revenue"`
	InvoiceCount int     `json:"invoice_count"`
}

// TopCustomersResult carries the two independent customer rankings:
// one by revenue, one by distinct invoice count.
type TopCustomersResult struct {
	ByRevenue  []CustomerStat `json:"by_revenue"`
	ByInvoices []CustomerStat `json:"by_invoices"`
}

// TopProducts ranks product descriptions by summed revenue,
// descending, truncated to n. Ties keep first-seen store order.
func TopProducts(view *filter.View, n int) ([]GroupTotal, error) {
	return topGroups(view, n, func(r recordView) string { return r.description })
}

// TopCountries ranks countries by summed revenue.
func TopCountries(view *filter.View, n int) ([]GroupTotal, error) {
	return topGroups(view, n, func(r recordView) string { return r.country })
}

type recordView struct {
	description string
	country     string
}

func topGroups(view *filter.View, n int, key func(recordView) string) ([]GroupTotal, error) {
	if err := checkTopN(n); err != nil {
		return nil, err
	}

	sums := make(map[string]float64)
	var order []string
	for _, r := range view.Records() {
		k := key(recordView{description: r.Description, country: r.Country})
		if _, seen := sums[k]; !seen {
			order = append(order, k)
		}
		sums[k] += r.Total
	}

	groups := make([]GroupTotal, 0, len(order))
	for _, k := range order {
		groups = append(groups, GroupTotal{Label: k, Revenue: sums[k]})
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Revenue > groups[j].Revenue })

	if len(groups) > n {
		groups = groups[:n]
	}
	return groups, nil
}

// TopCustomers aggregates revenue and distinct invoice count per
// customer, then ranks the two measures independently.
func TopCustomers(view *filter.View, n int) (TopCustomersResult, error) {
	if err := checkTopN(n); err != nil {
		return TopCustomersResult{}, err
	}

	type agg struct {
		revenue  float64
		invoices map[string]struct{}
	}
	stats := make(map[int64]*agg)
	var order []int64
	for _, r := range view.Records() {
		a, seen := stats[r.CustomerID]
		if !seen {
			a = &agg{invoices: make(map[string]struct{})}
			stats[r.CustomerID] = a
			order = append(order, r.CustomerID)
		}
		a.revenue += r.Total
		a.invoices[r.InvoiceNo] = struct{}{}
	}

	all := make([]CustomerStat, 0, len(order))
	for _, id := range order {
		all = append(all, CustomerStat{
			CustomerID:   id,
			Revenue:      stats[id].revenue,
			InvoiceCount: len(stats[id].invoices),
		})
	}

	byRevenue := make([]CustomerStat, len(all))
	copy(byRevenue, all)
	sort.SliceStable(byRevenue, func(i, j int) bool { return byRevenue[i].Revenue > byRevenue[j].Revenue })

	byInvoices := make([]CustomerStat, len(all))
	copy(byInvoices, all)
	sort.SliceStable(byInvoices, func(i, j int) bool { return byInvoices[i].InvoiceCount > byInvoices[j].InvoiceCount })

	if len(byRevenue) > n {
		byRevenue = byRevenue[:n]
	}
	if len(byInvoices) > n {
		byInvoices = byInvoices[:n]
	}
	return TopCustomersResult{ByRevenue: byRevenue, ByInvoices: byInvoices}, nil
}

func checkTopN(n int) error {
	if n <= 0 {
		return apierrors.InvalidParameterError("n", "must be positive, got "+strconv.Itoa(n))
	}
	return nil
}
