package database

import (
	"context"

	"jmb-server/models"
)

// DashboardStats are the headline numbers on the admin dashboard.
type DashboardStats struct {
	Products           int `json:"products"`
	ActiveProducts     int `json:"active_products"`
	CompletedJobs      int `json:"completed_jobs"`
	Orders             int `json:"orders"`
	PendingOrders      int `json:"pending_orders"`
	Feedback           int `json:"feedback"`
	PushSubscribers    int `json:"push_subscribers"`
	ContactSubmissions int `json:"contact_submissions"`
}

func (db *DB) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var s DashboardStats
	counts := []struct {
		dest  *int
		table string
		where string
		args  []interface{}
	}{
		{&s.Products, "products", "", nil},
		{&s.ActiveProducts, "products", "is_active = true", nil},
		{&s.CompletedJobs, "completed_jobs", "", nil},
		{&s.Orders, "orders", "", nil},
		{&s.PendingOrders, "orders", "status = $1", []interface{}{models.OrderStatusPending}},
		{&s.Feedback, "feedback", "", nil},
		{&s.PushSubscribers, "push_subscriptions", "", nil},
		{&s.ContactSubmissions, "contact_submissions", "", nil},
	}
	for _, c := range counts {
		n, err := db.Count(ctx, c.table, c.where, c.args...)
		if err != nil {
			return DashboardStats{}, err
		}
		*c.dest = n
	}
	return s, nil
}
