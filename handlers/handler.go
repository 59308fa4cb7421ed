package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jmb-server/cart"
	"jmb-server/database"
	"jmb-server/models"
	"jmb-server/services"
)

// Stores the handlers read and write through. *database.DB implements all
// of them.

type ProductStore interface {
	ListActiveProducts(ctx context.Context) ([]models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type JobStore interface {
	ListActiveCompletedJobs(ctx context.Context) ([]models.CompletedJob, error)
	ListCompletedJobs(ctx context.Context) ([]models.CompletedJob, error)
	GetCompletedJob(ctx context.Context, id uuid.UUID) (models.CompletedJob, error)
	CreateCompletedJob(ctx context.Context, j *models.CompletedJob) error
	UpdateCompletedJob(ctx context.Context, j *models.CompletedJob) error
	DeleteCompletedJob(ctx context.Context, id uuid.UUID) error
}

type OrderStore interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) (models.Order, error)
}

type FeedbackStore interface {
	CreateFeedback(ctx context.Context, f *models.Feedback) error
	ListFeedback(ctx context.Context, limit int) ([]models.Feedback, error)
	DeleteFeedback(ctx context.Context, id uuid.UUID) error
}

type ContactStore interface {
	CreateContactSubmission(ctx context.Context, s *models.ContactSubmission) error
	ListContactSubmissions(ctx context.Context) ([]models.ContactSubmission, error)
}

type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

type AdminStore interface {
	GetAdminByUsername(ctx context.Context, username string) (models.AdminUser, error)
	GetAdmin(ctx context.Context, id uuid.UUID) (models.AdminUser, error)
	TouchAdminLogin(ctx context.Context, id uuid.UUID) error
}

type StatsStore interface {
	DashboardStats(ctx context.Context) (database.DashboardStats, error)
}

type CartStore interface {
	CartStorage(sessionID uuid.UUID) cart.Storage
}

// OrderPlacer runs checkout and order email delivery.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, customer services.Customer, lines []cart.Item) (services.PlacedOrder, error)
	ResendOrderEmail(ctx context.Context, id uuid.UUID) (services.PlacedOrder, error)
}

// PushRelay manages Web Push subscriptions.
type PushRelay interface {
	PublicKey() string
	Subscribe(ctx context.Context, endpoint, p256dh, auth string) (models.PushSubscription, error)
	Unsubscribe(ctx context.Context, endpoint string) error
	Broadcast(ctx context.Context, msg services.PushMessage) (services.BroadcastResult, error)
}

// Mailer delivers a message and returns a mailto fallback on relay failure.
type Mailer interface {
	Deliver(ctx context.Context, e services.Email) string
}

// OrderFeed streams order events to admin websocket clients.
type OrderFeed interface {
	Serve(w http.ResponseWriter, r *http.Request) error
	Publish(eventType string, order models.Order)
}

// Handler carries the dependencies of every HTTP endpoint. Push and Images
// are optional; endpoints that need them answer 503 when unset.
type Handler struct {
	Products ProductStore
	Jobs     JobStore
	Orders   OrderStore
	Feedback FeedbackStore
	Contact  ContactStore
	Settings SettingsStore
	Admins   AdminStore
	Stats    StatsStore
	Carts    CartStore

	Placer OrderPlacer
	Push   PushRelay
	Mailer Mailer
	Feed   OrderFeed
	Images services.ImageStore

	Auth   *Auth
	Logger *zap.Logger

	// SecureCookies marks the cart cookie Secure.
	SecureCookies bool
	now           func() time.Time
}

func (h *Handler) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}
