package handlers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"jmb-server/cart"
	"jmb-server/database"
	"jmb-server/models"
	"jmb-server/services"
)

// memStore implements every store interface in memory.
type memStore struct {
	mu sync.Mutex

	products map[uuid.UUID]models.Product
	jobs     map[uuid.UUID]models.CompletedJob
	orders   map[uuid.UUID]models.Order
	feedback []models.Feedback
	contacts []models.ContactSubmission
	settings map[string]string
	admins   map[uuid.UUID]models.AdminUser
	carts    map[uuid.UUID]*cart.MemoryStorage

	failProducts bool
	clock        time.Time
}

func newMemStore() *memStore {
	return &memStore{
		products: map[uuid.UUID]models.Product{},
		jobs:     map[uuid.UUID]models.CompletedJob{},
		orders:   map[uuid.UUID]models.Order{},
		settings: map[string]string{},
		admins:   map[uuid.UUID]models.AdminUser{},
		carts:    map[uuid.UUID]*cart.MemoryStorage{},
		clock:    time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

var errStoreDown = &storeError{"connection refused"}

type storeError struct{ msg string }

func (e *storeError) Error() string { return e.msg }

func (s *memStore) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	all, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Product{}
	for _, p := range all {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memStore) ListProducts(context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failProducts {
		return nil, errStoreDown
	}
	out := []models.Product{}
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) GetProduct(_ context.Context, id uuid.UUID) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, database.ErrNotFound
	}
	return p, nil
}

func (s *memStore) CreateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = s.tick()
	p.UpdatedAt = p.CreatedAt
	s.products[p.ID] = *p
	return nil
}

func (s *memStore) UpdateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return database.ErrNotFound
	}
	p.UpdatedAt = s.tick()
	s.products[p.ID] = *p
	return nil
}

func (s *memStore) DeleteProduct(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *memStore) sortedJobs(activeOnly bool) []models.CompletedJob {
	out := []models.CompletedJob{}
	for _, j := range s.jobs {
		if !activeOnly || j.IsActive {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

func (s *memStore) ListActiveCompletedJobs(context.Context) ([]models.CompletedJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedJobs(true), nil
}

func (s *memStore) ListCompletedJobs(context.Context) ([]models.CompletedJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedJobs(false), nil
}

func (s *memStore) GetCompletedJob(_ context.Context, id uuid.UUID) (models.CompletedJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return models.CompletedJob{}, database.ErrNotFound
	}
	return j, nil
}

func (s *memStore) CreateCompletedJob(_ context.Context, j *models.CompletedJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j.ID = uuid.New()
	j.SortOrder = len(s.jobs) + 1
	j.CreatedAt = s.tick()
	s.jobs[j.ID] = *j
	return nil
}

func (s *memStore) UpdateCompletedJob(_ context.Context, j *models.CompletedJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[j.ID]; !ok {
		return database.ErrNotFound
	}
	s.jobs[j.ID] = *j
	return nil
}

func (s *memStore) DeleteCompletedJob(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.jobs, id)
	return nil
}

func (s *memStore) ListOrders(context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Order{}
	for _, o := range s.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) GetOrder(_ context.Context, id uuid.UUID) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, database.ErrNotFound
	}
	return o, nil
}

func (s *memStore) UpdateOrderStatus(_ context.Context, id uuid.UUID, status string) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, database.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = s.tick()
	s.orders[id] = o
	return o, nil
}

func (s *memStore) CreateFeedback(_ context.Context, f *models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.ID = uuid.New()
	f.CreatedAt = s.tick()
	s.feedback = append([]models.Feedback{*f}, s.feedback...)
	return nil
}

func (s *memStore) ListFeedback(_ context.Context, limit int) ([]models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]models.Feedback{}, s.feedback...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) DeleteFeedback(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.feedback {
		if f.ID == id {
			s.feedback = append(s.feedback[:i], s.feedback[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

func (s *memStore) CreateContactSubmission(_ context.Context, c *models.ContactSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = s.tick()
	s.contacts = append([]models.ContactSubmission{*c}, s.contacts...)
	return nil
}

func (s *memStore) ListContactSubmissions(context.Context) ([]models.ContactSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ContactSubmission{}, s.contacts...), nil
}

func (s *memStore) GetSetting(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.settings[key]
	if !ok {
		return "", database.ErrNotFound
	}
	return v, nil
}

func (s *memStore) SetSetting(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
	return nil
}

func (s *memStore) GetAdminByUsername(_ context.Context, username string) (models.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.Username == username {
			return a, nil
		}
	}
	return models.AdminUser{}, database.ErrNotFound
}

func (s *memStore) GetAdmin(_ context.Context, id uuid.UUID) (models.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[id]
	if !ok {
		return models.AdminUser{}, database.ErrNotFound
	}
	return a, nil
}

func (s *memStore) TouchAdminLogin(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.admins[id]
	now := s.tick()
	a.LastLoginAt = &now
	s.admins[id] = a
	return nil
}

func (s *memStore) DashboardStats(context.Context) (database.DashboardStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := database.DashboardStats{
		Products:           len(s.products),
		CompletedJobs:      len(s.jobs),
		Orders:             len(s.orders),
		Feedback:           len(s.feedback),
		ContactSubmissions: len(s.contacts),
	}
	for _, p := range s.products {
		if p.IsActive {
			stats.ActiveProducts++
		}
	}
	for _, o := range s.orders {
		if o.Status == models.OrderStatusPending {
			stats.PendingOrders++
		}
	}
	return stats, nil
}

func (s *memStore) CartStorage(session uuid.UUID) cart.Storage {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.carts[session]
	if !ok {
		st = cart.NewMemoryStorage()
		s.carts[session] = st
	}
	return st
}

type fakePlacer struct {
	customers []services.Customer
	lines     [][]cart.Item
	mailto    string
	err       error
	resent    []uuid.UUID
}

func (f *fakePlacer) PlaceOrder(_ context.Context, customer services.Customer, lines []cart.Item) (services.PlacedOrder, error) {
	f.customers = append(f.customers, customer)
	f.lines = append(f.lines, lines)
	if f.err != nil {
		return services.PlacedOrder{}, f.err
	}
	order := models.Order{ID: uuid.New(), CustomerName: customer.Name, CustomerEmail: customer.Email, Status: models.OrderStatusPending}
	return services.PlacedOrder{Order: order, MailtoURL: f.mailto}, nil
}

func (f *fakePlacer) ResendOrderEmail(_ context.Context, id uuid.UUID) (services.PlacedOrder, error) {
	f.resent = append(f.resent, id)
	if f.err != nil {
		return services.PlacedOrder{}, f.err
	}
	return services.PlacedOrder{Order: models.Order{ID: id}, MailtoURL: f.mailto}, nil
}

type fakeMailer struct {
	sent   []services.Email
	mailto string
}

func (f *fakeMailer) Deliver(_ context.Context, e services.Email) string {
	f.sent = append(f.sent, e)
	return f.mailto
}

type fakePush struct {
	subscribed []string
	messages   []services.PushMessage
}

func (f *fakePush) PublicKey() string { return "BPublicKey" }

func (f *fakePush) Subscribe(_ context.Context, endpoint, p256dh, auth string) (models.PushSubscription, error) {
	if endpoint == "" || p256dh == "" || auth == "" {
		return models.PushSubscription{}, &services.ValidationError{Field: "endpoint", Message: "Subscription endpoint is required"}
	}
	f.subscribed = append(f.subscribed, endpoint)
	return models.PushSubscription{ID: uuid.New(), Endpoint: endpoint}, nil
}

func (f *fakePush) Unsubscribe(_ context.Context, endpoint string) error {
	for i, e := range f.subscribed {
		if e == endpoint {
			f.subscribed = append(f.subscribed[:i], f.subscribed[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

func (f *fakePush) Broadcast(_ context.Context, msg services.PushMessage) (services.BroadcastResult, error) {
	f.messages = append(f.messages, msg)
	if len(f.subscribed) == 0 {
		return services.BroadcastResult{Message: "No subscribers found"}, nil
	}
	return services.BroadcastResult{Message: "Notifications sent", Success: len(f.subscribed)}, nil
}

type fakeFeed struct {
	events []services.FeedEvent
}

func (f *fakeFeed) Serve(w http.ResponseWriter, r *http.Request) error {
	w.WriteHeader(http.StatusSwitchingProtocols)
	return nil
}

func (f *fakeFeed) Publish(eventType string, order models.Order) {
	f.events = append(f.events, services.FeedEvent{Type: eventType, Order: order})
}

type fakeImages struct {
	uploads []string
	deleted []string
	err     error
}

func (f *fakeImages) Upload(_ context.Context, _ []byte, folder, filename string) (string, error) {
	f.uploads = append(f.uploads, folder+"/"+filename)
	return "https://res.cloudinary.com/demo/image/upload/v1/" + folder + "/" + filename, nil
}

func (f *fakeImages) Delete(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return f.err
}
