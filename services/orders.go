package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"jmb-server/cart"
	"jmb-server/models"
)

// OrderStore is the persistence the order workflow needs.
type OrderStore interface {
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error
	GetOrder(ctx context.Context, id uuid.UUID) (models.Order, error)
	MarkOrderEmailSent(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Broadcaster sends a browser push notification to every subscriber.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg PushMessage) (BroadcastResult, error)
}

// FeedPublisher pushes order events to live admin clients.
type FeedPublisher interface {
	Publish(eventType string, order models.Order)
}

// Mailer relays transactional email.
type Mailer interface {
	Send(ctx context.Context, e Email) error
	MailtoURL(ctx context.Context, e Email) string
}

// Customer is the contact information captured at checkout.
type Customer struct {
	Name    string
	Email   string
	Phone   *string
	Address *string
	Notes   *string
}

// PlacedOrder is the result of a successful checkout. MailtoURL is set when
// the email relay failed.
type PlacedOrder struct {
	Order     models.Order
	Items     []models.OrderItem
	MailtoURL string
}

// OrderService turns a cart into a persisted order and notifies the
// business about it.
type OrderService struct {
	store  OrderStore
	push   Broadcaster
	feed   FeedPublisher
	mailer Mailer
	logger *zap.Logger
	now    func() time.Time

	// AdminURL is opened when the new order notification is clicked.
	AdminURL string
}

// NewOrderService wires the workflow. push and feed may be nil.
func NewOrderService(store OrderStore, push Broadcaster, feed FeedPublisher, mailer Mailer, logger *zap.Logger) *OrderService {
	return &OrderService{
		store:  store,
		push:   push,
		feed:   feed,
		mailer: mailer,
		logger: logger,
		now:    time.Now,

		AdminURL: "/admin",
	}
}

// PlaceOrder validates the checkout, reprices every line from the catalog,
// stores the order and its items atomically, then runs best-effort
// notifications.
func (s *OrderService) PlaceOrder(ctx context.Context, customer Customer, lines []cart.Item) (PlacedOrder, error) {
	customer, err := validateCustomer(customer, lines)
	if err != nil {
		return PlacedOrder{}, err
	}

	items, total, err := s.reprice(ctx, lines)
	if err != nil {
		return PlacedOrder{}, err
	}

	order := models.Order{
		ID:              uuid.New(),
		CustomerName:    customer.Name,
		CustomerEmail:   customer.Email,
		CustomerPhone:   customer.Phone,
		CustomerAddress: customer.Address,
		Notes:           customer.Notes,
		TotalAmount:     total,
		Status:          models.OrderStatusPending,
	}
	if err := s.store.CreateOrder(ctx, &order, items); err != nil {
		return PlacedOrder{}, err
	}
	order.Items = items

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("customer", order.CustomerName),
		zap.String("total", total.StringFixed(2)))

	s.notifyPush(ctx, order)
	if s.feed != nil {
		s.feed.Publish(EventOrderCreated, order)
	}
	mailto := s.sendOrderEmail(ctx, &order)

	return PlacedOrder{Order: order, Items: items, MailtoURL: mailto}, nil
}

// ResendOrderEmail repeats the email step for an existing order.
func (s *OrderService) ResendOrderEmail(ctx context.Context, id uuid.UUID) (PlacedOrder, error) {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return PlacedOrder{}, err
	}
	mailto := s.sendOrderEmail(ctx, &order)
	return PlacedOrder{Order: order, Items: order.Items, MailtoURL: mailto}, nil
}

func validateCustomer(c Customer, lines []cart.Item) (Customer, error) {
	if len(lines) == 0 {
		return c, ErrEmptyCart
	}

	var err error
	if c.Name, err = requireText("customer_name", "Name", c.Name); err != nil {
		return c, err
	}
	if c.Email, err = requireText("customer_email", "Email", c.Email); err != nil {
		return c, err
	}
	if !IsValidEmail(c.Email) {
		return c, invalid("customer_email", "Please enter a valid email address")
	}
	c.Phone = optionalText(c.Phone)
	c.Address = optionalText(c.Address)
	c.Notes = optionalText(c.Notes)

	for _, line := range lines {
		if line.Quantity <= 0 {
			return c, invalid("quantity", "Quantity for %s must be at least 1", line.Name)
		}
	}
	return c, nil
}

// reprice replaces client-side prices with the catalog's and snapshots each
// line into an order item.
func (s *OrderService) reprice(ctx context.Context, lines []cart.Item) ([]models.OrderItem, decimal.Decimal, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		id, err := uuid.Parse(line.ID)
		if err != nil {
			return nil, decimal.Zero, invalid("product_id", "%s is no longer available", line.Name)
		}
		ids = append(ids, id)
	}

	products, err := s.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}

	items := make([]models.OrderItem, 0, len(lines))
	total := decimal.Zero
	for i, line := range lines {
		product, ok := products[ids[i]]
		if !ok || !product.IsActive {
			return nil, decimal.Zero, invalid("product_id", "%s is no longer available", line.Name)
		}
		productID := product.ID
		subtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		items = append(items, models.OrderItem{
			ProductID:    &productID,
			ProductName:  product.Name,
			ProductPrice: product.Price,
			Quantity:     line.Quantity,
			Subtotal:     subtotal,
		})
		total = total.Add(subtotal)
	}
	return items, total, nil
}

func (s *OrderService) notifyPush(ctx context.Context, order models.Order) {
	if s.push == nil {
		return
	}
	_, err := s.push.Broadcast(ctx, PushMessage{
		Title: "New Order Received",
		Body:  fmt.Sprintf("New order from %s — R%s", order.CustomerName, order.TotalAmount.StringFixed(2)),
		URL:   s.AdminURL,
	})
	if err != nil {
		s.logger.Warn("Order push notification failed", zap.String("order_id", order.ID.String()), zap.Error(err))
	}
}

// sendOrderEmail relays the order to the business. On relay failure it
// returns a mailto link. The order is marked as emailed on either path.
func (s *OrderService) sendOrderEmail(ctx context.Context, order *models.Order) string {
	email := OrderEmail(*order)

	var mailto string
	if err := s.mailer.Send(ctx, email); err != nil {
		s.logger.Warn("Order email relay failed", zap.String("order_id", order.ID.String()), zap.Error(err))
		mailto = s.mailer.MailtoURL(ctx, email)
	}

	at := s.now()
	if err := s.store.MarkOrderEmailSent(ctx, order.ID, at); err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Error("Failed to mark order email sent", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
		return mailto
	}
	order.EmailSent = true
	order.EmailSentAt = &at
	return mailto
}

// OrderEmail renders order as an email to the business.
func OrderEmail(order models.Order) Email {
	lines := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, fmt.Sprintf("%s x%d @ R%s = R%s",
			item.ProductName, item.Quantity, item.ProductPrice.StringFixed(2), item.Subtotal.StringFixed(2)))
	}

	return Email{
		Subject: fmt.Sprintf("New Order #%s from %s", order.ShortID(), order.CustomerName),
		ReplyTo: order.CustomerEmail,
		Fields: []Field{
			{Name: "Order ID", Value: order.ShortID()},
			{Name: "Customer Name", Value: order.CustomerName},
			{Name: "Email", Value: order.CustomerEmail},
			{Name: "Phone", Value: deref(order.CustomerPhone, "Not provided")},
			{Name: "Address", Value: deref(order.CustomerAddress, "Not provided")},
			{Name: "Notes", Value: deref(order.Notes, "None")},
			{Name: "Items", Value: strings.Join(lines, "\n")},
			{Name: "Total", Value: "R" + order.TotalAmount.StringFixed(2)},
		},
	}
}

func deref(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
