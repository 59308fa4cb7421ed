package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jmb-server/models"
)

const (
	pushTTL           = 86400
	pushConcurrency   = 8
	pushTimeout       = 30 * time.Second
	defaultSubscriber = "mailto:info@jmbelectrical.co.za"
)

// PushMessage is the JSON payload delivered to subscribed browsers.
type PushMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

// BroadcastResult summarises one fan-out.
type BroadcastResult struct {
	Message string `json:"message"`
	Success int    `json:"success"`
	Failed  int    `json:"failed"`
}

// PushStore is the persistence PushService needs.
type PushStore interface {
	ListPushSubscriptions(ctx context.Context) ([]models.PushSubscription, error)
	SavePushSubscription(ctx context.Context, s *models.PushSubscription) error
	DeletePushSubscription(ctx context.Context, id uuid.UUID) error
	DeletePushSubscriptionByEndpoint(ctx context.Context, endpoint string) error
}

// PushSender delivers one encrypted payload and reports the push service's
// HTTP status.
type PushSender interface {
	Send(ctx context.Context, sub models.PushSubscription, payload []byte) (int, error)
}

// WebPushSender sends notifications with VAPID authentication.
type WebPushSender struct {
	PublicKey  string
	PrivateKey string
	Subscriber string
	Client     *http.Client
}

// NewWebPushSender returns a sender for the given VAPID key pair.
func NewWebPushSender(publicKey, privateKey, subscriber string) *WebPushSender {
	if subscriber == "" {
		subscriber = defaultSubscriber
	}
	return &WebPushSender{
		PublicKey:  publicKey,
		PrivateKey: privateKey,
		Subscriber: subscriber,
		Client:     &http.Client{Timeout: pushTimeout},
	}
}

func (s *WebPushSender) Send(ctx context.Context, sub models.PushSubscription, payload []byte) (int, error) {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.Auth,
			P256dh: sub.P256dh,
		},
	}, &webpush.Options{
		HTTPClient:      s.Client,
		Subscriber:      s.Subscriber,
		VAPIDPublicKey:  s.PublicKey,
		VAPIDPrivateKey: s.PrivateKey,
		TTL:             pushTTL,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to send push notification: %w", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// PushService manages browser subscriptions and broadcasts notifications to
// all of them.
type PushService struct {
	store     PushStore
	sender    PushSender
	publicKey string
	logger    *zap.Logger
}

func NewPushService(store PushStore, sender PushSender, publicKey string, logger *zap.Logger) *PushService {
	return &PushService{store: store, sender: sender, publicKey: publicKey, logger: logger}
}

// PublicKey is the VAPID application server key browsers subscribe with.
func (s *PushService) PublicKey() string {
	return s.publicKey
}

// Subscribe stores or refreshes a browser subscription.
func (s *PushService) Subscribe(ctx context.Context, endpoint, p256dh, auth string) (models.PushSubscription, error) {
	sub := models.PushSubscription{
		Endpoint: strings.TrimSpace(endpoint),
		P256dh:   strings.TrimSpace(p256dh),
		Auth:     strings.TrimSpace(auth),
	}
	if sub.Endpoint == "" {
		return sub, invalid("endpoint", "Subscription endpoint is required")
	}
	if sub.P256dh == "" || sub.Auth == "" {
		return sub, invalid("keys", "Subscription keys are required")
	}
	if err := s.store.SavePushSubscription(ctx, &sub); err != nil {
		return sub, err
	}
	return sub, nil
}

// Unsubscribe removes the subscription with the given endpoint.
func (s *PushService) Unsubscribe(ctx context.Context, endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return invalid("endpoint", "Subscription endpoint is required")
	}
	return s.store.DeletePushSubscriptionByEndpoint(ctx, endpoint)
}

// Broadcast sends msg to every stored subscription. Subscriptions the push
// service reports as gone (404/410) are deleted and counted as failed.
func (s *PushService) Broadcast(ctx context.Context, msg PushMessage) (BroadcastResult, error) {
	if strings.TrimSpace(msg.Title) == "" {
		return BroadcastResult{}, invalid("title", "Notification title is required")
	}

	subs, err := s.store.ListPushSubscriptions(ctx)
	if err != nil {
		return BroadcastResult{}, err
	}
	if len(subs) == 0 {
		return BroadcastResult{Message: "No subscribers found"}, nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return BroadcastResult{}, fmt.Errorf("failed to marshal push message: %w", err)
	}

	var (
		mu     sync.Mutex
		result = BroadcastResult{Message: "Notifications sent"}
	)
	record := func(ok bool) {
		mu.Lock()
		defer mu.Unlock()
		if ok {
			result.Success++
		} else {
			result.Failed++
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pushConcurrency)
	for _, sub := range subs {
		sub := sub
		g.Go(func() error {
			record(s.deliver(gctx, sub, payload))
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("Push broadcast finished",
		zap.String("title", msg.Title),
		zap.Int("success", result.Success),
		zap.Int("failed", result.Failed))
	return result, nil
}

func (s *PushService) deliver(ctx context.Context, sub models.PushSubscription, payload []byte) bool {
	status, err := s.sender.Send(ctx, sub, payload)
	if err != nil {
		s.logger.Warn("Push delivery failed", zap.String("subscription_id", sub.ID.String()), zap.Error(err))
		return false
	}
	switch {
	case status >= 200 && status < 300:
		return true
	case status == http.StatusNotFound || status == http.StatusGone:
		if err := s.store.DeletePushSubscription(ctx, sub.ID); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("Failed to delete expired subscription", zap.String("subscription_id", sub.ID.String()), zap.Error(err))
		}
	default:
		s.logger.Warn("Push rejected", zap.String("subscription_id", sub.ID.String()), zap.Int("status", status))
	}
	return false
}
