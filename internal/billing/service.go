package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

type Config struct {
	WebhookSecret string
	FrontendURL   string
}

// Service keeps the local subscription shadow in sync with the payment
// processor and answers the entitlement question for the middleware.
type Service struct {
	payments PaymentClient
	repo     Repository
	cfg      Config
}

func NewService(payments PaymentClient, repo Repository, cfg Config) *Service {
	return &Service{payments: payments, repo: repo, cfg: cfg}
}

// Subscription returns the owner's subscription, or nil when none exists.
func (s *Service) Subscription(ctx context.Context, owner string) (*Subscription, error) {
	sub, err := s.repo.GetByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// IsEntitled implements httpx.EntitlementChecker.
func (s *Service) IsEntitled(ctx context.Context, owner string) (bool, error) {
	sub, err := s.Subscription(ctx, owner)
	if err != nil {
		return false, err
	}
	return sub.Active(), nil
}

// CreateCheckoutSession returns the URL the owner should be sent to. An owner
// with an active subscription is sent straight back to the library.
func (s *Service) CreateCheckoutSession(ctx context.Context, owner, email string) (string, error) {
	sub, err := s.Subscription(ctx, owner)
	if err != nil {
		return "", err
	}
	if sub.Active() {
		return s.cfg.FrontendURL + "/library", nil
	}

	customerID, err := s.repo.GetCustomerID(ctx, owner)
	if err != nil {
		return "", err
	}
	if customerID == "" {
		customerID, err = s.payments.CreateCustomer(ctx, owner, email)
		if err != nil {
			return "", err
		}
		if err := s.repo.SaveCustomerID(ctx, owner, customerID); err != nil {
			return "", err
		}
	}

	return s.payments.CreateSubscriptionCheckout(ctx, customerID, owner)
}

// HandleWebhook verifies and applies one processor event. Only the state
// transition the core consumes is handled; everything else is acknowledged
// and ignored.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := webhook.ConstructEvent(payload, sigHeader, s.cfg.WebhookSecret)
	if err != nil {
		return fmt.Errorf("verify webhook: %w", err)
	}

	switch string(event.Type) {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("decode checkout session: %w", err)
		}
		owner := sess.Metadata["owner_id"]
		if owner == "" {
			log.Printf("billing webhook checkout.session.completed without owner metadata id=%s", event.ID)
			return nil
		}

		sub := Subscription{OwnerID: owner, Status: StatusActive}
		if sess.Customer != nil {
			sub.CustomerID = sess.Customer.ID
		}
		if sess.Subscription != nil {
			sub.SubscriptionID = sess.Subscription.ID
			end, err := s.payments.GetSubscriptionPeriodEnd(ctx, sess.Subscription.ID)
			if err != nil {
				log.Printf("billing period end lookup failed subscription_id=%s err=%v", sess.Subscription.ID, err)
			} else {
				sub.CurrentPeriodEnd = end
			}
		}
		return s.repo.Upsert(ctx, &sub)

	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		return s.repo.UpdateBySubscriptionID(ctx, sub.ID, string(sub.Status), time.Unix(sub.CurrentPeriodEnd, 0))
	}

	return nil
}
