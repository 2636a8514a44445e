package billing

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// PaymentClient is the slice of the payment processor the service needs.
type PaymentClient interface {
	CreateCustomer(ctx context.Context, owner, email string) (string, error)
	CreateSubscriptionCheckout(ctx context.Context, customerID, owner string) (string, error)
	GetSubscriptionPeriodEnd(ctx context.Context, subscriptionID string) (time.Time, error)
}

// StripeClient implements PaymentClient against Stripe. The API key lives in
// the injected client, not in package-level state.
type StripeClient struct {
	api         *client.API
	priceID     string
	frontendURL string
}

func NewStripeClient(secretKey, priceID, frontendURL string) *StripeClient {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeClient{
		api:         api,
		priceID:     priceID,
		frontendURL: frontendURL,
	}
}

func (c *StripeClient) CreateCustomer(ctx context.Context, owner, email string) (string, error) {
	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(email),
	}
	params.AddMetadata("owner_id", owner)

	cust, err := c.api.Customers.New(params)
	if err != nil {
		return "", err
	}
	return cust.ID, nil
}

func (c *StripeClient) CreateSubscriptionCheckout(ctx context.Context, customerID, owner string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Params:   stripe.Params{Context: ctx},
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(c.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(c.frontendURL + "/subscribe-success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(c.frontendURL + "/subscribe-cancel"),
	}
	params.AddMetadata("owner_id", owner)

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

func (c *StripeClient) GetSubscriptionPeriodEnd(ctx context.Context, subscriptionID string) (time.Time, error) {
	sub, err := c.api.Subscriptions.Get(subscriptionID, &stripe.SubscriptionParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sub.CurrentPeriodEnd, 0), nil
}
