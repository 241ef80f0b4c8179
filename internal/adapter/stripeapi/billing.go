// Package stripeapi implements the payment-setup port on Stripe.
package stripeapi

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/setupintent"
)

// Billing implements port.PaymentSetup.
type Billing struct{}

// New installs the Stripe API key and returns a Billing adapter.
func New(secretKey string) *Billing {
	stripe.Key = secretKey
	return &Billing{}
}

// CreateSetupIntent creates a card SetupIntent tagged with the team name
// and returns its client secret. A fresh idempotency key is attached per
// call; dedup of user-level retries happens in the browser flow.
func (b *Billing) CreateSetupIntent(ctx context.Context, teamName string) (string, error) {
	params := &stripe.SetupIntentParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	params.AddMetadata("teamName", teamName)
	params.SetIdempotencyKey(uuid.NewString())

	si, err := setupintent.New(params)
	if err != nil {
		return "", fmt.Errorf("create setup intent: %w", err)
	}
	return si.ClientSecret, nil
}
