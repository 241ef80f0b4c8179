package port

import "context"

// PaymentSetup prepares a payment method collection flow with the
// payments provider.
type PaymentSetup interface {
	// CreateSetupIntent creates a card setup intent tagged with the team
	// name and returns the client secret the browser needs to confirm it.
	CreateSetupIntent(ctx context.Context, teamName string) (clientSecret string, err error)
}
