package checkout

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	"github.com/lumera-labs/marketplace-backend/pkg/enums"
	pkgerrors "github.com/lumera-labs/marketplace-backend/pkg/errors"
	pkgstripe "github.com/lumera-labs/marketplace-backend/pkg/stripe"
)

// ProviderLineItem is one purchasable line forwarded to the payment provider.
type ProviderLineItem struct {
	Name            string
	UnitAmountCents int64
	Quantity        int64
}

// ProviderSessionParams carries everything needed to open a hosted session.
type ProviderSessionParams struct {
	Currency   string
	LineItems  []ProviderLineItem
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// ProviderSession is the provider-side session state.
type ProviderSession struct {
	ID            string
	URL           string
	Status        enums.SessionStatus
	PaymentStatus enums.PaymentStatus
}

// Provider abstracts the hosted-checkout payment backend so the service can
// be tested without network calls.
type Provider interface {
	CreateSession(ctx context.Context, params ProviderSessionParams) (ProviderSession, error)
	GetSession(ctx context.Context, sessionID string) (ProviderSession, error)
}

type stripeProvider struct {
	api *stripe.Client
}

// NewStripeProvider wraps the shared Stripe client as a checkout Provider.
// Calls go through the client's own service handles, so two providers built
// from clients with different keys share no state.
func NewStripeProvider(client *pkgstripe.Client) (Provider, error) {
	if client == nil || client.API() == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stripe client is required")
	}
	return &stripeProvider{api: client.API()}, nil
}

func (p *stripeProvider) CreateSession(ctx context.Context, params ProviderSessionParams) (ProviderSession, error) {
	lineItems := make([]*stripe.CheckoutSessionCreateLineItemParams, 0, len(params.LineItems))
	for _, item := range params.LineItems {
		lineItems = append(lineItems, &stripe.CheckoutSessionCreateLineItemParams{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency:   stripe.String(params.Currency),
				UnitAmount: stripe.Int64(item.UnitAmountCents),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	sessionParams := &stripe.CheckoutSessionCreateParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
	}
	for key, value := range params.Metadata {
		sessionParams.AddMetadata(key, value)
	}

	created, err := p.api.V1CheckoutSessions.Create(ctx, sessionParams)
	if err != nil {
		return ProviderSession{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}
	return fromStripeSession(created), nil
}

func (p *stripeProvider) GetSession(ctx context.Context, sessionID string) (ProviderSession, error) {
	found, err := p.api.V1CheckoutSessions.Retrieve(ctx, sessionID, &stripe.CheckoutSessionRetrieveParams{})
	if err != nil {
		return ProviderSession{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retrieve checkout session")
	}
	return fromStripeSession(found), nil
}

func fromStripeSession(s *stripe.CheckoutSession) ProviderSession {
	status := enums.SessionStatusOpen
	switch s.Status {
	case stripe.CheckoutSessionStatusComplete:
		status = enums.SessionStatusComplete
	case stripe.CheckoutSessionStatusExpired:
		status = enums.SessionStatusExpired
	}

	paymentStatus := enums.PaymentStatusUnpaid
	if s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid ||
		s.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired {
		paymentStatus = enums.PaymentStatusPaid
	}

	return ProviderSession{
		ID:            s.ID,
		URL:           s.URL,
		Status:        status,
		PaymentStatus: paymentStatus,
	}
}
