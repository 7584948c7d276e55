package memory

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/oakmart/orders-backend/internal/domain"
)

// PaymentGateway authorizes payments in process. Declines are deterministic
// so tests can provoke them: any card number ending in 0000 is declined, as
// is any amount above the configured limit.
type PaymentGateway struct {
	limit decimal.Decimal
	seq   atomic.Int64
}

// NewPaymentGateway creates a gateway that declines amounts above limit.
func NewPaymentGateway(limit decimal.Decimal) *PaymentGateway {
	return &PaymentGateway{limit: limit}
}

// Authorize answers an authorization request. Card requests get an
// AuthCode, PayPal requests a CaptureID.
func (g *PaymentGateway) Authorize(_ context.Context, req domain.AuthorizationRequest) (domain.Authorization, error) {
	if req.Amount.GreaterThan(g.limit) {
		return domain.Authorization{
			Authorized: false,
			Reason:     fmt.Sprintf("amount %s exceeds authorization limit %s", req.Amount, g.limit),
		}, nil
	}

	switch req.Method {
	case domain.PaymentMethodCard:
		if strings.HasSuffix(req.CardNumber, "0000") {
			return domain.Authorization{Authorized: false, Reason: "card declined"}, nil
		}
		return domain.Authorization{
			Authorized: true,
			AuthCode:   fmt.Sprintf("AUTH-%06d", g.seq.Add(1)),
		}, nil
	case domain.PaymentMethodPayPal:
		if req.PayPalEmail == "" {
			return domain.Authorization{Authorized: false, Reason: "missing paypal account"}, nil
		}
		return domain.Authorization{
			Authorized: true,
			CaptureID:  fmt.Sprintf("CAP-%06d", g.seq.Add(1)),
		}, nil
	default:
		return domain.Authorization{}, fmt.Errorf("unsupported payment method %q", req.Method)
	}
}
