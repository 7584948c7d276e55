package domain

// Payment is the polymorphic value object attached to a paid order.
// Exactly one concrete variant is present at a time; storage flattens the
// union into nullable columns plus a PaymentMethod discriminator.
type Payment interface {
	Method() PaymentMethod
}

// CardPayment is a card authorization.
type CardPayment struct {
	Brand    string
	Last4    string
	AuthCode string
}

func (CardPayment) Method() PaymentMethod { return PaymentMethodCard }

// PayPalPayment is a PayPal capture.
type PayPalPayment struct {
	Email     string
	CaptureID string
}

func (PayPalPayment) Method() PaymentMethod { return PaymentMethodPayPal }
