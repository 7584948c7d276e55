package domain

import "github.com/shopspring/decimal"

// ReservationLine is one SKU/quantity pair submitted to the inventory
// gateway.
type ReservationLine struct {
	SKU      string
	Quantity int
}

// Reservation is the inventory gateway's answer to a reserve request.
type Reservation struct {
	Reserved bool
	Reason   string
}

// AuthorizationRequest is submitted to the payment gateway by the checkout
// saga. Method selects which of the variant fields is meaningful.
type AuthorizationRequest struct {
	OrderID     OrderID
	Amount      decimal.Decimal
	Currency    string
	Method      PaymentMethod
	CardNumber  string
	PayPalEmail string
}

// Authorization is the payment gateway's answer. AuthCode is set for card
// authorizations, CaptureID for PayPal captures.
type Authorization struct {
	Authorized bool
	Reason     string
	AuthCode   string
	CaptureID  string
}
