package domain

// Shipment is the polymorphic value object describing how an order ships.
type Shipment interface {
	Kind() ShipmentKind
}

// DeliveryShipment is a courier delivery to an address.
type DeliveryShipment struct {
	Address      string
	TrackingCode string
}

func (DeliveryShipment) Kind() ShipmentKind { return ShipmentKindDelivery }

// PickupShipment is a customer pickup at a named point.
type PickupShipment struct {
	PointCode string
}

func (PickupShipment) Kind() ShipmentKind { return ShipmentKindPickup }
