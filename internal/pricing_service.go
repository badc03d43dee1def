package internal

import "emobility/entity"

// PricingService is the pricing collaborator. Each hook may leave the
// consumption's pricing fields untouched when no pricing is configured for
// the session's user; the engine treats that as a zero amount.
type PricingService interface {
	PriceStart(transaction *entity.Transaction, consumption *entity.Consumption) error
	PriceUpdate(transaction *entity.Transaction, consumption *entity.Consumption) error
	PriceStop(transaction *entity.Transaction, consumption *entity.Consumption) error
}
