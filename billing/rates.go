package billing

import (
	"emobility/entity"
	"emobility/internal"
	"emobility/internal/config"
)

const pricingSource = "flat-rate"

// Rates prices consumption intervals with a flat tariff: cents per kWh for
// the energy and cents per hour for the occupied connector, with a grace
// period before the time component kicks in. Amounts are integer cents.
type Rates struct {
	pricePerKwh     int
	pricePerHour    int
	gracePeriodMins int
	currency        string
	logger          internal.LogHandler
}

func NewRates(conf *config.Config, logger internal.LogHandler) *Rates {
	return &Rates{
		pricePerKwh:     conf.Pricing.PricePerKwh,
		pricePerHour:    conf.Pricing.PricePerHour,
		gracePeriodMins: conf.Pricing.GracePeriodMins,
		currency:        conf.Pricing.Currency,
		logger:          logger,
	}
}

func (r *Rates) PriceStart(transaction *entity.Transaction, consumption *entity.Consumption) error {
	consumption.PricingSource = pricingSource
	consumption.Currency = r.currency
	return nil
}

func (r *Rates) PriceUpdate(transaction *entity.Transaction, consumption *entity.Consumption) error {
	r.price(transaction, consumption)
	return nil
}

func (r *Rates) PriceStop(transaction *entity.Transaction, consumption *entity.Consumption) error {
	r.price(transaction, consumption)
	return nil
}

func (r *Rates) price(transaction *entity.Transaction, consumption *entity.Consumption) {
	consumption.PricingSource = pricingSource
	consumption.Currency = r.currency

	energyAmount := int(consumption.CumulatedConsumptionWh) * r.pricePerKwh / 1000

	billableMins := consumption.EndedAt.Sub(transaction.StartTime).Minutes() - float64(r.gracePeriodMins)
	timeAmount := 0
	if billableMins > 0 {
		timeAmount = int(billableMins) * r.pricePerHour / 60
	}

	cumulated := energyAmount + timeAmount
	consumption.Amount = cumulated - transaction.CurrentAmount
	if consumption.Amount < 0 {
		consumption.Amount = 0
	}
	consumption.CumulatedAmount = cumulated
	transaction.CurrentAmount = cumulated
}
