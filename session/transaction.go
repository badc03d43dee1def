package session

import (
	"fmt"
	"sort"
	"time"

	"emobility/entity"
	"emobility/internal"
)

var now = time.Now

// Service owns the lifecycle of charging transactions: it turns the stream
// of normalized meter samples into consumption intervals, keeps the running
// totals on the active transaction, and seals the stop record. Callers are
// expected to serialize calls per transaction.
type Service struct {
	database internal.Database
	pricing  internal.PricingService
	logger   internal.LogHandler
}

func NewService(logger internal.LogHandler) *Service {
	return &Service{logger: logger}
}

func (s *Service) SetDatabase(database internal.Database) {
	s.database = database
}

func (s *Service) SetPricingService(pricing internal.PricingService) {
	s.pricing = pricing
}

// Begin persists a freshly started transaction together with its synthetic
// start interval.
func (s *Service) Begin(transaction *entity.Transaction) error {
	consumption := startConsumption(transaction)
	if s.pricing != nil {
		if err := s.pricing.PriceStart(transaction, &consumption); err != nil {
			s.logger.Error("pricing session start", err)
		}
	}
	if s.database != nil {
		if err := s.database.AddTransaction(transaction); err != nil {
			return err
		}
		s.storeConsumption(&consumption)
	}
	return nil
}

// ApplyMeterValues folds a batch of normalized samples into the transaction.
// Samples are processed in timestamp order; an energy sample not newer than
// the last applied one is a retransmission and is dropped. State-of-charge
// samples update the running value and ride on the next energy interval.
func (s *Service) ApplyMeterValues(transaction *entity.Transaction, values []entity.MeterValue) error {
	if transaction.Finished() {
		return entity.ErrTransactionFinished
	}

	sort.SliceStable(values, func(i, j int) bool {
		return values[i].Timestamp.Before(values[j].Timestamp)
	})

	var pendingSoC *int
	changed := false
	for i := range values {
		sample := values[i]

		if sample.IsStateOfCharge() {
			soc := int(sample.Value)
			transaction.CurrentStateOfCharge = soc
			pendingSoC = &soc
			s.storeMeterValue(&sample)
			changed = true
			continue
		}
		if !sample.IsEnergyRegister() {
			// power, current, voltage etc. are kept for reporting only
			s.storeMeterValue(&sample)
			continue
		}

		last := transaction.LastSample()
		if !sample.Timestamp.After(last.Timestamp) {
			continue
		}

		consumption := ComputeInterval(last, sample)
		transaction.CurrentConsumptionW = consumption.InstantPowerW
		transaction.CurrentTotalConsumptionWh += consumption.ConsumptionWh
		transaction.CurrentTotalInactivitySecs += consumption.InactivitySecs
		consumption.CumulatedConsumptionWh = transaction.CurrentTotalConsumptionWh
		consumption.StateOfCharge = pendingSoC
		pendingSoC = nil

		if s.pricing != nil {
			if err := s.pricing.PriceUpdate(transaction, &consumption); err != nil {
				s.logger.Error(fmt.Sprintf("pricing update for transaction %d", transaction.Id), err)
			}
		}

		s.storeMeterValue(&sample)
		s.storeConsumption(&consumption)

		applied := sample
		transaction.LastMeterValue = &applied
		changed = true
	}

	if changed && s.database != nil {
		return s.database.UpdateTransaction(transaction)
	}
	return nil
}

// StopRequest carries the final reading of a session. TransactionData may
// hold the Transaction.Begin/Transaction.End bracket samples some vendors
// send only at stop time, plus any periodic samples buffered while offline.
type StopRequest struct {
	MeterStop       float64
	Timestamp       time.Time
	TagId           string
	UserId          string
	Reason          string
	TransactionData []entity.MeterValue
}

// Stop seals the transaction: applies any trailing samples, closes the
// final interval against the stop reading and writes the stop record.
func (s *Service) Stop(transaction *entity.Transaction, stop StopRequest) error {
	if transaction.Finished() {
		return entity.ErrTransactionFinished
	}

	var trailing []entity.MeterValue
	for _, sample := range stop.TransactionData {
		switch sample.Attribute.Context {
		case "Transaction.Begin":
			if sample.IsEnergyRegister() {
				transaction.MeterStart = sample.Value
			}
		case "Transaction.End":
			if sample.IsEnergyRegister() && sample.Value > 0 {
				stop.MeterStop = sample.Value
			}
		default:
			trailing = append(trailing, sample)
		}
	}
	if len(trailing) > 0 {
		if err := s.ApplyMeterValues(transaction, trailing); err != nil {
			return err
		}
	}

	stopSample := entity.MeterValue{
		TenantId:      transaction.TenantId,
		ChargeBoxId:   transaction.ChargeBoxId,
		ConnectorId:   transaction.ConnectorId,
		TransactionId: transaction.Id,
		Timestamp:     stop.Timestamp,
		Value:         stop.MeterStop,
		Attribute:     entity.DefaultAttribute(),
	}
	final := ComputeInterval(transaction.LastSample(), stopSample)
	transaction.CurrentConsumptionW = 0
	transaction.CurrentTotalConsumptionWh += final.ConsumptionWh
	transaction.CurrentTotalInactivitySecs += final.InactivitySecs
	final.CumulatedConsumptionWh = transaction.CurrentTotalConsumptionWh
	if transaction.CurrentStateOfCharge > 0 {
		soc := transaction.CurrentStateOfCharge
		final.StateOfCharge = &soc
	}

	// a station with a drifting clock can report a stop before its own
	// start; fall back to the wall clock rather than store a negative span
	stoppedAt := stop.Timestamp
	duration := int(stoppedAt.Sub(transaction.StartTime).Seconds())
	if !stoppedAt.After(transaction.StartTime) {
		stoppedAt = now()
		duration = int(stoppedAt.Sub(transaction.StartTime).Seconds())
		// the reported timeline is unusable, so the idle total is rebuilt
		// from the wall clock too, keeping only the interval time that
		// carried consumption
		accounted := int(transaction.LastSample().Timestamp.Sub(transaction.StartTime).Seconds())
		active := accounted - transaction.CurrentTotalInactivitySecs
		if active < 0 {
			active = 0
		}
		if idle := duration - active; idle > transaction.CurrentTotalInactivitySecs {
			transaction.CurrentTotalInactivitySecs = idle
		}
	}

	if s.pricing != nil {
		if err := s.pricing.PriceStop(transaction, &final); err != nil {
			s.logger.Error(fmt.Sprintf("pricing stop for transaction %d", transaction.Id), err)
		}
	}

	transaction.Stop = &entity.TransactionStop{
		MeterStop:           stop.MeterStop,
		Timestamp:           stoppedAt,
		TagId:               stop.TagId,
		UserId:              stop.UserId,
		Reason:              stop.Reason,
		TotalConsumptionWh:  transaction.CurrentTotalConsumptionWh,
		TotalInactivitySecs: transaction.CurrentTotalInactivitySecs,
		TotalDurationSecs:   duration,
		TotalAmount:         transaction.CurrentAmount,
		StateOfCharge:       transaction.CurrentStateOfCharge,
	}

	if s.database != nil {
		s.storeConsumption(&final)
		return s.database.UpdateTransaction(transaction)
	}
	return nil
}

// ForceStop closes a transaction the station no longer knows about, using
// the last applied register reading as the final one. A zero timestamp means
// the server clock.
func (s *Service) ForceStop(transaction *entity.Transaction, reason string, at time.Time) error {
	if at.IsZero() {
		at = now()
	}
	last := transaction.LastSample()
	return s.Stop(transaction, StopRequest{
		MeterStop: last.Value,
		Timestamp: at,
		TagId:     transaction.TagId,
		UserId:    transaction.UserId,
		Reason:    reason,
	})
}

func (s *Service) storeMeterValue(value *entity.MeterValue) {
	if s.database == nil {
		return
	}
	if err := s.database.AddMeterValue(value); err != nil {
		s.logger.Error("store meter value", err)
	}
}

func (s *Service) storeConsumption(consumption *entity.Consumption) {
	if s.database == nil {
		return
	}
	if err := s.database.AddConsumption(consumption); err != nil {
		s.logger.Error("store consumption", err)
	}
}
