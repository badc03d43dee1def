package billing

import (
	"testing"
	"time"

	"emobility/entity"
	"emobility/internal/config"
)

type nopLogger struct{}

func (nopLogger) FeatureEvent(feature, id, text string) {}
func (nopLogger) RawDataEvent(direction, data string)   {}
func (nopLogger) Debug(text string)                     {}
func (nopLogger) Warn(text string)                      {}
func (nopLogger) Error(text string, err error)          {}

func testRates(pricePerKwh, pricePerHour, gracePeriodMins int) *Rates {
	conf := &config.Config{}
	conf.Pricing.PricePerKwh = pricePerKwh
	conf.Pricing.PricePerHour = pricePerHour
	conf.Pricing.GracePeriodMins = gracePeriodMins
	conf.Pricing.Currency = "EUR"
	return NewRates(conf, nopLogger{})
}

func interval(tx *entity.Transaction, endedAt time.Time, cumulatedWh float64) entity.Consumption {
	return entity.Consumption{
		TenantId:               tx.TenantId,
		ChargeBoxId:            tx.ChargeBoxId,
		ConnectorId:            tx.ConnectorId,
		TransactionId:          tx.Id,
		EndedAt:                endedAt,
		CumulatedConsumptionWh: cumulatedWh,
	}
}

func TestPriceStartStampsSource(t *testing.T) {
	rates := testRates(30, 0, 60)
	tx := &entity.Transaction{Id: 1, StartTime: time.Now()}
	c := entity.Consumption{}
	if err := rates.PriceStart(tx, &c); err != nil {
		t.Fatalf("price start: %v", err)
	}
	if c.PricingSource != "flat-rate" || c.Currency != "EUR" {
		t.Fatalf("start record not stamped: %+v", c)
	}
	if c.Amount != 0 || c.CumulatedAmount != 0 {
		t.Fatalf("start record must be free: %+v", c)
	}
}

func TestPriceUpdateEnergyOnly(t *testing.T) {
	rates := testRates(30, 0, 60) // 30 ct/kWh
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tx := &entity.Transaction{Id: 1, StartTime: start}

	c := interval(tx, start.Add(30*time.Minute), 5000) // 5 kWh
	if err := rates.PriceUpdate(tx, &c); err != nil {
		t.Fatalf("price update: %v", err)
	}
	if c.CumulatedAmount != 150 {
		t.Fatalf("5 kWh at 30 ct must be 150 ct, got %d", c.CumulatedAmount)
	}
	if c.Amount != 150 || tx.CurrentAmount != 150 {
		t.Fatalf("first interval carries the full amount: %+v", c)
	}

	// second interval adds 1 kWh, only the delta is billed
	c2 := interval(tx, start.Add(45*time.Minute), 6000)
	if err := rates.PriceUpdate(tx, &c2); err != nil {
		t.Fatalf("price update: %v", err)
	}
	if c2.CumulatedAmount != 180 || c2.Amount != 30 {
		t.Fatalf("expected incremental 30 ct, got %+v", c2)
	}
}

func TestPriceTimeAfterGracePeriod(t *testing.T) {
	rates := testRates(0, 120, 60) // 120 ct/h after one hour free
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tx := &entity.Transaction{Id: 1, StartTime: start}

	within := interval(tx, start.Add(59*time.Minute), 0)
	if err := rates.PriceUpdate(tx, &within); err != nil {
		t.Fatalf("price update: %v", err)
	}
	if within.CumulatedAmount != 0 {
		t.Fatalf("grace period must be free, got %d", within.CumulatedAmount)
	}

	beyond := interval(tx, start.Add(90*time.Minute), 0)
	if err := rates.PriceUpdate(tx, &beyond); err != nil {
		t.Fatalf("price update: %v", err)
	}
	if beyond.CumulatedAmount != 60 {
		t.Fatalf("30 billable minutes at 120 ct/h must be 60 ct, got %d", beyond.CumulatedAmount)
	}
}

func TestPriceStopSealsTotal(t *testing.T) {
	rates := testRates(25, 60, 0)
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tx := &entity.Transaction{Id: 1, StartTime: start}

	running := interval(tx, start.Add(time.Hour), 4000)
	if err := rates.PriceUpdate(tx, &running); err != nil {
		t.Fatalf("price update: %v", err)
	}

	final := interval(tx, start.Add(2*time.Hour), 8000)
	if err := rates.PriceStop(tx, &final); err != nil {
		t.Fatalf("price stop: %v", err)
	}
	// 8 kWh * 25 ct + 120 min * 1 ct
	if final.CumulatedAmount != 320 {
		t.Fatalf("expected 320 ct total, got %d", final.CumulatedAmount)
	}
	if tx.CurrentAmount != 320 {
		t.Fatalf("transaction total not updated: %d", tx.CurrentAmount)
	}
	if final.Amount != 320-running.CumulatedAmount {
		t.Fatalf("final increment wrong: %d", final.Amount)
	}
}

func TestPriceNeverNegative(t *testing.T) {
	rates := testRates(30, 0, 60)
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tx := &entity.Transaction{Id: 1, StartTime: start, CurrentAmount: 500}

	c := interval(tx, start.Add(time.Hour), 1000) // cumulated 30 ct < already billed
	if err := rates.PriceUpdate(tx, &c); err != nil {
		t.Fatalf("price update: %v", err)
	}
	if c.Amount != 0 {
		t.Fatalf("increment must never be negative, got %d", c.Amount)
	}
}
