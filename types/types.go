package types

import (
	"encoding/json"
)

const (
	SubProtocol15 = "ocpp1.5"
	SubProtocol16 = "ocpp1.6"
)

type AuthorizationStatus string

const (
	AuthorizationStatusAccepted     AuthorizationStatus = "Accepted"
	AuthorizationStatusBlocked      AuthorizationStatus = "Blocked"
	AuthorizationStatusExpired      AuthorizationStatus = "Expired"
	AuthorizationStatusInvalid      AuthorizationStatus = "Invalid"
	AuthorizationStatusConcurrentTx AuthorizationStatus = "ConcurrentTx"
)

type IdTagInfo struct {
	ExpiryDate  *DateTime           `json:"expiryDate,omitempty"`
	ParentIdTag string              `json:"parentIdTag,omitempty" validate:"omitempty,max=20"`
	Status      AuthorizationStatus `json:"status" validate:"required"`
}

func NewIdTagInfo(status AuthorizationStatus) *IdTagInfo {
	return &IdTagInfo{Status: status}
}

type ReadingContext string
type ValueFormat string
type Measurand string
type Phase string
type Location string
type UnitOfMeasure string

const (
	ReadingContextInterruptionBegin ReadingContext = "Interruption.Begin"
	ReadingContextInterruptionEnd   ReadingContext = "Interruption.End"
	ReadingContextOther             ReadingContext = "Other"
	ReadingContextSampleClock       ReadingContext = "Sample.Clock"
	ReadingContextSamplePeriodic    ReadingContext = "Sample.Periodic"
	ReadingContextTransactionBegin  ReadingContext = "Transaction.Begin"
	ReadingContextTransactionEnd    ReadingContext = "Transaction.End"
	ReadingContextTrigger           ReadingContext = "Trigger"

	ValueFormatRaw        ValueFormat = "Raw"
	ValueFormatSignedData ValueFormat = "SignedData"

	MeasurandCurrentImport              Measurand = "Current.Import"
	MeasurandCurrentOffered             Measurand = "Current.Offered"
	MeasurandEnergyActiveImportRegister Measurand = "Energy.Active.Import.Register"
	MeasurandEnergyActiveImportInterval Measurand = "Energy.Active.Import.Interval"
	MeasurandPowerActiveImport          Measurand = "Power.Active.Import"
	MeasurandPowerOffered               Measurand = "Power.Offered"
	MeasurandSoC                        Measurand = "SoC"
	MeasurandTemperature                Measurand = "Temperature"
	MeasurandVoltage                    Measurand = "Voltage"

	PhaseL1 Phase = "L1"
	PhaseL2 Phase = "L2"
	PhaseL3 Phase = "L3"

	LocationBody   Location = "Body"
	LocationCable  Location = "Cable"
	LocationEV     Location = "EV"
	LocationInlet  Location = "Inlet"
	LocationOutlet Location = "Outlet"

	UnitOfMeasureWh      UnitOfMeasure = "Wh"
	UnitOfMeasureKWh     UnitOfMeasure = "kWh"
	UnitOfMeasureW       UnitOfMeasure = "W"
	UnitOfMeasureKW      UnitOfMeasure = "kW"
	UnitOfMeasureA       UnitOfMeasure = "A"
	UnitOfMeasureV       UnitOfMeasure = "V"
	UnitOfMeasureCelsius UnitOfMeasure = "Celsius"
	UnitOfMeasurePercent UnitOfMeasure = "Percent"
)

type SampledValue struct {
	Value     string         `json:"value" validate:"required"`
	Context   ReadingContext `json:"context,omitempty"`
	Format    ValueFormat    `json:"format,omitempty"`
	Measurand Measurand      `json:"measurand,omitempty"`
	Phase     Phase          `json:"phase,omitempty"`
	Location  Location       `json:"location,omitempty"`
	Unit      UnitOfMeasure  `json:"unit,omitempty"`
}

// MeterValue is one timestamped group of samples as sent on the wire.
// Decoding tolerates the protocol variants seen in the field, see UnmarshalJSON.
type MeterValue struct {
	Timestamp    *DateTime      `json:"timestamp" validate:"required"`
	SampledValue []SampledValue `json:"sampledValue" validate:"required,min=1,dive"`
}

// wireMeterValue covers all known shapes of one meter value entry:
// ocpp1.6 sends sampledValue as an array, some firmwares send a single
// object, and ocpp1.5 sends a "value" scalar with attribute fields inlined.
type wireMeterValue struct {
	Timestamp    *DateTime       `json:"timestamp"`
	SampledValue json.RawMessage `json:"sampledValue"`
	Value        json.RawMessage `json:"value"`
	Context      ReadingContext  `json:"context"`
	Format       ValueFormat     `json:"format"`
	Measurand    Measurand       `json:"measurand"`
	Location     Location        `json:"location"`
	Unit         UnitOfMeasure   `json:"unit"`
}

func (mv *MeterValue) UnmarshalJSON(data []byte) error {
	var wire wireMeterValue
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	mv.Timestamp = wire.Timestamp

	if len(wire.SampledValue) > 0 {
		if wire.SampledValue[0] == '[' {
			return json.Unmarshal(wire.SampledValue, &mv.SampledValue)
		}
		var single SampledValue
		if err := json.Unmarshal(wire.SampledValue, &single); err != nil {
			return err
		}
		mv.SampledValue = []SampledValue{single}
		return nil
	}

	if len(wire.Value) > 0 {
		sample, err := parseLegacyValue(wire)
		if err != nil {
			return err
		}
		mv.SampledValue = []SampledValue{sample}
	}
	return nil
}

// parseLegacyValue handles the ocpp1.5 scalar form: either a plain string
// number or an XML-attribute style object {"$attributes":{...},"$value":"..."}.
func parseLegacyValue(wire wireMeterValue) (SampledValue, error) {
	sample := SampledValue{
		Context:   wire.Context,
		Format:    wire.Format,
		Measurand: wire.Measurand,
		Location:  wire.Location,
		Unit:      wire.Unit,
	}
	if wire.Value[0] != '{' {
		var scalar string
		if err := json.Unmarshal(wire.Value, &scalar); err != nil {
			// some devices send bare numbers
			var number float64
			if err = json.Unmarshal(wire.Value, &number); err != nil {
				return sample, err
			}
			sample.Value = trimFloat(number)
			return sample, nil
		}
		sample.Value = scalar
		return sample, nil
	}
	var attributed struct {
		Attributes struct {
			Context   ReadingContext `json:"context"`
			Format    ValueFormat    `json:"format"`
			Measurand Measurand      `json:"measurand"`
			Location  Location       `json:"location"`
			Unit      UnitOfMeasure  `json:"unit"`
		} `json:"$attributes"`
		Value string `json:"$value"`
	}
	if err := json.Unmarshal(wire.Value, &attributed); err != nil {
		return sample, err
	}
	sample.Value = attributed.Value
	if attributed.Attributes.Context != "" {
		sample.Context = attributed.Attributes.Context
	}
	if attributed.Attributes.Format != "" {
		sample.Format = attributed.Attributes.Format
	}
	if attributed.Attributes.Measurand != "" {
		sample.Measurand = attributed.Attributes.Measurand
	}
	if attributed.Attributes.Location != "" {
		sample.Location = attributed.Attributes.Location
	}
	if attributed.Attributes.Unit != "" {
		sample.Unit = attributed.Attributes.Unit
	}
	return sample, nil
}

func trimFloat(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}

type RemoteStartStopStatus string

const (
	RemoteStartStopStatusAccepted RemoteStartStopStatus = "Accepted"
	RemoteStartStopStatusRejected RemoteStartStopStatus = "Rejected"
)
