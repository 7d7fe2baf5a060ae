package model

// AreaMeasurement is the unit an area is expressed in.
type AreaMeasurement string

// AreaMeasurementSQM is the only measurement FIDJI documents carry.
const AreaMeasurementSQM AreaMeasurement = "SQM"

// AreaType qualifies how an area was measured.
type AreaType string

const (
	AreaTypeNotSpecified AreaType = "NOT_SPECIFIED"
)

// PeriodValueType tags the nature of the values of a period.
type PeriodValueType string

const (
	PeriodValueTypeOther PeriodValueType = "OTHER"
)

// Subset names a model subset a worker supports.
type Subset string

const (
	SubsetS51 Subset = "S5_1"
)
