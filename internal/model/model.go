// =============================================================================
// FIDJI Converter - Data Model
// =============================================================================
//
// This package contains the normalized property/lease/company model that the
// FIDJI reader builds and the FIDJI writer walks. Types defined here are used
// by:
//   - xmlreader
//   - xmlwriter
//   - validation
//   - xlsxreport
//   - converter
//
// OWNERSHIP:
//   Container
//   └── Period (keyed by identifier)
//       └── Data
//           └── Company (keyed by sender id)
//               └── Property (keyed by sender id, nil until resolved)
//                   ├── Building (keyed by sender id)
//                   │   └── Unit (keyed by sender id)
//                   └── Lease (keyed by sender id)
//                       └── LeasedUnit (keyed by unit hash)
//
// =============================================================================

package model

import (
	"sort"
	"time"
)

// =============================================================================
// ROOT AGGREGATE
// =============================================================================

// Container is the root of the model. It is created once per read or write
// call and is not safe for concurrent use.
type Container struct {
	Meta Meta

	// Periods maps a period identifier ("2021-7") to its Period.
	Periods map[string]*Period
}

// Meta describes the producer of a Container.
type Meta struct {
	Format  string
	Version string
	Creator string
	Created time.Time
}

// NewContainer returns an empty Container with an initialized period map.
func NewContainer() *Container {
	return &Container{
		Periods: make(map[string]*Period),
	}
}

// FirstPeriod returns the period with the lowest identifier, or nil when the
// container holds no period.
func (c *Container) FirstPeriod() *Period {
	keys := SortedKeys(c.Periods)
	if len(keys) == 0 {
		return nil
	}
	return c.Periods[keys[0]]
}

// =============================================================================
// PERIOD
// =============================================================================

// Period represents one reporting interval.
type Period struct {
	From       time.Time
	To         time.Time
	PeriodType Duration
	ValueType  PeriodValueType
	Identifier string
	Data       *Data
}

// Duration is a calendar length (months are not a fixed number of days).
type Duration struct {
	Years  int
	Months int
	Days   int
}

// Months returns a Duration of n calendar months.
func Months(n int) Duration {
	return Duration{Months: n}
}

// Data owns the companies of a period.
type Data struct {
	Companies map[string]*Company
}

// NewData returns an empty Data.
func NewData() *Data {
	return &Data{Companies: make(map[string]*Company)}
}

// SortedKeys returns the keys of m in ascending order. Every traversal of the
// model goes through it so output does not depend on Go map ordering.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
