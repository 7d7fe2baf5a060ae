package model

import "time"

// =============================================================================
// ENTITIES
// =============================================================================

// Company is a holding company. A nil value in Properties is a reference
// whose asset has not been resolved (or never will be).
type Company struct {
	ObjectIDSender string
	Label          string
	Properties     map[string]*Property
}

// Property is a real-estate asset.
type Property struct {
	ObjectIDSender   string
	ObjectIDReceiver string
	Label            string
	Address          *Address
	Buildings        map[string]*Building
	Leases           map[string]*Lease
}

// Building is a physical building of a property.
type Building struct {
	ObjectIDSender   string
	ObjectIDReceiver string
	Label            string
	Address          *Address
	Units            map[string]*Unit
}

// Unit is a physical lettable unit. Hash is a derived cross-reference key,
// never a primary key.
type Unit struct {
	ObjectIDSender   string
	ObjectIDReceiver string
	NumberOfRooms    *float64
	LettableUnits    *int
	LettableArea     *Area
	AreaMeasurement  AreaMeasurement
	Address          *Address
	Hash             string
}

// Lease is a rental contract on a property.
type Lease struct {
	ObjectIDSender         string
	BeginRentPayment       time.Time
	ContractCompletionDate time.Time
	EndOptionDate          time.Time

	// LeasedUnits is keyed by unit hash.
	LeasedUnits map[string]*LeasedUnit
}

// LeasedUnit refers to a Unit of the same property by hash only.
type LeasedUnit struct {
	Hash string
}

// Address is owned by exactly one entity (a property and its parallel
// building created from the same asset share one instance).
type Address struct {
	Street string
	Zip    string
	City   string
	Floor  string
}

// Area is a measured surface.
type Area struct {
	Value       float64
	Measurement AreaMeasurement
	Type        AreaType
}

// =============================================================================
// ACCESSORS
// =============================================================================

// AddProperty registers p under id, creating the map on first use. A nil p
// records an unresolved reference.
func (c *Company) AddProperty(id string, p *Property) {
	if c.Properties == nil {
		c.Properties = make(map[string]*Property)
	}
	c.Properties[id] = p
}

// AddBuilding registers b under its sender id.
func (p *Property) AddBuilding(b *Building) {
	if p.Buildings == nil {
		p.Buildings = make(map[string]*Building)
	}
	p.Buildings[b.ObjectIDSender] = b
}

// AddLease registers l under its sender id.
func (p *Property) AddLease(l *Lease) {
	if p.Leases == nil {
		p.Leases = make(map[string]*Lease)
	}
	p.Leases[l.ObjectIDSender] = l
}

// AddUnit registers u under its sender id.
func (b *Building) AddUnit(u *Unit) {
	if b.Units == nil {
		b.Units = make(map[string]*Unit)
	}
	b.Units[u.ObjectIDSender] = u
}

// AddLeasedUnit registers lu under its hash.
func (l *Lease) AddLeasedUnit(lu *LeasedUnit) {
	if l.LeasedUnits == nil {
		l.LeasedUnits = make(map[string]*LeasedUnit)
	}
	l.LeasedUnits[lu.Hash] = lu
}

// UnitIDByHash scans every building and then every unit of the property and
// returns the sender id of the first unit whose hash matches.
func (p *Property) UnitIDByHash(hash string) (string, bool) {
	for _, bid := range SortedKeys(p.Buildings) {
		b := p.Buildings[bid]
		if b == nil {
			continue
		}
		for _, uid := range SortedKeys(b.Units) {
			u := b.Units[uid]
			if u != nil && u.Hash == hash {
				return u.ObjectIDSender, true
			}
		}
	}
	return "", false
}
