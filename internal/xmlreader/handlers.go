package xmlreader

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ginjaninja78/fidji-converter/internal/fidji"
	"github.com/ginjaninja78/fidji-converter/internal/model"
)

// =============================================================================
// PARSER STATE
// =============================================================================

// state carries the current-entity cursors between handler calls. Each
// cursor points at the innermost open entity of its kind.
type state struct {
	hash fidji.HashCoder

	period *model.Period
	data   *model.Data

	company  *model.Company
	property *model.Property
	building *model.Building
	address  *model.Address
	unit     *model.Unit
	lease    *model.Lease

	// properties accumulates every asset in document order for the
	// company -> property resolution pass.
	properties []*model.Property
}

func newState(hash fidji.HashCoder) *state {
	return &state{
		hash: hash,
		data: model.NewData(),
	}
}

// =============================================================================
// ELEMENT ACCESS
// =============================================================================

// element is the start element a handler runs against.
type element struct {
	path     string
	start    xml.StartElement
	dec      *xml.Decoder
	consumed bool
}

// attr returns the value of the attribute with the given local name.
func (e *element) attr(name string) (string, bool) {
	for _, a := range e.start.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (e *element) requireAttr(name string) (string, error) {
	v, ok := e.attr(name)
	if !ok {
		return "", fidji.Errorf(fidji.ErrMissingAttribute, e.path, name, nil)
	}
	return v, nil
}

// text reads the character content up to the element's end tag. The element
// must not contain child elements.
func (e *element) text() (string, error) {
	var b strings.Builder
	for {
		tok, err := e.dec.Token()
		if err == io.EOF {
			return "", fidji.Errorf(fidji.ErrMalformedXML, e.path, "unexpected end of document", nil)
		}
		if err != nil {
			return "", tokenError(e.path, err)
		}

		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			return "", fidji.Errorf(fidji.ErrMalformedXML, e.path, "unexpected child element "+t.Name.Local, nil)
		case xml.EndElement:
			e.consumed = true
			return b.String(), nil
		}
	}
}

func (e *element) date() (time.Time, error) {
	s, err := e.text()
	if err != nil {
		return time.Time{}, err
	}
	d, err := fidji.ParseDate(s)
	if err != nil {
		return time.Time{}, fidji.Errorf(fidji.ErrUnparseableValue, e.path, s, err)
	}
	return d, nil
}

func (e *element) real() (float64, error) {
	s, err := e.text()
	if err != nil {
		return 0, err
	}
	f, err := fidji.ParseReal(s)
	if err != nil {
		return 0, fidji.Errorf(fidji.ErrUnparseableValue, e.path, s, err)
	}
	return f, nil
}

// =============================================================================
// DISPATCH TABLE
// =============================================================================

type handler func(s *state, e *element) error

var (
	pathAsset      = fidji.Join(fidji.ElemRoot, fidji.ElemAssetList, fidji.ElemAsset)
	pathAddress    = fidji.Join(pathAsset, fidji.ElemAddressList, fidji.ElemAddress)
	pathUnit       = fidji.Join(pathAsset, fidji.ElemUnitList, fidji.ElemUnit)
	pathUnitAlt    = fidji.Join(pathAsset, fidji.ElemUnitListAlt, fidji.ElemUnit)
	pathLease      = fidji.Join(pathAsset, fidji.ElemLeaseList, fidji.ElemLease)
	pathLeasedUnit = fidji.Join(pathLease, fidji.ElemLeasedUnitList, fidji.ElemLeasedUnit)
	pathCompany    = fidji.Join(fidji.ElemRoot, fidji.ElemCompanyList, fidji.ElemCompany)
)

// handlers maps an exact element path to the action run when it is entered.
var handlers = buildHandlers()

func buildHandlers() map[string]handler {
	h := map[string]handler{
		fidji.ElemRoot: startPeriod,
		pathAsset:      openAsset,
		pathLease:      openLease,
		pathLeasedUnit: addLeasedUnit,
		pathCompany:    openCompany,
	}

	h[fidji.Join(pathAsset, fidji.ElemAssetReceiver)] = setAssetReceiver
	h[fidji.Join(pathAddress, fidji.ElemStreet)] = setStreet
	h[fidji.Join(pathAddress, fidji.ElemZip)] = setZip
	h[fidji.Join(pathAddress, fidji.ElemCity)] = setCity

	h[fidji.Join(pathLease, fidji.ElemLeaseRentStart)] = setRentStart
	h[fidji.Join(pathLease, fidji.ElemLeaseCompletion)] = setCompletion
	h[fidji.Join(pathLease, fidji.ElemLeaseEndOption)] = setEndOption

	h[fidji.Join(pathCompany, fidji.ElemCompanyProperty)] = addPropertyReference

	// Both unit list elements feed the same handlers.
	for _, unit := range []string{pathUnit, pathUnitAlt} {
		h[unit] = openUnit
		h[fidji.Join(unit, fidji.ElemUnitReceiver)] = setUnitReceiver
		h[fidji.Join(unit, fidji.ElemUnitRooms)] = setUnitRooms
		h[fidji.Join(unit, fidji.ElemUnitFloor)] = setUnitFloor
		h[fidji.Join(unit, fidji.ElemUnitLettables)] = setUnitLettables
		h[fidji.Join(unit, fidji.ElemUnitArea)] = setUnitArea
	}

	return h
}

// =============================================================================
// PERIOD
// =============================================================================

// startPeriod derives the period from the situation date: To is the date,
// From is the first day of its month.
func startPeriod(s *state, e *element) error {
	if s.period != nil {
		return fidji.Errorf(fidji.ErrMalformedXML, e.path, "more than one root element", nil)
	}

	if version, ok := e.attr(fidji.AttrVersion); ok && !strings.HasPrefix(version, fidji.SupportedVersionFamily) {
		return fidji.Errorf(fidji.ErrUnsupportedVersion, e.path, version, nil)
	}

	situation, err := e.requireAttr(fidji.AttrSituation)
	if err != nil {
		return err
	}
	to, err := fidji.ParseDate(situation)
	if err != nil {
		return fidji.Errorf(fidji.ErrUnparseableValue, e.path, fidji.AttrSituation+"="+situation, err)
	}

	s.period = &model.Period{
		From:       time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC),
		To:         to,
		PeriodType: model.Months(1),
		ValueType:  model.PeriodValueTypeOther,
		Identifier: fmt.Sprintf("%d-%d", to.Year(), int(to.Month())),
		Data:       s.data,
	}
	return nil
}

// =============================================================================
// ASSETS
// =============================================================================

// openAsset opens a Property and a parallel Building sharing one Address.
func openAsset(s *state, e *element) error {
	id, err := e.requireAttr(fidji.AttrID)
	if err != nil {
		return err
	}
	name, _ := e.attr(fidji.AttrName)

	s.address = &model.Address{}
	s.property = &model.Property{
		ObjectIDSender: id,
		Label:          name,
		Address:        s.address,
	}
	s.building = &model.Building{
		ObjectIDSender: id,
		Label:          name,
		Address:        s.address,
	}
	s.property.AddBuilding(s.building)
	s.properties = append(s.properties, s.property)
	return nil
}

func setAssetReceiver(s *state, e *element) error {
	v, err := e.text()
	if err != nil {
		return err
	}
	s.property.ObjectIDReceiver = v
	s.building.ObjectIDReceiver = v
	return nil
}

func setStreet(s *state, e *element) error {
	v, err := e.text()
	if err != nil {
		return err
	}
	s.address.Street = v
	return nil
}

func setZip(s *state, e *element) error {
	v, err := e.text()
	if err != nil {
		return err
	}
	s.address.Zip = v
	return nil
}

func setCity(s *state, e *element) error {
	v, err := e.text()
	if err != nil {
		return err
	}
	s.address.City = v
	return nil
}

// =============================================================================
// UNITS
// =============================================================================

func openUnit(s *state, e *element) error {
	id, err := e.requireAttr(fidji.AttrID)
	if err != nil {
		return err
	}

	s.unit = &model.Unit{
		ObjectIDSender:  id,
		AreaMeasurement: model.AreaMeasurementSQM,
		Hash:            s.hash.UnitHash(s.building.ObjectIDSender, id),
	}
	s.building.AddUnit(s.unit)
	return nil
}

func setUnitReceiver(s *state, e *element) error {
	v, err := e.text()
	if err != nil {
		return err
	}
	s.unit.ObjectIDReceiver = v
	return nil
}

func setUnitRooms(s *state, e *element) error {
	f, err := e.real()
	if err != nil {
		return err
	}
	s.unit.NumberOfRooms = &f
	return nil
}

func setUnitFloor(s *state, e *element) error {
	v, err := e.text()
	if err != nil {
		return err
	}
	if s.unit.Address == nil {
		s.unit.Address = &model.Address{}
	}
	s.unit.Address.Floor = v
	return nil
}

func setUnitLettables(s *state, e *element) error {
	v, err := e.text()
	if err != nil {
		return err
	}
	n, err := fidji.ParseTruncatedInt(v)
	if err != nil {
		return fidji.Errorf(fidji.ErrUnparseableValue, e.path, v, err)
	}
	s.unit.LettableUnits = &n
	return nil
}

func setUnitArea(s *state, e *element) error {
	f, err := e.real()
	if err != nil {
		return err
	}
	s.unit.LettableArea = &model.Area{
		Value:       f,
		Measurement: model.AreaMeasurementSQM,
		Type:        model.AreaTypeNotSpecified,
	}
	return nil
}

// =============================================================================
// LEASES
// =============================================================================

func openLease(s *state, e *element) error {
	id, err := e.requireAttr(fidji.AttrID)
	if err != nil {
		return err
	}

	s.lease = &model.Lease{ObjectIDSender: id}
	s.property.AddLease(s.lease)
	return nil
}

func setRentStart(s *state, e *element) error {
	d, err := e.date()
	if err != nil {
		return err
	}
	s.lease.BeginRentPayment = d
	return nil
}

func setCompletion(s *state, e *element) error {
	d, err := e.date()
	if err != nil {
		return err
	}
	s.lease.ContractCompletionDate = d
	return nil
}

func setEndOption(s *state, e *element) error {
	d, err := e.date()
	if err != nil {
		return err
	}
	s.lease.EndOptionDate = d
	return nil
}

// addLeasedUnit links the lease to a unit of the current building by hash.
func addLeasedUnit(s *state, e *element) error {
	ref, err := e.requireAttr(fidji.AttrUnitRef)
	if err != nil {
		return err
	}

	s.lease.AddLeasedUnit(&model.LeasedUnit{
		Hash: s.hash.UnitHash(s.building.ObjectIDSender, ref),
	})
	return nil
}

// =============================================================================
// COMPANIES
// =============================================================================

func openCompany(s *state, e *element) error {
	id, err := e.requireAttr(fidji.AttrID)
	if err != nil {
		return err
	}
	name, _ := e.attr(fidji.AttrName)

	s.company = &model.Company{
		ObjectIDSender: id,
		Label:          name,
	}
	s.data.Companies[id] = s.company
	return nil
}

// addPropertyReference records a placeholder resolved after the scan.
func addPropertyReference(s *state, e *element) error {
	ref, err := e.requireAttr(fidji.AttrPropertyRef)
	if err != nil {
		return err
	}
	s.company.AddProperty(ref, nil)
	return nil
}
