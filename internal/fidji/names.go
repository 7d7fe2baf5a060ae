package fidji

import "strings"

// =============================================================================
// ELEMENT NAMES
// =============================================================================
// Only the element set of the FIDJI 2.0 family is supported.

const (
	ElemRoot = "FIDJI"

	// Assets.
	ElemAssetList     = "ASTl"
	ElemAsset         = "AST00"
	ElemAssetReceiver = "AST70"
	ElemAddressList   = "AST22gADl"
	ElemAddress       = "gAD00"
	ElemStreet        = "gAD01"
	ElemZip           = "gAD04"
	ElemCity          = "gAD05"

	// Units. Both list elements carry the same unit structure; the writer
	// always emits ElemUnitList.
	ElemUnitList      = "AST24PRTl"
	ElemUnitListAlt   = "AST23PRTl"
	ElemUnit          = "PRT00"
	ElemUnitReceiver  = "PRT25"
	ElemUnitRooms     = "PRT24"
	ElemUnitFloor     = "PRT18"
	ElemUnitLettables = "PRT21"
	ElemUnitArea      = "PRT05"

	// Leases.
	ElemLeaseList       = "AST25LEAl"
	ElemLease           = "LEA00"
	ElemLeaseRentStart  = "LEA38"
	ElemLeaseCompletion = "LEA05"
	ElemLeaseEndOption  = "LEA07"
	ElemLeasedUnitList  = "LEA22aLPl"
	ElemLeasedUnit      = "aLP00"

	// Companies.
	ElemCompanyList     = "gHOl"
	ElemCompany         = "gHO00"
	ElemCompanyProperty = "gHO02"
)

// =============================================================================
// ATTRIBUTE NAMES AND FIXED VALUES
// =============================================================================

const (
	AttrID          = "id"
	AttrName        = "name"
	AttrVersion     = "version"
	AttrDate        = "date"
	AttrSituation   = "situation"
	AttrUnitRef     = "idPRT"
	AttrPropertyRef = "idRef-AST"

	FormatVersion          = "2.0"
	SupportedVersionFamily = "2."
	Namespace              = "http://www.format-Fidji.org/XMLSchema-2.0"
	SchemaInstance         = "http://www.w3.org/2001/XMLSchema-instance"
	SchemaLocation         = Namespace + " http://www.format-Fidji.org/XMLSchema-2.0/Fidji-Full-2-0.xsd"

	// DateLayout is the ISO calendar date used by every date field.
	DateLayout = "2006-01-02"
)

// Join builds a dispatch path from element names.
func Join(names ...string) string {
	return strings.Join(names, "/")
}
