// =============================================================================
// FIDJI Converter - XML Writer Module
// =============================================================================
//
// This module serializes a model.Container back to a FIDJI document. The
// output is produced by hand, element by element, so that indentation and
// element order match what the format's consumers expect.
//
// XML STRUCTURE:
//   <?xml version="1.0" encoding="utf-8"?>
//   <FIDJI version="2.0" date="..." situation="..." xmlns=... >
//     <ASTl>
//       <AST00 id="B1" name="...">         <!-- one per building -->
//         <AST70>receiver</AST70>
//         <AST22gADl>
//           <gAD00>
//             <gAD01>street</gAD01>
//             <gAD04>zip</gAD04>
//             <gAD05>city</gAD05>
//           </gAD00>
//         </AST22gADl>
//         <AST24PRTl>
//           <PRT00 id="U1">...</PRT00>
//         </AST24PRTl>
//         <AST25LEAl>
//           <LEA00 id="L1">
//             <LEA22aLPl>
//               <aLP00 idPRT="U1"></aLP00>
//             </LEA22aLPl>
//           </LEA00>
//         </AST25LEAl>
//       </AST00>
//     </ASTl>
//     <gHOl>
//       <gHO00 id="C1" name="...">
//         <gHO02 idRef-AST="P1"></gHO02>
//       </gHO00>
//     </gHOl>
//   </FIDJI>
//
// FORMATTING:
//   Every element starts on a new line indented by depth. Elements holding
//   text close on the same line; elements holding children close on their
//   own line at their own depth.
//
// =============================================================================

package xmlwriter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/fidji-converter/internal/fidji"
	"github.com/ginjaninja78/fidji-converter/internal/model"
)

// ErrNoPeriod is returned for a container without any period.
var ErrNoPeriod = errors.New("container holds no period")

// ErrUnknownEncoding is returned for an Options.Encoding that names no known
// character encoding.
var ErrUnknownEncoding = errors.New("unknown output encoding")

// =============================================================================
// WRITE OPTIONS
// =============================================================================

// Options contains options for XML generation.
type Options struct {
	// Indent is repeated once per nesting depth.
	// Default: "  " (two spaces)
	Indent string

	// Newline precedes every element.
	// Default: "\r\n"
	Newline string

	// XMLVersion is the XML version for the declaration.
	// Default: "1.0"
	XMLVersion string

	// Encoding is declared in the XML header and used to encode the
	// document. Characters it cannot represent are written as numeric
	// character references.
	// Default: "utf-8"
	Encoding string

	// Now provides the date stamp of the root element.
	Now func() time.Time

	// Logger receives debug output. Default: discards.
	Logger logrus.FieldLogger
}

// DefaultOptions returns the default generation options.
func DefaultOptions() Options {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return Options{
		Indent:     "  ",
		Newline:    "\r\n",
		XMLVersion: "1.0",
		Encoding:   "utf-8",
		Now:        time.Now,
		Logger:     l,
	}
}

// =============================================================================
// XML GENERATION
// =============================================================================

// Write serializes c to w with the default options.
func Write(w io.Writer, c *model.Container) error {
	return WriteWithOptions(w, c, DefaultOptions())
}

// WriteWithOptions serializes c to w.
//
// PARAMETERS:
//   - w: The destination. It is not closed.
//   - c: A container holding exactly one period.
//   - opts: Formatting options; zero fields fall back to the defaults.
//
// RETURNS:
//   - ErrNoPeriod if the container is empty.
//   - ErrUnknownEncoding if opts.Encoding is not a known encoding label.
//   - A fidji.ErrStream error if the destination fails. The document is
//     then incomplete.
func WriteWithOptions(w io.Writer, c *model.Container, opts Options) error {
	opts = withDefaults(opts)

	if c == nil {
		return ErrNoPeriod
	}
	period := c.FirstPeriod()
	if period == nil {
		return ErrNoPeriod
	}

	sink, err := encodedSink(w, opts.Encoding)
	if err != nil {
		return err
	}

	dw := &docWriter{w: bufio.NewWriter(sink), opts: opts}
	dw.document(period)

	if dw.err == nil {
		dw.err = dw.w.Flush()
	}
	if dw.err == nil {
		dw.err = sink.Close()
	}
	if dw.err != nil {
		return fidji.Errorf(fidji.ErrStream, "", "writing document", dw.err)
	}

	opts.Logger.WithFields(logrus.Fields{
		"period": period.Identifier,
		"assets": dw.assets,
	}).Debug("wrote FIDJI document")

	return nil
}

// encodedSink wraps w in an encoder for the named encoding. Closing the sink
// flushes the encoder but leaves w open.
func encodedSink(w io.Writer, label string) (io.WriteCloser, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, label)
	}
	if name, _ := htmlindex.Name(enc); name == "utf-8" {
		return nopCloser{w}, nil
	}
	return transform.NewWriter(w, encoding.HTMLEscapeUnsupported(enc.NewEncoder())), nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func withDefaults(opts Options) Options {
	d := DefaultOptions()
	if opts.Indent == "" {
		opts.Indent = d.Indent
	}
	if opts.Newline == "" {
		opts.Newline = d.Newline
	}
	if opts.XMLVersion == "" {
		opts.XMLVersion = d.XMLVersion
	}
	if opts.Encoding == "" {
		opts.Encoding = d.Encoding
	}
	if opts.Now == nil {
		opts.Now = d.Now
	}
	if opts.Logger == nil {
		opts.Logger = d.Logger
	}
	return opts
}

// =============================================================================
// DOCUMENT WALK
// =============================================================================

// document emits the declaration, the asset list and the company list.
func (dw *docWriter) document(period *model.Period) {
	companies := map[string]*model.Company{}
	if period.Data != nil {
		companies = period.Data.Companies
	}

	dw.raw(`<?xml version="` + dw.opts.XMLVersion + `" encoding="` + dw.opts.Encoding + `"?>`)
	dw.raw(dw.opts.Newline)
	dw.raw("<" + fidji.ElemRoot)
	dw.attrs(
		attr{fidji.AttrVersion, fidji.FormatVersion},
		attr{fidji.AttrDate, fidji.FormatDate(dw.opts.Now())},
		attr{fidji.AttrSituation, fidji.FormatDate(period.To)},
		attr{"xmlns", fidji.Namespace},
		attr{"xmlns:xs", fidji.SchemaInstance},
		attr{"xs:schemaLocation", fidji.SchemaLocation},
	)
	dw.raw(">")

	dw.open(fidji.ElemAssetList)
	for _, cid := range model.SortedKeys(companies) {
		company := companies[cid]
		for _, pid := range model.SortedKeys(company.Properties) {
			prop := company.Properties[pid]
			if prop == nil {
				continue
			}
			for _, bid := range model.SortedKeys(prop.Buildings) {
				if b := prop.Buildings[bid]; b != nil {
					dw.asset(prop, b)
				}
			}
		}
	}
	dw.close(fidji.ElemAssetList)

	dw.open(fidji.ElemCompanyList)
	for _, cid := range model.SortedKeys(companies) {
		dw.company(companies[cid])
	}
	dw.close(fidji.ElemCompanyList)

	dw.raw(dw.opts.Newline)
	dw.raw("</" + fidji.ElemRoot + ">")
}

// asset emits one AST00 element for a building of prop.
func (dw *docWriter) asset(prop *model.Property, b *model.Building) {
	dw.assets++

	attrs := []attr{{fidji.AttrID, b.ObjectIDSender}}
	if b.Label != "" {
		attrs = append(attrs, attr{fidji.AttrName, b.Label})
	}
	dw.open(fidji.ElemAsset, attrs...)

	if b.ObjectIDReceiver != "" {
		dw.leaf(fidji.ElemAssetReceiver, b.ObjectIDReceiver)
	}

	if addr := b.Address; addr != nil && (addr.Street != "" || addr.Zip != "" || addr.City != "") {
		dw.open(fidji.ElemAddressList)
		dw.open(fidji.ElemAddress)
		dw.optionalLeaf(fidji.ElemStreet, addr.Street)
		dw.optionalLeaf(fidji.ElemZip, addr.Zip)
		dw.optionalLeaf(fidji.ElemCity, addr.City)
		dw.close(fidji.ElemAddress)
		dw.close(fidji.ElemAddressList)
	}

	if len(b.Units) > 0 {
		dw.open(fidji.ElemUnitList)
		for _, uid := range model.SortedKeys(b.Units) {
			if u := b.Units[uid]; u != nil {
				dw.unit(u)
			}
		}
		dw.close(fidji.ElemUnitList)
	}

	if len(prop.Leases) > 0 {
		dw.open(fidji.ElemLeaseList)
		for _, lid := range model.SortedKeys(prop.Leases) {
			if l := prop.Leases[lid]; l != nil {
				dw.lease(prop, l)
			}
		}
		dw.close(fidji.ElemLeaseList)
	}

	dw.close(fidji.ElemAsset)
}

func (dw *docWriter) unit(u *model.Unit) {
	dw.open(fidji.ElemUnit, attr{fidji.AttrID, u.ObjectIDSender})

	dw.optionalLeaf(fidji.ElemUnitReceiver, u.ObjectIDReceiver)
	if u.NumberOfRooms != nil {
		dw.leaf(fidji.ElemUnitRooms, fidji.FormatReal(*u.NumberOfRooms))
	}
	if u.Address != nil {
		dw.optionalLeaf(fidji.ElemUnitFloor, u.Address.Floor)
	}
	if u.LettableUnits != nil {
		dw.leaf(fidji.ElemUnitLettables, fidji.FormatInt(*u.LettableUnits))
	}
	if u.LettableArea != nil {
		dw.leaf(fidji.ElemUnitArea, fidji.FormatReal(u.LettableArea.Value))
	}

	dw.close(fidji.ElemUnit)
}

// lease emits one LEA00 element. Leased units are written back as unit ids
// found by hash among the property's units; an unknown hash gives idPRT="".
func (dw *docWriter) lease(prop *model.Property, l *model.Lease) {
	dw.open(fidji.ElemLease, attr{fidji.AttrID, l.ObjectIDSender})

	dw.optionalDate(fidji.ElemLeaseRentStart, l.BeginRentPayment)
	dw.optionalDate(fidji.ElemLeaseCompletion, l.ContractCompletionDate)
	dw.optionalDate(fidji.ElemLeaseEndOption, l.EndOptionDate)

	if len(l.LeasedUnits) > 0 {
		dw.open(fidji.ElemLeasedUnitList)
		for _, key := range model.SortedKeys(l.LeasedUnits) {
			hash := key
			if lu := l.LeasedUnits[key]; lu != nil && lu.Hash != "" {
				hash = lu.Hash
			}
			id, ok := prop.UnitIDByHash(hash)
			if !ok {
				dw.opts.Logger.WithFields(logrus.Fields{
					"lease": l.ObjectIDSender,
					"hash":  hash,
				}).Warn("leased unit does not match any unit of the property")
			}
			dw.leaf(fidji.ElemLeasedUnit, "", attr{fidji.AttrUnitRef, id})
		}
		dw.close(fidji.ElemLeasedUnitList)
	}

	dw.close(fidji.ElemLease)
}

// company emits one gHO00 element with a single reference to the first
// property of the company.
func (dw *docWriter) company(c *model.Company) {
	attrs := []attr{{fidji.AttrID, c.ObjectIDSender}}
	if c.Label != "" {
		attrs = append(attrs, attr{fidji.AttrName, c.Label})
	}
	dw.open(fidji.ElemCompany, attrs...)

	if len(c.Properties) > 0 {
		first := model.SortedKeys(c.Properties)[0]
		dw.leaf(fidji.ElemCompanyProperty, "", attr{fidji.AttrPropertyRef, first})
	}

	dw.close(fidji.ElemCompany)
}

// =============================================================================
// LOW-LEVEL OUTPUT
// =============================================================================

type attr struct {
	name  string
	value string
}

// docWriter keeps the first write error and ignores later output.
type docWriter struct {
	w      *bufio.Writer
	opts   Options
	depth  int
	assets int
	err    error
}

func (dw *docWriter) raw(s string) {
	if dw.err != nil {
		return
	}
	_, dw.err = dw.w.WriteString(s)
}

func (dw *docWriter) attrs(attrs ...attr) {
	for _, a := range attrs {
		dw.raw(" " + a.name + `="` + escapeAttr(a.value) + `"`)
	}
}

func (dw *docWriter) lineStart() {
	dw.raw(dw.opts.Newline)
	dw.raw(strings.Repeat(dw.opts.Indent, dw.depth))
}

// open starts a block element one level deeper.
func (dw *docWriter) open(name string, attrs ...attr) {
	dw.depth++
	dw.lineStart()
	dw.raw("<" + name)
	dw.attrs(attrs...)
	dw.raw(">")
}

// close ends the innermost block element on its own line.
func (dw *docWriter) close(name string) {
	dw.lineStart()
	dw.depth--
	dw.raw("</" + name + ">")
}

// leaf writes an element holding only text, closed on the same line.
func (dw *docWriter) leaf(name, text string, attrs ...attr) {
	dw.open(name, attrs...)
	dw.raw(escapeText(text))
	dw.depth--
	dw.raw("</" + name + ">")
}

func (dw *docWriter) optionalLeaf(name, text string) {
	if text != "" {
		dw.leaf(name, text)
	}
}

func (dw *docWriter) optionalDate(name string, t time.Time) {
	if !t.IsZero() {
		dw.leaf(name, fidji.FormatDate(t))
	}
}

// =============================================================================
// ESCAPING
// =============================================================================

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
