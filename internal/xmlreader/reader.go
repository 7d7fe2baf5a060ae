// =============================================================================
// FIDJI Converter - XML Reader Module
// =============================================================================
//
// This module turns a FIDJI document into a model.Container. It is a
// streaming reader: the document is walked token by token and entities are
// built as their elements are entered.
//
// READING PROCESS:
//   1. Tokenize the input with encoding/xml (non UTF-8 charsets are decoded
//      through golang.org/x/net/html/charset)
//   2. Track the element path with fidji.PathMatcher
//   3. On every start element, look the path up in the dispatch table
//      (see handlers.go) and run the handler against the parser state
//   4. After the scan, resolve company -> property references
//   5. Insert the completed period into the container
//
// FAILURE POLICY:
//   Any error aborts the read and no container is returned. Elements outside
//   the dispatch table are skipped.
//
// =============================================================================

package xmlreader

import (
	"encoding/xml"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"

	"github.com/ginjaninja78/fidji-converter/internal/fidji"
	"github.com/ginjaninja78/fidji-converter/internal/model"
)

// =============================================================================
// READ OPTIONS
// =============================================================================

// Options contains options for reading.
type Options struct {
	// Creator is stored in the container metadata.
	Creator string

	// ModelVersion is stored in the container metadata.
	// Default: "1-0.6.2"
	ModelVersion string

	// Now stamps the container creation time.
	Now func() time.Time

	// Hash computes unit hashes. DefaultOptions uses fidji.NewHashCoder();
	// the zero value falls back to delimited ids.
	Hash fidji.HashCoder

	// Logger receives debug output. Default: a logger that discards.
	Logger logrus.FieldLogger
}

// DefaultOptions returns the default read options.
func DefaultOptions() Options {
	return Options{
		Creator:      "fidji-converter",
		ModelVersion: "1-0.6.2",
		Now:          time.Now,
		Hash:         fidji.NewHashCoder(),
		Logger:       discardLogger(),
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// =============================================================================
// PARSER
// =============================================================================

// Parser reads one document. It is single use.
type Parser struct {
	dec   *xml.Decoder
	paths fidji.PathMatcher
	opts  Options
	state *state
}

// Read parses a FIDJI document with the default options.
func Read(r io.Reader) (*model.Container, error) {
	return NewParser(r, DefaultOptions()).Parse()
}

// ReadWithOptions parses a FIDJI document with custom options.
func ReadWithOptions(r io.Reader, opts Options) (*model.Container, error) {
	return NewParser(r, opts).Parse()
}

// NewParser creates a Parser over r.
func NewParser(r io.Reader, opts Options) *Parser {
	defaults := DefaultOptions()
	if opts.Now == nil {
		opts.Now = defaults.Now
	}
	if opts.Logger == nil {
		opts.Logger = defaults.Logger
	}
	if opts.ModelVersion == "" {
		opts.ModelVersion = defaults.ModelVersion
	}

	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	return &Parser{
		dec:   dec,
		opts:  opts,
		state: newState(opts.Hash),
	}
}

// Parse scans the whole document and returns the populated container.
func (p *Parser) Parse() (*model.Container, error) {
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, tokenError(p.paths.Path(), err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := p.enter(t); err != nil {
				return nil, err
			}
		case xml.EndElement:
			p.paths.Pop()
		}
	}

	if p.paths.Depth() != 0 {
		return nil, fidji.Errorf(fidji.ErrMalformedXML, p.paths.Path(), "unclosed element", nil)
	}
	if p.state.period == nil {
		return nil, fidji.Errorf(fidji.ErrMalformedXML, "", "missing "+fidji.ElemRoot+" root element", nil)
	}

	resolved, unresolved := p.state.resolveProperties()
	p.opts.Logger.WithFields(logrus.Fields{
		"period":     p.state.period.Identifier,
		"companies":  len(p.state.data.Companies),
		"properties": len(p.state.properties),
		"resolved":   resolved,
		"unresolved": unresolved,
	}).Debug("read FIDJI document")

	c := model.NewContainer()
	c.Meta = model.Meta{
		Format:  "XML",
		Version: p.opts.ModelVersion,
		Creator: p.opts.Creator,
		Created: p.opts.Now(),
	}
	c.Periods[p.state.period.Identifier] = p.state.period

	return c, nil
}

// Assets returns every asset read so far, in document order, whether or not
// a company references it.
func (p *Parser) Assets() []*model.Property {
	return p.state.properties
}

// enter pushes the element and runs its handler, if any. Handlers that read
// the element text consume its end tag, so the path is popped here.
func (p *Parser) enter(start xml.StartElement) error {
	path := p.paths.Push(start.Name.Local)

	h, ok := handlers[path]
	if !ok {
		p.opts.Logger.WithField("path", path).Trace("skipping unrecognized element")
		return nil
	}

	el := &element{path: path, start: start, dec: p.dec}
	if err := h(p.state, el); err != nil {
		return err
	}
	if el.consumed {
		p.paths.Pop()
	}
	return nil
}

// tokenError classifies a decoder failure.
func tokenError(path string, err error) error {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fidji.Errorf(fidji.ErrMalformedXML, path, "", err)
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fidji.Errorf(fidji.ErrMalformedXML, path, "", err)
	}
	return fidji.Errorf(fidji.ErrStream, path, "", err)
}
