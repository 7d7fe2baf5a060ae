package converter

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/fidji-converter/internal/config"
	"github.com/ginjaninja78/fidji-converter/internal/fidji"
	"github.com/ginjaninja78/fidji-converter/internal/model"
	"github.com/ginjaninja78/fidji-converter/internal/validation"
	"github.com/ginjaninja78/fidji-converter/internal/xmlreader"
)

const portfolioPath = "testdata/portfolio.xml"

// trackingStream counts Close calls.
type trackingStream struct {
	*bytes.Buffer
	closes   int
	closeErr error
}

func newStream(data string) *trackingStream {
	return &trackingStream{Buffer: bytes.NewBufferString(data)}
}

func (s *trackingStream) Close() error {
	s.closes++
	return s.closeErr
}

func readPortfolio(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(portfolioPath)
	require.NoError(t, err)
	return string(data)
}

func TestPlugin(t *testing.T) {
	p := NewPlugin(Settings{})

	require.Equal(t, "fidji", p.ID())
	require.Equal(t, "0.1a", p.Version())
	require.Equal(t, "FIDJI-Plugin", p.Name())
	require.Equal(t, "fidji-file", p.StreamParameter())
	require.Equal(t, []model.Subset{model.SubsetS51}, p.SupportedSubsets())

	require.True(t, p.IsModelVersionSupported("1-0.6.2"))
	require.True(t, p.IsModelVersionSupported("1-0.6.0"))
	require.False(t, p.IsModelVersionSupported("1-0.7.0"))
	require.False(t, p.IsModelVersionSupported(""))

	require.Equal(t, map[string]io.ReadCloser{"fidji-file": nil}, p.ImportWorker().RequiredConfigurationArguments().Streams)
	require.Equal(t, map[string]io.WriteCloser{"fidji-file": nil}, p.ExportWorker().RequiredConfigurationArguments().Streams)
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Creator = "batch"
	cfg.StreamParameter = "in"
	cfg.Writer.Indent = "\t"
	cfg.Writer.Newline = "\n"

	s := SettingsFromConfig(cfg, nil)
	require.Equal(t, "in", s.StreamParameter)
	require.Equal(t, "batch", s.Reader.Creator)
	require.Equal(t, "\t", s.Writer.Indent)
	require.Equal(t, "\n", s.Writer.Newline)
	require.Equal(t, "utf-8", s.Writer.Encoding)
	require.NotNil(t, s.Logger)
}

func TestImporter(t *testing.T) {
	p := NewPlugin(DefaultSettings())

	t.Run("load and unload", func(t *testing.T) {
		stream := newStream(readPortfolio(t))
		im := p.ImportWorker()

		cfg := im.RequiredConfigurationArguments()
		cfg.Streams["fidji-file"] = stream
		require.NoError(t, im.Load(cfg))

		c := im.Container()
		require.NotNil(t, c)
		require.Equal(t, "fidji-converter", c.Meta.Creator)
		require.Len(t, im.Assets(), 2)
		require.Zero(t, stream.closes)

		require.NoError(t, im.Unload())
		require.NoError(t, im.Unload())
		require.Equal(t, 1, stream.closes)

		require.ErrorIs(t, im.Load(cfg), ErrAlreadyLoaded)
	})

	t.Run("missing stream", func(t *testing.T) {
		im := p.ImportWorker()
		require.ErrorIs(t, im.Load(ImportWorkerConfiguration{}), ErrMissingStream)
		require.ErrorIs(t, im.Load(im.RequiredConfigurationArguments()), ErrMissingStream)
		require.NoError(t, im.Unload())
	})

	t.Run("wrong stream name", func(t *testing.T) {
		im := p.ImportWorker()
		err := im.Load(ImportWorkerConfiguration{Streams: map[string]io.ReadCloser{"other": newStream("")}})
		require.ErrorIs(t, err, ErrMissingStream)
	})

	t.Run("read failure keeps stream until unload", func(t *testing.T) {
		stream := newStream("<FIDJI situation=\"2021-07-15\"><ASTl>")
		im := p.ImportWorker()

		err := im.Load(ImportWorkerConfiguration{Streams: map[string]io.ReadCloser{"fidji-file": stream}})
		require.ErrorIs(t, err, fidji.ErrMalformedXML)
		require.Nil(t, im.Container())
		require.Zero(t, stream.closes)

		require.NoError(t, im.Unload())
		require.Equal(t, 1, stream.closes)
	})

	t.Run("close failure", func(t *testing.T) {
		stream := newStream(readPortfolio(t))
		stream.closeErr = errors.New("busy")
		im := p.ImportWorker()

		require.NoError(t, im.Load(ImportWorkerConfiguration{Streams: map[string]io.ReadCloser{"fidji-file": stream}}))
		err := im.Unload()
		require.ErrorIs(t, err, fidji.ErrStream)
		require.ErrorIs(t, err, stream.closeErr)
		require.NoError(t, im.Unload())
	})

	t.Run("custom stream parameter", func(t *testing.T) {
		custom := NewPlugin(Settings{StreamParameter: "source"})
		im := custom.ImportWorker()
		require.NoError(t, im.Load(ImportWorkerConfiguration{Streams: map[string]io.ReadCloser{"source": newStream(readPortfolio(t))}}))
	})
}

func TestExporter(t *testing.T) {
	p := NewPlugin(DefaultSettings())

	c, err := xmlreader.Read(strings.NewReader(readPortfolio(t)))
	require.NoError(t, err)

	t.Run("writes document", func(t *testing.T) {
		out := newStream("")
		ex := p.ExportWorker()

		require.NoError(t, ex.Load(ExportWorkerConfiguration{Streams: map[string]io.WriteCloser{"fidji-file": out}}, c))
		require.True(t, strings.HasPrefix(out.String(), `<?xml version="1.0" encoding="utf-8"?>`))
		require.True(t, strings.HasSuffix(out.String(), "\r\n</FIDJI>"))

		require.NoError(t, ex.Unload())
		require.NoError(t, ex.Unload())
		require.Equal(t, 1, out.closes)
	})

	t.Run("unsupported model version", func(t *testing.T) {
		other := *c
		other.Meta.Version = "2-0.1.0"

		out := newStream("")
		ex := p.ExportWorker()
		err := ex.Load(ExportWorkerConfiguration{Streams: map[string]io.WriteCloser{"fidji-file": out}}, &other)
		require.ErrorIs(t, err, fidji.ErrUnsupportedVersion)
		require.Zero(t, out.Len())
		require.NoError(t, ex.Unload())
		require.Equal(t, 1, out.closes)
	})

	t.Run("container without version", func(t *testing.T) {
		other := *c
		other.Meta.Version = ""

		out := newStream("")
		ex := p.ExportWorker()
		require.NoError(t, ex.Load(ExportWorkerConfiguration{Streams: map[string]io.WriteCloser{"fidji-file": out}}, &other))
	})

	t.Run("empty container", func(t *testing.T) {
		ex := p.ExportWorker()
		err := ex.Load(ExportWorkerConfiguration{Streams: map[string]io.WriteCloser{"fidji-file": newStream("")}}, model.NewContainer())
		require.Error(t, err)
	})

	t.Run("missing stream", func(t *testing.T) {
		ex := p.ExportWorker()
		require.ErrorIs(t, ex.Load(ExportWorkerConfiguration{}, c), ErrMissingStream)
	})
}

func TestCountEntities(t *testing.T) {
	c, err := xmlreader.Read(strings.NewReader(readPortfolio(t)))
	require.NoError(t, err)

	require.Equal(t, ProcessingStats{
		Period:      "2021-7",
		Companies:   2,
		Properties:  2,
		Buildings:   2,
		Units:       3,
		Leases:      1,
		LeasedUnits: 2,
	}, CountEntities(c))

	require.Equal(t, ProcessingStats{}, CountEntities(nil))
}

func TestRun(t *testing.T) {
	conv := New(NewPlugin(DefaultSettings()))
	dir := t.TempDir()

	t.Run("converts file", func(t *testing.T) {
		out := filepath.Join(dir, "out.xml")
		result := conv.Run(portfolioPath, out)
		require.NoError(t, result.Error)
		require.True(t, result.Success)
		require.Equal(t, out, result.OutputFile)
		require.Equal(t, 3, result.Stats.Units)
		require.Equal(t, 1, result.Stats.ValidationWarnings)
		require.Len(t, result.Issues, 1)
		require.Equal(t, validation.RuleUnresolvedProperty, result.Issues[0].Rule)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		again, err := xmlreader.Read(bytes.NewReader(data))
		require.NoError(t, err)

		companies := again.Periods["2021-7"].Data.Companies
		require.NotNil(t, companies["C1"].Properties["B1"])
		require.NotNil(t, companies["C2"].Properties["B2"])
		require.Len(t, companies["C1"].Properties["B1"].Leases["L1"].LeasedUnits, 2)
	})

	t.Run("malformed input leaves no output", func(t *testing.T) {
		in := filepath.Join(dir, "bad.xml")
		require.NoError(t, os.WriteFile(in, []byte("<FIDJI situation=\"2021-07-15\"><ASTl></FIDJI>"), 0644))
		out := filepath.Join(dir, "bad-out.xml")

		result := conv.Run(in, out)
		require.False(t, result.Success)
		require.ErrorIs(t, result.Error, fidji.ErrMalformedXML)
		require.Empty(t, result.OutputFile)
		_, err := os.Stat(out)
		require.True(t, os.IsNotExist(err))
	})

	t.Run("missing input", func(t *testing.T) {
		result := conv.Run(filepath.Join(dir, "nope.xml"), filepath.Join(dir, "nope-out.xml"))
		require.False(t, result.Success)
		require.ErrorIs(t, result.Error, os.ErrNotExist)
	})

	t.Run("unwritable output", func(t *testing.T) {
		result := conv.Run(portfolioPath, filepath.Join(dir, "missing-dir", "out.xml"))
		require.False(t, result.Success)
		require.ErrorContains(t, result.Error, "failed to create output file")
	})
}

func TestConvert(t *testing.T) {
	conv := New(NewPlugin(DefaultSettings()))

	t.Run("streams", func(t *testing.T) {
		in := newStream(readPortfolio(t))
		out := newStream("")

		result := conv.Convert(in, out)
		require.NoError(t, result.Error)
		require.True(t, result.Success)
		require.Contains(t, out.String(), `<AST00 id="B2" name="Depot">`)
		require.Equal(t, 1, in.closes)
		require.Equal(t, 1, out.closes)
	})

	t.Run("failed import closes both streams", func(t *testing.T) {
		in := newStream("not xml")
		out := newStream("")

		result := conv.Convert(in, out)
		require.False(t, result.Success)
		require.Error(t, result.Error)
		require.Equal(t, 1, in.closes)
		require.Equal(t, 1, out.closes)
		require.Zero(t, out.Len())
	})

	t.Run("nil streams", func(t *testing.T) {
		in := newStream(readPortfolio(t))
		result := conv.Convert(in, nil)
		require.False(t, result.Success)
		require.ErrorIs(t, result.Error, ErrMissingStream)
		require.Equal(t, 1, in.closes)

		out := newStream("")
		result = conv.Convert(nil, out)
		require.ErrorIs(t, result.Error, ErrMissingStream)
		require.Equal(t, 1, out.closes)
	})
}

func TestRunNamed(t *testing.T) {
	conv := New(NewPlugin(DefaultSettings()))
	dir := t.TempDir()

	t.Run("name from period", func(t *testing.T) {
		var seen ProcessingStats
		result := conv.RunNamed(portfolioPath, func(stats ProcessingStats) (string, error) {
			seen = stats
			return filepath.Join(dir, stats.Period+".xml"), nil
		})
		require.NoError(t, result.Error)
		require.Equal(t, "2021-7", seen.Period)
		require.Equal(t, 3, seen.Units)
		require.Equal(t, filepath.Join(dir, "2021-7.xml"), result.OutputFile)
		require.FileExists(t, result.OutputFile)
	})

	t.Run("namer failure", func(t *testing.T) {
		taken := errors.New("name taken")
		result := conv.RunNamed(portfolioPath, func(ProcessingStats) (string, error) {
			return "", taken
		})
		require.False(t, result.Success)
		require.ErrorIs(t, result.Error, taken)
		require.Empty(t, result.OutputFile)
	})

	t.Run("namer not called for malformed input", func(t *testing.T) {
		in := filepath.Join(dir, "broken.xml")
		require.NoError(t, os.WriteFile(in, []byte("<FIDJI>"), 0644))

		called := false
		result := conv.RunNamed(in, func(ProcessingStats) (string, error) {
			called = true
			return filepath.Join(dir, "never.xml"), nil
		})
		require.False(t, result.Success)
		require.False(t, called)
	})
}

func TestInspect(t *testing.T) {
	conv := New(NewPlugin(DefaultSettings()))

	c, check, err := conv.Inspect(portfolioPath)
	require.NoError(t, err)
	require.NotNil(t, c.Periods["2021-7"])
	require.True(t, check.IsValid)
	require.Equal(t, 1, check.WarningCount)

	_, _, err = conv.Inspect("testdata/missing.xml")
	require.ErrorIs(t, err, os.ErrNotExist)
}
