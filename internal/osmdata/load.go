package osmdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"go.uber.org/zap"

	"github.com/wegman-software/osm2mt-go/internal/logger"
)

// ErrUnknownFormat is returned for input files with an unrecognized extension
var ErrUnknownFormat = errors.New("unknown input format")

// Format of an input file
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
	FormatPBF  Format = "pbf"
)

// DetectFormat picks the format from the file extension
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".osm", ".xml":
		return FormatXML, nil
	case ".pbf":
		return FormatPBF, nil
	}
	return "", fmt.Errorf("%w: %s (want .json, .osm, .xml or .pbf)", ErrUnknownFormat, path)
}

// Load reads the whole input file into memory, logging progress for
// large files
func Load(ctx context.Context, path string) (*Dataset, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	log := logger.Get()
	log.Debug("Reading input", zap.String("path", path), zap.String("format", string(format)), zap.Int64("bytes", size))

	cr := &countingReader{r: f}
	pctx, stop := context.WithCancel(ctx)
	defer stop()
	go logProgress(pctx, log, cr, newProgressTracker(size), progressInterval)

	return Read(ctx, cr, format)
}

// Read decodes r in the given format
func Read(ctx context.Context, r io.Reader, format Format) (*Dataset, error) {
	switch format {
	case FormatJSON:
		return DecodeJSON(ctx, r)
	case FormatXML:
		return scan(ctx, osmxml.New(ctx, r))
	case FormatPBF:
		return scan(ctx, osmpbf.New(ctx, r, runtime.NumCPU()))
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

func scan(ctx context.Context, scanner osm.Scanner) (*Dataset, error) {
	defer scanner.Close()

	ds := &Dataset{}
	for scanner.Scan() {
		ds.Add(scanner.Object())
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to scan input: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ds, nil
}
