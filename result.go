package kdego

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/kdego/blobstore"
	"github.com/hupe1980/kdego/codec"
	"github.com/hupe1980/kdego/internal/resource"
	"github.com/hupe1980/kdego/persistence"
)

const (
	manifestFormatVersion = 1

	densitiesBlob = "densities.kdeg"
	manifestBlob  = "manifest.json"
)

// Result holds the densities of one evaluation together with the traversal
// counters that produced them.
type Result struct {
	// Densities are in query order (reference order for EvaluateSelf).
	Densities []float64
	// Approximated holds the queries whose density includes a bounded or
	// sampled approximation. The others are exact.
	Approximated *roaring.Bitmap

	BaseCases           uint64
	Scores              uint64
	Prunes              uint64
	MonteCarloEstimates uint64
	Duration            time.Duration
}

// Stats returns the result's counters.
func (r *Result) Stats() EvaluateStats {
	s := EvaluateStats{
		BaseCases:           r.BaseCases,
		Scores:              r.Scores,
		Prunes:              r.Prunes,
		MonteCarloEstimates: r.MonteCarloEstimates,
	}
	if r.Approximated != nil {
		s.Approximated = r.Approximated.GetCardinality()
	}
	return s
}

// IsExact reports whether no query was approximated.
func (r *Result) IsExact() bool {
	return r.Approximated == nil || r.Approximated.IsEmpty()
}

type resultManifest struct {
	FormatVersion       int       `json:"format_version"`
	Name                string    `json:"name"`
	Queries             int       `json:"queries"`
	Densities           string    `json:"densities"`
	Compression         string    `json:"compression"`
	Approximated        []byte    `json:"approximated,omitempty"`
	BaseCases           uint64    `json:"base_cases"`
	Scores              uint64    `json:"scores"`
	Prunes              uint64    `json:"prunes"`
	MonteCarloEstimates uint64    `json:"monte_carlo_estimates"`
	DurationNanos       int64     `json:"duration_ns"`
	CreatedAt           time.Time `json:"created_at"`
}

// PersistOption configures SaveResult, LoadResult, SaveDataset and LoadDataset.
type PersistOption func(*persistOptions)

type persistOptions struct {
	codec            codec.Codec
	compression      persistence.Compression
	rc               *resource.Controller
	logger           *Logger
	metricsCollector MetricsCollector
}

// WithCodec sets the manifest codec. If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) PersistOption {
	return func(o *persistOptions) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression sets the block compression of written payloads. Readers
// detect it from the header. The default is persistence.CompressionZSTD.
func WithCompression(c persistence.Compression) PersistOption {
	return func(o *persistOptions) {
		o.compression = c
	}
}

// WithIOController throttles payload reads and writes with the controller's
// IO limit.
func WithIOController(rc *ResourceController) PersistOption {
	return func(o *persistOptions) {
		o.rc = rc
	}
}

// WithPersistLogger configures logging of saves and loads.
func WithPersistLogger(logger *Logger) PersistOption {
	return func(o *persistOptions) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithPersistMetrics configures a metrics collector for saves and loads.
func WithPersistMetrics(mc MetricsCollector) PersistOption {
	return func(o *persistOptions) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

func applyPersistOptions(optFns []PersistOption) persistOptions {
	o := persistOptions{
		codec:            codec.Default,
		compression:      persistence.CompressionZSTD,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o persistOptions) record(ctx context.Context, op, name string, bytes int64, start time.Time, err error) {
	o.metricsCollector.RecordPersist(op, bytes, time.Since(start), err)
	o.logger.LogPersist(ctx, op, name, bytes, err)
}

func validateResultName(name string) error {
	if name == "" || name == blobstore.CurrentName || strings.HasSuffix(name, "/") {
		return fmt.Errorf("invalid result name %q", name)
	}
	return nil
}

// SaveResult stores r under name/ in store and then points the CURRENT blob
// at name. The densities are written first, so a reader following CURRENT
// never sees a partial result.
func SaveResult(ctx context.Context, store blobstore.Store, name string, r *Result, optFns ...PersistOption) (err error) {
	o := applyPersistOptions(optFns)
	start := time.Now()
	var written int64
	defer func() { o.record(ctx, "save_result", name, written, start, err) }()

	if err := validateResultName(name); err != nil {
		return err
	}

	var buf bytes.Buffer
	n, err := persistence.WriteDensities(resource.NewRateLimitedWriter(ctx, &buf, o.rc), r.Densities, o.compression)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, name+"/"+densitiesBlob, buf.Bytes()); err != nil {
		return fmt.Errorf("save densities: %w", err)
	}
	written += n

	m := resultManifest{
		FormatVersion:       manifestFormatVersion,
		Name:                name,
		Queries:             len(r.Densities),
		Densities:           densitiesBlob,
		Compression:         o.compression.String(),
		BaseCases:           r.BaseCases,
		Scores:              r.Scores,
		Prunes:              r.Prunes,
		MonteCarloEstimates: r.MonteCarloEstimates,
		DurationNanos:       r.Duration.Nanoseconds(),
		CreatedAt:           time.Now().UTC(),
	}
	if !r.IsExact() {
		if m.Approximated, err = r.Approximated.ToBytes(); err != nil {
			return fmt.Errorf("encode approximated set: %w", err)
		}
	}
	data, err := o.codec.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := store.Put(ctx, name+"/"+manifestBlob, data); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	written += int64(len(data))

	if err := store.Put(ctx, blobstore.CurrentName, []byte(name)); err != nil {
		return fmt.Errorf("update %s: %w", blobstore.CurrentName, err)
	}
	return nil
}

// LoadResult reads the result saved under name. Duration is the duration of
// the evaluation that produced it.
func LoadResult(ctx context.Context, store blobstore.Store, name string, optFns ...PersistOption) (*Result, error) {
	o := applyPersistOptions(optFns)
	start := time.Now()
	res, n, err := loadResult(ctx, store, name, o)
	o.record(ctx, "load_result", name, n, start, err)
	if err != nil {
		return nil, translateError(err)
	}
	return res, nil
}

// LoadLatestResult follows the CURRENT blob to the most recently saved result.
func LoadLatestResult(ctx context.Context, store blobstore.Store, optFns ...PersistOption) (*Result, error) {
	name, err := readCurrent(ctx, store)
	if err != nil {
		return nil, translateError(err)
	}
	return LoadResult(ctx, store, name, optFns...)
}

// ListResults returns the names of all saved results in store.
func ListResults(ctx context.Context, store blobstore.Store) ([]string, error) {
	names, err := store.List(ctx, "")
	if err != nil {
		return nil, translateError(err)
	}
	var out []string
	for _, n := range names {
		if result, ok := strings.CutSuffix(n, "/"+manifestBlob); ok {
			out = append(out, result)
		}
	}
	return out, nil
}

func readCurrent(ctx context.Context, store blobstore.Store) (string, error) {
	b, err := store.Open(ctx, blobstore.CurrentName)
	if err != nil {
		return "", err
	}
	defer b.Close()

	data, err := blobstore.ReadAll(ctx, b)
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(string(data))
	if name == "" {
		return "", fmt.Errorf("%w: empty %s", ErrCorrupt, blobstore.CurrentName)
	}
	return name, nil
}

func loadResult(ctx context.Context, store blobstore.Store, name string, o persistOptions) (*Result, int64, error) {
	if err := validateResultName(name); err != nil {
		return nil, 0, err
	}

	mb, err := store.Open(ctx, name+"/"+manifestBlob)
	if err != nil {
		return nil, 0, err
	}
	data, err := blobstore.ReadAll(ctx, mb)
	if err == nil {
		data = bytes.Clone(data)
	}
	if cerr := mb.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, 0, err
	}

	var m resultManifest
	if err := o.codec.Unmarshal(data, &m); err != nil {
		return nil, 0, fmt.Errorf("%w: manifest: %w", ErrCorrupt, err)
	}
	if m.FormatVersion != manifestFormatVersion {
		return nil, 0, fmt.Errorf("%w: manifest version %d", persistence.ErrUnsupportedVersion, m.FormatVersion)
	}
	if m.Densities == "" || strings.Contains(m.Densities, "/") {
		return nil, 0, fmt.Errorf("%w: densities blob %q", ErrCorrupt, m.Densities)
	}

	db, err := store.Open(ctx, name+"/"+m.Densities)
	if err != nil {
		return nil, 0, err
	}
	defer db.Close()

	densities, err := persistence.ReadDensities(resource.NewRateLimitedReader(ctx, blobstore.NewReader(ctx, db), o.rc))
	if err != nil {
		return nil, 0, err
	}
	if len(densities) != m.Queries {
		return nil, 0, fmt.Errorf("%w: %d densities, manifest says %d", ErrCorrupt, len(densities), m.Queries)
	}

	res := &Result{
		Densities:           densities,
		Approximated:        roaring.New(),
		BaseCases:           m.BaseCases,
		Scores:              m.Scores,
		Prunes:              m.Prunes,
		MonteCarloEstimates: m.MonteCarloEstimates,
		Duration:            time.Duration(m.DurationNanos),
	}
	if len(m.Approximated) > 0 {
		if err := res.Approximated.UnmarshalBinary(m.Approximated); err != nil {
			return nil, 0, errors.Join(ErrCorrupt, err)
		}
	}
	return res, db.Size() + int64(len(data)), nil
}
