package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/ppiankov/findmindisc/internal/logging"
	"github.com/ppiankov/findmindisc/internal/model"
	"github.com/ppiankov/findmindisc/internal/validate"
)

//go:embed data/discs.json
var embeddedDiscs []byte

// EmbeddedSource names the dataset compiled into the binary
const EmbeddedSource = "embedded"

// LoadError means the catalog could not be built at all. It is fatal at startup.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load catalog %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Presence check. A null or absent field counts as missing.
type recordFields struct {
	Manufacturer *json.RawMessage `json:"manufacturer" validate:"required"`
	Speed        *json.RawMessage `json:"speed" validate:"required"`
	Glide        *json.RawMessage `json:"glide" validate:"required"`
	Turn         *json.RawMessage `json:"turn" validate:"required"`
	Fade         *json.RawMessage `json:"fade" validate:"required"`
	Aliases      *json.RawMessage `json:"aliases"`
}

// Value check, run once every field is known to be present
type discInput struct {
	Name         string   `json:"name" validate:"notblank"`
	Manufacturer string   `json:"manufacturer" validate:"notblank"`
	Speed        float64  `json:"speed" validate:"gte=1,lte=15"`
	Glide        float64  `json:"glide" validate:"gte=0,lte=7"`
	Turn         float64  `json:"turn" validate:"gte=-5,lte=2"`
	Fade         float64  `json:"fade" validate:"gte=0,lte=6"`
	Aliases      []string `json:"aliases" validate:"dive,notblank"`
}

func catalogLogger() zerolog.Logger {
	return logging.Component("catalog")
}

// Options configures Load
type Options struct {
	Source     string // "" or "embedded", a file path, or an http(s) URL
	Thresholds model.Thresholds
	Timeout    time.Duration // URL sources only
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// Load reads the catalog from the configured source
func Load(ctx context.Context, opts Options) (*Catalog, error) {
	source := strings.TrimSpace(opts.Source)
	var (
		data []byte
		err  error
	)

	switch {
	case source == "" || source == EmbeddedSource:
		source = EmbeddedSource
		data = embeddedDiscs
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		f := NewFetcher(timeout, opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy)
		data, err = f.FetchWithRetry(ctx, source)
	default:
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	c, err := Parse(data, opts.Thresholds)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Source = source
			return nil, le
		}
		return nil, &LoadError{Source: source, Err: err}
	}

	log := catalogLogger()
	log.Debug().Str("source", source).Int("discs", c.Len()).Msg("catalog loaded")
	return c, nil
}

// Default builds the embedded catalog with default thresholds
func Default() (*Catalog, error) {
	return Parse(embeddedDiscs, model.DefaultThresholds())
}

// Parse builds a catalog from a JSON object keyed by disc name.
//
// Unreadable JSON, a record with a missing field, or an empty result is a
// *LoadError. Records whose fields are present but malformed are skipped.
func Parse(data []byte, th model.Thresholds) (*Catalog, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Source: "data", Err: fmt.Errorf("decode: %w", err)}
	}
	if len(raw) == 0 {
		return nil, &LoadError{Source: "data", Err: errors.New("no disc records")}
	}

	log := catalogLogger()
	records := make([]model.DiscRecord, 0, len(raw))

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		body := raw[name]
		var fields recordFields
		if err := json.Unmarshal(body, &fields); err != nil {
			log.Warn().Str("disc", name).Err(err).Msg("skipping malformed catalog record")
			continue
		}
		if err := validate.Struct(name, &fields); err != nil {
			return nil, &LoadError{Source: "data", Err: err}
		}

		rec, err := decodeRecord(name, &fields)
		if err != nil {
			log.Warn().Str("disc", name).Err(err).Msg("skipping malformed catalog record")
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, &LoadError{Source: "data", Err: errors.New("every disc record was malformed")}
	}

	c, err := New(records, th)
	if err != nil {
		return nil, &LoadError{Source: "data", Err: err}
	}
	return c, nil
}

func decodeRecord(name string, f *recordFields) (model.DiscRecord, error) {
	in := discInput{Name: strings.TrimSpace(name)}

	targets := []struct {
		field string
		raw   *json.RawMessage
		dst   interface{}
	}{
		{"manufacturer", f.Manufacturer, &in.Manufacturer},
		{"speed", f.Speed, &in.Speed},
		{"glide", f.Glide, &in.Glide},
		{"turn", f.Turn, &in.Turn},
		{"fade", f.Fade, &in.Fade},
		{"aliases", f.Aliases, &in.Aliases},
	}
	for _, t := range targets {
		if t.raw == nil {
			continue
		}
		if err := json.Unmarshal(*t.raw, t.dst); err != nil {
			return model.DiscRecord{}, fmt.Errorf("%s: %w", t.field, err)
		}
	}

	if err := validate.Struct(name, &in); err != nil {
		return model.DiscRecord{}, err
	}

	return model.DiscRecord{
		Name:         in.Name,
		Manufacturer: strings.TrimSpace(in.Manufacturer),
		Speed:        in.Speed,
		Glide:        in.Glide,
		Turn:         in.Turn,
		Fade:         in.Fade,
		Aliases:      in.Aliases,
	}, nil
}
