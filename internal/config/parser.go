package config

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/ZebulonRouseFrantzich/getnode/internal/logging"
	"github.com/ZebulonRouseFrantzich/getnode/internal/platform"
)

// Parser represents a Lua config parser with platform detection.
type Parser struct {
	detector platform.Detector
	logger   logging.Logger
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector leaves the platform table out.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector, logger: logging.Noop()}
}

// WithLogger sets the logger and returns p.
func (p *Parser) WithLogger(l logging.Logger) *Parser {
	p.logger = logging.OrNoop(l)
	return p
}

// ParseFile parses the config file at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config: %w", err)
	}
	if info.Size() > MaxConfigSize {
		return nil, &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("%s is %d bytes, maximum is %d", path, info.Size(), MaxConfigSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	p.logger.Debug("parsing config", "path", path)
	return p.ParseString(ctx, string(data))
}

// ParseString parses a Lua config from a string.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Config, error) {
	L := newSandboxedVM()
	defer L.Close()

	if p.detector != nil {
		platformInfo, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, platformInfo); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, ParseTimeout)
	defer cancel()
	L.SetContext(ctx)

	if err := L.DoString(luaCode); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &ParseError{Message: "config evaluation timed out", Detail: err.Error(), Err: ctxErr}
		}
		return nil, &ParseError{
			Message: "Lua error",
			Detail:  err.Error(),
		}
	}

	return extractConfig(L)
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
	Err     error  // Underlying cause, if any
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error { return e.Err }

// extractConfig reads the global "getnode" table. A config that does not
// define it is empty.
func extractConfig(L *lua.LState) (*Config, error) {
	global := L.GetGlobal(luaGlobalGetnode)
	if global.Type() == lua.LTNil {
		return &Config{}, nil
	}
	table, ok := global.(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: "invalid 'getnode' table",
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}

	config := &Config{}
	var err error

	if config.Mirror, err = stringField(table, luaFieldMirror); err != nil {
		return nil, err
	}
	if config.CacheDir, err = stringField(table, luaFieldCacheDir); err != nil {
		return nil, err
	}
	if config.Keyring, err = stringField(table, luaFieldKeyring); err != nil {
		return nil, err
	}
	if config.Retries, err = intField(table, luaFieldRetries); err != nil {
		return nil, err
	}
	if config.Timeout, err = durationField(table, luaFieldTimeout); err != nil {
		return nil, err
	}
	if config.Progress, err = boolField(table, luaFieldProgress); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, &ParseError{
			Message: "config validation failed",
			Detail:  err.Error(),
			Err:     err,
		}
	}

	return config, nil
}

func fieldTypeError(field string, want string, got lua.LValue) error {
	return &ParseError{
		Message: fmt.Sprintf("invalid value for %s", field),
		Detail:  fmt.Sprintf("expected %s, got %s", want, got.Type()),
	}
}

// stringField returns the trimmed string at field. Nil values (from
// platform conditionals like: platform.is_linux and "x" or nil) are unset.
func stringField(table *lua.LTable, field string) (string, error) {
	switch v := table.RawGetString(field).(type) {
	case *lua.LNilType:
		return "", nil
	case lua.LString:
		return strings.TrimSpace(string(v)), nil
	default:
		return "", fieldTypeError(field, "string", v)
	}
}

func intField(table *lua.LTable, field string) (*int, error) {
	switch v := table.RawGetString(field).(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LNumber:
		f := float64(v)
		if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return nil, fieldTypeError(field, "integer", v)
		}
		n := int(f)
		return &n, nil
	default:
		return nil, fieldTypeError(field, "integer", v)
	}
}

// durationField accepts seconds as a number or a Go duration string.
func durationField(table *lua.LTable, field string) (time.Duration, error) {
	switch v := table.RawGetString(field).(type) {
	case *lua.LNilType:
		return 0, nil
	case lua.LNumber:
		return time.Duration(float64(v) * float64(time.Second)), nil
	case lua.LString:
		d, err := time.ParseDuration(strings.TrimSpace(string(v)))
		if err != nil {
			return 0, &ParseError{Message: fmt.Sprintf("invalid value for %s", field), Detail: err.Error(), Err: err}
		}
		return d, nil
	default:
		return 0, fieldTypeError(field, "duration", v)
	}
}

func boolField(table *lua.LTable, field string) (*bool, error) {
	switch v := table.RawGetString(field).(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LBool:
		b := bool(v)
		return &b, nil
	default:
		return nil, fieldTypeError(field, "boolean", v)
	}
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		return err.Error()
	}
	if verbose {
		return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
	}
	// Extract the most relevant part of the error
	detail := parseErr.Detail
	if idx := strings.Index(detail, "stack traceback"); idx > 0 {
		detail = strings.TrimSpace(detail[:idx])
	}
	return fmt.Sprintf("%s: %s", parseErr.Message, detail)
}
