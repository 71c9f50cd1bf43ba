package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/platform"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Parser evaluates config.lua with the platform table available.
type Parser struct {
	detector platform.Detector
	log      *zap.SugaredLogger
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector leaves the platform table out.
func NewParser(detector platform.Detector, logger *zap.SugaredLogger) *Parser {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Parser{detector: detector, log: logger}
}

// ParseFile reads path and parses it. A missing file yields Default().
func (p *Parser) ParseFile(ctx context.Context, path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			p.log.Debugw("no config file, using defaults", "path", path)
			return Default(), nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxConfigSize+1))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > MaxConfigSize {
		return nil, &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("%s exceeds %d bytes", path, MaxConfigSize),
		}
	}

	for _, finding := range DetectSensitiveData(string(data)) {
		p.log.Warnw("config contains a hardcoded secret",
			"path", path, "line", finding.Line, "kind", finding.PatternName)
	}

	return p.ParseString(ctx, string(data))
}

// ParseString parses Lua config code. Values that config.lua leaves out
// keep their defaults.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Config, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultParseLimit)
		defer cancel()
	}

	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, info); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		if ctx.Err() != nil {
			return nil, &ParseError{
				Message: "config evaluation timed out",
				Detail:  ctx.Err().Error(),
			}
		}
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractConfig(L)
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractConfig reads the global "gitrel" table over the defaults.
// A config without the table is valid and yields the defaults.
func extractConfig(L *lua.LState) (*Config, error) {
	cfg := Default()

	root := L.GetGlobal(luaGlobalGitrel)
	switch root.Type() {
	case lua.LTNil:
		return cfg, nil
	case lua.LTTable:
	default:
		return nil, &ParseError{
			Message: "invalid 'gitrel' value",
			Detail:  fmt.Sprintf("expected table, got %s", root.Type()),
		}
	}

	r := &tableReader{}
	table := root.(*lua.LTable)

	if gh := r.getTable(table, luaFieldGitHub, ""); gh != nil {
		r.getString(gh, luaFieldToken, luaFieldGitHub, &cfg.GitHub.Token)
		r.getString(gh, luaFieldAPIURL, luaFieldGitHub, &cfg.GitHub.APIURL)
		r.getInt(gh, luaFieldPerPage, luaFieldGitHub, &cfg.GitHub.PerPage)
		r.getInt(gh, luaFieldMaxPages, luaFieldGitHub, &cfg.GitHub.MaxPages)
	}
	if inst := r.getTable(table, luaFieldInstall, ""); inst != nil {
		r.getString(inst, luaFieldBinDir, luaFieldInstall, &cfg.Install.BinDir)
		r.getBool(inst, luaFieldStrip, luaFieldInstall, &cfg.Install.Strip)
	}
	if v := r.getTable(table, luaFieldVerify, ""); v != nil {
		r.getBool(v, luaFieldRequireSum, luaFieldVerify, &cfg.Verify.RequireChecksum)
		r.getString(v, luaFieldKeyring, luaFieldVerify, &cfg.Verify.Keyring)
		r.getString(v, luaFieldMinisignKey, luaFieldVerify, &cfg.Verify.MinisignKey)
	}
	if lg := r.getTable(table, luaFieldLog, ""); lg != nil {
		r.getString(lg, luaFieldLevel, luaFieldLog, &cfg.Log.Level)
		cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	}

	if r.err != nil {
		return nil, r.err
	}

	cfg.GitHub.APIURL = strings.TrimRight(cfg.GitHub.APIURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, &ParseError{
			Message: "config validation failed",
			Detail:  err.Error(),
		}
	}

	return cfg, nil
}

// tableReader copies typed fields out of Lua tables and keeps the first
// type mismatch. Nil fields are skipped.
type tableReader struct {
	err error
}

func (r *tableReader) field(t *lua.LTable, key, section string, want lua.LValueType) lua.LValue {
	if r.err != nil {
		return nil
	}
	v := t.RawGetString(key)
	if v.Type() == lua.LTNil {
		return nil
	}
	if v.Type() != want {
		name := key
		if section != "" {
			name = section + "." + key
		}
		r.err = &ParseError{
			Message: "invalid config value",
			Detail:  fmt.Sprintf("%s.%s: expected %s, got %s", luaGlobalGitrel, name, want, v.Type()),
		}
		return nil
	}
	return v
}

func (r *tableReader) getTable(t *lua.LTable, key, section string) *lua.LTable {
	if v := r.field(t, key, section, lua.LTTable); v != nil {
		return v.(*lua.LTable)
	}
	return nil
}

func (r *tableReader) getString(t *lua.LTable, key, section string, dst *string) {
	if v := r.field(t, key, section, lua.LTString); v != nil {
		*dst = v.String()
	}
}

func (r *tableReader) getInt(t *lua.LTable, key, section string, dst *int) {
	if v := r.field(t, key, section, lua.LTNumber); v != nil {
		*dst = int(lua.LVAsNumber(v))
	}
}

func (r *tableReader) getBool(t *lua.LTable, key, section string, dst *bool) {
	if v := r.field(t, key, section, lua.LTBool); v != nil {
		*dst = bool(v.(lua.LBool))
	}
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
