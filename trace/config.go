package trace

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
)

const (
	EnvTraceStdout = "RPCIO_TRACE_STDOUT"
	EnvTraceSyslog = "RPCIO_TRACE_SYSLOG"
	EnvTraceFile   = "RPCIO_TRACE_FILE"
	EnvTraceIdent  = "RPCIO_TRACE_IDENT"
)

// Config is the on-disk form of Options. The file sink is named by path.
type Config struct {
	Stdout bool   `toml:"stdout"`
	Syslog bool   `toml:"syslog"`
	File   string `toml:"file"`
	Ident  string `toml:"ident"`
}

type configFile struct {
	Trace Config `toml:"trace"`
}

// LoadConfig reads the [trace] table of a TOML file. Unknown keys inside
// that table are an error.
func LoadConfig(path string) (Config, error) {
	var f configFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return Config{}, fmt.Errorf("trace: load %s: %w", path, err)
	}
	// other tables belong to the rest of the server
	for _, key := range md.Undecoded() {
		if len(key) > 1 && key[0] == "trace" {
			return Config{}, fmt.Errorf("trace: load %s: unknown key %s", path, key)
		}
	}
	return f.Trace, nil
}

// ApplyEnv overrides fields from RPCIO_TRACE_* variables. Unset or
// unparsable values leave the field alone.
func (c *Config) ApplyEnv() {
	if v, ok := parseBool(os.Getenv(EnvTraceStdout)); ok {
		c.Stdout = v
	}
	if v, ok := parseBool(os.Getenv(EnvTraceSyslog)); ok {
		c.Syslog = v
	}
	if v, ok := os.LookupEnv(EnvTraceFile); ok {
		c.File = strings.TrimSpace(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTraceIdent)); v != "" {
		c.Ident = v
	}
}

// BindFlags registers --trace-* flags on fs, defaulting to the current
// values of c.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.Stdout, "trace-stdout", c.Stdout, "write trace lines to standard output")
	fs.BoolVar(&c.Syslog, "trace-syslog", c.Syslog, "write trace lines to the system log")
	fs.StringVar(&c.File, "trace-file", c.File, "append trace lines to this file")
	fs.StringVar(&c.Ident, "trace-ident", c.Ident, "system log identifier")
}

// Open builds a Tracer from c, opening the trace file in append mode.
// The returned Tracer closes that file on Close.
func Open(c Config) (*Tracer, error) {
	opts := Options{
		Stdout: c.Stdout,
		Syslog: c.Syslog,
		Ident:  c.Ident,
	}
	var file *os.File
	if c.File != "" {
		var err error
		file, err = os.OpenFile(c.File, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("trace: open %s: %w", c.File, err)
		}
		opts.File = file
	}
	t := New(opts)
	if file != nil {
		t.closer = file
	}
	return t, nil
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
