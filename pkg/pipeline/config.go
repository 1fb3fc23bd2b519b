package pipeline

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/levelgen/pkg/errors"
)

// LoadOptions reads a TOML config file on top of [DefaultOptions]. Unknown
// keys are rejected so that typos do not silently fall back to defaults.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Options{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return DecodeOptions(bytes.NewReader(data))
}

// DecodeOptions decodes TOML options from r on top of [DefaultOptions].
func DecodeOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	// Decoded arrays of tables reuse existing elements; start from none.
	opts.Templates = nil
	md, err := toml.NewDecoder(r).Decode(&opts)
	if err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Options{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	opts.SetDefaults()
	return opts, nil
}

// WriteOptions encodes options as TOML.
func WriteOptions(w io.Writer, opts Options) error {
	if err := toml.NewEncoder(w).Encode(opts); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	return nil
}
