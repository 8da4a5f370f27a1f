package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

var validate = validator.New()

// O is a decoded YAML document. Values are addressed with dot paths
// such as "watch.poll".
type O map[string]any

// Get returns the value at path. An empty path returns the document itself.
func (this O) Get(path string) (any, bool) {
	if path == "" {
		return this, true
	}

	var current any = this
	for _, key := range strings.Split(path, ".") {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		if current, ok = m[key]; !ok {
			return nil, false
		}
	}
	return current, true
}

// GetString formats the value at path with %v, or returns "" when absent.
func (this O) GetString(path string) string {
	return this.GetStringOrDefault(path, "")
}

// GetStringOrDefault is GetString with a caller-chosen fallback.
func (this O) GetStringOrDefault(path, def string) string {
	v, ok := this.Get(path)
	if !ok || v == nil {
		return def
	}
	return fmt.Sprintf("%v", v)
}

// GetNumber converts the numeric value at path to T. It reports false
// when the path is absent or the value is not a number.
func GetNumber[T ~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64 | ~float32 | ~float64](cfg O, path string) (T, bool) {
	v, ok := cfg.Get(path)
	if !ok {
		return 0, false
	}

	switch n := v.(type) {
	case int:
		return T(n), true
	case int64:
		return T(n), true
	case uint64:
		return T(n), true
	case float64:
		return T(n), true
	default:
		return 0, false
	}
}

// GetIntoOption configures GetInto.
type GetIntoOption func(*getIntoOptions)

type getIntoOptions struct {
	validate bool
}

// WithValidation runs "validate" struct tags after decoding.
func WithValidation() GetIntoOption {
	return func(o *getIntoOptions) {
		o.validate = true
	}
}

// GetInto decodes the value at path into target using "yaml" tags.
// Strings such as "2s" decode into time.Duration fields. Fields absent
// from the document keep whatever target already holds.
func (this O) GetInto(path string, target any, opts ...GetIntoOption) error {
	o := getIntoOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	val, ok := this.Get(path)
	if !ok {
		return fmt.Errorf("key not found: %s", path)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}

	if err := decoder.Decode(val); err != nil {
		return fmt.Errorf("decode %s: %w", describe(path), err)
	}

	if o.validate {
		if err := validate.Struct(target); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	return nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case O:
		return m, true
	case map[string]any:
		return m, true
	default:
		return nil, false
	}
}

func describe(path string) string {
	if path == "" {
		return "config"
	}
	return path
}
