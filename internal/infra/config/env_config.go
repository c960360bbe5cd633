package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidConfig is returned when the provided config is not a pointer to a struct
	// that embeds EnvConfig.
	ErrInvalidConfig = errors.New("config must be a pointer to a struct embedding EnvConfig")

	// ErrVarNotSet is returned when a required environment variable is not set and has no default.
	ErrVarNotSet = errors.New("env var not set")

	// ErrUnsupportedVarType is returned when trying to parse an environment variable
	// into an unsupported Go type.
	ErrUnsupportedVarType = errors.New("unsupported env var type")
)

//nolint:gochecknoglobals
var durationType = reflect.TypeOf(time.Duration(0))

// EnvConfig must be embedded in configuration structs passed to Parse.
type EnvConfig struct {
	namespace string
}

// Namespace returns the prefix the config was parsed with.
func (c EnvConfig) Namespace() string {
	return c.namespace
}

func getEnvConfig(cfg any) (*EnvConfig, error) {
	v := reflect.ValueOf(cfg)

	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, ErrInvalidConfig
	}

	v = v.Elem()

	for i := range v.NumField() {
		field := v.Type().Field(i)
		//nolint:exhaustruct,forcetypeassert
		if field.Anonymous && field.Type == reflect.TypeOf(EnvConfig{}) && v.Field(i).CanAddr() {
			return v.Field(i).Addr().Interface().(*EnvConfig), nil
		}
	}

	return nil, ErrInvalidConfig
}

// Parse fills cfg from environment variables.
//
// cfg must be a pointer to a struct embedding EnvConfig. Fields are bound with
// `env:"NAME"` and an optional `default:"value"`; nested structs add their
// `envPrefix` to the names of their fields. For namespace "A_B" a field NAME is
// looked up as A_B_NAME, then A_NAME, then NAME. Supported kinds are string,
// integers, float64, bool and time.Duration (Go duration syntax, or a bare
// number of seconds).
func Parse(ctx context.Context, cfg any, namespace string) error {
	envConfig, err := getEnvConfig(cfg)
	if err != nil {
		return fmt.Errorf("get env config: %w", err)
	}

	envConfig.namespace = namespace

	return parse(namespace, "", reflect.ValueOf(cfg).Elem())
}

func parse(namespace, prefix string, v reflect.Value) error {
	t := v.Type()

	for i := range t.NumField() {
		field := t.Field(i)

		if !field.IsExported() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := parse(namespace, prefix+field.Tag.Get("envPrefix"), v.Field(i)); err != nil {
				return err
			}

			continue
		}

		if err := parseField(namespace, prefix, field, v.Field(i)); err != nil {
			return fmt.Errorf("parse field: %w", err)
		}
	}

	return nil
}

func lookupEnv(namespace, name string) (string, string, bool) {
	nsParts := strings.Split(namespace, "_")

	for i := len(nsParts); i >= 0; i-- {
		envName := strings.Join(nsParts[:i], "_")
		if envName != "" {
			envName += "_"
		}

		envName += name

		if value, ok := os.LookupEnv(envName); ok {
			return envName, value, true
		}
	}

	return name, "", false
}

//nolint:cyclop
func parseField(namespace, prefix string, field reflect.StructField, value reflect.Value) error {
	envTag := field.Tag.Get("env")
	if envTag == "" {
		return nil
	}

	envName, envValue, ok := lookupEnv(namespace, prefix+envTag)
	if !ok {
		defaultValue, hasDefault := field.Tag.Lookup("default")
		if !hasDefault {
			return fmt.Errorf("%w: %s", ErrVarNotSet, envName)
		}

		envValue = defaultValue
	}

	if field.Type == durationType {
		d, err := parseDuration(envValue)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %w", envName, err)
		}

		value.SetInt(int64(d))

		return nil
	}

	//nolint:exhaustive
	switch field.Type.Kind() {
	case reflect.String:
		value.SetString(envValue)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(envValue, 10, field.Type.Bits())
		if err != nil {
			return fmt.Errorf("invalid type for %s: %w", envName, err)
		}

		value.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(envValue, field.Type.Bits())
		if err != nil {
			return fmt.Errorf("invalid type for %s: %w", envName, err)
		}

		value.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(envValue)
		if err != nil {
			return fmt.Errorf("invalid type for %s: %w", envName, err)
		}

		value.SetBool(b)
	default:
		return fmt.Errorf("%w: %s (%v)", ErrUnsupportedVarType, envName, field.Type.Kind())
	}

	return nil
}

func parseDuration(s string) (time.Duration, error) {
	if seconds, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}

	return d, nil
}
