package injector

import (
	"fmt"
	"net/url"
	"os"
	"reflect"
	"unicode/utf8"

	"github.com/magiconair/properties"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// Char is the scalar kind for a configuration point declared to hold
// exactly one character. Go has no native character type distinct from
// its integer kinds, so a named type is used to disambiguate it from
// "int" during coercion.
type Char rune

// FilePath is the scalar kind for a configuration point that should
// receive the literal path string, uncoerced.
type FilePath string

// configBinder loads a properties file plus programmatic overrides, and
// coerces each configuration point's string value to its field's
// declared scalar kind.
type configBinder struct {
	props     *properties.Properties
	overrides map[string]string
	provider  OverrideProvider
	logger    *zap.Logger
}

// newConfigBinder loads path (default settings.properties) once. Absence
// of the file is not an error — it is info-logged and binding proceeds
// using overrides and field defaults only.
func newConfigBinder(path string, overrides map[string]string, logger *zap.Logger) (*configBinder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == emptyString {
		path = defaultConfigFileLocation
	}

	var props *properties.Properties
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		logger.Info("configuration file not found; binding from overrides and defaults only", zap.String("path", path))
		props = properties.NewProperties()
	} else {
		p, err := properties.LoadFile(path, properties.UTF8)
		if err != nil {
			return nil, err
		}
		props = p
	}

	return &configBinder{props: props, overrides: overrides, logger: logger}, nil
}

// resolveRaw applies the source precedence: the OverrideProvider when one
// is installed, then programmatic (PutParam) overrides, then the
// properties file, then the field's declared default.
func (b *configBinder) resolveRaw(name, def string) string {
	if b.provider != nil {
		if v, ok := b.provider(name); ok {
			return v
		}
	}
	if v, ok := b.overrides[name]; ok {
		return v
	}
	if v, ok := b.props.Get(name); ok {
		return v
	}
	return def
}

// bind runs once per instance, before any lifecycle hook executes.
func (b *configBinder) bind(instance reflect.Value, reflector Reflector, componentName string, points []configPoint) error {
	for _, cp := range points {
		raw := b.resolveRaw(cp.Name, cp.Default)
		val, err := coerceValue(raw, cp.FieldType)
		if err != nil {
			return &ConfigCoercionError{Component: componentName, Field: cp.FieldName, Kind: cp.FieldType.String(), Value: raw, Cause: err}
		}
		reflector.SetField(instance, cp.FieldIndex, val)
	}
	return nil
}

var (
	charType     = reflect.TypeOf(Char(0))
	filePathType = reflect.TypeOf(FilePath(""))
	urlType      = reflect.TypeOf((*url.URL)(nil))
)

// coerceValue coerces a raw string value to its field's declared scalar kind.
func coerceValue(raw string, fieldType reflect.Type) (reflect.Value, error) {
	switch fieldType {
	case charType:
		r, size := utf8.DecodeRuneInString(raw)
		if r == utf8.RuneError || size != len(raw) {
			return reflect.Value{}, fmt.Errorf("expected exactly one character, got %q", raw)
		}
		return reflect.ValueOf(Char(r)), nil
	case filePathType:
		return reflect.ValueOf(FilePath(raw)), nil
	case urlType:
		u, err := url.Parse(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(u), nil
	}

	switch fieldType.Kind() {
	case reflect.Bool:
		// Lossy permissive parse: unknown input coerces to false rather
		// than failing.
		v, err := cast.ToBoolE(raw)
		if err != nil {
			v = false
		}
		return reflect.ValueOf(v), nil
	case reflect.Int8:
		v, err := cast.ToInt8E(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(v), nil
	case reflect.Int16:
		v, err := cast.ToInt16E(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(v), nil
	case reflect.Int32:
		v, err := cast.ToInt32E(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(v), nil
	case reflect.Int, reflect.Int64:
		v, err := cast.ToInt64E(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(fieldType).Elem()
		out.SetInt(v)
		return out, nil
	case reflect.Float32:
		v, err := cast.ToFloat32E(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(v), nil
	case reflect.Float64:
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(v), nil
	case reflect.String:
		return reflect.ValueOf(raw), nil
	default:
		return reflect.Value{}, fmt.Errorf("unsupported configuration kind %v", fieldType)
	}
}
