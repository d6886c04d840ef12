package cache

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/samber/lo"

	"mouscache/internal/common/errors"
)

// NoExpiration disables the TTL when passed to InsertWith. Any ttl <= 0 has the same effect.
const NoExpiration time.Duration = -1

// Cacheable is implemented by every object stored through ObjectAccess.
//
// Implementations are used through pointers: FromFields mutates the receiver
// and Get copies into a caller-supplied destination.
type Cacheable interface {
	// ModelName is the stable type identity used to namespace keys.
	ModelName() string
	// ExpiresAfter is the default TTL applied by Insert; <= 0 means no expiration.
	ExpiresAfter() time.Duration
	// ToFields serializes the object into a string-keyed field map.
	ToFields() map[string]string
	// FromFields rebuilds the object from a field map produced by ToFields.
	FromFields(fields map[string]string) error
}

// ObjectKey derives the namespaced storage key for key under model's type identity.
func ObjectKey(model Cacheable, key string) string {
	return model.ModelName() + ":" + key
}

// FieldValue is one hash field assignment.
type FieldValue struct {
	Field string
	Value interface{}
}

// Scalar lists the types HashGetAs can parse a stored hash value into.
type Scalar interface {
	string | bool | int | int8 | int16 | int32 | int64 | uint | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

// HashGetAs reads key/field and parses the stored string into T.
// A value that cannot be parsed is reported as an ErrTypeParse error.
func HashGetAs[T Scalar](ctx context.Context, c HashAccess, key, field string) (T, bool, error) {
	var out T

	raw, found, err := c.HashGet(ctx, key, field)
	if err != nil || !found {
		return out, found, err
	}

	if err := parseScalar(raw, &out); err != nil {
		return out, false, err
	}
	return out, true, nil
}

func parseScalar[T Scalar](raw string, out *T) error {
	var (
		parsed interface{}
		err    error
	)

	switch any(*out).(type) {
	case string:
		parsed = raw
	case bool:
		parsed, err = strconv.ParseBool(raw)
	case int:
		var v int64
		v, err = strconv.ParseInt(raw, 10, strconv.IntSize)
		parsed = int(v)
	case int8:
		var v int64
		v, err = strconv.ParseInt(raw, 10, 8)
		parsed = int8(v)
	case int16:
		var v int64
		v, err = strconv.ParseInt(raw, 10, 16)
		parsed = int16(v)
	case int32:
		var v int64
		v, err = strconv.ParseInt(raw, 10, 32)
		parsed = int32(v)
	case int64:
		parsed, err = strconv.ParseInt(raw, 10, 64)
	case uint:
		var v uint64
		v, err = strconv.ParseUint(raw, 10, strconv.IntSize)
		parsed = uint(v)
	case uint8:
		var v uint64
		v, err = strconv.ParseUint(raw, 10, 8)
		parsed = uint8(v)
	case uint16:
		var v uint64
		v, err = strconv.ParseUint(raw, 10, 16)
		parsed = uint16(v)
	case uint32:
		var v uint64
		v, err = strconv.ParseUint(raw, 10, 32)
		parsed = uint32(v)
	case uint64:
		parsed, err = strconv.ParseUint(raw, 10, 64)
	case float32:
		var v float64
		v, err = strconv.ParseFloat(raw, 32)
		parsed = float32(v)
	case float64:
		parsed, err = strconv.ParseFloat(raw, 64)
	}

	if err != nil {
		return errors.ParseError(raw, fmt.Sprintf("%T", *out), err)
	}
	*out = parsed.(T)
	return nil
}

// formatValue renders a hash value or set member the way Redis would store it.
func formatValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

func formatValues(values []interface{}) []string {
	return lo.Map(values, func(v interface{}, _ int) string {
		return formatValue(v)
	})
}

// concreteType returns the value type behind obj, dereferencing one pointer level.
func concreteType(obj interface{}) reflect.Type {
	t := reflect.TypeOf(obj)
	if t != nil && t.Kind() == reflect.Ptr {
		return t.Elem()
	}
	return t
}

// checkDestination verifies dest can receive a copy.
func checkDestination(dest Cacheable) error {
	v := reflect.ValueOf(dest)
	if dest == nil || v.Kind() != reflect.Ptr || v.IsNil() {
		return errors.ValidationError(fmt.Sprintf("destination must be a non-nil pointer, got %T", dest))
	}
	return nil
}
