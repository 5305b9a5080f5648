package registry

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/aretw0/swallow/pkg/domain"
)

type parser func(string) (any, error)

// parsers is keyed by the constructor's declared parameter type.
var parsers = map[reflect.Type]parser{
	reflect.TypeFor[string](): func(s string) (any, error) { return s, nil },
	reflect.TypeFor[int](): func(s string) (any, error) {
		return strconv.Atoi(s)
	},
	reflect.TypeFor[int64](): func(s string) (any, error) {
		return strconv.ParseInt(s, 10, 64)
	},
	reflect.TypeFor[uint](): func(s string) (any, error) {
		v, err := strconv.ParseUint(s, 10, strconv.IntSize)
		return uint(v), err
	},
	reflect.TypeFor[float64](): func(s string) (any, error) {
		return strconv.ParseFloat(s, 64)
	},
	reflect.TypeFor[bool](): func(s string) (any, error) {
		return strconv.ParseBool(s)
	},
	reflect.TypeFor[time.Duration](): func(s string) (any, error) {
		return time.ParseDuration(s)
	},
}

func parseArg(t reflect.Type, raw string) (reflect.Value, error) {
	p, ok := parsers[t]
	if !ok {
		return reflect.Value{}, fmt.Errorf("no parser for type %s: %w", t, domain.ErrNotFound)
	}
	v, err := p(raw)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("parse %q as %s: %w", raw, t, err)
	}
	return reflect.ValueOf(v).Convert(t), nil
}
