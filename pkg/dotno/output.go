// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package dotno

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// MarshalValue renders scalars as plain text and everything else as YAML.
func MarshalValue(v reflect.Value) (string, error) {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "", nil
		}
		if v.Elem().Kind() != reflect.Struct {
			v = v.Elem()
		}
	}
	if m, ok := v.Interface().(encoding.TextMarshaler); ok {
		b, err := m.MarshalText()
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	switch v.Kind() {
	case reflect.String, reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprint(v.Interface()), nil
	}
	b, err := yaml.Marshal(v.Interface())
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\n"), nil
}
