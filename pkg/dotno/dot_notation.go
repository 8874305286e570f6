// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

// Package dotno reads and writes nested config fields addressed with dot
// notation such as "diff.showMatched" or "sources.prod.dsn". Struct fields
// are matched by their yaml name.
package dotno

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// fieldByYAMLName finds the struct field whose yaml tag (or lower-camel Go
// name when untagged) equals name.
func fieldByYAMLName(t reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue
		}
		tag := strings.Split(sf.Tag.Get("yaml"), ",")[0]
		if tag == "-" {
			continue
		}
		if tag == "" {
			tag = strings.ToLower(sf.Name[:1]) + sf.Name[1:]
		}
		if tag == name {
			return sf, true
		}
	}
	return reflect.StructField{}, false
}

func GetFieldValue(s interface{}, prop string, createIfZero bool) (reflect.Value, error) {
	v := reflect.ValueOf(s)
	t := reflect.TypeOf(s)
	if prop == "" {
		return v, nil
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
		v = v.Elem()
	}
	for _, name := range strings.Split(prop, ".") {
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
			v = v.Elem()
		}

		switch t.Kind() {
		case reflect.Struct:
			sf, ok := fieldByYAMLName(t, name)
			if !ok {
				return reflect.Value{}, fmt.Errorf(`field %q not found`, name)
			}
			v = v.FieldByIndex(sf.Index)
			t = sf.Type
			if v.IsZero() {
				if !createIfZero {
					return reflect.Value{}, fmt.Errorf(`field %q is not set`, name)
				}
				switch t.Kind() {
				case reflect.Ptr:
					v.Set(reflect.New(t.Elem()))
				case reflect.Map:
					v.Set(reflect.MakeMap(t))
				}
			}
		case reflect.Map:
			if t.Key().Kind() != reflect.String {
				return reflect.Value{}, fmt.Errorf("map key must be a string")
			}
			t = t.Elem()
			key := reflect.ValueOf(name)
			e := v.MapIndex(key)
			if !e.IsValid() {
				if !createIfZero {
					return reflect.Value{}, fmt.Errorf("key not found: %q", name)
				}
				if t.Kind() != reflect.Ptr {
					return reflect.Value{}, fmt.Errorf("cannot create map entry of type %v", t)
				}
				e = reflect.New(t.Elem())
				v.SetMapIndex(key, e)
			}
			v = e
		default:
			return reflect.Value{}, fmt.Errorf("cannot descend into %v at %q", t.Kind(), name)
		}
	}
	return v, nil
}

func GetParentField(s interface{}, prop string) (parent reflect.Value, name string, err error) {
	props := strings.Split(prop, ".")
	n := len(props) - 1
	name = props[n]
	parent, err = GetFieldValue(s, strings.Join(props[:n], "."), false)
	return
}

func UnsetField(s interface{}, prop string) error {
	parent, name, err := GetParentField(s, prop)
	if err != nil {
		return err
	}
	if parent.Kind() == reflect.Ptr {
		parent = parent.Elem()
	}
	switch parent.Kind() {
	case reflect.Struct:
		sf, ok := fieldByYAMLName(parent.Type(), name)
		if !ok {
			return fmt.Errorf(`field %q not found`, name)
		}
		field := parent.FieldByIndex(sf.Index)
		field.Set(reflect.Zero(field.Type()))
	case reflect.Map:
		key := reflect.ValueOf(name)
		if !parent.MapIndex(key).IsValid() {
			return fmt.Errorf("key not found: %q", name)
		}
		parent.SetMapIndex(key, reflect.Value{})
	default:
		return fmt.Errorf("cannot unset field of %v", parent.Kind())
	}
	return nil
}

func GetWithDotNotation(s interface{}, prop string) (interface{}, error) {
	fv, err := GetFieldValue(s, prop, false)
	if err != nil {
		return nil, err
	}
	return fv.Interface(), nil
}

// SetValue parses val into v according to v's type.
func SetValue(v reflect.Value, val string) error {
	if v.CanAddr() && v.Addr().Type().Implements(textUnmarshalerType) {
		return v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(val))
	}
	switch v.Kind() {
	case reflect.String:
		v.Set(reflect.ValueOf(val).Convert(v.Type()))
	case reflect.Bool:
		b, err := parseBool(val)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("bad value: %q is not an integer", val)
		}
		v.SetInt(n)
	case reflect.Ptr:
		if v.Type().Elem().Kind() != reflect.Bool {
			return fmt.Errorf("cannot set %v from a string", v.Type())
		}
		b, err := parseBool(val)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(&b))
	default:
		return fmt.Errorf("cannot set %v from a string", v.Type())
	}
	return nil
}

func SetWithDotNotation(s interface{}, prop string, val string) error {
	fv, err := GetFieldValue(s, prop, true)
	if err != nil {
		return err
	}
	return SetValue(fv, val)
}

func parseBool(val string) (bool, error) {
	switch strings.ToLower(val) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("bad value: %q, only accept %q or %q", val, "true", "false")
}
