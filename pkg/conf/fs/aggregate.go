// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package conffs

import (
	"fmt"
	"reflect"

	"github.com/imdario/mergo"
	"github.com/wrgl/tabsum/pkg/conf"
)

// ptrTransformer lets a set *bool override the lower level value even when
// it points to false.
type ptrTransformer struct{}

func (ptrTransformer) Transformer(typ reflect.Type) func(dst, src reflect.Value) error {
	if typ.Kind() != reflect.Ptr || typ.Elem().Kind() == reflect.Struct {
		return nil
	}
	return func(dst, src reflect.Value) error {
		if dst.CanSet() && !src.IsNil() {
			dst.Set(src)
		}
		return nil
	}
}

// levelPaths lists config files from the lowest to the highest precedence.
func (s *Store) levelPaths() ([]string, error) {
	global, err := globalConfigPath()
	if err != nil {
		return nil, err
	}
	return []string{systemConfigPath(), global, localPath(s.rootDir)}, nil
}

// aggregateConfig merges system, global and local configs. Later levels
// win field by field.
func (s *Store) aggregateConfig() (*conf.Config, error) {
	paths, err := s.levelPaths()
	if err != nil {
		return nil, err
	}
	res := &conf.Config{}
	for _, fp := range paths {
		c, err := s.readConfig(fp)
		if err != nil {
			return nil, err
		}
		if err := mergo.Merge(res, c, mergo.WithOverride, mergo.WithTransformers(ptrTransformer{})); err != nil {
			return nil, fmt.Errorf("merge %s: %w", fp, err)
		}
	}
	return res, nil
}
