// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

// Package errors holds the error taxonomy of tabsum. It re-exports the
// standard helpers so callers need a single import.
package errors

import (
	"errors"
)

func New(text string) error {
	return errors.New(text)
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Contains reports whether err or any error it wraps is v, or carries the
// message v when v is a string or an error of another identity.
func Contains(err error, v interface{}) bool {
	if v == nil || err == nil {
		return v == nil && err == nil
	}
	var msg string
	switch t := v.(type) {
	case string:
		msg = t
	case error:
		if errors.Is(err, t) {
			return true
		}
		msg = t.Error()
	default:
		return false
	}
	for ; err != nil; err = errors.Unwrap(err) {
		if err.Error() == msg {
			return true
		}
	}
	return false
}
