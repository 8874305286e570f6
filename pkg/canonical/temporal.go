// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package canonical

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout renders every temporal value in UTC with 7 fractional digits,
// the finest precision common engines store.
const TimeLayout = "2006-01-02T15:04:05.0000000"

var (
	zonedLayouts = []string{
		time.RFC3339,
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04:05 -0700",
		"2006-01-02 15:04:05 -0700 MST",
	}
	localLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	clockLayouts = []string{
		"15:04:05",
		"15:04",
	}
)

func canonicalTime(value interface{}) (string, error) {
	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	case *time.Time:
		if v == nil {
			return "", nil
		}
		t = *v
	case []byte:
		return canonicalTime(string(v))
	case string:
		var err error
		t, err = parseTime(strings.TrimSpace(v))
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("cannot read %T as temporal", value)
	}
	return t.UTC().Format(TimeLayout), nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	for _, layout := range clockLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			// anchor time-of-day values at 0001-01-01
			return time.Date(1, 1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("string %q is not a recognized temporal value", s)
}
