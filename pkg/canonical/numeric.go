// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package canonical

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// canonicalNumber renders a number as fixed-point decimal text: no exponent,
// no trailing fractional zeros and no negative zero. 1.50, 1.5e0 and 1.5
// all become "1.5".
func canonicalNumber(value interface{}) (string, error) {
	d := new(apd.Decimal)
	switch v := value.(type) {
	case int64:
		d.SetInt64(v)
	case int:
		d.SetInt64(int64(v))
	case int32:
		d.SetInt64(int64(v))
	case int16:
		d.SetInt64(int64(v))
	case int8:
		d.SetInt64(int64(v))
	case uint64:
		return parseDecimal(d, strconv.FormatUint(v, 10))
	case uint:
		return parseDecimal(d, strconv.FormatUint(uint64(v), 10))
	case uint32:
		d.SetInt64(int64(v))
	case uint16:
		d.SetInt64(int64(v))
	case uint8:
		d.SetInt64(int64(v))
	case float64:
		return floatToken(v, 64)
	case float32:
		return floatToken(float64(v), 32)
	case *apd.Decimal:
		d.Set(v)
	case apd.Decimal:
		d.Set(&v)
	case *big.Int:
		d.Coeff.SetMathBigInt(v)
		if v.Sign() < 0 {
			d.Coeff.Neg(&d.Coeff)
			d.Negative = true
		}
	case *big.Float:
		return parseDecimal(d, v.Text('f', -1))
	case []byte:
		return parseDecimal(d, string(v))
	case string:
		return parseDecimal(d, v)
	default:
		return "", fmt.Errorf("cannot read %T as number", value)
	}
	return decimalToken(d), nil
}

func floatToken(f float64, bitSize int) (string, error) {
	switch {
	case math.IsNaN(f):
		return "NaN", nil
	case math.IsInf(f, 1):
		return "Infinity", nil
	case math.IsInf(f, -1):
		return "-Infinity", nil
	}
	return parseDecimal(new(apd.Decimal), strconv.FormatFloat(f, 'f', -1, bitSize))
}

func parseDecimal(d *apd.Decimal, s string) (string, error) {
	s = strings.TrimSpace(s)
	if _, _, err := d.SetString(s); err != nil {
		return "", fmt.Errorf("string %q is not a number", s)
	}
	return decimalToken(d), nil
}

func decimalToken(d *apd.Decimal) string {
	switch d.Form {
	case apd.NaN, apd.NaNSignaling:
		return "NaN"
	case apd.Infinite:
		if d.Negative {
			return "-Infinity"
		}
		return "Infinity"
	}
	d.Reduce(d)
	if d.IsZero() {
		return "0"
	}
	return d.Text('f')
}
