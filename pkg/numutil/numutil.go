// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

// Package numutil has small number parsing and formatting helpers for
// plugin code that deals with user input.
package numutil

import (
	"cmp"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// IsInt reports whether s parses as a base-10 32-bit integer.
func IsInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 32)
	return err == nil
}

// IsLong reports whether s parses as a base-10 64-bit integer.
func IsLong(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// IsFloat reports whether s parses as a finite-range 32-bit float.
// Surrounding whitespace is ignored.
func IsFloat(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	return err == nil
}

// IsDouble reports whether s parses as a 64-bit float. Surrounding
// whitespace is ignored.
func IsDouble(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

// IntOr parses s as a 32-bit integer, returning def on failure.
func IntOr(s string, def int) int {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return def
	}
	return int(n)
}

// LongOr parses s as a 64-bit integer, returning def on failure.
func LongOr(s string, def int64) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def
	}
	return n
}

// FloatOr parses s as a 32-bit float, returning def on failure.
func FloatOr(s string, def float32) float32 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return def
	}
	return float32(f)
}

// DoubleOr parses s as a 64-bit float, returning def on failure.
func DoubleOr(s string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return f
}

// Clamp limits v to [lo, hi]. When lo > hi the result is lo.
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	return max(lo, min(hi, v))
}

// Between reports whether lo <= v <= hi.
func Between[T cmp.Ordered](v, lo, hi T) bool {
	return v >= lo && v <= hi
}

// Format2 renders v with at most two fraction digits, rounding half to
// even and dropping trailing zeros: 3.14159 is "3.14", 2.50 is "2.5" and
// 3.0 is "3".
func Format2(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "∞"
	case math.IsInf(v, -1):
		return "-∞"
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

var commaPrinter = message.NewPrinter(language.English)

// FormatCommas renders v with thousands separators: 1234567 is "1,234,567".
func FormatCommas(v int64) string {
	return commaPrinter.Sprintf("%d", v)
}

// Percent returns current as a percentage of total, or 0 when total is 0.
func Percent(current, total float64) float64 {
	if total == 0 {
		return 0
	}
	return current / total * 100
}

// PercentFormatted returns Percent formatted with Format2 and a "%" suffix.
func PercentFormatted(current, total float64) string {
	return Format2(Percent(current, total)) + "%"
}
