// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lookup holds the deterministic domain tables used by the currency
// conversion tools: transaction fees per payment method and exchange rates
// per currency pair. Keys are matched case-insensitively.
package lookup

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a lookup key has no entry.
var ErrNotFound = errors.New("lookup: key not found")

// FeeTable maps a payment method to its transaction fee fraction.
type FeeTable map[string]float64

// DefaultFees returns the built-in fee table.
func DefaultFees() FeeTable {
	return FeeTable{
		"platinum credit card": 0.02,
		"gold debit card":      0.035,
		"bank transfer":        0.01,
	}
}

// Fee returns the fee fraction for the given payment method.
func (t FeeTable) Fee(method string) (float64, error) {
	fee, ok := t[strings.ToLower(method)]
	if !ok {
		return 0, fmt.Errorf("%w: payment method %q", ErrNotFound, method)
	}
	return fee, nil
}

// RateTable maps a base currency to the exchange rates of its targets.
type RateTable map[string]map[string]float64

// DefaultRates returns the built-in exchange rate table.
func DefaultRates() RateTable {
	return RateTable{
		"usd": {"eur": 0.93, "jpy": 157.5, "inr": 83.58},
	}
}

// Rate returns the exchange rate from base to target.
func (t RateTable) Rate(base, target string) (float64, error) {
	rate, ok := t[strings.ToLower(base)][strings.ToLower(target)]
	if !ok {
		return 0, fmt.Errorf("%w: currency pair %s/%s", ErrNotFound, base, target)
	}
	return rate, nil
}
