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

package lookup

import (
	"errors"
	"testing"
)

func TestFee(t *testing.T) {
	fees := DefaultFees()

	tests := []struct {
		name    string
		method  string
		want    float64
		wantErr bool
	}{
		{name: "mixed case", method: "Platinum Credit Card", want: 0.02},
		{name: "lower case", method: "bank transfer", want: 0.01},
		{name: "upper case", method: "GOLD DEBIT CARD", want: 0.035},
		{name: "unknown method", method: "bitcoin", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fees.Fee(tt.method)
			if tt.wantErr {
				if !errors.Is(err, ErrNotFound) {
					t.Fatalf("Fee(%q) error = %v, want ErrNotFound", tt.method, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fee(%q) unexpected error: %v", tt.method, err)
			}
			if got != tt.want {
				t.Errorf("Fee(%q) = %v, want %v", tt.method, got, tt.want)
			}
		})
	}
}

func TestRate(t *testing.T) {
	rates := DefaultRates()

	got, err := rates.Rate("USD", "EUR")
	if err != nil {
		t.Fatalf("Rate(USD, EUR) unexpected error: %v", err)
	}
	if got != 0.93 {
		t.Errorf("Rate(USD, EUR) = %v, want 0.93", got)
	}

	if _, err := rates.Rate("usd", "gbp"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Rate(usd, gbp) error = %v, want ErrNotFound", err)
	}
	if _, err := rates.Rate("eur", "usd"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Rate(eur, usd) error = %v, want ErrNotFound", err)
	}
}
