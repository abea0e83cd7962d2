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

package confirmation

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"google.golang.org/genai"
)

// RequestConfirmationFunctionCallName is the reserved function name used on
// the wire for approval traffic. An approver answers a suspended invocation
// with a FunctionResponse carrying this name and a response payload of at
// least {"confirmed": bool}.
const RequestConfirmationFunctionCallName = "toolgate_request_confirmation"

// FromFunctionResponse extracts the approver's decision from a confirmation
// FunctionResponse. It returns (nil, nil) when fr is not confirmation
// traffic, so callers can probe arbitrary responses.
//
// Some frontends encapsulate the decision in a single "response" key holding
// a JSON string; both shapes are accepted.
func FromFunctionResponse(fr *genai.FunctionResponse) (*ToolConfirmation, error) {
	if fr == nil || fr.Name != RequestConfirmationFunctionCallName {
		return nil, nil
	}
	if fr.Response == nil {
		return nil, errors.New("confirmation function response has no payload")
	}

	if raw, ok := fr.Response["response"]; ok && len(fr.Response) == 1 {
		s, ok := raw.(string)
		if !ok {
			return nil, errors.New("'response' key found but value is not a string for confirmation function response")
		}
		var tc ToolConfirmation
		if err := json.Unmarshal([]byte(s), &tc); err != nil {
			return nil, fmt.Errorf("failed unmarshalling encapsulated confirmation response: %w", err)
		}
		return &tc, nil
	}

	var tc ToolConfirmation
	if err := decode(fr.Response, &tc); err != nil {
		return nil, fmt.Errorf("failed decoding confirmation response: %w", err)
	}
	return &tc, nil
}

// DecodePayload converts a free-form confirmation payload into T. Payloads
// travel as map[string]any after a JSON round trip, so decoding is weakly
// typed and keyed by json tags.
func DecodePayload[T any](payload any) (*T, error) {
	if payload == nil {
		return nil, errors.New("confirmation payload is nil")
	}
	out := new(T)
	if err := decode(payload, out); err != nil {
		return nil, fmt.Errorf("failed to decode confirmation payload: %w", err)
	}
	return out, nil
}

func decode(in, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	return decoder.Decode(in)
}
