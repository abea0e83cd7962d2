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

// Package telemetry sets up the tracer used around gate evaluations.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const scopeName = "toolgate"

var (
	once        sync.Once
	localTracer trace.Tracer

	mu             sync.Mutex
	spanProcessors []sdktrace.SpanProcessor
)

// AddSpanProcessor registers a span processor with the local tracer.
// Must be called before the first span is started.
func AddSpanProcessor(processor sdktrace.SpanProcessor) {
	mu.Lock()
	defer mu.Unlock()
	spanProcessors = append(spanProcessors, processor)
}

// We keep a local tracer provider next to the global one so spans are
// recorded even when the application never configures OpenTelemetry.
func tracer() trace.Tracer {
	once.Do(func() {
		provider := sdktrace.NewTracerProvider()
		mu.Lock()
		processors := spanProcessors
		mu.Unlock()
		for _, processor := range processors {
			provider.RegisterSpanProcessor(processor)
		}
		localTracer = provider.Tracer(scopeName)
	})
	return localTracer
}

// StartSpan starts a span on both the local and the globally configured
// tracer and returns a composite end function.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func()) {
	ctx, localSpan := tracer().Start(ctx, name, trace.WithAttributes(attrs...))
	ctx, globalSpan := otel.GetTracerProvider().Tracer(scopeName).Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func() {
		globalSpan.End()
		localSpan.End()
	}
}
