package app

import (
	"testing"

	coremetrics "github.com/mkervran/bikefleet/core/metrics"
)

func TestBuildSinkDisabled(t *testing.T) {
	sink := BuildSink(coremetrics.Config{})
	if _, ok := sink.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", sink)
	}
}

func TestBuildSinkPrometheus(t *testing.T) {
	sink := BuildSink(coremetrics.Config{PrometheusEnabled: true})
	if _, ok := sink.(coremetrics.NopSink); ok {
		t.Fatal("expected a prometheus sink, got NopSink")
	}
}
