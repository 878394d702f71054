package config

import "testing"

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", Options{Marker: DefaultMarker}, false},
		{"unlimited depth", Options{Marker: DefaultMarker, Depth: 0}, false},
		{"max depth", Options{Marker: DefaultMarker, Depth: MaxDepth}, false},
		{"negative depth", Options{Marker: DefaultMarker, Depth: -1}, true},
		{"depth too large", Options{Marker: DefaultMarker, Depth: MaxDepth + 1}, true},
		{"empty marker", Options{Marker: ""}, true},
		{"empty marker with keep-all", Options{Marker: "", KeepAll: true}, false},
		{"custom marker", Options{Marker: "### RUN ###", Depth: 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultLimits(t *testing.T) {
	limits := DefaultLimits()
	if limits.MaxLineBytes <= 0 || limits.MaxBlockBytes <= 0 || limits.MaxPendingBlocks <= 0 {
		t.Errorf("DefaultLimits() has non-positive fields: %+v", limits)
	}
	if limits.MaxLineBytes >= limits.MaxBlockBytes {
		t.Errorf("a single line may not exceed a whole block: %+v", limits)
	}
}
