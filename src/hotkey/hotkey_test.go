package hotkey

import (
	"reflect"
	"testing"
)

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{"Ctrl+Shift+R", []string{"r", "ctrl", "shift"}, false},
		{"ctrl + alt + q", []string{"q", "ctrl", "alt"}, false},
		{"Win+1", []string{"1", "cmd"}, false},
		{"Super+Meta+a", []string{"a", "cmd"}, false},
		{"r", []string{"r"}, false},
		{"", nil, true},
		{"Ctrl+Shift", nil, true},
		{"Ctrl+a+b", nil, true},
		{"Ctrl+nosuchkey", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseHotkey(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseHotkey(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseHotkey(%q): %v", tt.in, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("parseHotkey(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
