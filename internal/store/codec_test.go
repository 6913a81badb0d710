package store

import (
	"encoding/json"
	"errors"
	"testing"

	"media-gallery/internal/gallery"
)

func TestEncodeUsesPersistedFieldNames(t *testing.T) {
	data, err := Encode([]gallery.MediaRecord{{
		ID:          "1",
		Locator:     "blob:1",
		Kind:        gallery.KindVideo,
		DisplayName: "clip.mp4",
		CapturedAt:  1700000000000,
		ByteSize:    42,
		AlbumName:   "Trips",
	}})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var raw []map[string]any
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, key := range []string{"id", "url", "type", "name", "date", "size", "width", "height", "album"} {
		if _, ok := raw[0][key]; !ok {
			t.Errorf("encoded record missing %q: %s", key, data)
		}
	}
	if raw[0]["type"] != "video" {
		t.Errorf("type = %v, want video", raw[0]["type"])
	}
}

func TestEncodeNilIsEmptyArray(t *testing.T) {
	data, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if data != "[]" {
		t.Errorf("Encode(nil) = %q, want []", data)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty string", ""},
		{"truncated", `[{"id":"1"`},
		{"wrong type", `[{"id":1}]`},
		{"missing id", `[{"name":"a.jpg"}]`},
		{"duplicate id", `[{"id":"a"},{"id":"a"}]`},
		{"null", `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data); !errors.Is(err, ErrMalformedSnapshot) {
				t.Errorf("Decode(%q) error = %v, want ErrMalformedSnapshot", tt.data, err)
			}
		})
	}
}
