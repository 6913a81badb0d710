package gallery

import (
	"encoding/json"
	"testing"
	"time"
)

func TestKindFromContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        Kind
		wantOK      bool
	}{
		{"image/jpeg", KindImage, true},
		{"image/png", KindImage, true},
		{"IMAGE/HEIC", KindImage, true},
		{"video/mp4", KindVideo, true},
		{"video/quicktime", KindVideo, true},
		{"audio/mpeg", "", false},
		{"application/pdf", "", false},
		{"text/plain", "", false},
		{"", "", false},
		{"imagejpeg", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			got, ok := KindFromContentType(tt.contentType)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("KindFromContentType(%q) = (%q, %v), want (%q, %v)",
					tt.contentType, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestAlbumFromPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "No path", path: "", want: DefaultAlbum},
		{name: "Bare filename", path: "cat.jpg", want: DefaultAlbum},
		{name: "One folder", path: "Pets/cat.jpg", want: "Pets"},
		{name: "Nested folders use immediate parent", path: "Photos/2024/Trip/beach.jpg", want: "Trip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AlbumFromPath(tt.path); got != tt.want {
				t.Errorf("AlbumFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestMediaRecordSnapshotFieldNames(t *testing.T) {
	rec := MediaRecord{
		ID: "abc", Locator: "blob:1", Kind: KindImage, DisplayName: "cat.jpg",
		CapturedAt: 100, ByteSize: 10, Width: 4, Height: 3, AlbumName: "Pets",
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"id", "url", "type", "name", "date", "size", "width", "height", "album"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("snapshot JSON missing %q: %s", key, data)
		}
	}
}

func TestClone(t *testing.T) {
	if got := Clone(nil); got == nil || len(got) != 0 {
		t.Errorf("Clone(nil) = %v, want empty non-nil slice", got)
	}

	orig := []MediaRecord{{ID: "a"}, {ID: "b"}}
	c := Clone(orig)
	c[0].ID = "changed"
	if orig[0].ID != "a" {
		t.Error("Clone shares backing array with its input")
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{-5, "0 B"},
		{1, "1 B"},
		{512, "512 B"},
		{1500, "1.46 KB"},
		{1536, "1.5 KB"},
		{1024*1024 - 1, "1024 KB"},
		{5 * 1024 * 1024, "5 MB"},
		{3 << 40, "3072 GB"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.bytes); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	ms := time.Date(2024, time.March, 5, 14, 7, 0, 0, time.UTC).UnixMilli()
	got := FormatDate(ms, time.UTC)
	want := "March 5, 2024 at 02:07 PM"
	if got != want {
		t.Errorf("FormatDate() = %q, want %q", got, want)
	}

	if FormatDate(ms, nil) == "" {
		t.Error("FormatDate with nil location should fall back to local time")
	}
}
