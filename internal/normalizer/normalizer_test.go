package normalizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"media-gallery/internal/gallery"
	"media-gallery/internal/locator"
	"media-gallery/internal/workers"
)

// encodePNG returns a w x h PNG.
func encodePNG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func bytesInput(name, contentType string, modified int64, data []byte) Input {
	return Input{
		ContentType:  contentType,
		Name:         name,
		LastModified: modified,
		Size:         int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func TestNormalizeClassifiesAndDropsUnsupported(t *testing.T) {
	reg := locator.NewRegistry()
	n := New(reg, Options{Workers: 2})

	inputs := []Input{
		bytesInput("a.png", "image/png", 100, encodePNG(t, 4, 3)),
		bytesInput("clip.mp4", "video/mp4", 300, []byte("not really a video")),
		bytesInput("notes.txt", "text/plain", 500, []byte("hello")),
		bytesInput("song.mp3", "audio/mpeg", 400, []byte("id3")),
	}

	records, err := n.Normalize(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	byName := map[string]gallery.MediaRecord{}
	for _, r := range records {
		byName[r.DisplayName] = r
	}

	img, ok := byName["a.png"]
	if !ok || img.Kind != gallery.KindImage {
		t.Fatalf("a.png record = %+v, want image", img)
	}
	if img.Width != 4 || img.Height != 3 {
		t.Errorf("a.png dimensions = %dx%d, want 4x3", img.Width, img.Height)
	}

	vid, ok := byName["clip.mp4"]
	if !ok || vid.Kind != gallery.KindVideo {
		t.Fatalf("clip.mp4 record = %+v, want video", vid)
	}
	if vid.Width != 0 || vid.Height != 0 {
		t.Errorf("video dimensions = %dx%d, want 0x0", vid.Width, vid.Height)
	}

	if reg.Len() != 2 {
		t.Errorf("registry holds %d locators, want 2", reg.Len())
	}
}

func TestNormalizeSortsDescendingByCapturedAt(t *testing.T) {
	n := New(locator.NewRegistry(), Options{Workers: 4})

	inputs := []Input{
		bytesInput("old.mp4", "video/mp4", 100, []byte("a")),
		bytesInput("new.mp4", "video/mp4", 300, []byte("b")),
		bytesInput("mid.mp4", "video/mp4", 200, []byte("c")),
	}

	records, err := n.Normalize(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	var got []int64
	for _, r := range records {
		got = append(got, r.CapturedAt)
	}
	want := []int64{300, 200, 100}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("CapturedAt order = %v, want %v", got, want)
	}
}

// delayProber finishes the first inputs last.
type delayProber struct {
	calls atomic.Int32
}

func (p *delayProber) Probe(r io.Reader) (int, int, error) {
	n := p.calls.Add(1)
	time.Sleep(time.Duration(10-n) * time.Millisecond)
	return ConfigProber{}.Probe(r)
}

func TestNormalizeOrderIndependentOfCompletion(t *testing.T) {
	n := New(locator.NewRegistry(), Options{Workers: 8, Prober: &delayProber{}})

	var inputs []Input
	for i := 0; i < 8; i++ {
		inputs = append(inputs, bytesInput(fmt.Sprintf("%d.png", i), "image/png", int64(i*10), encodePNG(t, 1, 1)))
	}

	records, err := n.Normalize(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	for i := 1; i < len(records); i++ {
		if records[i-1].CapturedAt < records[i].CapturedAt {
			t.Fatalf("records not descending at %d: %d < %d", i, records[i-1].CapturedAt, records[i].CapturedAt)
		}
	}
}

func TestNormalizeUndecodableImageKeepsZeroDimensions(t *testing.T) {
	n := New(locator.NewRegistry(), Options{})

	records, err := n.Normalize(context.Background(), []Input{
		bytesInput("broken.jpg", "image/jpeg", 1, []byte("definitely not a jpeg")),
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Width != 0 || records[0].Height != 0 {
		t.Errorf("dimensions = %dx%d, want 0x0", records[0].Width, records[0].Height)
	}
}

func TestNormalizeAlbumFromRelativePath(t *testing.T) {
	n := New(locator.NewRegistry(), Options{})

	loose := bytesInput("cat.jpg", "image/jpeg", 1, []byte("x"))
	nested := bytesInput("dog.jpg", "image/jpeg", 2, []byte("y"))
	nested.RelativePath = "Phone/Pets/dog.jpg"

	records, err := n.Normalize(context.Background(), []Input{loose, nested})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	albums := map[string]string{}
	for _, r := range records {
		albums[r.DisplayName] = r.AlbumName
	}
	if albums["cat.jpg"] != gallery.DefaultAlbum {
		t.Errorf("loose file album = %q, want %q", albums["cat.jpg"], gallery.DefaultAlbum)
	}
	if albums["dog.jpg"] != "Pets" {
		t.Errorf("nested file album = %q, want %q", albums["dog.jpg"], "Pets")
	}
}

func TestNormalizeAssignsUniqueIDs(t *testing.T) {
	n := New(locator.NewRegistry(), Options{})

	var inputs []Input
	for i := 0; i < 20; i++ {
		inputs = append(inputs, bytesInput("v.mp4", "video/mp4", int64(i), []byte{byte(i)}))
	}
	records, err := n.Normalize(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	seen := map[string]bool{}
	for _, r := range records {
		if r.ID == "" || seen[r.ID] {
			t.Fatalf("duplicate or empty id %q", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestNormalizeSkipsUnreadableInputs(t *testing.T) {
	reg := locator.NewRegistry()
	n := New(reg, Options{})

	bad := Input{
		ContentType: "image/png",
		Name:        "gone.png",
		Open: func() (io.ReadCloser, error) {
			return nil, errors.New("file vanished")
		},
	}
	noContent := Input{ContentType: "video/mp4", Name: "empty.mp4"}
	good := bytesInput("ok.mp4", "video/mp4", 5, []byte("ok"))

	records, err := n.Normalize(context.Background(), []Input{bad, noContent, good})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(records) != 1 || records[0].DisplayName != "ok.mp4" {
		t.Errorf("records = %+v, want only ok.mp4", records)
	}
	if reg.Len() != 1 {
		t.Errorf("registry holds %d locators, want 1", reg.Len())
	}
}

func TestNormalizeUnknownSizeUsesContentLength(t *testing.T) {
	n := New(locator.NewRegistry(), Options{})
	in := bytesInput("v.mp4", "video/mp4", 1, []byte("12345"))
	in.Size = -1

	records, err := n.Normalize(context.Background(), []Input{in})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if records[0].ByteSize != 5 {
		t.Errorf("ByteSize = %d, want 5", records[0].ByteSize)
	}
}

func TestNormalizeCanceledContextReleasesLocators(t *testing.T) {
	reg := locator.NewRegistry()
	n := New(reg, Options{Workers: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := n.Normalize(ctx, []Input{bytesInput("a.mp4", "video/mp4", 1, []byte("a"))})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Normalize() error = %v, want context.Canceled", err)
	}
	if reg.Len() != 0 {
		t.Errorf("registry holds %d locators after cancel, want 0", reg.Len())
	}
}

func TestNormalizeEmptyBatch(t *testing.T) {
	n := New(locator.NewRegistry(), Options{})
	records, err := n.Normalize(context.Background(), nil)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

func TestProbers(t *testing.T) {
	data := encodePNG(t, 7, 5)

	for _, oriented := range []bool{false, true} {
		t.Run(fmt.Sprintf("oriented=%v", oriented), func(t *testing.T) {
			w, h, err := ProberFor(oriented).Probe(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Probe() error = %v", err)
			}
			if w != 7 || h != 5 {
				t.Errorf("Probe() = %dx%d, want 7x5", w, h)
			}

			if _, _, err := ProberFor(oriented).Probe(strings.NewReader("garbage")); err == nil {
				t.Error("Probe() expected error for garbage input")
			}
		})
	}
}

func TestNewSizesPoolByProber(t *testing.T) {
	t.Setenv(workers.OverrideEnv, "")

	tests := []struct {
		name string
		opts Options
		want int
	}{
		{"header prober", Options{}, workers.Size(workers.IOBound, maxProbeWorkers)},
		{"decoding prober", Options{Prober: ProberFor(true)}, workers.Size(workers.CPUBound, maxProbeWorkers)},
		{"explicit count wins", Options{Prober: ProberFor(true), Workers: 3}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(locator.NewRegistry(), tt.opts).workers; got != tt.want {
				t.Errorf("workers = %d, want %d", got, tt.want)
			}
		})
	}
}
