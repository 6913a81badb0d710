package handlers

import (
	"bytes"
	"context"
	"time"

	"media-gallery/internal/filesystem"
	"media-gallery/internal/gallery"
	"media-gallery/internal/session"
	"media-gallery/internal/startup"
)

// BlobSource serves the bytes behind locators.
type BlobSource interface {
	Open(loc gallery.Locator) (*bytes.Reader, string, error)
	Len() int
}

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	session     *session.Session
	blobs       BlobSource
	db          Pinger
	mediaDir    string
	scanEnabled bool
	retry       filesystem.RetryConfig
	location    *time.Location
	startTime   time.Time
}

func New(sess *session.Session, blobs BlobSource, db Pinger, config *startup.Config) *Handlers {
	return &Handlers{
		session:     sess,
		blobs:       blobs,
		db:          db,
		mediaDir:    config.MediaDir,
		scanEnabled: config.ScanEnabled,
		retry:       filesystem.DefaultRetryConfig(),
		location:    time.Local,
		startTime:   time.Now(),
	}
}
