// Package output encodes finished renders and writes them to a local file or to a
// blob bucket.
package output

import (
	"context"
	"image"
	"image/png"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/pkg/errors"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

// Format is an output image encoding
type Format string

// Supported formats
const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// ErrUnknownFormat is returned for destinations without a .png or .webp extension
var ErrUnknownFormat = errors.New("unknown image format")

// FormatFromPath picks the encoding from the file extension
func FormatFromPath(name string) (Format, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return FormatPNG, nil
	case ".webp":
		return FormatWebP, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%q", name)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatWebP {
		return "image/webp"
	}
	return "image/png"
}

// Encode writes img to w. WebP output is lossless.
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatPNG:
		return errors.Wrap(png.Encode(w, img), "png encode")
	case FormatWebP:
		return errors.Wrap(nativewebp.Encode(w, img, nil), "webp encode")
	}
	return errors.Wrapf(ErrUnknownFormat, "%q", format)
}

// Destination is where a render is written: a local path, or a bucket URL and a key
type Destination struct {
	BucketURL string // Empty for local files
	Key       string // Object key, or the local path
}

// ParseDestination splits dest into a bucket URL and key. Anything with a URL scheme is a
// bucket URL whose last path element becomes the key, e.g. "file:///tmp/renders/a.png"
// (bucket "file:///tmp/renders") or "mem:///a.png". Query parameters stay with the bucket.
func ParseDestination(dest string) (Destination, error) {
	if !strings.Contains(dest, "://") {
		if dest == "" {
			return Destination{}, errors.New("empty output destination")
		}
		return Destination{Key: dest}, nil
	}

	u, err := url.Parse(dest)
	if err != nil {
		return Destination{}, errors.Wrapf(err, "parse output URL %q", dest)
	}
	dir, key := path.Split(u.Path)
	if key == "" {
		return Destination{}, errors.Errorf("output URL %q has no object key", dest)
	}
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" && u.Host == "" {
		// Key at the filesystem root; "file://" alone names no directory
		dir = "/"
	}
	bucketURL := u.Scheme + "://" + u.Host + dir
	if u.RawQuery != "" {
		bucketURL += "?" + u.RawQuery
	}
	return Destination{BucketURL: bucketURL, Key: key}, nil
}

// Write encodes img in the format implied by dest and writes it there
func Write(ctx context.Context, img image.Image, dest string) error {
	d, err := ParseDestination(dest)
	if err != nil {
		return err
	}
	if d.BucketURL == "" {
		return WriteFile(img, d.Key)
	}

	bucket, err := blob.OpenBucket(ctx, d.BucketURL)
	if err != nil {
		return errors.Wrapf(err, "open bucket %s", d.BucketURL)
	}
	defer bucket.Close()
	return WriteToBucket(ctx, bucket, d.Key, img)
}

// WriteFile encodes img to a local file, creating parent directories
func WriteFile(img image.Image, name string) error {
	format, err := FormatFromPath(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return errors.Wrapf(err, "create output directory for %s", name)
	}

	f, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "create %s", name)
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", name)
	}
	return errors.Wrapf(f.Close(), "close %s", name)
}

// WriteToBucket encodes img to key in an open bucket
func WriteToBucket(ctx context.Context, bucket *blob.Bucket, key string, img image.Image) error {
	format, err := FormatFromPath(key)
	if err != nil {
		return err
	}

	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: format.ContentType()})
	if err != nil {
		return errors.Wrapf(err, "open writer for %s", key)
	}
	if err := Encode(w, img, format); err != nil {
		w.Close()
		return errors.Wrapf(err, "write %s", key)
	}
	// The object only becomes visible once Close succeeds
	return errors.Wrapf(w.Close(), "close %s", key)
}
