package archive

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dd0wney/cluso-graphedit/pkg/codec"
)

const s3Scheme = "s3://"

// Location is a parsed save/load target.
type Location struct {
	Bucket string // empty for local files
	Key    string // file path or object key
}

// Remote reports whether the location names an S3 object.
func (l Location) Remote() bool {
	return l.Bucket != ""
}

func (l Location) String() string {
	if l.Remote() {
		return s3Scheme + l.Bucket + "/" + l.Key
	}
	return l.Key
}

// WithExtension returns l with codec.EnsureExtension applied to the key.
// Saves use it; loads read the key as given.
func (l Location) WithExtension() Location {
	l.Key = codec.EnsureExtension(l.Key)
	return l
}

// ParseLocation reads "s3://bucket/key" or a local path. The key is kept
// as written.
func ParseLocation(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{}, fmt.Errorf("%w: empty", ErrBadLocation)
	}
	if !strings.HasPrefix(raw, s3Scheme) {
		return Location{Key: raw}, nil
	}

	bucket, key, ok := strings.Cut(strings.TrimPrefix(raw, s3Scheme), "/")
	key = strings.TrimLeft(key, "/")
	if !ok || bucket == "" || key == "" {
		return Location{}, fmt.Errorf("%w: %q needs s3://bucket/key", ErrBadLocation, raw)
	}
	return Location{Bucket: bucket, Key: key}, nil
}

func contentType(key string) string {
	if codec.FormatFor(key) == codec.FormatSnappy {
		return "application/x-snappy"
	}
	return "application/json"
}

// Archive saves and loads graph documents. It picks the backend from the
// location and the encoding from the key's suffix.
type Archive struct {
	files *FileBackend

	mu        sync.Mutex
	objects   ObjectAPI
	newObject func(ctx context.Context) (ObjectAPI, error)
}

// Option configures an Archive.
type Option func(*Archive)

// WithObjectStore uses client for s3:// locations.
func WithObjectStore(client ObjectAPI) Option {
	return func(a *Archive) {
		a.objects = client
	}
}

// WithObjectStoreFactory builds the S3 client on first use of an s3://
// location.
func WithObjectStoreFactory(fn func(ctx context.Context) (ObjectAPI, error)) Option {
	return func(a *Archive) {
		a.newObject = fn
	}
}

// New creates an archive with local files rooted at dir.
func New(dir string, opts ...Option) *Archive {
	a := &Archive{files: NewFileBackend(dir)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Archive) backend(ctx context.Context, loc Location) (Backend, error) {
	if !loc.Remote() {
		return a.files, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.objects == nil && a.newObject != nil {
		client, err := a.newObject(ctx)
		if err != nil {
			return nil, fmt.Errorf("connect object storage: %w", err)
		}
		a.objects = client
	}
	if a.objects == nil {
		return nil, fmt.Errorf("%w: cannot use %s", ErrNoObjectStore, loc)
	}
	return NewS3Backend(a.objects, loc.Bucket), nil
}

// Receipt describes a completed transfer.
type Receipt struct {
	Location string // resolved location; saves carry the applied suffix
	Bytes    int
}

// Save encodes doc and writes it to location, appending ".json" when the
// key has no recognised suffix.
func (a *Archive) Save(ctx context.Context, location string, doc codec.Document) (Receipt, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return Receipt{}, err
	}
	loc = loc.WithExtension()
	rec := Receipt{Location: loc.String()}
	data, err := codec.Marshal(doc, codec.FormatFor(loc.Key))
	if err != nil {
		return rec, err
	}
	b, err := a.backend(ctx, loc)
	if err != nil {
		return rec, err
	}
	if err := b.Write(ctx, loc.Key, data); err != nil {
		return rec, err
	}
	rec.Bytes = len(data)
	return rec, nil
}

// Load reads and decodes the document at exactly location. Keys without
// the ".json.sz" suffix are decoded as plain JSON.
func (a *Archive) Load(ctx context.Context, location string) (codec.Document, Receipt, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return codec.Document{}, Receipt{}, err
	}
	rec := Receipt{Location: loc.String()}
	b, err := a.backend(ctx, loc)
	if err != nil {
		return codec.Document{}, rec, err
	}
	data, err := b.Read(ctx, loc.Key)
	if err != nil {
		return codec.Document{}, rec, err
	}
	rec.Bytes = len(data)
	doc, err := codec.Unmarshal(data, codec.FormatFor(loc.Key))
	if err != nil {
		return codec.Document{}, rec, fmt.Errorf("%s: %w", loc, err)
	}
	return doc, rec, nil
}
