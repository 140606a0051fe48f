// Package asset locates and streams the data files used by the sampler,
// such as material preset libraries. A resource is either a local file or
// a document served over http/https.
package asset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Timeout applied to remote fetches when the caller context has no deadline.
var FetchTimeout = 30 * time.Second

// Resource wraps a streamable file or remote document.
type Resource struct {
	io.ReadCloser
	url *url.URL
}

// Returns the location of this resource.
func (r *Resource) Path() string {
	return r.url.String()
}

// Returns the file extension of the resource path, ignoring any URL query.
func (r *Resource) Ext() string {
	return path.Ext(r.url.Path)
}

// Returns true if the resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme == "http" || r.url.Scheme == "https"
}

// Open a resource. If relTo is not nil and location is relative, location
// is resolved against the directory (or URL path) of relTo so that a
// remote document can reference its siblings.
//
// The caller must close the returned resource.
func Open(ctx context.Context, location string, relTo *Resource) (*Resource, error) {
	u, err := resolve(location, relTo)
	if err != nil {
		return nil, err
	}

	var reader io.ReadCloser
	switch u.Scheme {
	case "", "file":
		reader, err = os.Open(filepath.Clean(u.Path))
		if err != nil {
			return nil, err
		}
	case "http", "https":
		reader, err = fetch(ctx, u)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("resource: unsupported scheme '%s'", u.Scheme)
	}

	return &Resource{
		ReadCloser: reader,
		url:        u,
	}, nil
}

// Wrap an in-memory stream as a resource. Relative locations opened against
// it resolve to the directory part of name.
func FromStream(name string, source io.Reader) *Resource {
	u, err := url.Parse(name)
	if err != nil {
		u = &url.URL{Path: name}
	}
	return &Resource{
		ReadCloser: io.NopCloser(source),
		url:        u,
	}
}

func resolve(location string, relTo *Resource) (*url.URL, error) {
	u, err := url.Parse(strings.Replace(location, `\`, `/`, -1))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "" || relTo == nil || filepath.IsAbs(u.Path) {
		return u, nil
	}

	base := *relTo.url
	if relTo.IsRemote() {
		base.Path = path.Join(path.Dir(base.Path), u.Path)
		base.RawQuery = ""
		return &base, nil
	}

	dir := filepath.Dir(base.Path)
	if !filepath.IsAbs(dir) {
		if dir, err = filepath.Abs(dir); err != nil {
			return nil, fmt.Errorf("resource: could not detect abs path for %s; %s", relTo.Path(), err.Error())
		}
	}
	return &url.URL{Path: filepath.Join(dir, u.Path)}, nil
}

// Bodies are read to completion before the timeout context is released so
// the returned reader is not cut short.
func fetch(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, FetchTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resource: could not fetch '%s': %s", u.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("resource: could not fetch '%s': status %d", u.String(), resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("resource: could not read '%s': %s", u.String(), err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
