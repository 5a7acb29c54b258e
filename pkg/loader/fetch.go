package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Faultbox/fbxscene/pkg/encoding"
	"github.com/Faultbox/fbxscene/pkg/fbx"
)

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// fetch reads a local file or downloads an http(s) URL.
func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	if !isURL(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", source, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	resp, err := l.opts.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", source, resp.Status)
	}

	var body io.Reader = resp.Body
	if l.opts.MaxFetchBytes > 0 {
		body = io.LimitReader(resp.Body, l.opts.MaxFetchBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	if l.opts.MaxFetchBytes > 0 && int64(len(data)) > l.opts.MaxFetchBytes {
		return nil, fmt.Errorf("fetch %s: document exceeds %d bytes", source, l.opts.MaxFetchBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("fetch %s: %w", source, fbx.ErrEmptyInput)
	}
	return data, nil
}

// ResourceDir returns the directory textures of source resolve against
// when Options.ResourceDir is empty.
func ResourceDir(source string) string {
	if isURL(source) {
		u, err := url.Parse(source)
		if err != nil {
			return ""
		}
		u.Path = path.Dir(u.Path) + "/"
		u.RawQuery = ""
		u.Fragment = ""
		return u.String()
	}
	return filepath.Dir(source)
}

// resolvePath joins a texture file name with the resource directory.
// Absolute names are kept.
func resolvePath(dir, name string) string {
	if name == "" || dir == "" || encoding.IsAbsolutePath(name) {
		return name
	}
	if isURL(dir) {
		return strings.TrimSuffix(dir, "/") + "/" + strings.ReplaceAll(name, "\\", "/")
	}
	return filepath.Join(dir, filepath.FromSlash(strings.ReplaceAll(name, "\\", "/")))
}
