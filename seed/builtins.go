package seed

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

type BuiltInSourceType = string

const (
	InlineSourceType BuiltInSourceType = "inline"
	FileSourceType   BuiltInSourceType = "file"
	HTTPSourceType   BuiltInSourceType = "http"
)

// RegisterBuiltins registers all built-in sources on r, or only the ones named
func RegisterBuiltins(r *Registry, types ...BuiltInSourceType) {
	if len(types) == 0 {
		types = []BuiltInSourceType{InlineSourceType, FileSourceType, HTTPSourceType}
	}
	for _, t := range types {
		switch t {
		case InlineSourceType:
			r.Register(InlineSourceType, func(raw []byte) (Source, error) {
				var src InlineSource
				if err := json.Unmarshal(raw, &src); err != nil {
					return nil, err
				}
				return &src, nil
			})
		case FileSourceType:
			r.Register(FileSourceType, func(raw []byte) (Source, error) {
				return NewFileSource(raw, osfs.Default)
			})
		case HTTPSourceType:
			r.Register(HTTPSourceType, func(raw []byte) (Source, error) {
				return NewHTTPSource(raw, http.DefaultClient)
			})
		}
	}
}

// DefaultRegistry returns a registry with every built-in source
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// InlineSource carries its content in the definition itself
type InlineSource struct {
	Content string `json:"content"`
	// Base64 marks Content as standard base64 encoded binary data
	Base64 bool `json:"base64,omitempty"`
}

func (s *InlineSource) Open(context.Context) (io.ReadCloser, error) {
	if !s.Base64 {
		return io.NopCloser(strings.NewReader(s.Content)), nil
	}
	data, err := base64.StdEncoding.DecodeString(s.Content)
	if err != nil {
		return nil, fmt.Errorf("inline source: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// FileSource copies an existing file
type FileSource struct {
	Path string `json:"path"`

	bfs billy.Filesystem
}

func NewFileSource(raw []byte, bfs billy.Filesystem) (*FileSource, error) {
	var src FileSource
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, err
	}
	if src.Path == "" {
		return nil, errors.New("file source: path is required")
	}
	src.bfs = bfs
	return &src, nil
}

func (s *FileSource) Open(context.Context) (io.ReadCloser, error) {
	return s.bfs.Open(s.Path)
}

// HTTPDoer is the part of *http.Client used by [HTTPSource]
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPSource downloads content with a GET request
type HTTPSource struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`

	client HTTPDoer
}

func NewHTTPSource(raw []byte, client HTTPDoer) (*HTTPSource, error) {
	var src HTTPSource
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, err
	}
	src.URL = strings.TrimSpace(src.URL)
	if err := validateURL(src.URL); err != nil {
		return nil, err
	}
	src.client = client
	return &src, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("http source: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("http source: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("http source: missing host")
	}
	if u.User != nil {
		return errors.New("http source: credentials in URL are not allowed")
	}
	return nil
}

func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("http source %s: unexpected status %s", s.URL, resp.Status)
	}
	return resp.Body, nil
}
