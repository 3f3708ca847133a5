package episode

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Kind selects the transfer strategy for a Descriptor.
type Kind int

const (
	// Pull descriptors are streamed by us.
	Pull Kind = iota + 1
	// Push descriptors are written by the browser; we only wait for them.
	Push
)

func (k Kind) String() string {
	switch k {
	case Pull:
		return "pull"
	case Push:
		return "push"
	default:
		return "unknown"
	}
}

// Descriptor is a resolved, short-lived pointer to an episode file.
type Descriptor struct {
	Kind Kind
	// URL is the direct link of a Pull descriptor.
	URL string
	// Path is the file a Push descriptor's agent writes.
	Path string
	// Name is the final file name.
	Name string
}

// NewPull builds a Pull descriptor, naming the file after the last URL path segment.
func NewPull(link string) (Descriptor, error) {
	name, err := NameFromURL(link)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Kind: Pull, URL: link, Name: name}, nil
}

// NewPush builds a Push descriptor for a file named name inside dir.
func NewPush(dir, name string) (Descriptor, error) {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "" || name == "." || name == "/" {
		return Descriptor{}, fmt.Errorf("empty file name")
	}
	return Descriptor{Kind: Push, Path: filepath.Join(dir, name), Name: name}, nil
}

// NameFromURL returns the unescaped last path segment of link.
func NameFromURL(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parse download link %q: %w", link, err)
	}

	name := path.Base(u.EscapedPath())
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("download link %q has no file name", link)
	}

	if unescaped, err := url.PathUnescape(name); err == nil && !strings.ContainsAny(unescaped, `/\`) {
		name = unescaped
	}
	return name, nil
}
