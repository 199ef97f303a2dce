// Package assets holds the CSS and Liquid templates embedded in textflow.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"strings"
)

//go:embed styles/*
var styles embed.FS

//go:embed templates/*
var templates embed.FS

// Sentinel errors for asset operations.
var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidAssetName = errors.New("invalid asset name")
)

// Loader loads named assets.
type Loader interface {
	LoadStyle(name string) (string, error)
	LoadTemplate(name string) (string, error)
}

// EmbeddedLoader loads assets compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle loads styles/<name>.css.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return read(styles, "styles", name, ".css", ErrStyleNotFound)
}

// LoadTemplate loads templates/<name>.liquid.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return read(templates, "templates", name, ".liquid", ErrTemplateNotFound)
}

func read(fsys embed.FS, dir, name, ext string, notFound error) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	b, err := fsys.ReadFile(path.Join(dir, name+ext))
	if err != nil {
		return "", fmt.Errorf("%w: %q", notFound, name)
	}
	return string(b), nil
}

var _ Loader = (*EmbeddedLoader)(nil)

// ValidateAssetName rejects empty names and names containing path
// separators or dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
