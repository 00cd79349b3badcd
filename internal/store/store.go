// Package store persists named template images plus metadata under a single
// directory: one PNG per storage key and an index.yaml carrying the explicit
// name-to-key mapping and bounding-box metadata.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/model"
)

const indexFile = "index.yaml"

// index is the on-disk metadata layout.
type index struct {
	Session   string                    `yaml:"session"`
	UpdatedAt time.Time                 `yaml:"updated_at"`
	Templates map[string]model.Template `yaml:"templates"`
}

// Store owns the template directory. It is not safe for concurrent use;
// the pipeline is strictly sequential and no concurrent writers are assumed.
type Store struct {
	dir       string
	session   string
	templates map[string]model.Template
	logger    *zap.Logger
}

// New opens (or creates) a template store rooted at dir and loads any
// existing index. Each process run gets a fresh session ID; templates from
// earlier sessions remain addressable by name.
func New(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create template dir %s: %w", dir, err)
	}
	s := &Store{
		dir:       dir,
		session:   uuid.NewString(),
		templates: make(map[string]model.Template),
		logger:    logger.Named("store"),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// Session returns the store session ID for this process run.
func (s *Store) Session() string { return s.session }

// Load re-reads the metadata index from disk. A missing index is not an
// error; the store starts empty.
func (s *Store) Load() error {
	data, err := os.ReadFile(filepath.Join(s.dir, indexFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read template index: %w", err)
	}
	var idx index
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return fmt.Errorf("parse template index: %w", err)
	}
	if idx.Templates != nil {
		s.templates = idx.Templates
	}
	return nil
}

// StorageKey sanitizes a human-readable element name into a filesystem-safe
// key: every non-alphanumeric character maps to '_' and the result is
// lowercased. A short content hash of the original name is appended so two
// distinct names that sanitize identically never collide on disk.
func StorageKey(name string) string {
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	sum := sha256.Sum256([]byte(name))
	return strings.ToLower(b.String()) + "_" + hex.EncodeToString(sum[:4])
}

// Put writes the raster to disk keyed by the sanitized name and records the
// metadata entry. Re-extracting the same name overwrites: last write wins.
func (s *Store) Put(name string, img image.Image, box model.Box, typ, desc string) (model.Template, error) {
	if img == nil || img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		return model.Template{}, fmt.Errorf("template %q has empty raster", name)
	}
	key := StorageKey(name)
	file := key + ".png"

	f, err := os.Create(filepath.Join(s.dir, file))
	if err != nil {
		return model.Template{}, fmt.Errorf("write template %q: %w", name, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return model.Template{}, fmt.Errorf("encode template %q: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return model.Template{}, fmt.Errorf("write template %q: %w", name, err)
	}

	tpl := model.Template{
		Name:        name,
		Key:         key,
		File:        file,
		Box:         box,
		Type:        typ,
		Description: desc,
	}
	s.templates[name] = tpl
	if err := s.saveIndex(); err != nil {
		return model.Template{}, err
	}
	return tpl, nil
}

// Get returns the template recorded under name.
func (s *Store) Get(name string) (model.Template, bool) {
	tpl, ok := s.templates[name]
	return tpl, ok
}

// All returns a copy of the name-to-template mapping.
func (s *Store) All() map[string]model.Template {
	out := make(map[string]model.Template, len(s.templates))
	for k, v := range s.templates {
		out[k] = v
	}
	return out
}

// Image loads a template's raster from disk. Missing or corrupt files
// surface as errors so batch callers can skip the entry and continue.
func (s *Store) Image(tpl model.Template) (image.Image, error) {
	f, err := os.Open(filepath.Join(s.dir, tpl.File))
	if err != nil {
		return nil, fmt.Errorf("open template raster %s: %w", tpl.File, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode template raster %s: %w", tpl.File, err)
	}
	return img, nil
}

// Extract crops and stores a template for every element whose bounding box
// is valid and lies within the frame. Per-element failures are logged and
// skipped; the remaining elements are still extracted.
func (s *Store) Extract(frame image.Image, elements []model.Element) map[string]model.Template {
	out := make(map[string]model.Template)
	for _, el := range elements {
		if el.Name == "" {
			continue
		}
		if err := el.Box.Validate(frame.Bounds()); err != nil {
			s.logger.Warn("skipping element", zap.String("name", el.Name), zap.Error(err))
			continue
		}
		crop := cropFrame(frame, el.Box.Rect())
		tpl, err := s.Put(el.Name, crop, el.Box, el.Type, el.Description)
		if err != nil {
			s.logger.Warn("failed to extract template", zap.String("name", el.Name), zap.Error(err))
			continue
		}
		out[el.Name] = tpl
	}
	return out
}

func (s *Store) saveIndex() error {
	idx := index{
		Session:   s.session,
		UpdatedAt: time.Now().UTC(),
		Templates: s.templates,
	}
	data, err := yaml.Marshal(idx)
	if err != nil {
		return fmt.Errorf("marshal template index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, indexFile), data, 0o644); err != nil {
		return fmt.Errorf("write template index: %w", err)
	}
	return nil
}

// cropFrame returns the subregion of frame described by r as a standalone
// image with bounds at the origin.
func cropFrame(frame image.Image, r image.Rectangle) image.Image {
	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}
	if si, ok := frame.(subImager); ok {
		return si.SubImage(r)
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			out.Set(x, y, frame.At(r.Min.X+x, r.Min.Y+y))
		}
	}
	return out
}
