package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/san-kum/mandelzoom/internal/fractal"
)

const (
	metaFile  = "view.json"
	frameFile = "frame.png"
)

// Store keeps bookmarked viewports, one directory per view.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type View struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Timestamp  time.Time      `json:"timestamp"`
	Params     fractal.Params `json:"params"`
	RenderTime float64        `json:"renderTime"`
}

func slug(name string) string {
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + 'a' - 'A'
		default:
			return '-'
		}
	}, strings.TrimSpace(name))
	s = strings.Trim(s, "-")
	if s == "" {
		return "view"
	}
	return s
}

// Save writes a new bookmark and returns its id.
func (s *Store) Save(name string, p fractal.Params, renderTime float64) (string, error) {
	now := time.Now()
	id := fmt.Sprintf("%s_%d", slug(name), now.UnixNano())
	dir := filepath.Join(s.baseDir, id)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	view := View{
		ID:         id,
		Name:       name,
		Timestamp:  now,
		Params:     p,
		RenderTime: renderTime,
	}

	f, err := os.Create(filepath.Join(dir, metaFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(view); err != nil {
		return "", err
	}
	return id, nil
}

// FramePath is where the rendered image of a view is stored.
func (s *Store) FramePath(id string) string {
	return filepath.Join(s.baseDir, id, frameFile)
}

// List returns all views, oldest first. Unreadable entries are skipped.
func (s *Store) List() ([]View, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []View{}, nil
		}
		return nil, err
	}

	views := make([]View, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		view, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		views = append(views, *view)
	}

	sort.Slice(views, func(i, j int) bool {
		return views[i].Timestamp.Before(views[j].Timestamp)
	})
	return views, nil
}

func (s *Store) Load(id string) (*View, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metaFile))
	if err != nil {
		return nil, err
	}

	var view View
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("storage: view %s: %w", id, err)
	}
	return &view, nil
}

// Find resolves a view by id or, failing that, by the most recent one with
// the given name.
func (s *Store) Find(key string) (*View, error) {
	if view, err := s.Load(key); err == nil {
		return view, nil
	}
	views, err := s.List()
	if err != nil {
		return nil, err
	}
	for i := len(views) - 1; i >= 0; i-- {
		if views[i].Name == key {
			return &views[i], nil
		}
	}
	return nil, fmt.Errorf("storage: view %q: %w", key, os.ErrNotExist)
}

func (s *Store) Delete(id string) error {
	if _, err := s.Load(id); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(s.baseDir, id))
}
