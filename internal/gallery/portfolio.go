// Package gallery stores photographer portfolios: photo files on disk
// plus a portfolio.json per photographer. Reference data for the gallery
// pager; the booking flow never writes here.
package gallery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Photo is one portfolio entry.
type Photo struct {
	Path    string    `json:"path"`
	Caption string    `json:"caption"`
	AddedAt time.Time `json:"added_at"`
}

// Portfolio is the stored portfolio of one photographer.
type Portfolio struct {
	PhotographerID string  `json:"photographer_id"`
	Name           string  `json:"name"`
	Photos         []Photo `json:"photos"`
}

// Store persists portfolios under root/<photographer_id>/.
type Store struct {
	root string
	mu   sync.Mutex
}

// NewStore creates a portfolio store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Add writes the photo bytes under a fresh uuid filename and appends the
// entry to the photographer's portfolio.json.
func (s *Store) Add(photographerID, photographerName, ext string, data []byte, caption string) (Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	photoDir := filepath.Join(s.root, photographerID, "photos")
	if err := os.MkdirAll(photoDir, 0o755); err != nil {
		return Photo{}, fmt.Errorf("create photo dir: %w", err)
	}
	if ext == "" {
		ext = "jpg"
	}
	name := uuid.NewString() + "." + ext
	path := filepath.Join(photoDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Photo{}, fmt.Errorf("write photo: %w", err)
	}

	p, err := s.load(photographerID)
	if err != nil {
		return Photo{}, err
	}
	if p == nil {
		p = &Portfolio{PhotographerID: photographerID, Name: photographerName}
	}
	photo := Photo{Path: path, Caption: caption, AddedAt: time.Now()}
	p.Photos = append(p.Photos, photo)
	if err := s.save(photographerID, p); err != nil {
		return Photo{}, err
	}
	return photo, nil
}

// Load returns the photographer's portfolio, or nil when none exists yet.
func (s *Store) Load(photographerID string) (*Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(photographerID)
}

func (s *Store) portfolioPath(photographerID string) string {
	return filepath.Join(s.root, photographerID, "portfolio.json")
}

func (s *Store) load(photographerID string) (*Portfolio, error) {
	data, err := os.ReadFile(s.portfolioPath(photographerID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read portfolio: %w", err)
	}
	var p Portfolio
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode portfolio: %w", err)
	}
	return &p, nil
}

func (s *Store) save(photographerID string, p *Portfolio) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	path := s.portfolioPath(photographerID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
