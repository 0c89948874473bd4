package contact

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("contact not found")

type Contact struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Favorite bool   `json:"favorite"`
}

// Store keeps the whole contact list in one JSON file. Every write is a
// read-modify-write of the full file, serialized by the mutex.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) load() ([]Contact, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var contacts []Contact
	if err := json.Unmarshal(b, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (s *Store) save(contacts []Contact) error {
	if contacts == nil {
		contacts = []Contact{}
	}
	b, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, b, 0o644)
}

func (s *Store) List() ([]Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) GetByID(id string) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range contacts {
		if contacts[i].ID == id {
			return &contacts[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *Store) Add(c Contact) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.load()
	if err != nil {
		return nil, err
	}
	c.ID = uuid.NewString()
	contacts = append(contacts, c)
	if err := s.save(contacts); err != nil {
		return nil, err
	}
	return &c, nil
}

// Update merges the non-empty fields of in into the stored contact.
func (s *Store) Update(id string, in Contact) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range contacts {
		if contacts[i].ID != id {
			continue
		}
		if in.Name != "" {
			contacts[i].Name = in.Name
		}
		if in.Email != "" {
			contacts[i].Email = in.Email
		}
		if in.Phone != "" {
			contacts[i].Phone = in.Phone
		}
		if err := s.save(contacts); err != nil {
			return nil, err
		}
		return &contacts[i], nil
	}
	return nil, ErrNotFound
}

func (s *Store) UpdateFavorite(id string, favorite bool) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range contacts {
		if contacts[i].ID != id {
			continue
		}
		contacts[i].Favorite = favorite
		if err := s.save(contacts); err != nil {
			return nil, err
		}
		return &contacts[i], nil
	}
	return nil, ErrNotFound
}

func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.load()
	if err != nil {
		return err
	}
	kept := contacts[:0]
	found := false
	for _, c := range contacts {
		if c.ID == id {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return ErrNotFound
	}
	return s.save(kept)
}
