// Package sites manages the per-site extraction rule sets. Rules are data,
// not code: a single generic extractor is parameterized by the selector map
// of each site instead of one scraper type per site.
package sites

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Selector map keys. Title, link and listing container are mandatory;
// the rest default to the N/A sentinel when missing or unmatched.
const (
	FieldListingContainer = "listing_container"
	FieldTitle            = "title"
	FieldPrice            = "price"
	FieldLocation         = "location"
	FieldBedrooms         = "bedrooms"
	FieldArea             = "area"
	FieldLink             = "link"
)

// Settings holds scraper-wide settings from the sites file.
type Settings struct {
	UserAgent            string  `json:"user_agent"`
	DelayBetweenRequests float64 `json:"delay_between_requests"` // in seconds
}

// Delay returns the mandatory inter-request delay as a duration.
func (s Settings) Delay() time.Duration {
	return time.Duration(s.DelayBetweenRequests * float64(time.Second))
}

// Site is one extraction rule set, immutable after load.
type Site struct {
	Name        string            `json:"name"`
	Enabled     bool              `json:"enabled"`
	BaseURL     string            `json:"base_url"`
	SearchURL   string            `json:"search_url"`
	ScraperType string            `json:"scraper_type,omitempty"`
	Selectors   map[string]string `json:"selectors"`
}

// Validate checks that the rule set carries everything the extractor needs.
func (s Site) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("site missing required field: name")
	}
	if s.BaseURL == "" {
		return fmt.Errorf("site %q missing required field: base_url", s.Name)
	}
	if s.SearchURL == "" {
		return fmt.Errorf("site %q missing required field: search_url", s.Name)
	}
	if len(s.Selectors) == 0 {
		return fmt.Errorf("site %q missing required field: selectors", s.Name)
	}
	for _, key := range []string{FieldListingContainer, FieldTitle, FieldLink} {
		if s.Selectors[key] == "" {
			return fmt.Errorf("site %q missing required selector: %s", s.Name, key)
		}
	}
	return nil
}

type file struct {
	Settings Settings `json:"scraping_settings"`
	Sites    []Site   `json:"sites"`
}

// Registry holds the loaded rule sets and rewrites the backing file in place
// on mutation. Single writer assumed: mutations and scan batches are
// serialized by the caller, the mutex only guards registry state itself.
type Registry struct {
	mu   sync.Mutex
	path string
	file file
}

// Load reads and validates the sites file. Any missing required field is a
// startup failure: the pipeline must not run with partial config.
func Load(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sites file: %w", err)
	}
	var f file
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse sites file %s: %w", path, err)
	}
	if f.Settings.UserAgent == "" {
		return nil, fmt.Errorf("sites file %s: scraping_settings.user_agent is required", path)
	}
	seen := make(map[string]bool, len(f.Sites))
	for _, s := range f.Sites {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicate site name: %s", s.Name)
		}
		seen[s.Name] = true
	}
	return &Registry{path: path, file: f}, nil
}

// Settings returns the scraper-wide settings.
func (r *Registry) Settings() Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Settings
}

// All returns a copy of every rule set in configured order.
func (r *Registry) All() []Site {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Site, len(r.file.Sites))
	copy(out, r.file.Sites)
	return out
}

// EnabledNames returns the names of all enabled sites in configured order.
func (r *Registry) EnabledNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.file.Sites))
	for _, s := range r.file.Sites {
		if s.Enabled {
			names = append(names, s.Name)
		}
	}
	return names
}

// Add validates and appends a new rule set, then rewrites the file.
// Scraper type defaults to "custom".
func (r *Registry) Add(s Site) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.ScraperType == "" {
		s.ScraperType = "custom"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.file.Sites {
		if existing.Name == s.Name {
			return fmt.Errorf("site already exists: %s", s.Name)
		}
	}
	r.file.Sites = append(r.file.Sites, s)
	return r.save()
}

// SetEnabled flips the enabled gate on one site and rewrites the file.
// Returns false when no site with that name exists.
func (r *Registry) SetEnabled(name string, enabled bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.file.Sites {
		if r.file.Sites[i].Name == name {
			r.file.Sites[i].Enabled = enabled
			return true, r.save()
		}
	}
	return false, nil
}

// save rewrites the whole document, preserving entry order. Caller holds r.mu.
func (r *Registry) save() error {
	raw, err := json.MarshalIndent(r.file, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(r.path, raw, 0o644); err != nil {
		return fmt.Errorf("write sites file: %w", err)
	}
	return nil
}
