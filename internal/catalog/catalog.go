package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownDistributor is returned by Resolve for an id not in the catalog.
	ErrUnknownDistributor = errors.New("distributor not found")

	// ErrInactiveDistributor is returned by Resolve for a deactivated distributor.
	ErrInactiveDistributor = errors.New("distributor is inactive")
)

// Distributor is a delivery destination that work records are booked against.
type Distributor struct {
	ID           string `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	Code         string `yaml:"code" json:"code,omitempty"`
	MainCategory string `yaml:"main_category" json:"main_category,omitempty"`
	Active       bool   `yaml:"active" json:"active"`
}

// Category groups items for the category breakdown of a monthly summary.
type Category struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	SortOrder int    `yaml:"sort_order" json:"sort_order"`
	Active    bool   `yaml:"active" json:"active"`
}

// file is the on-disk YAML shape.
type file struct {
	Distributors []rawDistributor `yaml:"distributors"`
	Categories   []rawCategory    `yaml:"categories"`
}

// Active is a pointer so an omitted flag defaults to true.
type rawDistributor struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Code         string `yaml:"code"`
	MainCategory string `yaml:"main_category"`
	Active       *bool  `yaml:"active"`
}

type rawCategory struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	SortOrder int    `yaml:"sort_order"`
	Active    *bool  `yaml:"active"`
}

// Repository serves distributor and category lookups.
type Repository interface {
	// Resolve returns the active distributor with the given id.
	Resolve(ctx context.Context, id string) (*Distributor, error)

	// ListDistributors returns active distributors sorted by name, optionally
	// filtered by main category.
	ListDistributors(ctx context.Context, mainCategory string) ([]Distributor, error)

	// ListCategories returns active categories sorted by sort order.
	ListCategories(ctx context.Context) ([]Category, error)
}

// FileRepository is a Repository loaded once from a YAML file.
type FileRepository struct {
	path         string
	distributors map[string]Distributor
	categories   map[string]Category
}

// Empty returns a repository with no entries. Records are then accepted with
// whatever distributor id and name the caller sends.
func Empty() *FileRepository {
	return &FileRepository{
		distributors: make(map[string]Distributor),
		categories:   make(map[string]Category),
	}
}

// Load reads a catalog file. A missing file yields an empty catalog.
func Load(path string) (*FileRepository, error) {
	repo := Empty()
	repo.path = path
	if strings.TrimSpace(path) == "" {
		return repo, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return repo, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %s: %w", path, err)
	}
	if err := repo.parse(data); err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", path, err)
	}
	return repo, nil
}

func (r *FileRepository) parse(data []byte) error {
	var raw file
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing: %w", err)
	}

	for i, d := range raw.Distributors {
		if d.ID == "" {
			return fmt.Errorf("distributors[%d]: id must not be empty", i)
		}
		if d.Name == "" {
			return fmt.Errorf("distributor %q: name must not be empty", d.ID)
		}
		if _, exists := r.distributors[d.ID]; exists {
			return fmt.Errorf("distributor %q: duplicate id", d.ID)
		}
		r.distributors[d.ID] = Distributor{
			ID:           d.ID,
			Name:         d.Name,
			Code:         d.Code,
			MainCategory: d.MainCategory,
			Active:       d.Active == nil || *d.Active,
		}
	}

	for i, c := range raw.Categories {
		if c.ID == "" {
			return fmt.Errorf("categories[%d]: id must not be empty", i)
		}
		if _, exists := r.categories[c.ID]; exists {
			return fmt.Errorf("category %q: duplicate id", c.ID)
		}
		name := c.Name
		if name == "" {
			name = c.ID
		}
		r.categories[c.ID] = Category{
			ID:        c.ID,
			Name:      name,
			SortOrder: c.SortOrder,
			Active:    c.Active == nil || *c.Active,
		}
	}
	return nil
}

// Len returns the number of distributors in the catalog.
func (r *FileRepository) Len() int {
	return len(r.distributors)
}

// Path returns the file the catalog was loaded from.
func (r *FileRepository) Path() string {
	return r.path
}

// Resolve returns the active distributor with the given id.
func (r *FileRepository) Resolve(_ context.Context, id string) (*Distributor, error) {
	d, ok := r.distributors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDistributor, id)
	}
	if !d.Active {
		return nil, fmt.Errorf("%w: %q", ErrInactiveDistributor, id)
	}
	return &d, nil
}

// ListDistributors returns active distributors sorted by name, then id.
func (r *FileRepository) ListDistributors(_ context.Context, mainCategory string) ([]Distributor, error) {
	out := make([]Distributor, 0, len(r.distributors))
	for _, d := range r.distributors {
		if !d.Active {
			continue
		}
		if mainCategory != "" && d.MainCategory != mainCategory {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ListCategories returns active categories sorted by sort order, then name.
func (r *FileRepository) ListCategories(_ context.Context) ([]Category, error) {
	out := make([]Category, 0, len(r.categories))
	for _, c := range r.categories {
		if c.Active {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
