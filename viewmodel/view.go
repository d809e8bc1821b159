package viewmodel

import (
	"sync"

	"github.com/yeremiapane/restaurant-dashboard/models"
)

// View is the configuration state of one open screen. Render clamps the page
// number whenever the result count or page size shrinks it out of range and
// keeps the clamped value.
type View struct {
	mu  sync.Mutex
	cfg Config
}

func NewView(cfg Config) (*View, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &View{cfg: cfg}, nil
}

func (v *View) Config() Config {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cfg
}

func (v *View) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	v.mu.Lock()
	v.cfg = cfg
	v.mu.Unlock()
	return nil
}

func (v *View) SetBucket(bucket StatusBucket) error {
	return v.update(func(c *Config) { c.StatusBucket = bucket })
}

func (v *View) SetSource(source string) error {
	return v.update(func(c *Config) { c.SourceFilter = source })
}

func (v *View) SetSearch(text string) error {
	return v.update(func(c *Config) { c.SearchText = text })
}

func (v *View) SetSort(key SortKey) error {
	return v.update(func(c *Config) { c.SortKey = key })
}

func (v *View) SetPageSize(size int) error {
	return v.update(func(c *Config) { c.PageSize = size })
}

func (v *View) SetPage(page int) error {
	return v.update(func(c *Config) { c.PageNumber = page })
}

func (v *View) update(fn func(*Config)) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := v.cfg
	fn(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	v.cfg = next
	return nil
}

// Render projects snap and stores the clamped page number.
func (v *View) Render(snap models.Snapshot) Page {
	v.mu.Lock()
	defer v.mu.Unlock()
	page := Project(snap, v.cfg)
	v.cfg.PageNumber = page.PageNumber
	return page
}
