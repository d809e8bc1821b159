package viewmodel

import (
	"errors"
	"fmt"
)

type StatusBucket string

const (
	BucketAll       StatusBucket = "all"
	BucketActive    StatusBucket = "active"
	BucketCompleted StatusBucket = "completed"
)

type SortKey string

const (
	SortStatus SortKey = "status"
	SortNewest SortKey = "newest"
	SortOldest SortKey = "oldest"
	SortTable  SortKey = "table"
	SortAmount SortKey = "amount"
)

// SourceAll disables the order source filter.
const SourceAll = "all"

const DefaultPageSize = 12

var (
	ErrInvalidBucket   = errors.New("viewmodel: invalid status bucket")
	ErrInvalidSortKey  = errors.New("viewmodel: invalid sort key")
	ErrInvalidPageSize = errors.New("viewmodel: page size must be greater than 0")
	ErrInvalidPage     = errors.New("viewmodel: page number must be at least 1")
)

// Config describes what one screen shows.
type Config struct {
	StatusBucket StatusBucket `json:"status_bucket"`
	SourceFilter string       `json:"source_filter"`
	SearchText   string       `json:"search_text"`
	SortKey      SortKey      `json:"sort_key"`
	PageSize     int          `json:"page_size"`
	PageNumber   int          `json:"page_number"`
}

func DefaultConfig() Config {
	return Config{
		StatusBucket: BucketAll,
		SourceFilter: SourceAll,
		SortKey:      SortStatus,
		PageSize:     DefaultPageSize,
		PageNumber:   1,
	}
}

func (c Config) Validate() error {
	switch c.StatusBucket {
	case BucketAll, BucketActive, BucketCompleted:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBucket, c.StatusBucket)
	}
	switch c.SortKey {
	case SortStatus, SortNewest, SortOldest, SortTable, SortAmount:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSortKey, c.SortKey)
	}
	if c.PageSize <= 0 {
		return ErrInvalidPageSize
	}
	if c.PageNumber < 1 {
		return ErrInvalidPage
	}
	return nil
}
