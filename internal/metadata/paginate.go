package metadata

import (
	"errors"
	"fmt"

	"github.com/undistro/clusterwizard/internal/wizard"
)

var (
	// ErrInvalidPageRange is returned when a page starts past the listing.
	ErrInvalidPageRange = errors.New("invalid page range")
	// ErrUnsupportedKind is returned for metadata kinds a source cannot serve.
	ErrUnsupportedKind = errors.New("unsupported metadata kind")
	// ErrUnsupportedProvider is returned when a request names another provider.
	ErrUnsupportedProvider = errors.New("unsupported provider")
	// ErrContextRequired is returned when a dependent listing has no governing value.
	ErrContextRequired = errors.New("governing value is required")
)

// Paginate returns page (1-based) of items split into pages of pageSize, and
// the total number of pages. A non-positive pageSize yields a single page.
func Paginate[T any](items []T, pageSize, page int) ([]T, int, error) {
	if pageSize <= 0 {
		pageSize = max(len(items), 1)
	}

	total := len(items) / pageSize
	if len(items)%pageSize != 0 {
		total++
	}

	if page < 1 {
		return nil, total, fmt.Errorf("%w: page %d", ErrInvalidPageRange, page)
	}
	start := (page - 1) * pageSize
	if start > len(items) {
		return nil, total, fmt.Errorf("%w: page %d of %d", ErrInvalidPageRange, page, total)
	}
	stop := min(start+pageSize, len(items))

	return items[start:stop], total, nil
}

// pageOf builds the metadata page req asks for out of a full listing.
func pageOf(opts []wizard.Option, req wizard.MetadataRequest) (*wizard.MetadataPage, error) {
	items, total, err := Paginate(opts, req.PageSize, req.Page)
	if err != nil {
		return nil, err
	}
	return &wizard.MetadataPage{Items: items, TotalPages: total}, nil
}

func optionsOf(values []string) []wizard.Option {
	opts := make([]wizard.Option, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		opts = append(opts, wizard.NewOption(v))
	}
	return opts
}

func checkProvider(req wizard.MetadataRequest, want string) error {
	if req.Provider != want {
		return fmt.Errorf("%w: %q (source serves %q)", ErrUnsupportedProvider, req.Provider, want)
	}
	return nil
}
