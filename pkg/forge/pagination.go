package forge

// PageFunc fetches one page of results. Pages are numbered from 1.
type PageFunc[T any] func(page int) ([]T, error)

// ListAll drains a page-based list endpoint: it calls fetch with page 1, 2,
// 3, ... and concatenates the results in order, stopping at the first page
// that comes back empty. Errors from fetch are propagated as-is; retry
// policy belongs to the fetch operation itself.
func ListAll[T any](fetch PageFunc[T]) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		items, err := fetch(page)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			break
		}
		all = append(all, items...)
	}
	return all, nil
}
