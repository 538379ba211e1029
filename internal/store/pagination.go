package store

type OffsetPage struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// Paginate slices an already ordered listing.
func Paginate[T any](items []T, page, pageSize int) *OffsetPage {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	total := len(items)
	totalPages := total / pageSize
	if total%pageSize > 0 {
		totalPages++
	}

	// Bounds are checked before multiplying so huge pages cannot wrap.
	offset, end := total, total
	if page <= totalPages {
		offset = (page - 1) * pageSize
		end = offset + min(pageSize, total-offset)
	}

	return &OffsetPage{
		Items:      items[offset:end],
		Total:      int64(total),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
