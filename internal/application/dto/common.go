package dto

// PageRequest is the page/limit pagination used by the UI.
type PageRequest struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// DefaultPage applies defaults and clamps the limit.
func (p *PageRequest) DefaultPage() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

// Offset converts page/limit to a row offset.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination is the page metadata block of list responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes the metadata for a page of totalItems rows.
func NewPagination(page PageRequest, totalItems int) Pagination {
	totalPages := totalItems / page.Limit
	if totalItems%page.Limit != 0 {
		totalPages++
	}
	return Pagination{
		Page:       page.Page,
		Limit:      page.Limit,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// ErrorResponse is the HTTP error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
