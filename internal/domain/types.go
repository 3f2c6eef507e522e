package domain

// Pagination carries paging params and totals.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total,omitempty"`
}

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}
