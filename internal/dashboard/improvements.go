package dashboard

import "strings"

// Status grades a page audit or one of its issues.
type Status string

const (
	StatusAll      Status = "All"
	StatusCritical Status = "Critical"
	StatusWarning  Status = "Warning"
	StatusGood     Status = "Good"
)

// PageSizes are the selectable page sizes of the improvements list.
var PageSizes = []int{5, 10, 25, 50}

const DefaultPageSize = 10

// ParseStatus maps a filter value to a Status; anything unknown means All.
func ParseStatus(s string) Status {
	for _, st := range []Status{StatusCritical, StatusWarning, StatusGood} {
		if strings.EqualFold(s, string(st)) {
			return st
		}
	}
	return StatusAll
}

// ValidPageSize returns n when it is one of PageSizes, else the default.
func ValidPageSize(n int) int {
	for _, s := range PageSizes {
		if s == n {
			return n
		}
	}
	return DefaultPageSize
}

type AuditQuery struct {
	Search   string
	Status   Status
	Page     int
	PageSize int
}

type AuditPage struct {
	Items      []PageAudit
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

func (p AuditPage) HasPrev() bool { return p.Page > 1 }
func (p AuditPage) HasNext() bool { return p.Page < p.TotalPages }

// FilterAudits matches the search text against the url and every issue
// title and description, ignoring case, then applies the status filter.
func FilterAudits(audits []PageAudit, search string, status Status) []PageAudit {
	search = strings.ToLower(strings.TrimSpace(search))
	var out []PageAudit
	for _, a := range audits {
		if search != "" && !auditMatches(a, search) {
			continue
		}
		if status != "" && status != StatusAll && a.Status != status {
			continue
		}
		out = append(out, a)
	}
	return out
}

func auditMatches(a PageAudit, needle string) bool {
	if strings.Contains(strings.ToLower(a.URL), needle) {
		return true
	}
	for _, is := range a.Issues {
		if strings.Contains(strings.ToLower(is.Title), needle) ||
			strings.Contains(strings.ToLower(is.Description), needle) {
			return true
		}
	}
	return false
}

// Audits filters then paginates. Pages are 1-based and out of range pages
// are clamped.
func Audits(audits []PageAudit, q AuditQuery) AuditPage {
	filtered := FilterAudits(audits, q.Search, q.Status)
	size := ValidPageSize(q.PageSize)

	totalPages := (len(filtered) + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := start + size
	if end > len(filtered) {
		end = len(filtered)
	}
	return AuditPage{
		Items:      filtered[start:end],
		Total:      len(filtered),
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
	}
}
