package models

// Organization is the organization the user is currently working in.
// It is persisted as JSON under the currentOrganization preference key.
type Organization struct {
	Name     string `json:"name"`
	NameAr   string `json:"name_ar,omitempty"`
	Code     string `json:"code,omitempty"`
	ID       int64  `json:"id"`
	IsActive bool   `json:"is_active,omitempty"`
}

// DisplayName returns the Arabic name for the "ar" locale when present.
func (o *Organization) DisplayName(locale string) string {
	if o == nil {
		return ""
	}
	if locale == "ar" && o.NameAr != "" {
		return o.NameAr
	}
	return o.Name
}
