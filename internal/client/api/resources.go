package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Resource is one REST collection of the GRC backend, e.g. /governance/policies/.
// Every collection shares the same list/get/create/update/delete surface and
// exposes named actions as /{collection}/{id}/{action}/ or /{collection}/{action}/.
type Resource struct {
	client *Client
	Name   string
	Path   string
}

// Page is the paginated envelope returned by list endpoints
type Page struct {
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []json.RawMessage `json:"results"`
	Count    int               `json:"count"`
}

// ParsePage decodes a paginated list; ok is false for plain arrays/objects
func ParsePage(data json.RawMessage) (*Page, bool) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, false
	}
	if _, has := probe["results"]; !has {
		return nil, false
	}
	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, false
	}
	return &page, true
}

// Resource returns the collection rooted at path (leading and trailing slash added)
func (c *Client) Resource(path string) *Resource {
	p := "/" + strings.Trim(path, "/") + "/"
	return &Resource{client: c, Name: strings.Trim(path, "/"), Path: p}
}

// List returns the collection (GET {path})
func (r *Resource) List(ctx context.Context, query url.Values) (json.RawMessage, error) {
	return r.call(ctx, http.MethodGet, r.Path, query, nil)
}

// Get returns one item (GET {path}{id}/)
func (r *Resource) Get(ctx context.Context, id string) (json.RawMessage, error) {
	return r.call(ctx, http.MethodGet, r.item(id), nil, nil)
}

// Create creates an item (POST {path})
func (r *Resource) Create(ctx context.Context, body any) (json.RawMessage, error) {
	return r.call(ctx, http.MethodPost, r.Path, nil, body)
}

// Update replaces an item (PUT {path}{id}/)
func (r *Resource) Update(ctx context.Context, id string, body any) (json.RawMessage, error) {
	return r.call(ctx, http.MethodPut, r.item(id), nil, body)
}

// PartialUpdate patches an item (PATCH {path}{id}/)
func (r *Resource) PartialUpdate(ctx context.Context, id string, body any) (json.RawMessage, error) {
	return r.call(ctx, http.MethodPatch, r.item(id), nil, body)
}

// Delete removes an item (DELETE {path}{id}/)
func (r *Resource) Delete(ctx context.Context, id string) error {
	_, err := r.call(ctx, http.MethodDelete, r.item(id), nil, nil)
	return err
}

// Action runs a detail action (POST {path}{id}/{name}/)
func (r *Resource) Action(ctx context.Context, id, name string, body any) (json.RawMessage, error) {
	return r.call(ctx, http.MethodPost, r.item(id)+strings.Trim(name, "/")+"/", nil, body)
}

// Collection runs a list-level read action (GET {path}{name}/)
func (r *Resource) Collection(ctx context.Context, name string, query url.Values) (json.RawMessage, error) {
	return r.call(ctx, http.MethodGet, r.Path+strings.Trim(name, "/")+"/", query, nil)
}

// CollectionAction runs a list-level write action (POST {path}{name}/)
func (r *Resource) CollectionAction(ctx context.Context, name string, body any) (json.RawMessage, error) {
	return r.call(ctx, http.MethodPost, r.Path+strings.Trim(name, "/")+"/", nil, body)
}

func (r *Resource) item(id string) string {
	return r.Path + url.PathEscape(id) + "/"
}

func (r *Resource) call(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	req, err := NewRequest(method, path, body)
	if err != nil {
		return nil, err
	}
	req.Query = query

	resp, err := r.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return json.RawMessage(resp.Data), nil
}

// Catalog maps CLI resource names ("governance.policies") to collection paths
var Catalog = map[string]string{
	"core.organizations":            "/core/organizations/",
	"core.departments":              "/core/departments/",
	"core.roles":                    "/core/roles/",
	"core.profiles":                 "/core/profiles/",
	"core.audit-logs":               "/core/audit-logs/",
	"core.settings":                 "/core/settings/",
	"core.users":                    "/core/users/",
	"governance.categories":         "/governance/categories/",
	"governance.policies":           "/governance/policies/",
	"governance.versions":           "/governance/versions/",
	"governance.acknowledgments":    "/governance/acknowledgments/",
	"governance.procedures":         "/governance/procedures/",
	"governance.documents":          "/governance/documents/",
	"risk.asset-categories":         "/risk/asset-categories/",
	"risk.assets":                   "/risk/assets/",
	"risk.risk-categories":          "/risk/risk-categories/",
	"risk.risks":                    "/risk/risks/",
	"risk.assessments":              "/risk/assessments/",
	"risk.treatments":               "/risk/treatments/",
	"risk.acceptances":              "/risk/acceptances/",
	"bcm.functions":                 "/bcm/functions/",
	"bcm.bia":                       "/bcm/bia/",
	"bcm.bc-plans":                  "/bcm/bc-plans/",
	"bcm.dr-plans":                  "/bcm/dr-plans/",
	"bcm.crisis-teams":              "/bcm/crisis-teams/",
	"bcm.incidents":                 "/bcm/incidents/",
	"bcm.tests":                     "/bcm/tests/",
	"compliance.frameworks":         "/compliance/frameworks/",
	"compliance.domains":            "/compliance/domains/",
	"compliance.controls":           "/compliance/controls/",
	"compliance.implementations":    "/compliance/implementations/",
	"compliance.audits":             "/compliance/audits/",
	"compliance.findings":           "/compliance/findings/",
	"compliance.corrective-actions": "/compliance/corrective-actions/",
	"compliance.evidence":           "/compliance/evidence/",
	"compliance.gap-assessments":    "/compliance/gap-assessments/",
	"dashboard.dashboards":          "/dashboard/dashboards/",
	"dashboard.kpis":                "/dashboard/kpis/",
	"dashboard.kpi-values":          "/dashboard/kpi-values/",
	"workflow.templates":            "/workflow/templates/",
	"workflow.instances":            "/workflow/instances/",
	"workflow.approvals":            "/workflow/approvals/",
	"workflow.tasks":                "/workflow/tasks/",
	"notifications.notifications":   "/notifications/notifications/",
	"notifications.reminders":       "/notifications/reminders/",
}

// Lookup resolves a catalog name to a Resource.
// Unknown names fail; raw paths ("/risk/risks/") are accepted as-is.
func (c *Client) Lookup(name string) (*Resource, error) {
	if strings.HasPrefix(name, "/") {
		return c.Resource(name), nil
	}
	path, ok := Catalog[name]
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", name)
	}
	r := c.Resource(path)
	r.Name = name
	return r, nil
}

// CatalogNames returns the sorted catalog keys
func CatalogNames() []string {
	names := make([]string, 0, len(Catalog))
	for name := range Catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
