package router

import "strings"

// Имена маршрутов
const (
	RouteLogin             = "Login"
	RouteDashboard         = "Dashboard"
	RoutePolicies          = "Policies"
	RouteProcedures        = "Procedures"
	RouteDocuments         = "Documents"
	RouteRiskRegister      = "RiskRegister"
	RouteRiskMatrix        = "RiskMatrix"
	RouteBusinessFunctions = "BusinessFunctions"
	RouteBCPlans           = "BCPlans"
	RouteBIA               = "BIA"
	RouteDRPlans           = "DRPlans"
	RouteBCMTests          = "BCMTests"
	RouteControls          = "Controls"
	RouteAudits            = "Audits"
	RouteEvidence          = "Evidence"
	RouteWorkflow          = "WorkflowDashboard"
	RouteTaskInbox         = "TaskInbox"
	RouteApprovalCenter    = "ApprovalCenter"
	RouteSettings          = "Settings"
	RouteProfile           = "Profile"
)

// Route описывает экран приложения и его требования к аутентификации
type Route struct {
	Name         string
	Path         string
	RequiresAuth bool
	Guest        bool
}

// Routes таблица маршрутов. Все экраны внутри основного layout требуют входа.
var Routes = []Route{
	{Name: RouteLogin, Path: "/auth/login", Guest: true},
	{Name: RouteDashboard, Path: "/", RequiresAuth: true},
	{Name: RoutePolicies, Path: "/governance/policies", RequiresAuth: true},
	{Name: RouteProcedures, Path: "/governance/procedures", RequiresAuth: true},
	{Name: RouteDocuments, Path: "/governance/documents", RequiresAuth: true},
	{Name: RouteRiskRegister, Path: "/risk/register", RequiresAuth: true},
	{Name: RouteRiskMatrix, Path: "/risk/matrix", RequiresAuth: true},
	{Name: RouteBusinessFunctions, Path: "/bcm/functions", RequiresAuth: true},
	{Name: RouteBCPlans, Path: "/bcm/plans", RequiresAuth: true},
	{Name: RouteBIA, Path: "/bcm/bia", RequiresAuth: true},
	{Name: RouteDRPlans, Path: "/bcm/dr-plans", RequiresAuth: true},
	{Name: RouteBCMTests, Path: "/bcm/tests", RequiresAuth: true},
	{Name: RouteControls, Path: "/compliance/controls", RequiresAuth: true},
	{Name: RouteAudits, Path: "/compliance/audits", RequiresAuth: true},
	{Name: RouteEvidence, Path: "/compliance/evidence", RequiresAuth: true},
	{Name: RouteWorkflow, Path: "/workflow", RequiresAuth: true},
	{Name: RouteTaskInbox, Path: "/workflow/tasks", RequiresAuth: true},
	{Name: RouteApprovalCenter, Path: "/workflow/approvals", RequiresAuth: true},
	{Name: RouteSettings, Path: "/settings", RequiresAuth: true},
	{Name: RouteProfile, Path: "/profile", RequiresAuth: true},
}

var (
	byPath = make(map[string]Route, len(Routes))
	byName = make(map[string]Route, len(Routes))
)

func init() {
	for _, r := range Routes {
		byPath[r.Path] = r
		byName[r.Name] = r
	}
}

// Resolve находит маршрут по пути; неизвестные пути ведут на Dashboard
func Resolve(path string) Route {
	if r, ok := byPath[normalize(path)]; ok {
		return r
	}
	return byName[RouteDashboard]
}

// ByName находит маршрут по имени
func ByName(name string) (Route, bool) {
	r, ok := byName[name]
	return r, ok
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = "/" + strings.Trim(strings.TrimSpace(path), "/")
	return path
}
