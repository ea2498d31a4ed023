package router

// Decision результат проверки перехода
type Decision struct {
	// To маршрут, который будет показан
	To Route
	// Redirected переход был перенаправлен
	Redirected bool
}

// Guard решает, можно ли перейти на маршрут:
// закрытый маршрут без входа ведет на Login, гостевой после входа ведет на Dashboard.
func Guard(to Route, isAuthenticated bool) Decision {
	switch {
	case to.RequiresAuth && !isAuthenticated:
		return Decision{To: byName[RouteLogin], Redirected: true}
	case to.Guest && isAuthenticated:
		return Decision{To: byName[RouteDashboard], Redirected: true}
	default:
		return Decision{To: to}
	}
}
