package session

// Well-known client routes.
const (
	RouteLogin      = "/login"
	RouteRegister   = "/register"
	RouteCallback   = "/auth/callback"
	RouteOnboarding = "/onboarding"
	RouteDashboard  = "/dashboard"
)

// PublicAuthRoute reports whether route is a public auth entry point
// that must never be redirected away from on a 401.
func PublicAuthRoute(route string) bool {
	switch route {
	case RouteLogin, RouteRegister, RouteCallback:
		return true
	}
	return false
}

// Verdict is the outcome of a route gate.
type Verdict int

const (
	// Render means the requested content may be shown.
	Render Verdict = iota
	// Interstitial means the session is still resolving; show a
	// placeholder and re-evaluate once loading completes.
	Interstitial
	// Redirect means navigate to Decision.Target instead.
	Redirect
)

func (v Verdict) String() string {
	switch v {
	case Render:
		return "render"
	case Interstitial:
		return "interstitial"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is a gate outcome with an optional redirect target.
type Decision struct {
	Verdict Verdict
	Target  string
}

func render() Decision { return Decision{Verdict: Render} }

func wait() Decision { return Decision{Verdict: Interstitial} }

func redirect(to string) Decision { return Decision{Verdict: Redirect, Target: to} }

// GateProtected guards content that requires an authenticated user.
// The loading check comes first so an in-flight bootstrap never
// produces a spurious login redirect.
func GateProtected(m *Manager) Decision {
	if m.Loading() {
		return wait()
	}
	if !m.Authenticated() {
		return redirect(RouteLogin)
	}
	return render()
}

// GateOnboarding guards the onboarding flow: authentication is
// required, but a user who already completed onboarding is sent to the
// dashboard instead of repeating it.
func GateOnboarding(m *Manager) Decision {
	if m.Loading() {
		return wait()
	}
	if !m.Authenticated() {
		return redirect(RouteLogin)
	}
	if m.OnboardingComplete() {
		return redirect(RouteDashboard)
	}
	return render()
}

// GatePublic guards auth entry points (login, register): an already
// authenticated user is sent onward, to onboarding if it is still
// pending and to the dashboard otherwise.
func GatePublic(m *Manager) Decision {
	if m.Loading() {
		return wait()
	}
	if m.Authenticated() {
		if !m.OnboardingComplete() {
			return redirect(RouteOnboarding)
		}
		return redirect(RouteDashboard)
	}
	return render()
}
