package guard

import (
	"strings"
	"time"
)

// Action is the outcome of a navigation check.
type Action int

const (
	Render Action = iota
	RedirectLogin
	RedirectTenant
)

func (a Action) String() string {
	switch a {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect_login"
	case RedirectTenant:
		return "redirect_tenant"
	default:
		return "unknown"
	}
}

// Decision tells the caller what to do with a navigation. Location is set for
// redirects. From carries the attempted path on login redirects.
type Decision struct {
	Action   Action
	Location string
	From     string
}

const (
	DefaultLoginPath = "/login"
	roleAdmin        = "admin"
)

// Guard evaluates navigations against the session and the tenant routes.
type Guard struct {
	routes    *RouteTable
	loginPath string
}

type Option func(*Guard)

func WithLoginPath(path string) Option {
	return func(g *Guard) {
		if path != "" {
			g.loginPath = path
		}
	}
}

func New(routes *RouteTable, opts ...Option) *Guard {
	g := &Guard{routes: routes, loginPath: DefaultLoginPath}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate never fails. An absent, malformed or expired token clears the
// session and leads to the login page, except on the login page itself.
// Non-admins reaching another tenant's page are sent to their own tenant root.
func (g *Guard) Evaluate(session *Session, path string, now time.Time) Decision {
	if !g.hasValidToken(session, now) {
		session.Clear()
		if strings.HasPrefix(path, g.loginPath) {
			return Decision{Action: Render}
		}
		return Decision{Action: RedirectLogin, Location: g.loginPath, From: path}
	}

	routeTenant, isTenantRoute := g.routes.TenantFor(path)
	if !isTenantRoute {
		return Decision{Action: Render}
	}

	user := session.User()
	role := ""
	if user != nil {
		role = user.Role
	}
	if role == roleAdmin {
		return Decision{Action: Render}
	}

	slug := user.TenantSlug()
	if slug == "" || slug != routeTenant {
		return Decision{Action: RedirectTenant, Location: "/" + slug}
	}
	return Decision{Action: Render}
}

func (g *Guard) hasValidToken(session *Session, now time.Time) bool {
	token, ok := session.Token()
	if !ok {
		return false
	}
	claims, err := DecodeClaims(token)
	if err != nil {
		return false
	}
	return !claims.Expired(now)
}
