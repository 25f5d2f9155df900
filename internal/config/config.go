// Package config loads server configuration from environment variables.
//
// Configuration is declared as a struct with `env` tags and parsed in one
// call. Defaults live in the tags, so the zero-config development setup
// (local sqlite file, port 5001) works with just the two secrets exported:
//
//	ACCESS_TOKEN_SECRET=$(openssl rand -hex 32)
//	STRIPE_SECRET_KEY=sk_test_...
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Protection is the access level enforced on a route: open to anyone, any
// authenticated identity, or admins only.
type Protection string

const (
	Public Protection = "public"
	Auth   Protection = "auth"
	Admin  Protection = "admin"
)

// Config holds everything the server needs at startup.
//
// RoutePolicy overrides the default per-route protection. Keys are
// "<resource>.<operation>" (operations: create, update, delete, plus
// user.list and user.update for the identity routes) and values are
// "public", "auth", or "admin". Example: tighten product deletion with
//
//	ROUTE_POLICY=product.delete:admin,banner.update:admin
//
// Unlisted routes keep the defaults from DefaultPolicy.
type Config struct {
	Port            int               `env:"PORT" envDefault:"5001"`
	DBPath          string            `env:"DB_PATH" envDefault:"data/manufacturer.db"`
	TokenSecret     string            `env:"ACCESS_TOKEN_SECRET"`
	StripeSecretKey string            `env:"STRIPE_SECRET_KEY"`
	RoutePolicy     map[string]string `env:"ROUTE_POLICY"`
}

// DefaultPolicy reproduces the access levels each route family shipped
// with: content creation is admin-gated, reviews need any signed-in user,
// orders are placed anonymously, and updates/deletes are open — including
// the user directory and profile updates, which the site served without a
// token. Deployments disagreeing with the open routes override via
// ROUTE_POLICY.
var DefaultPolicy = map[string]Protection{
	"user.list":           Public,
	"user.update":         Public,
	"product.create":      Admin,
	"product.update":      Public,
	"product.delete":      Public,
	"order.create":        Public,
	"order.delete":        Public,
	"review.create":       Auth,
	"review.delete":       Public,
	"blog.create":         Admin,
	"blog.update":         Public,
	"blog.delete":         Public,
	"portfolio.create":    Admin,
	"portfolio.update":    Public,
	"portfolio.delete":    Public,
	"adminprofile.create": Admin,
	"adminprofile.update": Public,
	"adminprofile.delete": Public,
	"banner.create":       Admin,
	"banner.update":       Public,
	"banner.delete":       Public,
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	for route, level := range cfg.RoutePolicy {
		switch Protection(level) {
		case Public, Auth, Admin:
		default:
			return Config{}, fmt.Errorf("config: ROUTE_POLICY %s has unknown level %q", route, level)
		}
		if _, ok := DefaultPolicy[route]; !ok {
			return Config{}, fmt.Errorf("config: ROUTE_POLICY names unknown route %q", route)
		}
	}

	return cfg, nil
}

// ProtectionFor resolves the access level for a route, applying any
// ROUTE_POLICY override on top of the defaults.
func (c Config) ProtectionFor(resource, operation string) Protection {
	key := resource + "." + operation
	if level, ok := c.RoutePolicy[key]; ok {
		return Protection(level)
	}
	if level, ok := DefaultPolicy[key]; ok {
		return level
	}
	return Public
}
