// Command provision creates or updates a portal account and its tenant.
//
//	provision -email barak@test.de -password barak2025 -username barak \
//	    -role tenant-member -home klees -tenant klees -tenant-name Klees
//
// The tenant is created when its slug is new and left untouched otherwise.
// The account is keyed by email; an existing one is overwritten.
package main

import (
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	authservice "automatik/internal/auth/service"
	userstore "automatik/internal/auth/store/user"
	jwttoken "automatik/internal/jwt_token"
	"automatik/internal/platform/config"
	"automatik/internal/platform/database"
	"automatik/internal/platform/logger"
	tenantmodels "automatik/internal/tenant/models"
	tenantservice "automatik/internal/tenant/service"
	tenantstore "automatik/internal/tenant/store/tenant"
	"automatik/migrations"
)

type options struct {
	email        string
	password     string
	username     string
	role         string
	home         string
	tenant       string
	tenantName   string
	tenantTarget string
	migrate      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "provision: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("provision", flag.ContinueOnError)
	o := &options{}
	fs.StringVar(&o.email, "email", "", "account email (required)")
	fs.StringVar(&o.password, "password", "", "plain password, hashed with bcrypt cost 10 (required)")
	fs.StringVar(&o.username, "username", "", "display name (required)")
	fs.StringVar(&o.role, "role", "tenant-member", "admin or tenant-member")
	fs.StringVar(&o.home, "home", "", "landing path after login, e.g. klees")
	fs.StringVar(&o.tenant, "tenant", "", "tenant slug; required for tenant-member")
	fs.StringVar(&o.tenantName, "tenant-name", "", "tenant display name for a new tenant (defaults to the slug)")
	fs.StringVar(&o.tenantTarget, "tenant-redirect", "", "tenant landing path for a new tenant (defaults to /<slug>)")
	fs.BoolVar(&o.migrate, "migrate", true, "apply pending migrations first")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"email", o.email},
		{"password", o.password},
		{"username", o.username},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, "-"+f.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}
	o.tenant = strings.ToLower(strings.TrimSpace(o.tenant))
	if o.tenant != "" {
		o.tenantName = cmp.Or(strings.TrimSpace(o.tenantName), o.tenant)
		o.tenantTarget = cmp.Or(strings.TrimSpace(o.tenantTarget), "/"+o.tenant)
	}
	return o, nil
}

func run(ctx context.Context, args []string, out io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	log := logger.New(cfg.LogLevel)

	pool, err := database.New(ctx, database.Config{URL: cfg.Database.URL, MaxOpenConns: 2})
	if err != nil {
		return err
	}
	defer pool.Close()

	if o.migrate {
		if _, err := pool.Migrate(ctx, migrations.FS); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	users := userstore.NewPostgres(pool.DB())
	tenants := tenantservice.New(tenantstore.NewPostgres(pool.DB()), users, tenantservice.WithLogger(log))
	// Provisioning never signs sessions; the generator only satisfies the constructor.
	auth, err := authservice.New(users, jwttoken.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL), authservice.WithLogger(log))
	if err != nil {
		return err
	}

	var tenant *tenantmodels.Tenant
	if o.tenant != "" {
		tenant, err = tenants.EnsureTenant(ctx, o.tenant, o.tenantName, o.tenantTarget)
		if err != nil {
			return fmt.Errorf("ensure tenant: %w", err)
		}
	}

	var home *string
	if o.home != "" {
		home = &o.home
	}
	user, err := auth.ProvisionUser(ctx, &authservice.ProvisionUserCommand{
		Email:    o.email,
		Password: o.password,
		Username: o.username,
		Role:     o.role,
		HomePath: home,
		Tenant:   tenant,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "provisioned user %d (%s) role=%s tenant=%s\n", user.ID, user.Email, user.Role, user.TenantSlug())
	return nil
}
