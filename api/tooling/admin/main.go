// This program performs administrative tasks for the voxgate service.
package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	_ "embed"
	"encoding/pem"
	"flag"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/voxgate/voxgate/app/sdk/auth"
	"github.com/voxgate/voxgate/business/domain/keybus"
	"github.com/voxgate/voxgate/business/domain/keybus/stores/keydb"
	"github.com/voxgate/voxgate/business/domain/tenantbus"
	"github.com/voxgate/voxgate/business/domain/tenantbus/stores/tenantdb"
	"github.com/voxgate/voxgate/business/domain/userbus"
	"github.com/voxgate/voxgate/business/domain/userbus/stores/userdb"
	"github.com/voxgate/voxgate/business/sdk/sqldb"
	"github.com/voxgate/voxgate/business/types/name"
	"github.com/voxgate/voxgate/business/types/password"
	"github.com/voxgate/voxgate/business/types/role"
	"github.com/voxgate/voxgate/business/types/scope"
	"github.com/voxgate/voxgate/foundation/keystore"
	"github.com/voxgate/voxgate/foundation/logger"
)

//go:embed sql/schema.sql
var schemaSQL string

//go:embed sql/seed.sql
var seedSQL string

type Config struct {
	DB struct {
		User         string `envconfig:"DB_USER" default:"postgres"`
		Password     string `envconfig:"DB_PASSWORD" default:"postgres"`
		Host         string `envconfig:"DB_HOST" default:"localhost"`
		Name         string `envconfig:"DB_NAME" default:"voxgate"`
		MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"0"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"0"`
		DisableTLS   bool   `envconfig:"DB_DISABLE_TLS" default:"true"`
	}
	Auth struct {
		KeysFolder string `envconfig:"AUTH_KEYS_FOLDER" default:"foundation/zarf/keys"`
		Issuer     string `envconfig:"AUTH_ISSUER" default:"https://voxgate.io/auth/"`
	}
}

func main() {
	log := logger.New(os.Stdout, logger.LevelInfo, "ADMIN-TOOL", nil)
	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		log.Error(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: migrate, seed, create-tenant, create-user, create-key, genkey, gentoken")
		return nil
	}

	// genkey needs no database.
	if os.Args[1] == "genkey" {
		return runGenKey(cfg.Auth.KeysFolder)
	}

	db, err := sqldb.Open(sqldb.Config{
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Host:         cfg.DB.Host,
		Name:         cfg.DB.Name,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		DisableTLS:   cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer db.Close()

	tenantBus := tenantbus.NewCore(log, tenantdb.NewStore(log, db))
	userBus := userbus.NewCore(userdb.NewStore(log, db))
	keyBus := keybus.NewCore(log, keydb.NewStore(log, db))

	switch os.Args[1] {
	case "migrate":
		if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
		fmt.Println("schema applied")
		return nil

	case "seed":
		if _, err := db.ExecContext(ctx, seedSQL); err != nil {
			return fmt.Errorf("applying seed data: %w", err)
		}
		fmt.Println("seed data applied")
		return nil

	case "create-tenant":
		return runCreateTenant(ctx, tenantBus, userBus, os.Args[2:])

	case "create-user":
		return runCreateUser(ctx, userBus, os.Args[2:])

	case "create-key":
		return runCreateKey(ctx, keyBus, os.Args[2:])

	case "gentoken":
		return runGenToken(ctx, log, userBus, cfg, os.Args[2:])

	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runCreateTenant provisions a tenant with its owner user in one shot.
func runCreateTenant(ctx context.Context, tb *tenantbus.Core, ub *userbus.Core, args []string) error {
	cmd := flag.NewFlagSet("create-tenant", flag.ExitOnError)
	nameStr := cmd.String("name", "", "Tenant display name (Required)")
	slugStr := cmd.String("slug", "", "Unique tenant slug (Required)")
	emailStr := cmd.String("owner-email", "", "Owner user email (Required)")
	passStr := cmd.String("owner-password", "", "Owner user password (Required)")
	cmd.Parse(args)

	if *nameStr == "" || *slugStr == "" || *emailStr == "" || *passStr == "" {
		cmd.PrintDefaults()
		return fmt.Errorf("missing required fields")
	}

	n, err := name.Parse(*nameStr)
	if err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	addr, err := mail.ParseAddress(*emailStr)
	if err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}

	p, err := password.Parse(*passStr)
	if err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	tnt, err := tb.Create(ctx, tenantbus.NewTenant{
		Name: n,
		Slug: *slugStr,
	})
	if err != nil {
		return fmt.Errorf("create tenant failed: %w", err)
	}

	usr, err := ub.Create(ctx, userbus.NewUser{
		TenantID: tnt.ID,
		Name:     n,
		Email:    *addr,
		Role:     role.Owner,
		Password: p,
	})
	if err != nil {
		return fmt.Errorf("create owner failed: %w", err)
	}

	fmt.Printf("\nSUCCESS: Tenant created!\nTenantID: %s\nSlug: %s\nOwnerID: %s\n", tnt.ID, tnt.Slug, usr.ID)
	return nil
}

func runCreateUser(ctx context.Context, ub *userbus.Core, args []string) error {
	cmd := flag.NewFlagSet("create-user", flag.ExitOnError)
	tenantIDStr := cmd.String("tenant-id", "", "Tenant UUID (Required)")
	emailStr := cmd.String("email", "", "User email (Required)")
	passStr := cmd.String("password", "", "User password (Required)")
	nameStr := cmd.String("name", "", "User full name (Required)")
	roleStr := cmd.String("role", "DEVELOPER", "User role (OWNER, ADMIN, DEVELOPER, VIEWER)")
	cmd.Parse(args)

	if *tenantIDStr == "" || *emailStr == "" || *passStr == "" || *nameStr == "" {
		cmd.PrintDefaults()
		return fmt.Errorf("missing required fields")
	}

	tenantID, err := uuid.Parse(*tenantIDStr)
	if err != nil {
		return fmt.Errorf("invalid tenant uuid: %w", err)
	}

	n, err := name.Parse(*nameStr)
	if err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	r, err := role.Parse(*roleStr)
	if err != nil {
		return fmt.Errorf("invalid role: %w", err)
	}

	addr, err := mail.ParseAddress(*emailStr)
	if err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}

	p, err := password.Parse(*passStr)
	if err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	usr, err := ub.Create(ctx, userbus.NewUser{
		TenantID: tenantID,
		Name:     n,
		Email:    *addr,
		Role:     r,
		Password: p,
	})
	if err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}

	fmt.Printf("\nSUCCESS: User created!\nID: %s\nEmail: %s\nRole: %s\n", usr.ID, usr.Email.Address, usr.Role)
	return nil
}

func runCreateKey(ctx context.Context, kb *keybus.Core, args []string) error {
	cmd := flag.NewFlagSet("create-key", flag.ExitOnError)
	tenantIDStr := cmd.String("tenant-id", "", "Tenant UUID (Required)")
	labelStr := cmd.String("label", "", "Key label (Required)")
	scopesStr := cmd.String("scopes", "synthesize,transcribe,voices", "Comma separated scopes")
	rateLimit := cmd.Int("rate-limit", 0, "Per minute rate limit override (0 = default)")
	cmd.Parse(args)

	if *tenantIDStr == "" || *labelStr == "" {
		cmd.PrintDefaults()
		return fmt.Errorf("missing required fields")
	}

	tenantID, err := uuid.Parse(*tenantIDStr)
	if err != nil {
		return fmt.Errorf("invalid tenant uuid: %w", err)
	}

	label, err := name.Parse(*labelStr)
	if err != nil {
		return fmt.Errorf("invalid label: %w", err)
	}

	scopes, err := scope.ParseMany(strings.Split(*scopesStr, ","))
	if err != nil {
		return fmt.Errorf("invalid scopes: %w", err)
	}

	key, secret, err := kb.Create(ctx, keybus.NewKey{
		TenantID:        tenantID,
		Label:           label,
		Scopes:          scopes,
		RateLimitPerMin: *rateLimit,
	})
	if err != nil {
		return fmt.Errorf("create key failed: %w", err)
	}

	fmt.Printf("\nSUCCESS: API key created!\nID: %s\nSecret: %s\n", key.ID, secret)
	fmt.Println("The secret is shown only once. Store it now.")
	return nil
}

// runGenKey creates an x509 private key for signing tokens. The file name is
// used as the key id.
func runGenKey(keysFolder string) error {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return fmt.Errorf("generating key: %w", err)
	}

	if err := os.MkdirAll(keysFolder, 0o755); err != nil {
		return fmt.Errorf("creating keys folder: %w", err)
	}

	kid := uuid.NewString()
	fileName := filepath.Join(keysFolder, kid+".pem")

	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("creating key file: %w", err)
	}
	defer file.Close()

	block := pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	}

	if err := pem.Encode(file, &block); err != nil {
		return fmt.Errorf("encoding to key file: %w", err)
	}

	fmt.Printf("\nSUCCESS: Key generated!\nKID: %s\nFile: %s\n", kid, fileName)
	return nil
}

func runGenToken(ctx context.Context, log *logger.Logger, ub *userbus.Core, cfg Config, args []string) error {
	cmd := flag.NewFlagSet("gentoken", flag.ExitOnError)
	userIDStr := cmd.String("user-id", "", "User UUID (Required)")
	kidStr := cmd.String("kid", "", "Key id to sign with (defaults to first loaded key)")
	cmd.Parse(args)

	if *userIDStr == "" {
		cmd.PrintDefaults()
		return fmt.Errorf("missing required fields")
	}

	userID, err := uuid.Parse(*userIDStr)
	if err != nil {
		return fmt.Errorf("invalid user uuid: %w", err)
	}

	ks := keystore.New()

	kids, err := ks.LoadByFileSystem(os.DirFS(cfg.Auth.KeysFolder))
	if err != nil {
		return fmt.Errorf("loading keys: %w", err)
	}
	if len(kids) == 0 {
		return fmt.Errorf("no keys found in %s, run genkey first", cfg.Auth.KeysFolder)
	}

	kid := *kidStr
	if kid == "" {
		kid = kids[0]
	}

	usr, err := ub.QueryByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("querying user: %w", err)
	}

	a := auth.New(auth.Config{
		Log:       log,
		UserBus:   ub,
		KeyLookup: ks,
		Issuer:    cfg.Auth.Issuer,
	})

	token, err := a.GenerateToken(kid, usr.TenantID, usr.ID, usr.Role)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	fmt.Printf("\nSUCCESS: Token generated!\n%s\n", token)
	return nil
}
