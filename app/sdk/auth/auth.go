// Package auth provides authentication and authorization support for bearer
// tokens. API key credentials are handled by the keybus directly.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/domain/userbus"
	"github.com/voxgate/voxgate/business/types/role"
	"github.com/voxgate/voxgate/foundation/logger"
)

// Set of errors for authentication and authorization.
var (
	ErrForbidden      = errors.New("attempted action is not allowed")
	ErrKIDMissing     = errors.New("kid missing from token header")
	ErrKIDMalformed   = errors.New("kid in token header is malformed")
	ErrUserDisabled   = errors.New("user is disabled")
	ErrInvalidRole    = errors.New("token contains an invalid role")
	ErrTenantMismatch = errors.New("token tenant does not match the user's tenant")
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
}

// KeyLookup declares a method set of behavior for looking up
// private and public keys for JWT use.
type KeyLookup interface {
	PrivateKey(kid string) (key string, err error)
	PublicKey(kid string) (key string, err error)
}

// Config represents information required to initialize auth.
type Config struct {
	Log       *logger.Logger
	UserBus   *userbus.Core
	KeyLookup KeyLookup
	Issuer    string
	ActiveKID string
}

// Auth is used to authenticate clients.
type Auth struct {
	log       *logger.Logger
	keyLookup KeyLookup
	userBus   *userbus.Core
	method    jwt.SigningMethod
	parser    *jwt.Parser
	issuer    string
	activeKID string
}

// New creates an Auth to support authentication/authorization.
func New(cfg Config) *Auth {
	return &Auth{
		log:       cfg.Log,
		keyLookup: cfg.KeyLookup,
		userBus:   cfg.UserBus,
		method:    jwt.GetSigningMethod(jwt.SigningMethodRS256.Name),
		parser:    jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name})),
		issuer:    cfg.Issuer,
		activeKID: cfg.ActiveKID,
	}
}

// Issuer provides the configured issuer used to authenticate tokens.
func (a *Auth) Issuer() string {
	return a.issuer
}

// ActiveKID provides the kid tokens are signed with.
func (a *Auth) ActiveKID() string {
	return a.activeKID
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func (a *Auth) GenerateToken(kid string, tenantID uuid.UUID, userID uuid.UUID, r role.Role) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    a.issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		TenantID: tenantID.String(),
		Role:     r.String(),
	}

	token := jwt.NewWithClaims(a.method, claims)
	token.Header["kid"] = kid

	privateKeyPEM, err := a.keyLookup.PrivateKey(kid)
	if err != nil {
		return "", fmt.Errorf("private key: %w", err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return "", fmt.Errorf("parsing private key from PEM: %w", err)
	}

	str, err := token.SignedString(privateKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return str, nil
}

// Authenticate processes the token to validate the sender's token is valid.
// Beyond signature and expiry this binds the token to the database: the
// subject must still exist, be enabled, and belong to the tenant named in the
// token claims. A stale token issued before a user moved tenants fails here.
func (a *Auth) Authenticate(ctx context.Context, bearerToken string) (Claims, userbus.User, error) {
	parts := splitBearer(bearerToken)
	if parts == "" {
		return Claims{}, userbus.User{}, errors.New("expected authorization header format: Bearer <token>")
	}

	var claims Claims
	token, _, err := a.parser.ParseUnverified(parts, &claims)
	if err != nil {
		return Claims{}, userbus.User{}, fmt.Errorf("error parsing token: %w", err)
	}

	kidRaw, exists := token.Header["kid"]
	if !exists {
		return Claims{}, userbus.User{}, ErrKIDMissing
	}

	kid, ok := kidRaw.(string)
	if !ok {
		return Claims{}, userbus.User{}, ErrKIDMalformed
	}

	pem, err := a.keyLookup.PublicKey(kid)
	if err != nil {
		return Claims{}, userbus.User{}, fmt.Errorf("fetching public key for kid %q: %w", kid, err)
	}

	if err := a.verifySignatureAndClaims(parts, pem); err != nil {
		a.log.Info(ctx, "authenticate failed", "subject", claims.Subject, "err", err)
		return Claims{}, userbus.User{}, fmt.Errorf("authentication failed: %w", err)
	}

	if _, err := role.Parse(claims.Role); err != nil {
		return Claims{}, userbus.User{}, ErrInvalidRole
	}

	usr, err := a.verifySubject(ctx, claims)
	if err != nil {
		return Claims{}, userbus.User{}, err
	}

	return claims, usr, nil
}

// Authorize checks if the claims possess one of the required roles.
func (a *Auth) Authorize(ctx context.Context, claims Claims, allowedRoles ...role.Role) error {
	if len(allowedRoles) == 0 {
		return fmt.Errorf("%w: no roles authorized for this endpoint", ErrForbidden)
	}

	for _, r := range allowedRoles {
		if claims.Role == r.String() {
			return nil
		}
	}

	return fmt.Errorf("%w: user role %q is not in the allowed list %v", ErrForbidden, claims.Role, allowedRoles)
}

// Login resolves an email/password pair to the matching user.
func (a *Auth) Login(ctx context.Context, email mail.Address, password string) (userbus.User, error) {
	usr, err := a.userBus.Authenticate(ctx, email, password)
	if err != nil {
		return userbus.User{}, fmt.Errorf("invalid credentials: %w", err)
	}

	return usr, nil
}

// verifySubject checks the token subject against the database.
func (a *Auth) verifySubject(ctx context.Context, claims Claims) (userbus.User, error) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return userbus.User{}, fmt.Errorf("parsing user ID %q from claims: %w", claims.Subject, err)
	}

	usr, err := a.userBus.QueryByID(ctx, userID)
	if err != nil {
		return userbus.User{}, fmt.Errorf("query user: %w", err)
	}

	if !usr.Enabled {
		return userbus.User{}, ErrUserDisabled
	}

	if usr.TenantID.String() != claims.TenantID {
		return userbus.User{}, ErrTenantMismatch
	}

	return usr, nil
}

// verifySignatureAndClaims parses the token with the public key, validates
// the signature, and checks the issuer claim.
func (a *Auth) verifySignatureAndClaims(tokenStr, pemStr string) error {
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemStr))
	if err != nil {
		return fmt.Errorf("parsing public key: %w", err)
	}

	var claims Claims
	token, err := a.parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return fmt.Errorf("validating token signature: %w", err)
	}

	if !token.Valid {
		return errors.New("token is invalid")
	}

	if claims.Issuer != a.issuer {
		return fmt.Errorf("invalid issuer: expected %q, got %q", a.issuer, claims.Issuer)
	}

	return nil
}

func splitBearer(bearerToken string) string {
	const prefix = "Bearer "
	if len(bearerToken) <= len(prefix) || bearerToken[:len(prefix)] != prefix {
		return ""
	}

	return bearerToken[len(prefix):]
}
