package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"promptd/internal/domain"
)

// Mode selects how callers authenticate.
type Mode string

const (
	ModeNone   Mode = ""
	ModeStatic Mode = "static"
	ModeJWT    Mode = "jwt"
)

const (
	HeaderAPIKey = "X-Api-Key"
	QueryToken   = "auth"
)

// Config configures an Authenticator.
type Config struct {
	DisabledByCLI bool
	Mode          Mode
	Token         string
	Secret        string
	Leeway        time.Duration
}

// Result is the outcome of checking one request.
type Result struct {
	OK      bool
	Message string
	Claims  jwt.MapClaims
}

// Authenticator gates HTTP requests with a static token or an HMAC signed JWT.
type Authenticator struct {
	cfg    Config
	mode   Mode
	logger *zap.Logger
}

var bearerPattern = regexp.MustCompile(`(?i)^Bearer\s+(.+)$`)

func New(cfg Config, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	mode := cfg.Mode
	if mode == ModeNone && cfg.Token != "" {
		mode = ModeStatic
	}
	return &Authenticator{cfg: cfg, mode: mode, logger: logger.Named("auth")}
}

// Enabled reports whether requests must carry a credential.
func (a *Authenticator) Enabled() bool {
	if a.cfg.DisabledByCLI {
		return false
	}
	switch a.mode {
	case ModeStatic:
		return a.cfg.Token != ""
	case ModeJWT:
		return a.cfg.Secret != ""
	default:
		return false
	}
}

// Status reports the gate configuration without exposing secrets.
func (a *Authenticator) Status() domain.AuthStatus {
	return domain.AuthStatus{
		Enabled:         a.Enabled(),
		Mode:            string(a.mode),
		TokenConfigured: a.cfg.Token != "" || a.cfg.Secret != "",
		DisabledByCLI:   a.cfg.DisabledByCLI,
	}
}

// Check validates the credential carried by r.
func (a *Authenticator) Check(r *http.Request) Result {
	if !a.Enabled() {
		return Result{OK: true}
	}
	token := TokenFromRequest(r)
	if token == "" {
		return Result{Message: "Missing token"}
	}
	switch a.mode {
	case ModeJWT:
		claims, err := a.verifyJWT(token)
		if err != nil {
			return Result{Message: "JWT validation failed: " + err.Error()}
		}
		return Result{OK: true, Claims: claims}
	default:
		if subtle.ConstantTimeCompare([]byte(token), []byte(a.cfg.Token)) == 1 {
			return Result{OK: true}
		}
		return Result{Message: "Unauthorized"}
	}
}

func (a *Authenticator) verifyJWT(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(a.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithLeeway(a.cfg.Leeway),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Middleware rejects unauthenticated requests with a 401 JSON body.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := a.Check(r)
		if !res.OK {
			a.logger.Debug("request rejected", zap.String("path", r.URL.Path), zap.String("reason", res.Message))
			WriteError(w, http.StatusUnauthorized, res.Message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TokenFromRequest extracts a credential from the Authorization header, the API key
// header or the auth query parameter, in that order.
func TokenFromRequest(r *http.Request) string {
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		if m := bearerPattern.FindStringSubmatch(header); m != nil {
			return strings.TrimSpace(m[1])
		}
		return header
	}
	if key := strings.TrimSpace(r.Header.Get(HeaderAPIKey)); key != "" {
		return key
	}
	return strings.TrimSpace(r.URL.Query().Get(QueryToken))
}

// WriteError writes {"error": msg} with the given status.
func WriteError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// ParseMode validates a configured mode name.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeNone:
		return ModeNone, nil
	case ModeStatic:
		return ModeStatic, nil
	case ModeJWT:
		return ModeJWT, nil
	default:
		return ModeNone, domain.E(domain.CodeInvalidArgument, "auth.mode", "unknown auth type "+raw, domain.ErrInvalidConfig)
	}
}
