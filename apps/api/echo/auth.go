package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/user"
)

var (
	contextTokenKey = "userToken"
	contextUserKey  = "user"
	contextSessKey  = "session"
)

// Claims represents the authorization claims transmitted via a JWT.
// Subject is the user ID and Id the session ID.
type Claims struct {
	jwt.StandardClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

type jwtAuth struct {
	appName         string
	signingKey      []byte
	expirationDelta time.Duration
}

func newJWTAuth(conf *core.Config) *jwtAuth {
	return &jwtAuth{
		appName:         conf.AppName,
		signingKey:      []byte(conf.SecretKey),
		expirationDelta: conf.Server.JWTExpirationDelta,
	}
}

func (a *jwtAuth) config() middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    a.signingKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

func (a *jwtAuth) middleware() echo.MiddlewareFunc {
	return middleware.JWTWithConfig(a.config())
}

func (a *jwtAuth) sessionClaims(sess user.Session) *Claims {
	now := time.Now()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:       sess.ID,
			Issuer:   a.appName,
			Subject:  sess.User.ID,
			IssuedAt: now.Unix(),
		},
		Name:  sess.User.Name,
		Email: sess.User.Email,
		Role:  sess.User.Role,
	}
	if a.expirationDelta > 0 {
		claims.ExpiresAt = now.Add(a.expirationDelta).Unix()
	}
	return claims
}

// GenerateToken generates a signed JWT token string for the Session.
func (a *jwtAuth) GenerateToken(sess user.Session) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, a.sessionClaims(sess))

	ss, err := token.SignedString(a.signingKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// sessionMiddleware rejects tokens whose session was closed and caches the session user in ctx.
func sessionMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			sess, err := svc.Session(ctx.Request().Context(), claims.Id)
			if err != nil {
				if errors.Cause(err) == user.ErrSessionNotFound {
					return errSessionExpired
				}
				return errors.Wrap(err, "finding session")
			}
			if sess.User.ID != claims.Subject {
				return errUnauthorized
			}
			ctx.Set(contextSessKey, sess)
			ctx.Set(contextUserKey, sess.User)
			return next(ctx)
		}
	}
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUnauthorized
}

func getContextSession(ctx echo.Context) (user.Session, error) {
	if sess, ok := ctx.Get(contextSessKey).(user.Session); ok {
		return sess, nil
	}
	return user.Session{}, errUnauthorized
}
