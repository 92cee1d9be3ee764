package echoapi

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/campusconnect/backend/core"
	"github.com/campusconnect/backend/core/user"
)

const contextTokenKey = "userToken"

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Email        string `json:"email,omitempty"`
	FullName     string `json:"full_name,omitempty"`
	Role         string `json:"role,omitempty"`
	IsStudent    bool   `json:"is_student,omitempty"` // -> STUDENT PORTAL
	IsTeacher    bool   `json:"is_teacher,omitempty"` // -> TEACHER PORTAL
}

func GetUserClaims(conf *core.Config, usr user.User, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			Audience:  "Campus",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Email:        usr.Email,
		FullName:     usr.FullName,
		Role:         usr.Role,
		IsStudent:    usr.IsStudent(),
		IsTeacher:    usr.IsTeacher(),
	}
}

// authenticate verifies the credential and resolves the owning profile.
// A valid credential without a profile belongs to a student whose join
// request has not been approved yet.
func authenticate(ctx context.Context, opts *Options, email, pwd string) (*Claims, error) {
	uid, err := opts.Identity.VerifyCredential(ctx, email, pwd)
	if err != nil {
		if errors.Cause(err) == core.ErrInvalidCredentials {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "verifying credential")
	}

	usr, err := opts.UserSvc.Get(ctx, user.RoleStudent, uid)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return nil, errors.Wrap(err, "finding student profile")
		}
		usr, err = opts.UserSvc.Get(ctx, user.RoleTeacher, uid)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return nil, errPendingApproval
			}
			return nil, errors.Wrap(err, "finding teacher profile")
		}
	}
	return GetUserClaims(opts.Conf, usr), nil
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.New("signing token")
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

func refreshToken(ctx echo.Context, opts *Options) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	// the profile must still exist; an approved-then-removed student
	// must not be able to refresh indefinitely
	usr, err := opts.UserSvc.Get(ctx.Request().Context(), claims.Role, claims.Subject)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return "", errPendingApproval
		}
		return "", errors.Wrap(err, "finding user profile")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(opts.Conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	newClaims := GetUserClaims(opts.Conf, usr, claims.OrigIssuedAt)
	token, err := GenerateToken(opts.Conf, newClaims)
	return token, errors.Wrap(err, "generating token")
}
