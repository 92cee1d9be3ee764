package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusconnect/backend/core"
	"github.com/campusconnect/backend/core/enroll"
	"github.com/campusconnect/backend/core/user"
)

type authApi struct {
	opts *Options
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := authApi{opts: opts}

	ag := g.Group("/auth")

	// un-authed endpoints
	// TODO: rate limit `/login` & `/register/*`
	ag.POST("/login", api.login)
	ag.POST("/register/teacher", api.registerTeacher)
	ag.POST("/register/student", api.registerStudent)

	ag.POST("/token-refresh", api.refreshToken, jwt)
}

// Handlers

func (api *authApi) registerTeacher(ctx echo.Context) error {
	var data TeacherRegistrationRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TeacherRegistrationRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	uid, err := api.opts.Identity.CreateCredential(reqCtx, data.Email, data.Password)
	if err != nil {
		return errors.Wrap(err, "creating credential")
	}

	usr, err := api.opts.UserSvc.Create(reqCtx, user.User{
		ID:       uid,
		Email:    data.Email,
		FullName: data.FullName,
		Role:     user.RoleTeacher,
		Bio:      data.Bio,
	})
	if err != nil {
		return errors.Wrap(err, "creating teacher profile")
	}

	token, err := GenerateToken(api.opts.Conf, GetUserClaims(api.opts.Conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusCreated, RegistrationResponse{Token: token, User: usr})
}

func (api *authApi) registerStudent(ctx echo.Context) error {
	var data StudentRegistrationRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StudentRegistrationRequest")
	}

	reqCtx := ctx.Request().Context()
	uid, err := api.opts.Identity.CreateCredential(reqCtx, data.Email, data.Password)
	if err != nil {
		return errors.Wrap(err, "creating credential")
	}

	data.JoinRequest.StudentID = uid
	if err := api.opts.EnrollSvc.RequestJoin(reqCtx, data.JoinRequest); err != nil {
		// the join request never landed; take the orphan credential with it
		if dErr := api.opts.Identity.DestroyCredential(reqCtx, uid); dErr != nil {
			api.opts.Logger.Warn("leaving orphan credential behind", dErr)
		}
		return err
	}

	return ctx.JSON(http.StatusAccepted, SuccessResponse{
		Success: "Your request to join the class has been sent. " +
			"You will be able to sign in once the teacher approves it.",
	})
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticate(ctx.Request().Context(), api.opts, data.Email, data.Password)
	if err != nil {
		return err
	}
	token, err := GenerateToken(api.opts.Conf, claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.opts)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

type profileApi struct {
	opts *Options
}

func registerProfileAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := profileApi{opts: opts}

	pg := g.Group("/profile", jwt)
	pg.GET("", api.retrieve)
	pg.PUT("", api.update)
	pg.POST("/photo", api.uploadPhoto)
}

func (api *profileApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	usr, err := api.opts.UserSvc.Get(ctx.Request().Context(), claims.Role, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "finding user profile")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *profileApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data user.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if data.IsEmpty() {
		return core.NewValidationError(errors.New("nothing to update"))
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := api.opts.UserSvc.Update(ctx.Request().Context(), claims.Role, claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *profileApi) uploadPhoto(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	fh, err := ctx.FormFile("photo")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "photo", Error: "this field is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded photo")
	}
	defer f.Close()

	url, err := api.opts.UserSvc.UploadPhoto(ctx.Request().Context(), claims.Role, claims.Subject, fh.Filename, f)
	if err != nil {
		return errors.Wrap(err, "uploading profile photo")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"photoURL": url})
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	TeacherRegistrationRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
		FullName string `json:"full_name" validate:"required"`
		Bio      string `json:"bio"`
	}

	StudentRegistrationRequest struct {
		enroll.JoinRequest
		Password string `json:"password" validate:"required"`
	}

	RegistrationResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return core.Validate.Struct(lr)
}

func (tr *TeacherRegistrationRequest) Validate() error {
	tr.Email = core.CleanString(tr.Email, true /* lower */)
	tr.FullName = core.CleanString(tr.FullName)
	tr.Bio = core.CleanString(tr.Bio)
	return core.Validate.Struct(tr)
}
