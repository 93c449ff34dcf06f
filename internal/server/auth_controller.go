package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/slacklinehq/slackline/internal/auth"
	"github.com/slacklinehq/slackline/internal/models"
)

type AuthController interface {
	SignUp(c echo.Context) error
	SignIn(c echo.Context) error
	SignInAnonymous(c echo.Context) error
	SignOut(c echo.Context) error
	Methods(c echo.Context) error
	Me(c echo.Context) error
}

type authController struct {
	provider auth.Provider
}

func NewAuthController(provider auth.Provider) AuthController {
	return &authController{
		provider: provider,
	}
}

type signUpRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"display_name"`
}

func (ac *authController) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cred, err := ac.provider.SignUp(c.Request().Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		return authError(err)
	}
	return c.JSON(http.StatusCreated, cred)
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (ac *authController) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cred, err := ac.provider.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return authError(err)
	}
	return c.JSON(http.StatusOK, cred)
}

func (ac *authController) SignInAnonymous(c echo.Context) error {
	cred, err := ac.provider.SignInAnonymous(c.Request().Context())
	if err != nil {
		return authError(err)
	}
	return c.JSON(http.StatusOK, cred)
}

func (ac *authController) SignOut(c echo.Context) error {
	if err := ac.provider.SignOut(c.Request().Context(), mustSession(c)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (ac *authController) Methods(c echo.Context) error {
	methods := ac.provider.ProbeMethods(c.Request().Context(), c.QueryParam("email"))
	return c.JSON(http.StatusOK, map[string][]string{"methods": methods})
}

func (ac *authController) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, mustSession(c))
}

// authError maps the auth taxonomy onto the wire: a known code keeps its
// user-facing message; anything else gets the generic fallback. These are the
// only errors surfaced inline to the user.
func authError(err error) error {
	var ae *models.AuthError
	if !errors.As(err, &ae) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	status := http.StatusBadRequest
	switch ae.Code {
	case models.AuthCodeUserNotFound:
		status = http.StatusNotFound
	case models.AuthCodeWrongPassword, models.AuthCodeUserDisabled:
		status = http.StatusUnauthorized
	case models.AuthCodeRestrictedOperation:
		status = http.StatusForbidden
	}
	return echo.NewHTTPError(status, ae.Message())
}
