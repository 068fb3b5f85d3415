package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hisani/core/profile"
	"github.com/trezcool/hisani/core/user"
)

// profileApi serves role-shaped profiles: NGOs get the org profile,
// everyone else the volunteer one.
type profileApi struct {
	svc      profile.ServiceInterface
	usrSvc   user.ServiceInterface
	validate *validator.Validate
}

func registerProfileAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := profileApi{
		svc:      deps.ProfileSvc,
		usrSvc:   deps.UserSvc,
		validate: deps.Validate,
	}

	pg := g.Group("/profiles", jwt)
	pg.GET("/me", api.retrieveMine)
	pg.PUT("/me", api.upsertMine)
	pg.GET("/:id", api.retrieve)
	pg.PATCH("/:id/verify", api.verify, adminMiddleware())
}

// Handlers

func (api *profileApi) retrieveMine(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return api.profileFor(ctx, ctxUsr)
}

func (api *profileApi) retrieve(ctx echo.Context) error {
	usr, err := api.usrSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return api.profileFor(ctx, usr)
}

func (api *profileApi) profileFor(ctx echo.Context, usr user.User) error {
	reqCtx := ctx.Request().Context()
	if usr.IsNGO() {
		p, err := api.svc.GetOrg(reqCtx, usr.ID)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, p)
	}
	p, err := api.svc.GetVolunteer(reqCtx, usr.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *profileApi) upsertMine(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	reqCtx := ctx.Request().Context()

	if ctxUsr.IsNGO() {
		var data profile.UpsertOrgProfile
		if err := ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to UpsertOrgProfile")
		}
		if err := data.Validate(api.validate); err != nil {
			return err
		}
		p, err := api.svc.UpsertOrg(reqCtx, ctxUsr.ID, data)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, p)
	}

	var data profile.UpsertVolunteerProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpsertVolunteerProfile")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	p, err := api.svc.UpsertVolunteer(reqCtx, ctxUsr.ID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

type VerifyOrgRequest struct {
	Verified *bool `json:"verified" validate:"required"`
}

func (api *profileApi) verify(ctx echo.Context) error {
	var data VerifyOrgRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VerifyOrgRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	p, err := api.svc.SetOrgVerified(ctx.Request().Context(), ctx.Param("id"), *data.Verified)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}
