package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hisani/core/settings"
)

type settingsApi struct {
	svc      settings.ServiceInterface
	validate *validator.Validate
}

func registerSettingsAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := settingsApi{
		svc:      deps.SettingsSvc,
		validate: deps.Validate,
	}

	// quotas and flags are public so clients can shape signup and upgrade UIs
	g.GET("/platform-settings", api.retrieve)
	g.PUT("/platform-settings", api.update, jwt, adminMiddleware())
}

// Handlers

func (api *settingsApi) retrieve(ctx echo.Context) error {
	ps, err := api.svc.Get(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting platform settings")
	}
	return ctx.JSON(http.StatusOK, ps)
}

func (api *settingsApi) update(ctx echo.Context) error {
	var data settings.UpdateSettings
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSettings")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ps, err := api.svc.Update(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "updating platform settings")
	}
	return ctx.JSON(http.StatusOK, ps)
}
