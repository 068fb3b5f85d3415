package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hisani/core/dashboard"
	"github.com/trezcool/hisani/core/user"
)

type dashboardApi struct {
	svc    dashboard.ServiceInterface
	usrSvc user.ServiceInterface
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := dashboardApi{
		svc:    deps.DashboardSvc,
		usrSvc: deps.UserSvc,
	}

	g.GET("/dashboard", api.retrieve, jwt, ngoMiddleware())
}

// retrieve assembles the NGO home page payload, scoped to the org's own jobs.
func (api *dashboardApi) retrieve(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	d, err := api.svc.ForOrg(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "building dashboard")
	}
	return ctx.JSON(http.StatusOK, d)
}
