package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hisani/core/application"
	"github.com/trezcool/hisani/core/job"
	"github.com/trezcool/hisani/core/user"
)

type applicationApi struct {
	svc      application.ServiceInterface
	jobSvc   job.ServiceInterface
	usrSvc   user.ServiceInterface
	validate *validator.Validate
}

func registerApplicationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := applicationApi{
		svc:      deps.AppSvc,
		jobSvc:   deps.JobSvc,
		usrSvc:   deps.UserSvc,
		validate: deps.Validate,
	}

	g.POST("/jobs/:id/applications", api.apply, jwt, volunteerMiddleware())
	g.GET("/jobs/:id/applications", api.queryForJob, jwt, ngoMiddleware())

	ag := g.Group("/applications", jwt)
	ag.GET("/mine", api.mine, volunteerMiddleware())
	ag.GET("/:id", api.retrieve)
	ag.PATCH("/:id", api.patch)
}

// Handlers

func (api *applicationApi) apply(ctx echo.Context) error {
	var data application.NewApplication
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewApplication")
	}
	data.JobID = ctx.Param("id")
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	app, err := api.svc.Apply(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, app)
}

// queryForJob lists a job's applications for its owning org.
func (api *applicationApi) queryForJob(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	j, err := api.jobSvc.GetByID(reqCtx, ctx.Param("id"))
	if err != nil {
		return err
	}
	if j.OrgID != ctxUsr.ID && !ctxUsr.IsAdmin() {
		return application.ErrNotJobOwner
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	apps, err := api.svc.Query(reqCtx, &application.QueryFilter{JobID: j.ID}, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}
	if apps == nil {
		apps = []application.Application{}
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *applicationApi) mine(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	apps, err := api.svc.Query(
		ctx.Request().Context(), &application.QueryFilter{VolunteerID: ctxUsr.ID}, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}
	if apps == nil {
		apps = []application.Application{}
	}
	return ctx.JSON(http.StatusOK, apps)
}

// retrieve is limited to the applicant, the job's org and admins.
func (api *applicationApi) retrieve(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	app, err := api.svc.GetByID(reqCtx, ctx.Param("id"))
	if err != nil {
		return err
	}
	if app.VolunteerID != ctxUsr.ID && !ctxUsr.IsAdmin() {
		j, err := api.jobSvc.GetByID(reqCtx, app.JobID)
		if err != nil {
			return err
		}
		if j.OrgID != ctxUsr.ID {
			return errHttpNotFound
		}
	}
	return ctx.JSON(http.StatusOK, app)
}

// patch routes a status change: volunteers withdraw, orgs decide.
func (api *applicationApi) patch(ctx echo.Context) error {
	var data application.Decision
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Decision")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	reqCtx := ctx.Request().Context()

	if data.Status == application.StatusWithdrawn {
		app, err := api.svc.Withdraw(reqCtx, ctxUsr, ctx.Param("id"))
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, app)
	}

	if err := data.Validate(api.validate); err != nil {
		return err
	}
	app, err := api.svc.Decide(reqCtx, ctxUsr, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}
