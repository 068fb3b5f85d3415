package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/job"
	"github.com/trezcool/hisani/core/user"
)

// draftApi exposes the job posting wizard. Drafts only live in memory and
// belong exclusively to the user who started them; a successful submit
// discards the draft, a failed one leaves it untouched for a retry.
type draftApi struct {
	svc      job.ServiceInterface
	usrSvc   user.ServiceInterface
	drafts   *job.DraftStore
	validate *validator.Validate
}

func registerDraftAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := draftApi{
		svc:      deps.JobSvc,
		usrSvc:   deps.UserSvc,
		drafts:   deps.Drafts,
		validate: deps.Validate,
	}

	dg := g.Group("/jobs/drafts", jwt, ngoMiddleware())
	dg.POST("", api.start)
	dg.GET("/:id", api.retrieve)
	dg.PUT("/:id", api.patch)
	dg.DELETE("/:id", api.abandon)
	dg.POST("/:id/next", api.next)
	dg.POST("/:id/previous", api.previous)
	dg.POST("/:id/preview", api.preview)
	dg.POST("/:id/submit", api.submit)
	dg.POST("/:id/fields/:field/items", api.addListItem)
	dg.DELETE("/:id/fields/:field/items/:index", api.removeListItem)
}

type (
	StartDraftRequest struct {
		Mode  string `json:"mode" validate:"required,oneof=create edit"`
		JobID string `json:"job_id" validate:"required_if=Mode edit"`
	}

	AddListItemRequest struct {
		Value string `json:"value" validate:"required"`
	}

	DraftResponse struct {
		ID        string     `json:"id"`
		Mode      string     `json:"mode"`
		JobID     string     `json:"job_id,omitempty"`
		Step      int        `json:"step"`
		Steps     int        `json:"steps"`
		Preview   bool       `json:"preview"`
		Data      job.NewJob `json:"data"`
		CreatedAt time.Time  `json:"created_at"`
	}
)

func (r *StartDraftRequest) Validate(validate *validator.Validate) error {
	r.Mode = core.CleanString(r.Mode, true /* lower */)
	r.JobID = core.CleanString(r.JobID)
	return validate.Struct(r)
}

func draftResponse(w *job.Wizard) DraftResponse {
	return DraftResponse{
		ID:        w.ID,
		Mode:      w.Mode,
		JobID:     w.JobID,
		Step:      w.CurrentStep(),
		Steps:     w.Steps(),
		Preview:   w.Preview(),
		Data:      w.Data(),
		CreatedAt: w.CreatedAt,
	}
}

// Handlers

func (api *draftApi) start(ctx echo.Context) error {
	var data StartDraftRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StartDraftRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	w := api.drafts.Start(ctxUsr.ID, data.Mode, data.JobID)
	if data.Mode == job.WizardModeEdit {
		// the edit wizard starts pre-filled from the live job
		j, err := api.svc.GetByID(ctx.Request().Context(), data.JobID)
		if err != nil {
			api.drafts.Delete(w.ID, ctxUsr.ID)
			return err
		}
		if j.OrgID != ctxUsr.ID && !ctxUsr.IsAdmin() {
			api.drafts.Delete(w.ID, ctxUsr.ID)
			return job.ErrNotOwner
		}
		w.SetData(draftDataFromJob(j))
	}
	return ctx.JSON(http.StatusCreated, draftResponse(w))
}

func (api *draftApi) getDraft(ctx echo.Context) (*job.Wizard, error) {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return nil, errors.Wrap(err, "getting context user")
	}
	return api.drafts.Get(ctx.Param("id"), ctxUsr.ID)
}

func (api *draftApi) retrieve(ctx echo.Context) error {
	w, err := api.getDraft(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, draftResponse(w))
}

// patch replaces the draft's fields wholesale; navigation state is untouched.
func (api *draftApi) patch(ctx echo.Context) error {
	w, err := api.getDraft(ctx)
	if err != nil {
		return err
	}

	var data job.NewJob
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewJob")
	}
	w.SetData(data)
	return ctx.JSON(http.StatusOK, draftResponse(w))
}

func (api *draftApi) next(ctx echo.Context) error {
	w, err := api.getDraft(ctx)
	if err != nil {
		return err
	}
	w.Next()
	return ctx.JSON(http.StatusOK, draftResponse(w))
}

func (api *draftApi) previous(ctx echo.Context) error {
	w, err := api.getDraft(ctx)
	if err != nil {
		return err
	}
	w.Previous()
	return ctx.JSON(http.StatusOK, draftResponse(w))
}

func (api *draftApi) preview(ctx echo.Context) error {
	w, err := api.getDraft(ctx)
	if err != nil {
		return err
	}
	w.TogglePreview()
	return ctx.JSON(http.StatusOK, draftResponse(w))
}

func (api *draftApi) addListItem(ctx echo.Context) error {
	w, err := api.getDraft(ctx)
	if err != nil {
		return err
	}

	var data AddListItemRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AddListItemRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	if err := w.AddListItem(ctx.Param("field"), data.Value); err != nil {
		return core.NewValidationError(err)
	}
	return ctx.JSON(http.StatusOK, draftResponse(w))
}

func (api *draftApi) removeListItem(ctx echo.Context) error {
	w, err := api.getDraft(ctx)
	if err != nil {
		return err
	}

	i, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		return core.NewValidationError(errors.New("invalid list index"))
	}
	if err := w.RemoveListItem(ctx.Param("field"), i); err != nil {
		return core.NewValidationError(err)
	}
	return ctx.JSON(http.StatusOK, draftResponse(w))
}

// submit runs the wizard's terminal action: create or update the job.
// The draft is discarded on success only; quota and validation failures leave
// it intact so the client can retry.
func (api *draftApi) submit(ctx echo.Context) error {
	w, err := api.getDraft(ctx)
	if err != nil {
		return err
	}
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	reqCtx := ctx.Request().Context()

	var result job.Job
	err = w.Submit(func(data job.NewJob) error {
		if err := data.Validate(api.validate); err != nil {
			return err
		}
		var err error
		if w.Mode == job.WizardModeEdit {
			result, err = api.svc.Update(reqCtx, ctxUsr, w.JobID, updateFromDraft(data))
		} else {
			result, err = api.svc.Create(reqCtx, ctxUsr, data)
		}
		return err
	})
	if err != nil {
		if errors.Cause(err) == job.ErrNotSubmittable {
			return core.NewValidationError(err)
		}
		return err
	}

	api.drafts.Delete(w.ID, ctxUsr.ID)
	if w.Mode == job.WizardModeEdit {
		return ctx.JSON(http.StatusOK, result)
	}
	return ctx.JSON(http.StatusCreated, result)
}

// draftDataFromJob seeds an edit draft from the persisted job.
func draftDataFromJob(j job.Job) job.NewJob {
	return job.NewJob{
		Title:                 j.Title,
		Category:              j.Category,
		LocationType:          j.LocationType,
		Location:              j.Location,
		Description:           j.Description,
		Responsibilities:      j.Responsibilities,
		Requirements:          j.Requirements,
		Benefits:              j.Benefits,
		Skills:                j.Skills,
		Duration:              j.Duration,
		Commitment:            j.Commitment,
		ApplicationDeadline:   j.ApplicationDeadline,
		NumberOfPositions:     j.NumberOfPositions,
		StartDate:             j.StartDate,
		Compensation:          j.Compensation,
		ExperienceLevel:       j.ExperienceLevel,
		EducationRequired:     j.EducationRequired,
		LanguagesRequired:     j.LanguagesRequired,
		CertificationRequired: j.CertificationRequired,
	}
}

// updateFromDraft shapes a full-draft submit as a job update.
func updateFromDraft(data job.NewJob) job.UpdateJob {
	comp := data.Compensation
	return job.UpdateJob{
		Title:                 data.Title,
		Category:              data.Category,
		LocationType:          data.LocationType,
		Location:              data.Location,
		Description:           data.Description,
		Responsibilities:      data.Responsibilities,
		Requirements:          data.Requirements,
		Benefits:              data.Benefits,
		Skills:                data.Skills,
		Duration:              data.Duration,
		Commitment:            data.Commitment,
		ApplicationDeadline:   data.ApplicationDeadline,
		NumberOfPositions:     data.NumberOfPositions,
		StartDate:             data.StartDate,
		Compensation:          &comp,
		ExperienceLevel:       data.ExperienceLevel,
		EducationRequired:     data.EducationRequired,
		LanguagesRequired:     data.LanguagesRequired,
		CertificationRequired: data.CertificationRequired,
	}
}
