package tests

import (
	"os"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/trezcool/hisani/apps/api/echo"
	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/application"
	"github.com/trezcool/hisani/core/dashboard"
	"github.com/trezcool/hisani/core/job"
	"github.com/trezcool/hisani/core/profile"
	"github.com/trezcool/hisani/core/settings"
	"github.com/trezcool/hisani/core/user"
	appfs "github.com/trezcool/hisani/fs"
	emailsvc "github.com/trezcool/hisani/services/email"
	memcache "github.com/trezcool/hisani/storage/cache/mem"
	inmemdb "github.com/trezcool/hisani/storage/database/inmem"
	testutil "github.com/trezcool/hisani/tests"
)

var (
	db          *inmemdb.DB
	app         Server
	conf        *core.Config
	usrRepo     user.Repository
	jobSvc      *job.Service
	settingsSvc *settings.Service
)

func TestMain(m *testing.M) {
	db = inmemdb.NewDB()
	conf = testutil.NewTestConfig()
	logger := testutil.NewTestLogger()

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	job.InitValidators(validate)

	core.ParseEmailTemplates(appfs.FS, conf, logger)
	user.LoadCommonPasswords(appfs.FS, logger)

	// set up services on the in-memory repos
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrRepo = inmemdb.NewUserRepository(db)
	usrSvc := user.NewService(nil, usrRepo, mailSvc, conf)
	settingsSvc = settings.NewService(nil, inmemdb.NewSettingsRepository(db), memcache.New(), conf)
	jobSvc = job.NewService(nil, inmemdb.NewJobRepository(db), settingsSvc, conf)
	appSvc := application.NewService(
		nil, inmemdb.NewApplicationRepository(db), jobSvc, usrSvc, settingsSvc, mailSvc, conf)
	profileSvc := profile.NewService(nil, inmemdb.NewProfileRepository(db), conf)
	dashSvc := dashboard.NewService(nil, inmemdb.NewDashboardRepository(db), conf)

	// set up server
	app = NewServer(
		"", /* addr */
		&ServerDeps{
			Conf:         conf,
			Logger:       logger,
			UserSvc:      usrSvc,
			ProfileSvc:   profileSvc,
			JobSvc:       jobSvc,
			AppSvc:       appSvc,
			SettingsSvc:  settingsSvc,
			DashboardSvc: dashSvc,
			Drafts:       job.NewDraftStore(),
			Validate:     validate,
			Translator:   translator,
		},
	)

	os.Exit(m.Run())
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
