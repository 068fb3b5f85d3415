package testutil

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/user"
	appfs "github.com/trezcool/hisani/fs"
)

// NewTestConfig returns a config suitable for tests; nothing external is touched.
func NewTestConfig() *core.Config {
	conf := &core.Config{
		Debug:            false,
		TestMode:         true,
		Env:              "TEST",
		AppName:          "Hisani",
		SecretKey:        "secret",
		FrontendBaseURL:  "http://localhost:3000",
		SettingsCacheTTL: time.Minute,

		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
	}
	conf.DefaultFromEmail.Name = conf.AppName
	conf.DefaultFromEmail.Address = "noreply@test.test"
	conf.Server.JWTExpirationDelta = time.Hour
	conf.Server.JWTRefreshExpirationDelta = time.Hour
	return conf
}

type testLogger struct {
	std *log.Logger
}

var _ core.Logger = (*testLogger)(nil)

func NewTestLogger() core.Logger {
	return &testLogger{std: log.New(os.Stderr, "TEST : ", log.LstdFlags)}
}

func (l testLogger) print(msg string, args []interface{}) {
	l.std.Println(msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l testLogger) Debug(msg string, args ...interface{}) { l.print(msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.print(msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.print(msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.print(msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.print(msg, args); l.std.Fatal(msg) }

// ParseEmailTemplates loads the embedded email templates for tests.
func ParseEmailTemplates(conf *core.Config) {
	core.ParseEmailTemplates(appfs.FS, conf, NewTestLogger())
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		Plan:      user.PlanFree,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}
