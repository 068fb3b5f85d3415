package user

import (
	"net/mail"

	"github.com/trezcool/hisani/core"
)

type serviceMock struct {
	*Service
}

// NewServiceMock returns a Service with deterministic token generation knobs for tests.
func NewServiceMock(db core.DB, repo Repository, mailSvc core.EmailService, conf *core.Config) *serviceMock {
	return &serviceMock{Service: NewService(db, repo, mailSvc, conf)}
}

// MakeToken exposes token generation to other test packages.
func (svc *serviceMock) MakeToken(usr User) string { return makeToken(usr) }

// LastResetAddress is a helper shaping a user into its email recipient.
func LastResetAddress(usr User) mail.Address {
	return mail.Address{Name: usr.Name, Address: usr.Email}
}
