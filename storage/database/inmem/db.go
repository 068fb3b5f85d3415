// Package inmemdb provides in-memory repository implementations for tests.
package inmemdb

import (
	"sync"

	"github.com/trezcool/hisani/core/application"
	"github.com/trezcool/hisani/core/job"
	"github.com/trezcool/hisani/core/profile"
	"github.com/trezcool/hisani/core/settings"
	"github.com/trezcool/hisani/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users             map[string]*user.User
	jobs              map[string]*job.Job
	applications      map[string]*application.Application
	volunteerProfiles map[string]*profile.VolunteerProfile
	orgProfiles       map[string]*profile.OrgProfile
	settings          *settings.PlatformSettings
}

func NewDB() *DB {
	return &DB{
		users:             make(map[string]*user.User),
		jobs:              make(map[string]*job.Job),
		applications:      make(map[string]*application.Application),
		volunteerProfiles: make(map[string]*profile.VolunteerProfile),
		orgProfiles:       make(map[string]*profile.OrgProfile),
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.users = make(map[string]*user.User)
	db.jobs = make(map[string]*job.Job)
	db.applications = make(map[string]*application.Application)
	db.volunteerProfiles = make(map[string]*profile.VolunteerProfile)
	db.orgProfiles = make(map[string]*profile.OrgProfile)
	db.settings = nil
}
