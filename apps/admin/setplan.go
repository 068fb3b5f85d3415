package main

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/user"
)

func (cli *commandLine) setPlan(uname, plan, expires string) error {
	if plan != user.PlanFree && plan != user.PlanPlus {
		return fmt.Errorf("unknown plan %q", plan)
	}

	var expiresAt time.Time
	if expires != "" {
		var err error
		if expiresAt, err = time.Parse("2006-01-02", expires); err != nil {
			return fmt.Errorf("expires must be of form YYYY-MM-DD (got %q)", expires)
		}
	}

	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: []string{uname}})
	if err != nil {
		return err
	}
	usr.Plan = plan
	usr.PlanExpiresAt = expiresAt
	if _, err := cli.usrRepo.UpdateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
