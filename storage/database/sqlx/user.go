package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/hisani/core"
	"github.com/trezcool/hisani/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

type userRow struct {
	ID            string         `db:"id"`
	Name          sql.NullString `db:"name"`
	Username      sql.NullString `db:"username"`
	Email         sql.NullString `db:"email"`
	IsActive      bool           `db:"is_active"`
	Roles         pq.StringArray `db:"roles"`
	Plan          string         `db:"plan"`
	PlanExpiresAt sql.NullTime   `db:"plan_expires_at"`
	PasswordHash  []byte         `db:"password_hash"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
	LastLogin     sql.NullTime   `db:"last_login"`
}

func (r userRow) toUser() user.User {
	usr := user.User{
		ID:           r.ID,
		Name:         r.Name.String,
		Username:     r.Username.String,
		Email:        r.Email.String,
		Roles:        []string(r.Roles),
		Plan:         r.Plan,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	usr.SetActive(r.IsActive)
	if r.PlanExpiresAt.Valid {
		usr.PlanExpiresAt = r.PlanExpiresAt.Time
	}
	if r.LastLogin.Valid {
		usr.LastLogin = r.LastLogin.Time
	}
	return usr
}

func toUserRow(usr user.User) userRow {
	return userRow{
		ID:            usr.ID,
		Name:          sql.NullString{String: usr.Name, Valid: usr.Name != ""},
		Username:      sql.NullString{String: usr.Username, Valid: usr.Username != ""},
		Email:         sql.NullString{String: usr.Email, Valid: usr.Email != ""},
		IsActive:      usr.Active(),
		Roles:         pq.StringArray(usr.Roles),
		Plan:          usr.Plan,
		PlanExpiresAt: sql.NullTime{Time: usr.PlanExpiresAt.UTC(), Valid: !usr.PlanExpiresAt.IsZero()},
		PasswordHash:  usr.PasswordHash,
		CreatedAt:     usr.CreatedAt.UTC(),
		UpdatedAt:     usr.UpdatedAt.UTC(),
		LastLogin:     sql.NullTime{Time: usr.LastLogin.UTC(), Valid: !usr.LastLogin.IsZero()},
	}
}

func toUsers(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toUser())
	}
	return users
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func trapUserNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

const userCols = `id, name, username, email, is_active, roles, plan, plan_expires_at,
password_hash, created_at, updated_at, last_login`

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	e := ext(repo.db, exec)
	q := `SELECT EXISTS (SELECT 1 FROM "user" WHERE (username = ? OR email = ?)`
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		q += ` AND NOT (id = ANY(?))`
		args = append(args, pq.Array(ids))
	}
	q += `)`

	var exists bool
	if err := sqlx.GetContext(ctx, e, &exists, e.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if exists {
		// figure out which field clashed
		var unameTaken bool
		q = e.Rebind(`SELECT EXISTS (SELECT 1 FROM "user" WHERE username = ?)`)
		if err := sqlx.GetContext(ctx, e, &unameTaken, q, username); err != nil {
			return errors.Wrap(err, "checking user uniqueness")
		}
		if unameTaken {
			return user.ErrUsernameExists
		}
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()
	e := ext(repo.db, exec)
	q := e.Rebind(`INSERT INTO "user" (` + userCols + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	r := toUserRow(usr)
	if _, err := e.ExecContext(ctx, q,
		r.ID, r.Name, r.Username, r.Email, r.IsActive, r.Roles, r.Plan, r.PlanExpiresAt,
		r.PasswordHash, r.CreatedAt, r.UpdatedAt, r.LastLogin,
	); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	e := ext(repo.db, exec)
	q := `SELECT ` + userCols + ` FROM "user" WHERE 1=1`
	var args []interface{}

	if filter != nil {
		// users with Name, Username or Email matching the search keyword
		if filter.Search != "" {
			q += ` AND (name ILIKE ? OR username ILIKE ? OR email ILIKE ?)`
			val := "%" + filter.Search + "%"
			args = append(args, val, val, val)
		}
		// users with any role that starts with any of the provided roles
		if len(filter.Roles) > 0 {
			q += ` AND id IN (SELECT id FROM "user", UNNEST(roles) user_role WHERE `
			for i, role := range filter.Roles {
				if i > 0 {
					q += ` OR `
				}
				q += `user_role ILIKE ?`
				args = append(args, role+"%")
			}
			q += `)`
		}
		if filter.Plan != "" {
			q += ` AND plan = ?`
			args = append(args, filter.Plan)
		}
		if filter.IsActive != nil {
			q += ` AND is_active = ?`
			args = append(args, *filter.IsActive)
		}
		if !filter.CreatedFrom.IsZero() {
			q += ` AND created_at >= ?`
			args = append(args, filter.CreatedFrom.UTC())
		}
		if !filter.CreatedTo.IsZero() {
			q += ` AND created_at <= ?`
			args = append(args, filter.CreatedTo.UTC())
		}
	}
	q += orderBy(ordering)

	var rows []userRow
	if err := sqlx.SelectContext(ctx, e, &rows, e.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return toUsers(rows), nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	e := ext(repo.db, exec)
	q := `SELECT ` + userCols + ` FROM "user" WHERE `
	var args []interface{}

	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		q += `id = ?`
		args = append(args, filter.ID)
	case filter.Username != "":
		q += `username = ?`
		args = append(args, filter.Username)
	case filter.Email != "":
		q += `email = ?`
		args = append(args, filter.Email)
	case filter.UsernameOrEmail != nil:
		var email string
		uname := filter.UsernameOrEmail[0]
		if len(filter.UsernameOrEmail) == 2 {
			email = filter.UsernameOrEmail[1]
		}
		if email == "" {
			email = uname
		} else if uname == "" {
			uname = email
		}
		q += `(username = ? OR email = ?)`
		args = append(args, uname, email)
	default:
		return user.User{}, user.ErrNotFound
	}

	var r userRow
	if err := sqlx.GetContext(ctx, e, &r, e.Rebind(q), args...); err != nil {
		return user.User{}, trapUserNoRowsErr(err, "finding user")
	}
	return r.toUser(), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	e := ext(repo.db, exec)
	q := e.Rebind(`UPDATE "user"
SET name = ?, username = ?, email = ?, is_active = ?, roles = ?, plan = ?,
    plan_expires_at = ?, password_hash = ?, updated_at = ?, last_login = ?
WHERE id = ?`)
	r := toUserRow(usr)
	res, err := e.ExecContext(ctx, q,
		r.Name, r.Username, r.Email, r.IsActive, r.Roles, r.Plan,
		r.PlanExpiresAt, r.PasswordHash, r.UpdatedAt, r.LastLogin, r.ID,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr, exec...)
	}
	return repo.UpdateUser(ctx, usr, exec...)
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	e := ext(repo.db, exec)
	q := e.Rebind(`DELETE FROM "user" WHERE id = ANY(?)`)
	res, err := e.ExecContext(ctx, q, pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}
