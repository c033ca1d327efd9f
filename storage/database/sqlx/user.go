// Package sqlxrepos implements the repositories on postgres with sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-analytics/core/user"
)

type userRow struct {
	ID           int         `db:"id"`
	Name         string      `db:"name"`
	Username     null.String `db:"username"`
	Email        null.String `db:"email"`
	IsActive     bool        `db:"is_active"`
	Roles        string      `db:"roles"`
	AccountID    null.Int    `db:"account_id"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

func newUserRow(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Username:     null.NewString(usr.Username, usr.Username != ""),
		Email:        null.NewString(usr.Email, usr.Email != ""),
		IsActive:     usr.IsActive,
		Roles:        strings.Join(usr.Roles, ","),
		AccountID:    null.NewInt(usr.AccountID, usr.AccountID != 0),
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
		LastLogin:    null.NewTime(usr.LastLogin, !usr.LastLogin.IsZero()),
	}
}

func (row userRow) user() user.User {
	usr := user.User{
		ID:           row.ID,
		Name:         row.Name,
		Username:     row.Username.String,
		Email:        row.Email.String,
		IsActive:     row.IsActive,
		AccountID:    row.AccountID.Int,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
	if row.Roles != "" {
		usr.Roles = strings.Split(row.Roles, ",")
	}
	if row.LastLogin.Valid {
		usr.LastLogin = row.LastLogin.Time.UTC()
	}
	return usr
}

const userColumns = `id, name, username, email, is_active, roles, account_id, password_hash, created_at, updated_at, last_login`

type userRepository struct {
	db sqlx.ExtContext
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db sqlx.ExtContext) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	query := `SELECT username, email FROM "user" WHERE (username = ? OR email = ?)`
	args := []interface{}{null.NewString(username, username != ""), null.NewString(email, email != "")}
	if len(excludedUsers) > 0 {
		ids := make([]int, len(excludedUsers))
		for i, usr := range excludedUsers {
			ids[i] = usr.ID
		}
		query += ` AND id NOT IN (?)`
		args = append(args, ids)
	}
	query, args, err := sqlx.In(query+` LIMIT 1`, args...)
	if err != nil {
		return errors.Wrap(err, "building uniqueness query")
	}

	var found struct {
		Username null.String `db:"username"`
		Email    null.String `db:"email"`
	}
	err = sqlx.GetContext(ctx, repo.db, &found, repo.db.Rebind(query), args...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return errors.Wrap(err, "checking username uniqueness")
	case username != "" && found.Username.String == username:
		return user.ErrUsernameExists
	default:
		return user.ErrEmailExists
	}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := newUserRow(usr)
	query := `INSERT INTO "user" (name, username, email, is_active, roles, account_id, password_hash, created_at, updated_at, last_login)
		VALUES (:name, :username, :email, :is_active, :roles, :account_id, :password_hash, :created_at, :updated_at, :last_login)
		RETURNING id`
	query, args, err := sqlx.Named(query, row)
	if err != nil {
		return user.User{}, errors.Wrap(err, "building insert")
	}
	if err = sqlx.GetContext(ctx, repo.db, &usr.ID, repo.db.Rebind(query), args...); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var (
		row userRow
		err error
	)
	switch {
	case filter.ID != 0:
		err = sqlx.GetContext(ctx, repo.db, &row, `SELECT `+userColumns+` FROM "user" WHERE id = $1`, filter.ID)
	case filter.UsernameOrEmail != "":
		err = sqlx.GetContext(ctx, repo.db, &row,
			`SELECT `+userColumns+` FROM "user" WHERE username = $1 OR email = $1 ORDER BY id LIMIT 1`,
			filter.UsernameOrEmail)
	default:
		return user.User{}, user.ErrNotFound
	}
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return row.user(), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := newUserRow(usr)
	// only save set fields
	query := `UPDATE "user" SET name = :name, username = :username, email = :email, is_active = :is_active,
		account_id = :account_id, updated_at = :updated_at, last_login = :last_login`
	if usr.Roles != nil {
		query += `, roles = :roles`
	}
	if usr.PasswordHash != nil {
		query += `, password_hash = :password_hash`
	}
	query += ` WHERE id = :id RETURNING ` + userColumns

	query, args, err := sqlx.Named(query, row)
	if err != nil {
		return user.User{}, errors.Wrap(err, "building update")
	}
	var updated userRow
	err = sqlx.GetContext(ctx, repo.db, &updated, repo.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return updated.user(), nil
}
