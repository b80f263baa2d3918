package identity

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/goliatone/go-identity/repository"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var resetUserPasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
);`

// Users is the principal repository
type Users interface {
	repository.Repository[*User]

	GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*User, error)
	Register(ctx context.Context, user *User) (*User, error)

	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error

	ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	Deactivate(ctx context.Context, user *User) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository builds the Users repository
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository(db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

// GetByIdentifier resolves a user by id, email, or username, trying the
// most specific interpretation of the identifier first.
func (a *users) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*User, error) {
	options := resolveUserIdentifier(identifier)
	if len(options) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"identifier": identifier})
	}

	for _, opt := range options {
		lookup := append([]repository.SelectCriteria{
			repository.ByColumn(opt.column, opt.value),
		}, criteria...)

		record, err := a.Repository.GetDetail(ctx, lookup...)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				continue
			}
			return nil, err
		}

		return record, nil
	}

	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{"identifier": identifier})
}

// Register inserts a new user after filling in defaults. IDs derive from
// the email via hashid so repeated registrations of the same address
// collide on the primary key instead of racing on the unique index.
func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	prepareUserDefaults(user)
	return a.Repository.Insert(ctx, user)
}

func (a *users) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res, err := a.db.NewRaw(resetUserPasswordSQL, passwordHash, id.String()).Exec(ctx)
	if err != nil {
		return repository.WrapStoreError(err, "could not reset user password")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

func (a *users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	loggedInAt := time.Now()
	_, err := a.db.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"loggedin_at" = ?,
			"login_attempt_at" = NULL,
			"login_attempts" = 0
		WHERE
			("usr".id = ?)
			AND "usr"."deleted_at" IS NULL;
	`, loggedInAt, user.ID).Exec(ctx)

	return err
}

func (a *users) TrackAttemptedLogin(ctx context.Context, user *User) error {
	now := time.Now()
	_, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("login_attempts = ?", user.LoginAttempts+1).
		Set("login_attempt_at = ?", now).
		Where("?TableAlias.id = ?", user.ID).
		Exec(ctx)

	return err
}

// Deactivate soft-disables the account through lockout rather than
// deleting it: lockout is enabled and the lockout end pushed out 100 years.
func (a *users) Deactivate(ctx context.Context, user *User) (*User, error) {
	lockoutEnd := time.Now().AddDate(100, 0, 0)

	_, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("lockout_enabled = ?", true).
		Set("lockout_end = ?", lockoutEnd).
		Where("?TableAlias.id = ?", user.ID).
		Exec(ctx)

	if err != nil {
		return nil, repository.WrapStoreError(err, "could not deactivate user")
	}

	user.LockoutEnabled = true
	user.LockoutEnd = &lockoutEnd

	return user, nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleGuest
	}

	if record.ID == uuid.Nil {
		if id, err := hashid.NewUUID(record.Email); err == nil {
			record.ID = id
		} else {
			record.ID = uuid.New()
		}
	}
}

type identifierOption struct {
	column string
	value  string
}

func resolveUserIdentifier(identifier string) []identifierOption {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return nil
	}

	options := make([]identifierOption, 0, 3)

	if isUUID(trimmed) {
		options = append(options, identifierOption{
			column: "id",
			value:  trimmed,
		})
	}

	if isEmail(trimmed) {
		options = append(options, identifierOption{
			column: "email",
			value:  trimmed,
		})
	}

	options = append(options, identifierOption{
		column: "username",
		value:  trimmed,
	})

	return options
}

func isEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func isUUID(identifier string) bool {
	_, err := uuid.Parse(identifier)
	return err == nil
}
