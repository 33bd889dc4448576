package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/vehicle-parking-system/internal/model"
	"github.com/iliyamo/vehicle-parking-system/internal/utils"
)

const userColumns = "id,username,email,password_hash,role,phone,is_active,created_at,updated_at,last_login"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user with role "user" and returns its ID.  Username and
// email uniqueness are enforced by the database; duplicate violations are
// translated to field-specific sentinels so the handler can name the
// offending field.
func (r *UserRepo) Create(ctx context.Context, username, email, password string, phone *string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, role, phone) VALUES (?,?,?,?,?)",
		username, email, hash, model.RoleUser, phone)
	if err != nil {
		if isDuplicateKey(err, "uq_users_username") {
			return 0, ErrUsernameExists
		}
		if isDuplicateKey(err, "uq_users_email") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a user by id, mapping a missing row to ErrNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// FindByUsernameOrEmail resolves a login identifier.  Email matches are
// tried first on the case-folded value, then the identifier is treated as a
// username.  Mirrors the lookup order of the login flow.
func (r *UserRepo) FindByUsernameOrEmail(ctx context.Context, identifier string) (model.User, error) {
	identifier = strings.TrimSpace(identifier)
	u, err := r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", strings.ToLower(identifier)))
	if err == nil {
		return u, nil
	}
	if err != sql.ErrNoRows {
		return model.User{}, err
	}
	u, err = r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", identifier))
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// List returns every user ordered by creation time.  Admin-only.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListActive returns active accounts with the "user" role, the audience of
// the reminder and report jobs.
func (r *UserRepo) ListActive(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role=? AND is_active=1 ORDER BY id", model.RoleUser)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateProfile applies the user-editable fields.  Duplicate username or
// email collisions surface as the same sentinels used by Create.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, username, email string, phone *string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET username=?, email=?, phone=? WHERE id=?",
		strings.TrimSpace(username), strings.ToLower(strings.TrimSpace(email)), phone, id)
	if isDuplicateKey(err, "uq_users_username") {
		return ErrUsernameExists
	}
	if isDuplicateKey(err, "uq_users_email") {
		return ErrEmailExists
	}
	return err
}

// TouchLastLogin records a successful login.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login=NOW() WHERE id=?", id)
	return err
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	var phone sql.NullString
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&phone, &u.IsActive, &u.CreatedAt, &u.UpdatedAt, &lastLogin)
	if err != nil {
		return model.User{}, err
	}
	if phone.Valid {
		p := phone.String
		u.Phone = &p
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return u, nil
}

func scanUser(rows *sql.Rows) (model.User, error) {
	var u model.User
	var phone sql.NullString
	var lastLogin sql.NullTime
	err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&phone, &u.IsActive, &u.CreatedAt, &u.UpdatedAt, &lastLogin)
	if err != nil {
		return model.User{}, err
	}
	if phone.Valid {
		p := phone.String
		u.Phone = &p
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return u, nil
}
