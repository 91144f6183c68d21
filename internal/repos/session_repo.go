package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"southhorizon/internal/domain"
)

type SessionRepo struct{ DB *sqlx.DB }

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{DB: db} }

type sessionRow struct {
	ID     string `db:"id"`
	Token  string `db:"token"`
	UserID string `db:"user_id"`
	Name   string `db:"name"`
	Email  string `db:"email"`
	Phone  string `db:"phone"`
}

// Bind attaches an upstream token and profile to a sid. Re-login on an
// existing sid replaces the previous binding.
func (r *SessionRepo) Bind(sid, token string, u domain.User) error {
	_, err := r.DB.Exec(`
		INSERT INTO sessions(id,token,user_id,name,email,phone,last_seen)
		VALUES(?,?,?,?,?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
		  token=excluded.token, user_id=excluded.user_id,
		  name=excluded.name, email=excluded.email, phone=excluded.phone,
		  last_seen=CURRENT_TIMESTAMP`,
		sid, token, u.ID, u.Name, u.Email, u.Phone)
	return err
}

// Unbind clears the token but keeps the sid row so anonymous state
// (cart badge) survives logout.
func (r *SessionRepo) Unbind(sid string) error {
	_, err := r.DB.Exec(`
		UPDATE sessions SET token='', user_id='', name='', email='', phone='',
		  last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}

// Get returns the session for a sid. An unknown sid yields an
// unauthenticated session rather than an error.
func (r *SessionRepo) Get(sid string) (domain.Session, error) {
	var row sessionRow
	err := r.DB.Get(&row, `SELECT id,token,user_id,name,email,phone FROM sessions WHERE id=?`, sid)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{SID: sid}, nil
	}
	if err != nil {
		return domain.Session{}, err
	}
	s := domain.Session{SID: row.ID, Token: row.Token, Authenticated: row.Token != ""}
	if s.Authenticated {
		s.User = &domain.User{ID: row.UserID, Name: row.Name, Email: row.Email, Phone: row.Phone}
	}
	return s, nil
}

// Touch records the sid so badge rows have a parent, without touching
// any auth state.
func (r *SessionRepo) Touch(sid string) error {
	_, err := r.DB.Exec(`
		INSERT INTO sessions(id,last_seen) VALUES(?,CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET last_seen=CURRENT_TIMESTAMP`, sid)
	return err
}
