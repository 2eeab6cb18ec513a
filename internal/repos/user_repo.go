package repos

import (
	"ferremas/internal/domain"

	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, rut, name, surname, username, email, password_hash,
  COALESCE(phone,'') AS phone, COALESCE(address,'') AS address,
  COALESCE(comuna,'') AS comuna, COALESCE(region,'') AS region, role, created_at`

// normalize applies the defensive role default so an unparseable role string
// in storage never fails a read.
func normalize(u *domain.User) *domain.User {
	u.Role = domain.RoleOrDefault(string(u.Role), domain.RoleUser)
	return u
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	if err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE id=?`, id); err != nil {
		return nil, err
	}
	return normalize(&u), nil
}

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	if err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email); err != nil {
		return nil, err
	}
	return normalize(&u), nil
}

func (r *UserRepo) ByUsername(username string) (*domain.User, error) {
	var u domain.User
	if err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(username)=LOWER(?)`, username); err != nil {
		return nil, err
	}
	return normalize(&u), nil
}

func (r *UserRepo) ByRut(rut string) (*domain.User, error) {
	var u domain.User
	if err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE rut=?`, rut); err != nil {
		return nil, err
	}
	return normalize(&u), nil
}

func (r *UserRepo) List() ([]domain.User, error) {
	out := []domain.User{}
	if err := r.DB.Select(&out, `SELECT `+userCols+` FROM users ORDER BY email`); err != nil {
		return nil, err
	}
	for i := range out {
		normalize(&out[i])
	}
	return out, nil
}

func (r *UserRepo) Insert(u domain.User) error {
	_, err := r.DB.Exec(`
	  INSERT INTO users(id,rut,name,surname,username,email,password_hash,phone,address,comuna,region,role)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?,?)
	`, u.ID, u.Rut, u.Name, u.Surname, u.Username, u.Email, u.Hash,
		u.Phone, u.Address, u.Comuna, u.Region, u.Role)
	return err
}

func (r *UserRepo) Update(u domain.User) error {
	_, err := r.DB.Exec(`
	  UPDATE users
	  SET rut=?, name=?, surname=?, username=?, email=?, phone=?, address=?, comuna=?, region=?, role=?
	  WHERE id=?
	`, u.Rut, u.Name, u.Surname, u.Username, u.Email,
		u.Phone, u.Address, u.Comuna, u.Region, u.Role, u.ID)
	return err
}

func (r *UserRepo) BindSession(sid, userID string) error {
	_, err := r.DB.Exec(`INSERT INTO sessions(id,user_id,last_seen)
                          VALUES(?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,last_seen=CURRENT_TIMESTAMP`, sid, userID)
	return err
}

func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `
      SELECT u.id,u.rut,u.name,u.surname,u.username,u.email,u.password_hash,
             COALESCE(u.phone,'') AS phone, COALESCE(u.address,'') AS address,
             COALESCE(u.comuna,'') AS comuna, COALESCE(u.region,'') AS region,
             u.role, u.created_at
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=?`, sid)
	if err != nil {
		return nil, err
	}
	return normalize(&u), nil
}

func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.DB.Exec(`UPDATE sessions SET user_id=NULL,last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}

// DeleteUserCascade removes a user and their sessions. Orders remain for
// audit, still keyed by the customer's rut.
func (r *UserRepo) DeleteUserCascade(userID string) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM sessions WHERE user_id=?`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM users WHERE id=?`, userID); err != nil {
		return err
	}

	return tx.Commit()
}
