package domain

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// RoleOrDefault decodes s, falling back to the given default. Reads from
// storage or the wire use RoleUser so a bad role string never fails a read.
func RoleOrDefault(s string, def Role) Role {
	if r, ok := ParseRole(s); ok {
		return r
	}
	return def
}

type User struct {
	ID        string `db:"id" json:"id"`
	Rut       string `db:"rut" json:"rut"`
	Name      string `db:"name" json:"name"`
	Surname   string `db:"surname" json:"surname"`
	Username  string `db:"username" json:"username"`
	Email     string `db:"email" json:"email"`
	Hash      string `db:"password_hash" json:"-"`
	Phone     string `db:"phone" json:"phone,omitempty"`
	Address   string `db:"address" json:"address,omitempty"`
	Comuna    string `db:"comuna" json:"comuna,omitempty"`
	Region    string `db:"region" json:"region,omitempty"`
	Role      Role   `db:"role" json:"role"`
	CreatedAt string `db:"created_at" json:"createdAt,omitempty"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
