package conversation

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

func (p Participant) IsAdmin() bool {
	return p.Role == RoleAdmin
}
