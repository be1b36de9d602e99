package rbac

// Role names. Keep these stable; they are carried inside signed tokens.
const (
	RoleUsuario       = "USUARIO"
	RoleAdministrador = "ADMINISTRADOR"
)

func IsAdmin(role string) bool { return role == RoleAdministrador }

func IsValidRole(role string) bool {
	return role == RoleUsuario || role == RoleAdministrador
}
