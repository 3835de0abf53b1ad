package shared

// Permission codes declared by protected handlers.
const (
	PermListProduct = "list_product"
	PermUpdatePost  = "update_post"
	PermDeletePost  = "delete_post"

	PermViewUserPermissions   = "view_user_permissions"
	PermUpdateUserPermissions = "update_user_permissions"
)

// Role names the auth flows depend on.
const (
	RoleGuest = "guest"
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// CoreScopes lists every permission code the service declares.
func CoreScopes() []string {
	return []string{
		PermListProduct,
		PermUpdatePost,
		PermDeletePost,
		PermViewUserPermissions,
		PermUpdateUserPermissions,
	}
}
