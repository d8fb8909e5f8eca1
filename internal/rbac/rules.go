package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"assessment:take",
		"attempt:create",
		"attempt:view-own",
		"progress:view",
		"progress:update",
		"completion:view",
		"survey:submit",
		"content:view",
		"user:change_password",
	},
	"instructor": {
		"assessment:create",
		"assessment:view",
		"assessment:edit",
		"assessment:delete",
		"attachment:manage",
		"attachment:view",
		"attempt:view-all",
		"content:view",
		"content:manage",
		"users:bulk_upsert",
		"users:list",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
