package models

import "github.com/golang-jwt/jwt/v5"

// Application permissions
const (
	// Admin permissions
	PermissionReadAdmin  = "admin:read"
	PermissionWriteAdmin = "admin:write"

	// Financial record permissions
	PermissionTransactionRead  = "transaction:read"
	PermissionTransactionWrite = "transaction:write"
	PermissionInvoiceRead      = "invoice:read"
	PermissionInvoiceWrite     = "invoice:write"
	PermissionPaymentWrite     = "payment:write"

	// Tenant permissions
	PermissionBusinessRead  = "business:read"
	PermissionBusinessWrite = "business:write"

	PermissionChangePassword = "user:change-password"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint     `json:"user_id"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	TokenVersion int      `json:"token_version"`
}

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// GetDefaultPermissions returns default permissions based on platform role.
// Business-level visibility is decided per request by the access service,
// not by token permissions.
func GetDefaultPermissions(role string) []string {
	switch role {
	case RoleSuperAdmin:
		return []string{
			PermissionTransactionRead,
			PermissionTransactionWrite,
			PermissionInvoiceRead,
			PermissionInvoiceWrite,
			PermissionPaymentWrite,
			PermissionBusinessRead,
			PermissionBusinessWrite,
			PermissionChangePassword,
			PermissionReadAdmin,
			PermissionWriteAdmin,
		}
	case RoleUser:
		return []string{
			PermissionTransactionRead,
			PermissionTransactionWrite,
			PermissionInvoiceRead,
			PermissionInvoiceWrite,
			PermissionPaymentWrite,
			PermissionBusinessRead,
			PermissionChangePassword,
		}
	default:
		return []string{}
	}
}
