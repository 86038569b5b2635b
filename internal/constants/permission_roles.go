package constants

// Platform roles.
const (
	Renter   = "renter"
	Owner    = "owner"
	Operator = "operator"
)

// PermissionRoles maps each permission to roles allowed to perform it. The
// engine additionally checks the caller's relationship to the specific
// vehicle or reservation; this map only gates the route.
var PermissionRoles = map[string][]string{
	RegisterVehicle: {Owner, Operator},
	UnlistVehicle:   {Owner, Operator},
	ReserveVehicle:  {Renter, Operator},
	RunSettlement:   {Owner, Renter, Operator},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
