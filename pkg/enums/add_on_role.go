package enums

import "fmt"

// AddOnRole tags catalog add-ons that carry business meaning beyond price.
type AddOnRole string

const (
	AddOnRoleSweetnessBase AddOnRole = "sweetness_base"
)

var validAddOnRoles = []AddOnRole{
	AddOnRoleSweetnessBase,
}

func (r AddOnRole) IsValid() bool {
	for _, candidate := range validAddOnRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

func ParseAddOnRole(value string) (AddOnRole, error) {
	for _, candidate := range validAddOnRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid add-on role %q", value)
}
