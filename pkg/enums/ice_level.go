package enums

import "fmt"

// IceLevel is carried on cart lines for the barista; it never affects price or stock.
type IceLevel string

const (
	IceLevelLight  IceLevel = "light"
	IceLevelNormal IceLevel = "normal"
	IceLevelExtra  IceLevel = "extra"
)

var validIceLevels = []IceLevel{
	IceLevelLight,
	IceLevelNormal,
	IceLevelExtra,
}

func (i IceLevel) IsValid() bool {
	for _, candidate := range validIceLevels {
		if candidate == i {
			return true
		}
	}
	return false
}

func ParseIceLevel(value string) (IceLevel, error) {
	for _, candidate := range validIceLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ice level %q", value)
}
