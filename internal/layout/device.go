package layout

import "errors"

// DeviceClass is reported by the rendering client, the engine never guesses it
type DeviceClass string

const (
	Desktop DeviceClass = "desktop"
	Mobile  DeviceClass = "mobile"
	Tablet  DeviceClass = "tablet"
)

var errUnknownDeviceClass = errors.New("unknown device class")

func ParseDeviceClass(s string) (DeviceClass, error) {
	switch d := DeviceClass(s); d {
	case Desktop, Mobile, Tablet:
		return d, nil
	case "":
		return Desktop, nil
	default:
		return "", errUnknownDeviceClass
	}
}

func (d DeviceClass) IsMobileOrTab() bool {
	return d == Mobile || d == Tablet
}
