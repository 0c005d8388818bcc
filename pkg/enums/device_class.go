package enums

import "fmt"

// DeviceClass selects which WhatsApp link is tried first.
type DeviceClass string

const (
	DeviceClassAndroid DeviceClass = "android"
	DeviceClassMobile  DeviceClass = "mobile"
	DeviceClassDesktop DeviceClass = "desktop"
)

var validDeviceClasses = []DeviceClass{
	DeviceClassAndroid,
	DeviceClassMobile,
	DeviceClassDesktop,
}

// String implements fmt.Stringer.
func (c DeviceClass) String() string {
	return string(c)
}

// IsValid reports whether the value is a known DeviceClass.
func (c DeviceClass) IsValid() bool {
	for _, candidate := range validDeviceClasses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseDeviceClass converts raw input into a DeviceClass.
func ParseDeviceClass(value string) (DeviceClass, error) {
	for _, candidate := range validDeviceClasses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid device class %q", value)
}
