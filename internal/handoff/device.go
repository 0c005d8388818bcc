package handoff

import (
	"regexp"

	"github.com/angelmondragon/vitrine-backend/pkg/enums"
)

var (
	mobileUA  = regexp.MustCompile(`(?i)Android|iPhone|iPad|iPod|IEMobile|Opera Mini|Mobile`)
	androidUA = regexp.MustCompile(`(?i)Android`)
)

func DetectDevice(userAgent string) enums.DeviceClass {
	switch {
	case androidUA.MatchString(userAgent):
		return enums.DeviceClassAndroid
	case mobileUA.MatchString(userAgent):
		return enums.DeviceClassMobile
	default:
		return enums.DeviceClassDesktop
	}
}
