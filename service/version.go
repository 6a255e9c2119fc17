package service

import (
	"fmt"
	"strconv"
	"strings"

	"docudrive-backend/models"
)

// InitialVersion is the version string of a file's first revision.
const InitialVersion = "1.0"

// NextVersion computes the version string for a new revision. A parseable
// "major.minor" bumps the minor component; anything else gets a ".1"
// suffix so an odd version string degrades deterministically instead of
// failing the upload.
func NextVersion(latest *models.FileRevision) string {
	if latest == nil {
		return InitialVersion
	}

	parts := strings.Split(latest.Version, ".")
	if len(parts) == 2 {
		major, majErr := strconv.Atoi(parts[0])
		minor, minErr := strconv.Atoi(parts[1])
		if majErr == nil && minErr == nil {
			return fmt.Sprintf("%d.%d", major, minor+1)
		}
	}
	return latest.Version + ".1"
}
