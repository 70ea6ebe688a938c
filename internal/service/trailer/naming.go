package trailer

import (
	"fmt"
	"strings"

	"github.com/oshokin/kinopoisk-trailer-grabber/internal/utils"
)

// notExistsSuffix is the fixed suffix of placeholder marker files recorded when
// upstream confirms a video is permanently gone. Later runs see the marker and
// never retry the trailer.
const notExistsSuffix = "_not_exists"

// GetOutputName builds the deterministic output file name for a trailer:
// "<film name>[ (year)][ (trailer name)] [<source id>].<ext>".
// The year is included when known, the trailer name only when it differs from
// the film name. The result is sanitized for the host filesystem.
func GetOutputName(filmName, trailerName string, year int, sourceID, extension string) string {
	var builder strings.Builder

	builder.WriteString(filmName)

	if year > 0 {
		fmt.Fprintf(&builder, " (%d)", year)
	}

	if trailerName != "" && !strings.EqualFold(trailerName, filmName) {
		fmt.Fprintf(&builder, " (%s)", trailerName)
	}

	fmt.Fprintf(&builder, " [%s]", sourceID)

	return utils.SetFileExtension(utils.SanitizeFilename(builder.String()), extension, false)
}

// GetMarkerName builds the zero-byte placeholder file name for a permanently
// unavailable source: "[<source id>]_not_exists".
func GetMarkerName(sourceID string) string {
	return utils.SanitizeFilename("[" + sourceID + "]" + notExistsSuffix)
}
