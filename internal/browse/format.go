package browse

import (
	"fmt"
	"math"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// HumanSize renders a byte count with one decimal place in the largest
// fitting unit (1024-based). Zero is "0 B"; a negative value means the size
// is unknown and renders as "-".
func HumanSize(bytes int64) string {
	if bytes < 0 {
		return "-"
	}
	if bytes == 0 {
		return "0 B"
	}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/math.Pow(1024, float64(i)), sizeUnits[i])
}
