// Package upload streams a reader into slice objects and composes them into
// one remote object.
package upload

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tanq16/slicer/internal/utils"
)

// SliceName is the object name of upload slice seq for objectPath.
func SliceName(objectPath string, seq int) string {
	return fmt.Sprintf("%s%s%06d", objectPath, utils.SliceSuffix, seq)
}

// ParseSliceSeq recovers the sequence number from a slice object name.
func ParseSliceSeq(name string) (int, error) {
	m := utils.SliceSeqRegex.FindStringSubmatch(name)
	if m == nil {
		return 0, fmt.Errorf("%q is not a slice name", name)
	}
	return strconv.Atoi(m[1])
}

// SlicePrefix is the listing prefix shared by every slice of objectPath.
func SlicePrefix(objectPath string) string {
	return objectPath + utils.SliceSuffix
}

// leftoverSuffix matches what follows SlicePrefix on slice objects and on the
// intermediates of a multi-level compose.
var leftoverSuffix = regexp.MustCompile(`^(\d+|-compose-\d+-\d+)$`)

// IsSliceObject reports whether name is an upload slice or compose
// intermediate belonging to objectPath.
func IsSliceObject(objectPath, name string) bool {
	rest, ok := strings.CutPrefix(name, SlicePrefix(objectPath))
	return ok && leftoverSuffix.MatchString(rest)
}
