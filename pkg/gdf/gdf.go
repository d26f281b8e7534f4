// Package gdf reads Generic Data Files.
//
// A Generic Data File is a self-describing, big-endian container for
// instrument results. It starts with a fixed file header and a recursive
// GenericDataHeader carrying identity, typed parameters and the provenance
// chain of parent headers. DataGroups follow as a singly linked list of file
// offsets; each group holds DataSets, which are row-oriented typed tables.
//
// Headers are always parsed from a stream. DataSet payloads are read through
// a read-only memory map when available and through the stream otherwise.
package gdf

// File format constants must never change.
const (
	// Magic is the first byte of every Generic Data File.
	Magic uint8 = 59

	// Version is the only supported file format version.
	Version uint8 = 1

	// MaxParentDepth bounds the nesting of parent GenericDataHeaders.
	MaxParentDepth = 256
)

// Minimum encoded sizes used to reject count fields that cannot fit in the
// bytes left in the file.
const (
	fileHeaderSize       = 1 + 1 + 4 + 4
	minGenericHeaderSize = 4 + 4 + 4 + 4 + 4 + 4
	minParameterSize     = 4 + 4 + 4
	minColumnSize        = 4 + 1 + 4
	minDataSetHeaderSize = 4 + 4 + 4 + 4 + 4
	minDataGroupSize     = 4 + 4 + 4 + 4
)

// ReadDepth selects how much of the directory ReadHeader parses.
type ReadDepth int

const (
	// NoDataGroupHeader parses the file header and root GenericDataHeader only.
	NoDataGroupHeader ReadDepth = iota
	// MinDataGroupHeader also walks every group, recording DataSet names and
	// offsets without their column descriptors.
	MinDataGroupHeader
	// AllHeaders parses every group and DataSet header in full.
	AllHeaders
)

func (d ReadDepth) String() string {
	switch d {
	case NoDataGroupHeader:
		return "none"
	case MinDataGroupHeader:
		return "min"
	case AllHeaders:
		return "all"
	default:
		return "unknown"
	}
}

// ParseReadDepth maps "none", "min" and "all" to a ReadDepth.
func ParseReadDepth(s string) (ReadDepth, bool) {
	switch s {
	case "none", "header":
		return NoDataGroupHeader, true
	case "min", "minimum":
		return MinDataGroupHeader, true
	case "all", "full", "":
		return AllHeaders, true
	default:
		return 0, false
	}
}

// OpenHint selects the access pattern for FileReader.Open.
type OpenHint int

const (
	// All reads every header up front and keeps the stream open.
	All OpenHint = iota
	// Sequential is reserved and not implemented.
	Sequential
)
