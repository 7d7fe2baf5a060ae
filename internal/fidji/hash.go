// =============================================================================
// FIDJI Converter - Shared Format Primitives
// =============================================================================
//
// This package holds what the FIDJI reader and writer have in common:
//   - the unit hash that links leased units back to physical units
//   - the element path stack used for dispatch while reading
//   - the element and attribute names of the supported element set
//   - the error taxonomy of the converter
//   - text-to-value coercions shared by the handlers
//
// =============================================================================

package fidji

import (
	"crypto/md5"
	"hash"
	"math/big"
)

// ParentTypeBuilding is the parent type used for every unit hash the converter
// produces.
const ParentTypeBuilding = "building"

// HashCoder derives the stable identifier of a child entity from its parent.
// The zero value uses the delimited fallback.
type HashCoder struct {
	digest func() hash.Hash
}

// NewHashCoder returns the MD5 based coder used by the reader and the writer.
func NewHashCoder() HashCoder {
	return HashCoder{digest: md5.New}
}

// FallbackHashCoder returns a coder without a digest primitive.
func FallbackHashCoder() HashCoder {
	return HashCoder{}
}

// Hash digests the concatenation of the three inputs (no separator) and
// renders it as lowercase hex without leading zeros. Without a digest it
// returns parentType + "-" + parentID + "-" + childID.
func (c HashCoder) Hash(parentType, parentID, childID string) string {
	if c.digest == nil {
		return parentType + "-" + parentID + "-" + childID
	}

	h := c.digest()
	h.Write([]byte(parentType))
	h.Write([]byte(parentID))
	h.Write([]byte(childID))

	return new(big.Int).SetBytes(h.Sum(nil)).Text(16)
}

// UnitHash is shorthand for Hash(ParentTypeBuilding, buildingID, unitID).
func (c HashCoder) UnitHash(buildingID, unitID string) string {
	return c.Hash(ParentTypeBuilding, buildingID, unitID)
}
