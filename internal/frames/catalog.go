// SPDX-License-Identifier: MIT
package frames

// Catalog is a rebuildable index over a flat frame list: lookup by
// energy level and direction plus the special-purpose lists the
// choreography nodes select from. Built wholesale by BuildCatalog and
// never mutated after; a new frame set means a new catalog.
//
// Returned slices alias catalog storage. Callers read, never modify.
type Catalog struct {
	byEnergy    map[EnergyLevel][]Frame
	byDirection map[Direction][]Frame

	closeups   []Frame
	hands      []Frame
	feet       []Frame
	mandalas   []Frame
	acrobatics []Frame
	virtuals   []Frame

	total int
}

// backFillOrder lists, per energy level, which buckets may stand in
// when the level's own bucket is empty. Nearest level first along the
// low/mid/high chain.
var backFillOrder = map[EnergyLevel][]EnergyLevel{
	EnergyLow:  {EnergyMid, EnergyHigh},
	EnergyMid:  {EnergyLow, EnergyHigh},
	EnergyHigh: {EnergyMid, EnergyLow},
}

// BuildCatalog categorizes a frame list. Pure: the same input always
// yields the same catalog, and the input slice is not retained. A nil
// or empty input yields an empty catalog whose selections all miss.
func BuildCatalog(input []Frame) *Catalog {
	c := &Catalog{
		byEnergy: map[EnergyLevel][]Frame{
			EnergyLow:  nil,
			EnergyMid:  nil,
			EnergyHigh: nil,
		},
		byDirection: map[Direction][]Frame{
			DirLeft:   nil,
			DirRight:  nil,
			DirCenter: nil,
		},
	}

	for _, raw := range input {
		f := raw.normalized()
		c.total++

		c.byEnergy[f.Energy] = append(c.byEnergy[f.Energy], f)
		c.byDirection[f.Direction] = append(c.byDirection[f.Direction], f)

		switch f.Type {
		case TypeCloseup:
			c.closeups = append(c.closeups, f)
		case TypeHands:
			c.hands = append(c.hands, f)
			if f.IsMandala() {
				c.mandalas = append(c.mandalas, f)
			}
		case TypeFeet:
			c.feet = append(c.feet, f)
		}

		if f.Role == RoleAlt {
			c.acrobatics = append(c.acrobatics, f)
		}
		if f.IsVirtual {
			c.virtuals = append(c.virtuals, f)
		}
	}

	// Sparse pose sets leave energy holes. Borrow the nearest populated
	// bucket so selection never misses just because generation skipped
	// a level.
	for _, level := range []EnergyLevel{EnergyLow, EnergyMid, EnergyHigh} {
		if len(c.byEnergy[level]) > 0 {
			continue
		}
		for _, donor := range backFillOrder[level] {
			if len(c.byEnergy[donor]) > 0 {
				c.byEnergy[level] = c.byEnergy[donor]
				break
			}
		}
	}

	return c
}

// Energy returns the frames indexed under the given level, including
// any back-filled stand-ins.
func (c *Catalog) Energy(level EnergyLevel) []Frame { return c.byEnergy[level] }

// Direction returns the frames leaning the given way.
func (c *Catalog) Direction(d Direction) []Frame { return c.byDirection[d] }

func (c *Catalog) Closeups() []Frame   { return c.closeups }
func (c *Catalog) Hands() []Frame      { return c.hands }
func (c *Catalog) Feet() []Frame       { return c.feet }
func (c *Catalog) Mandalas() []Frame   { return c.mandalas }
func (c *Catalog) Acrobatics() []Frame { return c.acrobatics }
func (c *Catalog) Virtuals() []Frame   { return c.virtuals }

// Total returns how many input frames the catalog indexed.
func (c *Catalog) Total() int { return c.total }

// Counts summarizes bucket sizes for telemetry. Back-filled buckets
// report the size of their stand-in.
type Counts struct {
	Total      int `json:"total"`
	Low        int `json:"low"`
	Mid        int `json:"mid"`
	High       int `json:"high"`
	Left       int `json:"left"`
	Right      int `json:"right"`
	Center     int `json:"center"`
	Closeups   int `json:"closeups"`
	Hands      int `json:"hands"`
	Feet       int `json:"feet"`
	Mandalas   int `json:"mandalas"`
	Acrobatics int `json:"acrobatics"`
	Virtuals   int `json:"virtuals"`
}

func (c *Catalog) Counts() Counts {
	return Counts{
		Total:      c.total,
		Low:        len(c.byEnergy[EnergyLow]),
		Mid:        len(c.byEnergy[EnergyMid]),
		High:       len(c.byEnergy[EnergyHigh]),
		Left:       len(c.byDirection[DirLeft]),
		Right:      len(c.byDirection[DirRight]),
		Center:     len(c.byDirection[DirCenter]),
		Closeups:   len(c.closeups),
		Hands:      len(c.hands),
		Feet:       len(c.feet),
		Mandalas:   len(c.mandalas),
		Acrobatics: len(c.acrobatics),
		Virtuals:   len(c.virtuals),
	}
}
