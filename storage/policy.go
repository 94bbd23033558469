package storage

// Growth and shrink tuning for entity and row capacity. The zero value is
// not usable; call normalize or start from DefaultPolicy.
type Policy struct {
	// InitialCapacity is the starting length of the entity array and of
	// every table's row arrays. Includes the reserved sentinel slot 0.
	InitialCapacity int
	// GrowthFactor scales the required size when an array runs out of
	// room: newSize = floor(required*GrowthFactor) + 1.
	GrowthFactor float64
	// ShrinkThreshold triggers a shrink during compaction when the live
	// count falls below this fraction of capacity.
	ShrinkThreshold float64
	// ShrinkHeadroom scales the live count to get the post-shrink
	// capacity: newSize = floor(live*ShrinkHeadroom) + 1.
	ShrinkHeadroom float64
}

// DefaultPolicy returns the standard tuning: 1.5x growth, shrink below 60%
// occupancy down to 1.2x the live count.
func DefaultPolicy() Policy {
	return Policy{
		InitialCapacity: 16,
		GrowthFactor:    1.5,
		ShrinkThreshold: 0.6,
		ShrinkHeadroom:  1.2,
	}
}

// normalize fills zeroed fields with their defaults so a partially
// populated Policy behaves sanely.
func (p Policy) normalize() Policy {
	d := DefaultPolicy()
	if p.InitialCapacity < 2 {
		p.InitialCapacity = d.InitialCapacity
	}
	if p.GrowthFactor <= 1 {
		p.GrowthFactor = d.GrowthFactor
	}
	if p.ShrinkThreshold <= 0 || p.ShrinkThreshold >= 1 {
		p.ShrinkThreshold = d.ShrinkThreshold
	}
	if p.ShrinkHeadroom < 1 {
		p.ShrinkHeadroom = d.ShrinkHeadroom
	}
	return p
}

// grow returns the capacity to allocate when required slots are needed.
func (p Policy) grow(required int) int {
	return int(float64(required)*p.GrowthFactor) + 1
}

// shouldShrink reports whether a capacity holding live occupied slots is
// worth compacting down.
func (p Policy) shouldShrink(live, capacity int) bool {
	return float64(live) < p.ShrinkThreshold*float64(capacity)
}

// shrinkTarget returns the post-shrink capacity for live occupied slots.
// Always leaves room for the sentinel plus every live slot.
func (p Policy) shrinkTarget(live int) int {
	target := int(float64(live)*p.ShrinkHeadroom) + 1
	if target < live+1 {
		target = live + 1
	}
	return target
}
