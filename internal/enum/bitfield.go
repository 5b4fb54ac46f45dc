package enum

// Bitfield is a set of members of one enum family; bit i is member i.
type Bitfield uint64

// Member is satisfied by every enum family type.
type Member interface {
	~int
}

const maxMembers = 64

// Value returns the single-member bitfield for e.
func Value[E Member](e E) Bitfield {
	if e < 0 || int(e) >= maxMembers {
		return 0
	}
	return Bitfield(1) << uint(e)
}

// FromEnums builds a bitfield holding every listed member.
func FromEnums[E Member](members ...E) Bitfield {
	var b Bitfield
	for _, m := range members {
		b |= Value(m)
	}
	return b
}

// Add returns b with e present.
func Add[E Member](b Bitfield, e E) Bitfield {
	return b | Value(e)
}

// Remove returns b with e absent.
func Remove[E Member](b Bitfield, e E) Bitfield {
	return b &^ Value(e)
}

// Invert toggles the presence of e.
func Invert[E Member](b Bitfield, e E) Bitfield {
	return b ^ Value(e)
}

// Contains reports whether e is present in b.
func Contains[E Member](b Bitfield, e E) bool {
	v := Value(e)
	return v != 0 && b&v != 0
}

// ContainsPriority returns the first candidate present in b.
func ContainsPriority[E Member](b Bitfield, candidates ...E) (E, bool) {
	for _, c := range candidates {
		if Contains(b, c) {
			return c, true
		}
	}
	return -1, false
}

// Empty reports whether no member is present.
func (b Bitfield) Empty() bool {
	return b == 0
}
