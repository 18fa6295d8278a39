package entities

// Permission is a Discord permission bit set. Bit values match the Discord API.
type Permission int64

const (
	PermissionManageChannels     Permission = 1 << 4
	PermissionViewChannel        Permission = 1 << 10
	PermissionSendMessages       Permission = 1 << 11
	PermissionReadMessageHistory Permission = 1 << 16
	PermissionManageThreads      Permission = 1 << 34
)

// Has checks if every bit of p2 is set
func (p Permission) Has(p2 Permission) bool {
	return p&p2 == p2
}

// OverwriteTarget says whether an overwrite applies to a role or a member
type OverwriteTarget int

const (
	OverwriteTargetRole OverwriteTarget = iota
	OverwriteTargetMember
)

// Overwrite is a per-role or per-member permission override on a channel.
// Bits in neither Allow nor Deny are inherited.
type Overwrite struct {
	TargetID   int64
	TargetType OverwriteTarget
	Allow      Permission
	Deny       Permission
}

// RoleOverwrite builds an overwrite for a role
func RoleOverwrite(roleID int64, allow, deny Permission) Overwrite {
	return Overwrite{TargetID: roleID, TargetType: OverwriteTargetRole, Allow: allow, Deny: deny}
}

// MemberOverwrite builds an overwrite for a member
func MemberOverwrite(userID int64, allow, deny Permission) Overwrite {
	return Overwrite{TargetID: userID, TargetType: OverwriteTargetMember, Allow: allow, Deny: deny}
}

// OverwriteSet is an ordered set of overwrites keyed by target id
type OverwriteSet []Overwrite

// Set replaces the entry for the overwrite's target, or appends it
func (s OverwriteSet) Set(o Overwrite) OverwriteSet {
	for i := range s {
		if s[i].TargetID == o.TargetID {
			out := append(OverwriteSet(nil), s...)
			out[i] = o
			return out
		}
	}
	return append(append(OverwriteSet(nil), s...), o)
}

// Merge applies every entry of other on top of s
func (s OverwriteSet) Merge(other OverwriteSet) OverwriteSet {
	out := append(OverwriteSet(nil), s...)
	for _, o := range other {
		out = out.Set(o)
	}
	return out
}

// Has reports whether the set carries an entry for the target
func (s OverwriteSet) Has(targetID int64) bool {
	_, ok := s.Get(targetID)
	return ok
}

// Get returns the entry for the target
func (s OverwriteSet) Get(targetID int64) (Overwrite, bool) {
	for _, o := range s {
		if o.TargetID == targetID {
			return o, true
		}
	}
	return Overwrite{}, false
}
