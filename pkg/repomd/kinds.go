package repomd

import (
	"strings"

	"github.com/glorpus-work/yumsync/pkg/errors"
)

// Kind is one metadata file role listed in repomd.xml.
type Kind int

// Kinds in their fixed processing order. Downloads are assembled and
// checksums verified in exactly this order.
const (
	Primary Kind = iota
	Filelists
	Other
	PrimaryDB
	FilelistsDB
	OtherDB
	Group
	GroupGz
	PrestoDelta
	DeltaInfo
	UpdateInfo
	Origin

	kindCount
)

// Kinds is a bitset of requested metadata kinds.
type Kinds uint32

// AllKinds requests every known metadata kind.
const AllKinds Kinds = 1<<kindCount - 1

type kindInfo struct {
	name string
	flag Kinds
}

var kindTable = [kindCount]kindInfo{
	Primary:     {"primary", 1 << Primary},
	Filelists:   {"filelists", 1 << Filelists},
	Other:       {"other", 1 << Other},
	PrimaryDB:   {"primary_db", 1 << PrimaryDB},
	FilelistsDB: {"filelists_db", 1 << FilelistsDB},
	OtherDB:     {"other_db", 1 << OtherDB},
	Group:       {"group", 1 << Group},
	GroupGz:     {"group_gz", 1 << GroupGz},
	PrestoDelta: {"prestodelta", 1 << PrestoDelta},
	DeltaInfo:   {"deltainfo", 1 << DeltaInfo},
	UpdateInfo:  {"updateinfo", 1 << UpdateInfo},
	Origin:      {"origin", 1 << Origin},
}

// AllKindsInOrder returns every kind in processing order.
func AllKindsInOrder() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// String returns the repomd.xml data type of the kind.
func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}
	return kindTable[k].name
}

// Flag returns the bit of k in a Kinds set.
func (k Kind) Flag() Kinds {
	if k < 0 || k >= kindCount {
		return 0
	}
	return kindTable[k].flag
}

// KindFromName looks up a kind by its repomd.xml data type.
func KindFromName(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, info := range kindTable {
		if info.name == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// Has reports whether k is part of the set.
func (ks Kinds) Has(k Kind) bool {
	return ks&k.Flag() != 0
}

// With returns the set with k added.
func (ks Kinds) With(k Kind) Kinds {
	return ks | k.Flag()
}

// Names lists the members of the set in processing order.
func (ks Kinds) Names() []string {
	var names []string
	for _, k := range AllKindsInOrder() {
		if ks.Has(k) {
			names = append(names, k.String())
		}
	}
	return names
}

// ParseKinds builds a set from data type names. An empty list means all
// kinds; "all" may also be given explicitly.
func ParseKinds(names []string) (Kinds, error) {
	if len(names) == 0 {
		return AllKinds, nil
	}
	var ks Kinds
	for _, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), "all") {
			ks |= AllKinds
			continue
		}
		k, ok := KindFromName(n)
		if !ok {
			return 0, errors.ErrUnknownKindWithName(n)
		}
		ks = ks.With(k)
	}
	return ks, nil
}
