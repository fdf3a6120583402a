package domain

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// AddressSet is a set of normalized addresses
type AddressSet struct {
	set mapset.Set[string]
}

// NewAddressSet creates a thread-safe set from the given addresses
func NewAddressSet(addresses ...string) *AddressSet {
	s := &AddressSet{set: mapset.NewSet[string]()}
	for _, address := range addresses {
		s.Add(address)
	}
	return s
}

// Add adds the address and reports whether it was not already present
func (s *AddressSet) Add(address string) bool {
	return s.set.Add(NormalizeAddress(address))
}

// Remove removes the address and reports whether it was present
func (s *AddressSet) Remove(address string) bool {
	normalized := NormalizeAddress(address)
	if !s.set.Contains(normalized) {
		return false
	}
	s.set.Remove(normalized)
	return true
}

// Contains reports whether the address is in the set
func (s *AddressSet) Contains(address string) bool {
	return s.set.Contains(NormalizeAddress(address))
}

// Len returns the number of addresses
func (s *AddressSet) Len() int {
	return s.set.Cardinality()
}

// Slice returns the addresses sorted ascending
func (s *AddressSet) Slice() []string {
	addresses := s.set.ToSlice()
	sort.Strings(addresses)
	return addresses
}
