package backend

import "slices"

// BackendCapability represents a capability that a backend can provide.
type BackendCapability string

const (
	// CapabilityDirectories means writes fail when the parent directory is
	// missing, like on a disk.
	CapabilityDirectories BackendCapability = "directories"
	// CapabilityPermissions means the perm passed to WriteFile is stored.
	CapabilityPermissions BackendCapability = "permissions"
	// CapabilityPersistent means content survives a Close.
	CapabilityPersistent BackendCapability = "persistent"
	// CapabilityAppend means os.O_APPEND is honored.
	CapabilityAppend BackendCapability = "append"
	// CapabilityExclusive means os.O_EXCL is honored.
	CapabilityExclusive BackendCapability = "exclusive"
)

func GetAllCapabilities() *BackendCapabilities {
	return &BackendCapabilities{
		Capabilities: []BackendCapability{
			CapabilityDirectories,
			CapabilityPermissions,
			CapabilityPersistent,
			CapabilityAppend,
			CapabilityExclusive,
		},
	}
}

// BackendCapabilities describes what a backend supports.
type BackendCapabilities struct {
	Capabilities  []BackendCapability `json:"capabilities"`
	MaxObjectSize int64               `json:"max_object_size"`
}

// Contains checks if a capability is supported.
func (bc *BackendCapabilities) Contains(capability BackendCapability) bool {
	return slices.Contains(bc.Capabilities, capability)
}

// Allows reports whether an object of size bytes fits. Zero means no limit.
func (bc *BackendCapabilities) Allows(size int64) bool {
	return bc.MaxObjectSize <= 0 || size <= bc.MaxObjectSize
}
