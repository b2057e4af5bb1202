package render

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
)

// QueueFamilyIndices records which queue family serves each role. Nil means
// no family was found for that role.
type QueueFamilyIndices struct {
	Graphics *int
	Present  *int
	Compute  *int
	Transfer *int
}

func (i QueueFamilyIndices) IsComplete() bool {
	return i.Graphics != nil && i.Present != nil && i.Compute != nil && i.Transfer != nil
}

// SharedGraphicsPresent reports whether graphics and present resolved to the same family.
func (i QueueFamilyIndices) SharedGraphicsPresent() bool {
	return i.Graphics != nil && i.Present != nil && *i.Graphics == *i.Present
}

// PresentQuery reports whether a queue family can present to the surface.
type PresentQuery func(family int) (bool, error)

// ResolveQueueFamilies walks the families in order and assigns roles. The first
// graphics family wins and is never replaced; present is queried on that same
// family first, then on each family until one is found. Compute and transfer
// take the first family advertising them.
func ResolveQueueFamilies(families []*core1_0.QueueFamilyProperties, supportsPresent PresentQuery) (QueueFamilyIndices, error) {
	var indices QueueFamilyIndices

	for idx, family := range families {
		queried := false

		if family.QueueFlags&core1_0.QueueGraphics != 0 && indices.Graphics == nil {
			indices.Graphics = familyIndex(idx)

			if indices.Present == nil {
				supported, err := supportsPresent(idx)
				if err != nil {
					return indices, errors.Wrapf(err, "query present support on family %d", idx)
				}
				queried = true
				if supported {
					indices.Present = familyIndex(idx)
				}
			}
		}

		if family.QueueFlags&core1_0.QueueCompute != 0 && indices.Compute == nil {
			indices.Compute = familyIndex(idx)
		}

		if family.QueueFlags&core1_0.QueueTransfer != 0 && indices.Transfer == nil {
			indices.Transfer = familyIndex(idx)
		}

		if indices.Present == nil && !queried {
			supported, err := supportsPresent(idx)
			if err != nil {
				return indices, errors.Wrapf(err, "query present support on family %d", idx)
			}
			if supported {
				indices.Present = familyIndex(idx)
			}
		}

		if indices.IsComplete() {
			break
		}
	}

	return indices, nil
}

func familyIndex(idx int) *int {
	return &idx
}
