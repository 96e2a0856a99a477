package gear

import (
	"strconv"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// BuildReport renders a JSON snapshot of the Device's live resources. The report
// carries the allocation counters and every live buffer, image and memory block with
// its size, keyed by resource id
func (d *Device) BuildReport() ([]byte, error) {
	d.logger.Debug("Device::BuildReport")

	writer := jwriter.NewWriter()

	objState := writer.Object()

	objState.Name("QueueFamilyIndex").Int(d.queueFamilyIndex)
	objState.Name("MemoryAllocations").Int(int(atomic.LoadInt32(&d.memoryCount)))
	objState.Name("MaxMemoryAllocationCount").Int(d.maxMemoryAllocationCount)

	d.resourceLock.Lock()
	objState.Name("ResourceCount").Int(d.resources.Count())

	resourcesState := objState.Name("Resources").Object()
	d.resources.Iter(func(id uint64, info resourceInfo) bool {
		entryState := resourcesState.Name(strconv.FormatUint(id, 10)).Object()
		entryState.Name("Kind").String(info.kind.String())
		entryState.Name("Size").Int(info.size)
		entryState.End()

		return false
	})
	resourcesState.End()
	d.resourceLock.Unlock()

	objState.End()

	err := writer.Error()
	if err != nil {
		return nil, errors.Wrap(err, "building device report")
	}

	return writer.Bytes(), nil
}
