package dataset

import (
	"sort"

	"github.com/opscart/k8s-usage-reporter/pkg/models"
	"k8s.io/apimachinery/pkg/types"
)

// Partition is the ordered set of rows sharing one namespace/container key.
// Key.Name carries the container name.
type Partition struct {
	Key  types.NamespacedName
	Rows *Frame
}

// Len returns the number of samples in the partition
func (p Partition) Len() int {
	if p.Rows == nil {
		return 0
	}
	return p.Rows.Len()
}

// GroupBy splits the frame by (namespace, container_name). Partitions come
// back sorted by namespace, then container; rows keep input order.
func GroupBy(frame *Frame) ([]Partition, error) {
	namespaces, err := frame.Column(models.ColumnNamespace)
	if err != nil {
		return nil, &LoadError{Op: "group", Path: frame.Source, Err: err}
	}
	containers, err := frame.Column(models.ColumnContainerName)
	if err != nil {
		return nil, &LoadError{Op: "group", Path: frame.Source, Err: err}
	}

	groups := make(map[types.NamespacedName][]int)
	for i := range frame.Rows {
		key := types.NamespacedName{Namespace: namespaces[i], Name: containers[i]}
		groups[key] = append(groups[key], i)
	}

	keys := make([]types.NamespacedName, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Namespace != keys[j].Namespace {
			return keys[i].Namespace < keys[j].Namespace
		}
		return keys[i].Name < keys[j].Name
	})

	partitions := make([]Partition, 0, len(keys))
	for _, key := range keys {
		partitions = append(partitions, Partition{
			Key:  key,
			Rows: frame.Subset(groups[key]),
		})
	}
	return partitions, nil
}
