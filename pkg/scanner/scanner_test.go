package scanner

import (
	"context"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
	metricsfake "k8s.io/metrics/pkg/client/clientset/versioned/fake"
)

func pod(ns, name string, phase corev1.PodPhase, containers ...corev1.Container) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: ns},
		Spec:       corev1.PodSpec{Containers: containers},
		Status:     corev1.PodStatus{Phase: phase},
	}
}

func container(name, cpuReq, cpuLim, memReq, memLim string) corev1.Container {
	c := corev1.Container{Name: name}
	c.Resources.Requests = corev1.ResourceList{}
	c.Resources.Limits = corev1.ResourceList{}
	if cpuReq != "" {
		c.Resources.Requests[corev1.ResourceCPU] = resource.MustParse(cpuReq)
	}
	if cpuLim != "" {
		c.Resources.Limits[corev1.ResourceCPU] = resource.MustParse(cpuLim)
	}
	if memReq != "" {
		c.Resources.Requests[corev1.ResourceMemory] = resource.MustParse(memReq)
	}
	if memLim != "" {
		c.Resources.Limits[corev1.ResourceMemory] = resource.MustParse(memLim)
	}
	return c
}

func podMetrics(ns, name, containerName, cpu, memory string) metricsv1beta1.PodMetrics {
	return metricsv1beta1.PodMetrics{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: ns},
		Containers: []metricsv1beta1.ContainerMetrics{{
			Name: containerName,
			Usage: corev1.ResourceList{
				corev1.ResourceCPU:    resource.MustParse(cpu),
				corev1.ResourceMemory: resource.MustParse(memory),
			},
		}},
	}
}

// newMetricsClient serves PodMetrics lists filtered by namespace; the fake
// tracker registers them under the "pods" resource.
func newMetricsClient(items ...metricsv1beta1.PodMetrics) *metricsfake.Clientset {
	client := metricsfake.NewSimpleClientset()
	client.PrependReactor("list", "pods", func(action k8stesting.Action) (bool, runtime.Object, error) {
		list := &metricsv1beta1.PodMetricsList{}
		for _, item := range items {
			if action.GetNamespace() == "" || item.Namespace == action.GetNamespace() {
				list.Items = append(list.Items, item)
			}
		}
		return true, list, nil
	})
	return client
}

func TestSnapshotAveragesReplicas(t *testing.T) {
	client := fake.NewSimpleClientset(
		pod("default", "app-1", corev1.PodRunning, container("app", "200m", "500m", "200Mi", "300Mi")),
		pod("default", "app-2", corev1.PodRunning, container("app", "200m", "500m", "200Mi", "300Mi")),
		pod("default", "app-3", corev1.PodPending, container("app", "1", "2", "1Gi", "2Gi")),
	)
	metricsClient := newMetricsClient(
		podMetrics("default", "app-1", "app", "100m", "100Mi"),
		podMetrics("default", "app-2", "app", "300m", "200Mi"),
	)

	s := NewWithClients(client, metricsClient, zap.NewNop())
	s.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 42, 0, time.UTC) }

	samples, err := s.Snapshot(context.Background(), []string{"default"})
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("Expected 1 sample, got %d", len(samples))
	}

	got := samples[0]
	if got.Namespace != "default" || got.ContainerName != "app" {
		t.Errorf("Unexpected key %s/%s", got.Namespace, got.ContainerName)
	}
	if !got.IntervalStart.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected interval truncated to the minute, got %v", got.IntervalStart)
	}
	if math.Abs(got.CPUUsage-0.2) > 1e-9 {
		t.Errorf("Expected CPU usage 0.2, got %f", got.CPUUsage)
	}
	if got.MemoryUsage != 150*1024*1024 {
		t.Errorf("Expected memory usage 150Mi, got %f", got.MemoryUsage)
	}
	if got.CPURequest != 0.2 || got.CPULimit != 0.5 {
		t.Errorf("Expected CPU request/limit 0.2/0.5, got %f/%f", got.CPURequest, got.CPULimit)
	}
	if got.MemoryRequest != 200*1024*1024 || got.MemoryLimit != 300*1024*1024 {
		t.Errorf("Unexpected memory request/limit %f/%f", got.MemoryRequest, got.MemoryLimit)
	}
}

func TestSnapshotMissingValuesAreNaN(t *testing.T) {
	client := fake.NewSimpleClientset(
		pod("default", "worker-1", corev1.PodRunning, container("worker", "100m", "", "", "")),
	)

	s := NewWithClients(client, newMetricsClient(), nil)
	samples, err := s.Snapshot(context.Background(), []string{"default"})
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("Expected 1 sample, got %d", len(samples))
	}

	got := samples[0]
	if !math.IsNaN(got.CPUUsage) || !math.IsNaN(got.CPULimit) || !math.IsNaN(got.MemoryLimit) {
		t.Errorf("Expected NaN for unobserved values, got %+v", got)
	}
	if record := got.Record(); record[3] != "" || record[4] != "0.1" {
		t.Errorf("Unexpected CSV record %v", record)
	}
}

func TestSnapshotAllNamespaces(t *testing.T) {
	client := fake.NewSimpleClientset(
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "default"}},
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "kube-system"}},
		pod("default", "app-1", corev1.PodRunning, container("app", "100m", "", "", "")),
		pod("kube-system", "proxy-1", corev1.PodRunning, container("proxy", "100m", "", "", "")),
	)

	s := NewWithClients(client, newMetricsClient(), nil)
	samples, err := s.Snapshot(context.Background(), nil)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("Expected 2 samples, got %d", len(samples))
	}
}
