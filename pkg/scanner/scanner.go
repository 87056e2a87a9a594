// Package scanner samples live container usage from metrics-server and
// resource requests and limits from pod specs.
package scanner

import (
	"context"
	"math"
	"path/filepath"
	"sort"
	"time"

	"github.com/opscart/k8s-usage-reporter/pkg/models"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
	metricsv "k8s.io/metrics/pkg/client/clientset/versioned"
)

type Scanner struct {
	clientset     kubernetes.Interface
	metricsClient metricsv.Interface
	logger        *zap.Logger
	now           func() time.Time
}

// New builds clients from kubeconfig, falling back to ~/.kube/config
func New(kubeconfig string, logger *zap.Logger) (*Scanner, error) {
	if kubeconfig == "" {
		if home := homedir.HomeDir(); home != "" {
			kubeconfig = filepath.Join(home, ".kube", "config")
		}
	}

	config, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build config")
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create clientset")
	}

	metricsClient, err := metricsv.NewForConfig(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create metrics client")
	}

	return NewWithClients(clientset, metricsClient, logger), nil
}

func NewWithClients(clientset kubernetes.Interface, metricsClient metricsv.Interface, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		clientset:     clientset,
		metricsClient: metricsClient,
		logger:        logger,
		now:           time.Now,
	}
}

// Snapshot returns one averaged sample per (namespace, container) across the
// running pods of each namespace. No namespaces means all of them.
func (s *Scanner) Snapshot(ctx context.Context, namespaces []string) ([]models.Sample, error) {
	if len(namespaces) == 0 {
		nsList, err := s.clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, errors.Wrap(err, "failed to list namespaces")
		}
		for _, ns := range nsList.Items {
			namespaces = append(namespaces, ns.Name)
		}
	}

	ts := s.now().UTC().Truncate(time.Minute)
	var samples []models.Sample

	for _, ns := range namespaces {
		nsSamples, err := s.scanNamespace(ctx, ns, ts)
		if err != nil {
			s.logger.Warn("error scanning namespace", zap.String("namespace", ns), zap.Error(err))
			continue
		}
		samples = append(samples, nsSamples...)
	}

	s.logger.Info("snapshot complete",
		zap.Int("namespaces", len(namespaces)),
		zap.Int("containers", len(samples)))
	return samples, nil
}

type usage struct {
	cpu    resource.Quantity
	memory resource.Quantity
}

func (s *Scanner) scanNamespace(ctx context.Context, namespace string, ts time.Time) ([]models.Sample, error) {
	pods, err := s.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list pods")
	}

	podMetrics, err := s.metricsClient.MetricsV1beta1().PodMetricses(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pod metrics")
	}

	metricsMap := make(map[string]map[string]usage)
	for _, pm := range podMetrics.Items {
		metricsMap[pm.Name] = make(map[string]usage)
		for _, container := range pm.Containers {
			metricsMap[pm.Name][container.Name] = usage{
				cpu:    container.Usage[corev1.ResourceCPU],
				memory: container.Usage[corev1.ResourceMemory],
			}
		}
	}

	acc := make(map[types.NamespacedName]*accumulator)
	for _, pod := range pods.Items {
		if pod.Status.Phase != corev1.PodRunning {
			continue
		}
		for _, container := range pod.Spec.Containers {
			key := types.NamespacedName{Namespace: pod.Namespace, Name: container.Name}
			a, ok := acc[key]
			if !ok {
				a = &accumulator{}
				acc[key] = a
			}

			if cm, ok := metricsMap[pod.Name][container.Name]; ok {
				a.cpuUsage.add(cores(cm.cpu))
				a.memoryUsage.add(byteValue(cm.memory))
			}
			if q, ok := container.Resources.Requests[corev1.ResourceCPU]; ok {
				a.cpuRequest.add(cores(q))
			}
			if q, ok := container.Resources.Limits[corev1.ResourceCPU]; ok {
				a.cpuLimit.add(cores(q))
			}
			if q, ok := container.Resources.Requests[corev1.ResourceMemory]; ok {
				a.memoryRequest.add(byteValue(q))
			}
			if q, ok := container.Resources.Limits[corev1.ResourceMemory]; ok {
				a.memoryLimit.add(byteValue(q))
			}
		}
	}

	samples := make([]models.Sample, 0, len(acc))
	for key, a := range acc {
		samples = append(samples, models.Sample{
			IntervalStart: ts,
			Namespace:     key.Namespace,
			ContainerName: key.Name,
			CPUUsage:      a.cpuUsage.mean(),
			CPURequest:    a.cpuRequest.mean(),
			CPULimit:      a.cpuLimit.mean(),
			MemoryUsage:   a.memoryUsage.mean(),
			MemoryRequest: a.memoryRequest.mean(),
			MemoryLimit:   a.memoryLimit.mean(),
		})
	}
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].ContainerName < samples[j].ContainerName
	})
	return samples, nil
}

func cores(q resource.Quantity) float64 {
	return float64(q.MilliValue()) / 1000
}

func byteValue(q resource.Quantity) float64 {
	return float64(q.Value())
}

type accumulator struct {
	cpuUsage, cpuRequest, cpuLimit          avg
	memoryUsage, memoryRequest, memoryLimit avg
}

type avg struct {
	sum float64
	n   int
}

func (a *avg) add(v float64) {
	a.sum += v
	a.n++
}

// mean is NaN when nothing was observed, which the CSV writes as an empty cell
func (a avg) mean() float64 {
	if a.n == 0 {
		return math.NaN()
	}
	return a.sum / float64(a.n)
}
