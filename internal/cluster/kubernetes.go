package cluster

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// managedByLabel marks every resource storeplane creates.
const managedByLabel = "storeplane"

// Poll budgets. Namespace deletion is asynchronous; one-shot jobs are
// polled with their own bound. Vars so tests can tighten them.
var (
	deletePollInterval = 2 * time.Second
	deletePollAttempts = 30

	jobPollInterval = 3 * time.Second
	jobPollAttempts = 40
)

// KubeClient implements Client using client-go.
type KubeClient struct {
	clientset kubernetes.Interface
	log       *slog.Logger
}

// homeDir returns the user's home directory.
func homeDir() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	return os.Getenv("USERPROFILE") // Windows
}

// New creates a Kubernetes-backed cluster client.
// Tries in-cluster configuration first, falls back to kubeconfig for local development.
func New(kubeconfigPath string, log *slog.Logger) (*KubeClient, error) {
	config, err := rest.InClusterConfig()
	if err != nil {
		if kubeconfigPath == "" {
			kubeconfigPath = filepath.Join(homeDir(), ".kube", "config")
		}
		log.Info("in-cluster config not available, trying kubeconfig", "path", kubeconfigPath)
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to build kubernetes config: %w", err)
		}
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	return &KubeClient{clientset: clientset, log: log}, nil
}

// NewWithClientset wraps an existing clientset. Used by tests with the fake.
func NewWithClientset(clientset kubernetes.Interface, log *slog.Logger) *KubeClient {
	return &KubeClient{clientset: clientset, log: log}
}

// EnsureNamespace creates the namespace, treating "already exists" as success.
func (c *KubeClient) EnsureNamespace(ctx context.Context, name string) error {
	_, err := c.clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
	if err == nil {
		c.log.Info("namespace already exists", "namespace", name)
		return nil
	}
	if !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to check namespace %s: %w", name, err)
	}

	ns := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{
			Name: name,
			Labels: map[string]string{
				"app.kubernetes.io/managed-by": managedByLabel,
			},
		},
	}

	_, err = c.clientset.CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{})
	if err != nil {
		// A concurrent create can win the race between our Get and Create.
		if apierrors.IsAlreadyExists(err) {
			c.log.Info("namespace created concurrently", "namespace", name)
			return nil
		}
		return fmt.Errorf("failed to create namespace %s: %w", name, err)
	}

	c.log.Info("namespace created", "namespace", name)
	return nil
}

func (c *KubeClient) NamespaceExists(ctx context.Context, name string) (bool, error) {
	_, err := c.clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
	if err == nil {
		return true, nil
	}
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check namespace %s: %w", name, err)
}

// DeleteNamespace deletes the namespace and polls until it is gone.
// A namespace that is already absent is success. A deletion that takes
// longer than the poll budget is logged as a warning and not reported as
// an error, so callers never block indefinitely on cluster cleanup.
func (c *KubeClient) DeleteNamespace(ctx context.Context, name string) error {
	err := c.clientset.CoreV1().Namespaces().Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			c.log.Info("namespace not found, skipping delete", "namespace", name)
			return nil
		}
		return fmt.Errorf("failed to delete namespace %s: %w", name, err)
	}

	ticker := time.NewTicker(deletePollInterval)
	defer ticker.Stop()

	for attempt := 0; attempt < deletePollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_, err := c.clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
			if apierrors.IsNotFound(err) {
				c.log.Info("namespace deleted", "namespace", name)
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to poll namespace %s: %w", name, err)
			}
		}
	}

	c.log.Warn("namespace deletion still in progress after wait", "namespace", name)
	return nil
}

// ListPods returns the status snapshot of every pod in the namespace.
func (c *KubeClient) ListPods(ctx context.Context, namespace string) ([]PodStatus, error) {
	pods, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods in %s: %w", namespace, err)
	}

	out := make([]PodStatus, 0, len(pods.Items))
	for _, pod := range pods.Items {
		status := PodStatus{
			Name:  pod.Name,
			Phase: string(pod.Status.Phase),
		}
		for _, cs := range pod.Status.ContainerStatuses {
			status.Restarts += cs.RestartCount
		}
		for _, cond := range pod.Status.Conditions {
			if cond.Type == corev1.PodReady && cond.Status == corev1.ConditionTrue {
				status.Ready = true
			}
		}
		out = append(out, status)
	}
	return out, nil
}

// PodLogs returns the tail of one pod's logs.
func (c *KubeClient) PodLogs(ctx context.Context, namespace, pod string, tailLines int64) (string, error) {
	req := c.clientset.CoreV1().Pods(namespace).GetLogs(pod, &corev1.PodLogOptions{
		TailLines: &tailLines,
	})

	stream, err := req.Stream(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to stream logs for %s/%s: %w", namespace, pod, err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return "", fmt.Errorf("failed to read logs for %s/%s: %w", namespace, pod, err)
	}
	return string(data), nil
}

// ServiceNodePort resolves the externally reachable port of the store.
// Each candidate service name is tried in order; if none matches, any
// NodePort-type service in the namespace is accepted as a fallback.
func (c *KubeClient) ServiceNodePort(ctx context.Context, namespace string, candidates ...string) (int32, error) {
	for _, name := range candidates {
		svc, err := c.clientset.CoreV1().Services(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			if apierrors.IsNotFound(err) {
				continue
			}
			return 0, fmt.Errorf("failed to get service %s/%s: %w", namespace, name, err)
		}
		if port, ok := firstNodePort(svc); ok {
			return port, nil
		}
	}

	services, err := c.clientset.CoreV1().Services(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to list services in %s: %w", namespace, err)
	}
	for _, svc := range services.Items {
		if port, ok := firstNodePort(&svc); ok {
			return port, nil
		}
	}

	return 0, ErrEndpointNotFound
}

func firstNodePort(svc *corev1.Service) (int32, bool) {
	if svc.Spec.Type != corev1.ServiceTypeNodePort {
		return 0, false
	}
	for _, port := range svc.Spec.Ports {
		if port.NodePort > 0 {
			return port.NodePort, true
		}
	}
	return 0, false
}

// RunJob submits a one-shot job and polls it until it succeeds, fails, or
// the attempt budget runs out.
func (c *KubeClient) RunJob(ctx context.Context, namespace, name, image string, command []string) error {
	backoffLimit := int32(0)
	job := &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels: map[string]string{
				"app.kubernetes.io/managed-by": managedByLabel,
			},
		},
		Spec: batchv1.JobSpec{
			BackoffLimit: &backoffLimit,
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: map[string]string{
						"job-name":                     name,
						"app.kubernetes.io/managed-by": managedByLabel,
					},
				},
				Spec: corev1.PodSpec{
					RestartPolicy: corev1.RestartPolicyNever,
					Containers: []corev1.Container{
						{
							Name:    "task",
							Image:   image,
							Command: command,
						},
					},
				},
			},
		},
	}

	created, err := c.clientset.BatchV1().Jobs(namespace).Create(ctx, job, metav1.CreateOptions{})
	if err != nil {
		return fmt.Errorf("failed to create job %s/%s: %w", namespace, name, err)
	}
	c.log.Info("job created", "namespace", namespace, "job", created.Name)

	ticker := time.NewTicker(jobPollInterval)
	defer ticker.Stop()

	for attempt := 0; attempt < jobPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			current, err := c.clientset.BatchV1().Jobs(namespace).Get(ctx, name, metav1.GetOptions{})
			if err != nil {
				return fmt.Errorf("failed to poll job %s/%s: %w", namespace, name, err)
			}
			if current.Status.Succeeded > 0 {
				return nil
			}
			if current.Status.Failed > 0 {
				return fmt.Errorf("job %s/%s failed", namespace, name)
			}
		}
	}

	return fmt.Errorf("job %s/%s did not complete in time", namespace, name)
}
