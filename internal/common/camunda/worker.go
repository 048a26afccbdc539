// internal/common/camunda/worker.go
package camunda

import (
	"sync"
	"time"

	"motor-picker/internal/common/config"
	"motor-picker/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every workflow worker.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Manager opens job workers and closes them together on shutdown.
type Manager struct {
	client  zbc.Client
	logger  logger.Logger
	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewManager(client zbc.Client, log logger.Logger) *Manager {
	return &Manager{
		client:  client,
		logger:  log.WithFields(map[string]interface{}{"component": "worker-manager"}),
		workers: make(map[string]worker.JobWorker),
	}
}

// Register opens a worker for taskType. Disabled workers are skipped and
// reported as not started.
func (m *Manager) Register(taskType string, wcfg config.WorkerConfig, handler JobHandler) bool {
	if !wcfg.Enabled {
		m.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	maxJobs := wcfg.MaxJobsActive
	if maxJobs <= 0 {
		maxJobs = worker.DefaultJobWorkerMaxJobActive
	}
	timeout := commands.DefaultJobTimeout
	if wcfg.Timeout > 0 {
		timeout = time.Duration(wcfg.Timeout) * time.Millisecond
	}

	jw := m.client.NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		MaxJobsActive(maxJobs).
		Timeout(timeout).
		Open()

	m.mu.Lock()
	if old, ok := m.workers[taskType]; ok {
		old.Close()
	}
	m.workers[taskType] = jw
	m.mu.Unlock()

	m.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": maxJobs,
		"timeout_ms":    timeout.Milliseconds(),
	})
	return true
}

// TaskTypes lists the task types with an open worker.
func (m *Manager) TaskTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.workers))
	for t := range m.workers {
		out = append(out, t)
	}
	return out
}

// Close stops polling and waits for in-flight jobs.
func (m *Manager) Close() {
	m.mu.Lock()
	workers := m.workers
	m.workers = make(map[string]worker.JobWorker)
	m.mu.Unlock()

	for taskType, jw := range workers {
		jw.Close()
		jw.AwaitClose()
		m.logger.Info("worker stopped", map[string]interface{}{"taskType": taskType})
	}
}
