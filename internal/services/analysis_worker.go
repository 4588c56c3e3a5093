package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"ecoscope/internal/cache"
	"ecoscope/internal/models"
	"ecoscope/internal/mq"
	"ecoscope/internal/repository"

	"gorm.io/gorm"
)

// ErrWorkerStopped is returned when a request arrives while the worker pool
// is not running.
var ErrWorkerStopped = errors.New("analysis worker is not running")

type analysisJob struct {
	SubjectID string
	Query     models.Query
}

// AnalysisWorker owns the analysis cache state machine. Every subject id moves
// absent -> pending -> completed|failed, with at most one computation in
// flight per subject at any time: the database transition is the source of
// truth and the inflight map suppresses duplicate local enqueues.
type AnalysisWorker struct {
	repo      repository.AnalysisRepository
	pipeline  AnalysisPipeline
	cache     *cache.RedisClient
	publisher *mq.Publisher

	// Job processing
	jobQueue    chan analysisJob
	workerCount int
	stopChan    chan struct{}
	wg          sync.WaitGroup
	running     bool
	mu          sync.RWMutex

	inflight   map[string]struct{}
	inflightMu sync.Mutex

	// Configuration
	jobTimeout      time.Duration
	cacheTTL        time.Duration
	cleanupInterval time.Duration
	failedRetention time.Duration
}

func NewAnalysisWorker(
	repo repository.AnalysisRepository,
	pipeline AnalysisPipeline,
	redisClient *cache.RedisClient,
	publisher *mq.Publisher,
	workerCount int,
) *AnalysisWorker {
	if workerCount <= 0 {
		workerCount = 3 // Default worker count
	}

	return &AnalysisWorker{
		repo:            repo,
		pipeline:        pipeline,
		cache:           redisClient,
		publisher:       publisher,
		jobQueue:        make(chan analysisJob, 100),
		workerCount:     workerCount,
		stopChan:        make(chan struct{}),
		inflight:        make(map[string]struct{}),
		jobTimeout:      2 * time.Minute,
		cacheTTL:        time.Hour,
		cleanupInterval: 30 * time.Minute,
		failedRetention: 24 * time.Hour,
	}
}

// ========== WORKER LIFECYCLE ==========

func (w *AnalysisWorker) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go w.worker(i)
	}

	// Re-enqueue any pending records left behind by an earlier run
	w.wg.Add(1)
	go w.recoverPendingJobs()

	w.wg.Add(1)
	go w.cleanupRoutine()
}

func (w *AnalysisWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()
}

// ========== CACHE OPERATIONS ==========

// Request implements the request-analysis operation. It returns the current
// record for the subject; if the record is absent (or failed, which re-arms
// it) a background computation is scheduled exactly once.
func (w *AnalysisWorker) Request(subjectID string, query models.Query) (*models.AnalysisRecord, error) {
	w.mu.RLock()
	if !w.running {
		w.mu.RUnlock()
		return nil, ErrWorkerStopped
	}
	w.mu.RUnlock()

	if cached, ok := w.cacheGet(subjectID); ok {
		return cached, nil
	}

	record, err := w.repo.GetBySubjectID(subjectID)
	switch {
	case err == nil:
		return w.reviveOrReturn(record, query)
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fall through to create
	default:
		return nil, fmt.Errorf("failed to load analysis record: %w", err)
	}

	record = &models.AnalysisRecord{
		SubjectID:        subjectID,
		Status:           models.AnalysisStatusPending,
		Latitude:         query.Latitude,
		Longitude:        query.Longitude,
		Month:            query.Month,
		FutureYearOffset: query.FutureYearOffset,
	}
	created, err := w.repo.CreateIfAbsent(record)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis record: %w", err)
	}
	if !created {
		// Lost the race; another request owns the record now
		return w.repo.GetBySubjectID(subjectID)
	}

	w.enqueue(analysisJob{SubjectID: subjectID, Query: query})
	return record, nil
}

// reviveOrReturn hands back pending and completed records unchanged and moves
// failed records back to pending so the analysis is retried.
func (w *AnalysisWorker) reviveOrReturn(record *models.AnalysisRecord, query models.Query) (*models.AnalysisRecord, error) {
	switch record.Status {
	case models.AnalysisStatusCompleted:
		w.cachePut(record)
		return record, nil
	case models.AnalysisStatusPending:
		return record, nil
	case models.AnalysisStatusFailed:
		if err := w.repo.TransitionStatus(record.SubjectID, models.AnalysisStatusFailed, models.AnalysisStatusPending, nil); err != nil {
			// Someone else already revived it; report it as pending anyway
			log.Printf("WARNING: could not revive failed analysis %s: %v", record.SubjectID, err)
		} else {
			w.enqueue(analysisJob{SubjectID: record.SubjectID, Query: query})
		}
		record.Status = models.AnalysisStatusPending
		record.ErrorMessage = nil
		return record, nil
	default:
		return nil, fmt.Errorf("analysis record %s has unknown status %q", record.SubjectID, record.Status)
	}
}

// Get reads the current analysis state without scheduling work.
func (w *AnalysisWorker) Get(subjectID string) (*models.AnalysisRecord, error) {
	if cached, ok := w.cacheGet(subjectID); ok {
		return cached, nil
	}

	record, err := w.repo.GetBySubjectID(subjectID)
	if err != nil {
		return nil, err
	}
	if record.Status == models.AnalysisStatusCompleted {
		w.cachePut(record)
	}
	return record, nil
}

func (w *AnalysisWorker) Statistics() (map[string]int64, error) {
	return w.repo.GetStatistics()
}

// ========== JOB PROCESSING ==========

func (w *AnalysisWorker) enqueue(job analysisJob) {
	w.inflightMu.Lock()
	if _, exists := w.inflight[job.SubjectID]; exists {
		w.inflightMu.Unlock()
		return
	}
	w.inflight[job.SubjectID] = struct{}{}
	w.inflightMu.Unlock()

	select {
	case w.jobQueue <- job:
	default:
		// Queue is full; the record stays pending and the recovery routine
		// of a later run picks it up
		w.clearInflight(job.SubjectID)
		log.Printf("WARNING: analysis queue full, deferring subject %s", job.SubjectID)
	}
}

func (w *AnalysisWorker) clearInflight(subjectID string) {
	w.inflightMu.Lock()
	delete(w.inflight, subjectID)
	w.inflightMu.Unlock()
}

func (w *AnalysisWorker) worker(workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case job := <-w.jobQueue:
			w.processJob(job)
		}
	}
}

func (w *AnalysisWorker) processJob(job analysisJob) {
	defer w.clearInflight(job.SubjectID)

	ctx, cancel := context.WithTimeout(context.Background(), w.jobTimeout)
	defer cancel()

	shapData, story, err := w.pipeline.Analyze(ctx, job.Query)
	if err != nil {
		errMsg := err.Error()
		if terr := w.repo.TransitionStatus(job.SubjectID, models.AnalysisStatusPending, models.AnalysisStatusFailed, &errMsg); terr != nil {
			log.Printf("ERROR: could not mark analysis %s failed: %v", job.SubjectID, terr)
		}
		w.publish(job.SubjectID, models.AnalysisStatusFailed, &errMsg)
		return
	}

	if err := w.repo.Complete(job.SubjectID, shapData, story); err != nil {
		log.Printf("ERROR: could not complete analysis %s: %v", job.SubjectID, err)
		return
	}

	if record, err := w.repo.GetBySubjectID(job.SubjectID); err == nil {
		w.cachePut(record)
	}
	w.publish(job.SubjectID, models.AnalysisStatusCompleted, nil)
}

// recoverPendingJobs re-enqueues records stuck in pending after a restart.
func (w *AnalysisWorker) recoverPendingJobs() {
	defer w.wg.Done()

	select {
	case <-w.stopChan:
		return
	case <-time.After(5 * time.Second):
	}

	records, err := w.repo.GetPending(100)
	if err != nil {
		log.Printf("ERROR: failed to recover pending analyses: %v", err)
		return
	}

	for _, record := range records {
		w.enqueue(analysisJob{
			SubjectID: record.SubjectID,
			Query: models.Query{
				Latitude:         record.Latitude,
				Longitude:        record.Longitude,
				Month:            record.Month,
				FutureYearOffset: record.FutureYearOffset,
			},
		})
	}
	if len(records) > 0 {
		log.Printf("Recovered %d pending analyses", len(records))
	}
}

func (w *AnalysisWorker) cleanupRoutine() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-w.failedRetention)
			if err := w.repo.CleanupFailed(cutoff); err != nil {
				log.Printf("ERROR: failed analysis cleanup: %v", err)
			}
		}
	}
}

// ========== SIDE CHANNELS ==========

func (w *AnalysisWorker) cacheGet(subjectID string) (*models.AnalysisRecord, bool) {
	if w.cache == nil {
		return nil, false
	}
	record, ok, err := w.cache.GetAnalysis(subjectID)
	if err != nil {
		log.Printf("WARNING: analysis cache read failed: %v", err)
		return nil, false
	}
	if !ok || record.Status != models.AnalysisStatusCompleted {
		return nil, false
	}
	return record, true
}

func (w *AnalysisWorker) cachePut(record *models.AnalysisRecord) {
	if w.cache == nil || record.Status != models.AnalysisStatusCompleted {
		return
	}
	if err := w.cache.StoreAnalysis(record, w.cacheTTL); err != nil {
		log.Printf("WARNING: analysis cache write failed: %v", err)
	}
}

func (w *AnalysisWorker) publish(subjectID, status string, errMsg *string) {
	if w.publisher == nil {
		return
	}
	event := mq.AnalysisEvent{
		SubjectID: subjectID,
		Status:    status,
		Timestamp: time.Now(),
	}
	if errMsg != nil {
		event.Error = *errMsg
	}
	if err := w.publisher.Publish(event); err != nil {
		log.Printf("WARNING: failed to publish analysis event: %v", err)
	}
}
