package downloader

import (
	"context"
	"fmt"
	"sync"

	"webgrab/pkg/logger"
	"webgrab/pkg/ratelimit"
)

// Job is a single image download task bound to a destination folder
type Job struct {
	URL     string
	DestDir string
	PageURL string
}

// PoolResult pairs a job with its download outcome
type PoolResult struct {
	Job    Job
	Result Result
}

// WorkerPool runs image downloads with a bounded concurrency cap
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan Job
	resultQueue chan PoolResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	downloader  *Downloader
	rateLimiter ratelimit.Limiter
	logger      logger.Logger
}

// NewWorkerPool creates a download worker pool. The parent context bounds
// every in-flight download; cancelling it abandons the run without leaving
// partial files.
func NewWorkerPool(ctx context.Context, numWorkers int, d *Downloader, limiter ratelimit.Limiter, log logger.Logger) *WorkerPool {
	poolCtx, cancel := context.WithCancel(ctx)

	if log == nil {
		log = logger.GetLogger()
	}

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan Job, numWorkers*2),
		resultQueue: make(chan PoolResult, numWorkers),
		ctx:         poolCtx,
		cancel:      cancel,
		downloader:  d,
		rateLimiter: limiter,
		logger:      log,
	}
}

// Start initializes and starts all workers
func (wp *WorkerPool) Start() {
	wp.logger.InfoWithFields("starting download workers", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop gracefully shuts down the worker pool. Queued jobs are drained,
// then the result queue is closed.
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
}

// Submit adds a new download job to the queue
func (wp *WorkerPool) Submit(job Job) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Results returns the result channel for consuming download outcomes
func (wp *WorkerPool) Results() <-chan PoolResult {
	return wp.resultQueue
}

// worker is the main worker routine
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		select {
		case <-wp.ctx.Done():
			return
		default:
		}

		if wp.rateLimiter != nil && !wp.rateLimiter.Allow() {
			wp.logger.DebugWithFields("worker waiting for rate limit", map[string]interface{}{
				"worker_id": id,
				"url":       job.URL,
			})
			wp.rateLimiter.Wait()
		}

		result := wp.downloader.Download(wp.ctx, job.URL, job.DestDir)

		select {
		case wp.resultQueue <- PoolResult{Job: job, Result: result}:
		case <-wp.ctx.Done():
			return
		}
	}
}

// QueueSize returns the current number of jobs in the queue
func (wp *WorkerPool) QueueSize() int {
	return len(wp.jobQueue)
}
