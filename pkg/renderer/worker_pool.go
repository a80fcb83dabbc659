package renderer

import (
	"math/rand"
	"runtime"
	"sync"

	"github.com/df07/go-principled-shading/pkg/bxdf"
	"github.com/df07/go-principled-shading/pkg/core"
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile        Tile
	Framebuffer *Framebuffer // Shared framebuffer; tiles never overlap
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TileID int
	Stats  RenderStats
}

// WorkerPool manages parallel tile rendering
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	workers     []*Worker
	wg          sync.WaitGroup
}

// Worker owns the per-goroutine rendering state: an arena for scattering
// functions and a sampler reseeded for every tile
type Worker struct {
	ID       int
	renderer *TileRenderer
	seed     int64
	random   *rand.Rand
	sampler  core.Sampler
	arena    *bxdf.Arena
}

// NewWorkerPool creates numWorkers workers (0 = CPU count). The task queue
// is unbuffered so a tile is handed out only when a worker is free; the
// result queue holds maxTiles results.
func NewWorkerPool(tr *TileRenderer, numWorkers, maxTiles int, seed int64) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan TileTask),
		resultQueue: make(chan TileResult, maxTiles),
	}
	for i := 0; i < numWorkers; i++ {
		random := rand.New(rand.NewSource(seed))
		wp.workers = append(wp.workers, &Worker{
			ID:       i,
			renderer: tr,
			seed:     seed,
			random:   random,
			sampler:  core.NewRandomSampler(random),
			arena:    bxdf.NewArena(),
		})
	}
	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(wp.taskQueue, wp.resultQueue, &wp.wg)
	}
}

// Stop closes the task queue, waits for queued tiles to finish and then
// closes the result queue
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// Tasks returns the queue new tiles are submitted to
func (wp *WorkerPool) Tasks() chan<- TileTask {
	return wp.taskQueue
}

// Results returns the completed tile queue, closed by Stop
func (wp *WorkerPool) Results() <-chan TileResult {
	return wp.resultQueue
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return len(wp.workers)
}

// run is the main worker loop
func (w *Worker) run(tasks <-chan TileTask, results chan<- TileResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range tasks {
		// Seeding per tile makes the image independent of scheduling
		w.random.Seed(w.seed + int64(task.Tile.ID))
		stats := w.renderer.RenderTileBounds(task.Tile.Bounds, task.Framebuffer, w.sampler, w.arena)
		results <- TileResult{TileID: task.Tile.ID, Stats: stats}
	}
}
