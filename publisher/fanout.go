// Package publisher owns the newsfeed fan-out: turning one published
// news item into per-subscriber feed membership rows.
package publisher

import (
	"sync"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/schoolfeed/schoolfeed/model"
	. "github.com/schoolfeed/schoolfeed/utils/log"
)

// jobQueueSize bounds the in-process queue. Jobs beyond it spill to
// their own goroutine instead of blocking the publish path.
const jobQueueSize = 256

// FanoutJob identifies one publication to replicate into feeds.
type FanoutJob struct {
	PageID uint
	NewsID uint
}

/*

FanoutEngine consumes fan-out jobs off an in-process queue so that the
publish request never waits on subscriber-set size.

The engine is fire-and-forget by design: a job failure is logged and
dropped, never surfaced to the publish caller and never retried. The
FeedMembership insert is idempotent (ON CONFLICT DO NOTHING on the
composite key), so re-running a job can only converge, not duplicate.

There is no isolation between enumerating subscribers and inserting the
membership rows. A subscribe racing the enumeration may or may not
receive the item; only subscriptions existing before the job starts,
and not concurrently removed, are guaranteed a feed entry.

*/
type FanoutEngine struct {
	DB *gorm.DB

	jobs    chan FanoutJob
	pending sync.WaitGroup
}

// NewFanoutEngine creates an engine; call Start to launch its worker.
func NewFanoutEngine(db *gorm.DB) *FanoutEngine {
	return &FanoutEngine{
		DB:   db,
		jobs: make(chan FanoutJob, jobQueueSize),
	}
}

// Start launches the worker goroutine consuming the job queue.
func (e *FanoutEngine) Start() {
	go e.run()
}

func (e *FanoutEngine) run() {
	for job := range e.jobs {
		e.process(job)
		e.pending.Done()
	}
}

// Enqueue hands a publication to the engine. It never blocks: when the
// queue is full the job runs on its own goroutine instead.
func (e *FanoutEngine) Enqueue(pageID uint, newsID uint) {
	job := FanoutJob{PageID: pageID, NewsID: newsID}
	e.pending.Add(1)
	select {
	case e.jobs <- job:
	default:
		go func() {
			defer e.pending.Done()
			e.process(job)
		}()
	}
}

// Wait blocks until every job enqueued so far has settled. Used by
// graceful shutdown and by tests; there is no per-job cancellation.
func (e *FanoutEngine) Wait() {
	e.pending.Wait()
}

// process contains the failure policy: whatever goes wrong during
// fan-out stays here. The news item itself is already committed and the
// publish response already sent.
func (e *FanoutEngine) process(job FanoutJob) {
	if err := FanOut(e.DB, job.PageID, job.NewsID); err != nil {
		Log.Errorf("fan-out failed for news %d on page %d: %v", job.NewsID, job.PageID, err)
	}
}

// FanOut reads the page's subscriber set as of now and appends one
// FeedMembership row per subscriber for the news item. An empty
// subscriber set is a successful no-op. The insert skips pairs that
// already exist, so retries cannot duplicate feed entries.
func FanOut(db *gorm.DB, pageID uint, newsID uint) error {
	var subs []model.Subscription
	if err := db.Where("page_id = ?", pageID).Find(&subs).Error; err != nil {
		return errors.Wrap(err, "fail to enumerate subscribers")
	}
	if len(subs) == 0 {
		return nil
	}

	memberships := make([]model.FeedMembership, 0, len(subs))
	for _, sub := range subs {
		memberships = append(memberships, model.FeedMembership{
			StudentID: sub.StudentID,
			NewsID:    newsID,
		})
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&memberships)
	if res.Error != nil {
		return errors.Wrap(res.Error, "fail to insert feed memberships")
	}

	Log.Infof("fanned out news %d on page %d to %d of %d subscribers",
		newsID, pageID, res.RowsAffected, len(subs))
	return nil
}
