package jobs

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"time"

	"gorm.io/gorm"
)

type Worker struct {
	ID   string
	Repo *Repo
	DB   *gorm.DB
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(800 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := w.Repo.Claim(w.ID)
			if err != nil {
				log.Printf("worker claim error: %v\n", err)
				continue
			}
			if job == nil {
				continue
			}
			w.handle(job)
		}
	}
}

func (w *Worker) handle(job *Job) {
	switch job.Type {
	case TypeSessionExpire:
		w.handleSessionExpire(job)
	default:
		_ = w.Repo.MarkFailed(job.ID, "unknown job type")
	}
}

// handleSessionExpire clears the stored session token once it has expired,
// but only if the record still holds the same token: a newer login must not
// have its session wiped by an older token's sweep.
func (w *Worker) handleSessionExpire(job *Job) {
	type payload struct {
		Token string `json:"token"`
	}
	var p payload
	if err := json.Unmarshal(job.Payload, &p); err != nil || p.Token == "" {
		_ = w.Repo.MarkFailed(job.ID, "bad payload")
		return
	}

	res := w.DB.Exec(`
update users
set session_token=null, updated_at=now()
where id=? and session_token=?
`, job.UserID, p.Token)
	if res.Error != nil {
		w.retry(job, "db write error")
		return
	}

	if res.RowsAffected > 0 {
		log.Printf("[SESSION_EXPIRE] user=%d cleared stale session token\n", job.UserID)
	}
	_ = w.Repo.MarkDone(job.ID)
}

func (w *Worker) retry(job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_ = w.Repo.MarkFailed(job.ID, errMsg)
		return
	}

	next := time.Now().Add(backoffDelay(attempts))
	_ = w.Repo.RetryLater(job.ID, attempts, next, errMsg)
}

func backoffDelay(attempts int) time.Duration {
	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	return time.Duration(sec) * time.Second
}
