package telemetry

import "sync"

// Report is a single call recorded by Recorder.
type Report struct {
	Level  string
	ID     string
	Params []any
}

// Recorder is an API that keeps every report in memory so tests can make
// assertions on what a component reported.
type Recorder struct {
	lock    sync.Mutex
	reports []Report
	counts  map[string]int64
}

func NewRecorder() *Recorder {
	return &Recorder{counts: map[string]int64{}}
}

func (r *Recorder) push(level, id string, params []any) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.reports = append(r.reports, Report{Level: level, ID: id, Params: params})
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.push("broken", id, params)
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.push("warning", id, params)
}

func (r *Recorder) ReportDebug(msg string, params ...any) {}

func (r *Recorder) ReportCount(id string, count int64) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.counts[id] = count
}

// Reports returns a copy of every broken/warning report, filtered by id when
// ids are given.
func (r *Recorder) Reports(ids ...string) []Report {
	r.lock.Lock()
	defer r.lock.Unlock()

	var out []Report
	for _, rep := range r.reports {
		if len(ids) == 0 {
			out = append(out, rep)
			continue
		}
		for _, id := range ids {
			if rep.ID == id {
				out = append(out, rep)
				break
			}
		}
	}
	return out
}

// Count returns the last value reported for id.
func (r *Recorder) Count(id string) int64 {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.counts[id]
}
