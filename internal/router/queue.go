package router

// actionQueue is the ordered chain of pending actions for one session.
// Jobs run one at a time, strictly in the order they were appended.
type actionQueue struct {
	jobs     []func()
	draining bool
}

// enqueue appends a job to the session's chain and starts a drainer if the
// chain was idle. Append order under the mutex is arrival order.
func (r *Router) enqueue(sessionID string, job func()) {
	r.queuesMu.Lock()
	defer r.queuesMu.Unlock()

	q := r.queues[sessionID]
	if q == nil {
		q = &actionQueue{}
		r.queues[sessionID] = q
	}

	q.jobs = append(q.jobs, job)
	if !q.draining {
		q.draining = true
		go r.drain(sessionID, q)
	}
}

// drain runs the chain until it is empty, then retires the queue. A job is
// popped before it runs so new arrivals append behind it.
func (r *Router) drain(sessionID string, q *actionQueue) {
	for {
		r.queuesMu.Lock()
		if len(q.jobs) == 0 {
			q.draining = false
			delete(r.queues, sessionID)
			r.queuesMu.Unlock()
			return
		}

		job := q.jobs[0]
		q.jobs = q.jobs[1:]
		r.queuesMu.Unlock()

		job()
	}
}
